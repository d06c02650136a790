package fixedpoint

import "lukechampine.com/uint128"

// InterestFeeGrowth converts an interest amount into Q64.64 fee growth per
// unit of liquidity: (interest << 64) / liquidity. A zero liquidity base is
// replaced by ZeroLiquidityDivisor.
func InterestFeeGrowth(interest uint64, liquidity uint128.Uint128) uint128.Uint128 {
	if liquidity.IsZero() {
		liquidity = uint128.From64(ZeroLiquidityDivisor)
	}
	return uint128.From64(interest).Lsh(Q64Resolution).Div(liquidity)
}
