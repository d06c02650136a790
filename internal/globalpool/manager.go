package globalpool

import (
	"lukechampine.com/uint128"

	"clad/internal/fixedpoint"
)

// NextGlobalpoolLiquidity returns the pool's available liquidity after a
// position or loan over [tickLower, tickUpper) changes by liquidityDelta.
// Only a range containing the current tick moves available liquidity; a
// current tick equal to tickUpper is out of range.
func NextGlobalpoolLiquidity(pool *Globalpool, tickUpper, tickLower int32, liquidityDelta fixedpoint.Int128) (uint128.Uint128, error) {
	if pool.TickCurrentIndex < tickUpper && pool.TickCurrentIndex >= tickLower {
		return fixedpoint.AddLiquidityDelta(pool.LiquidityAvailable, liquidityDelta)
	}
	return pool.LiquidityAvailable, nil
}
