// Package fixedpoint holds the Q64.64 helpers shared by the globalpool
// engine: checked liquidity deltas, tick <-> sqrt-price conversion and the
// interest-to-fee-growth scaling.
package fixedpoint

import (
	"fmt"

	"lukechampine.com/uint128"
)

// Q64Resolution is the number of fractional bits in a Q64.64 value.
const Q64Resolution = 64

// Tick bounds supported by globalpools.
const (
	MinTickIndex int32 = -443636
	MaxTickIndex int32 = 443636
)

// Fee rates are stored in hundredths of a basis point (per 1_000_000);
// protocol fee rates in basis points of the fee (per 10_000).
const (
	FeeRateMulValue         = 1_000_000
	ProtocolFeeRateMulValue = 10_000
	MaxFeeRate              = 30_000
	MaxProtocolFeeRate      = 2_500
)

// ZeroLiquidityDivisor replaces a zero liquidity base when interest is
// spread into fee growth. With no liquidity in range the whole interest
// amount lands in a single unit of liquidity, so fee growth jumps by
// interest<<64; the first position to enter the range captures it.
const ZeroLiquidityDivisor = 1

var (
	// MinSqrtPriceX64 is the sqrt price at MinTickIndex.
	MinSqrtPriceX64 = mustUint128("4295048016")
	// MaxSqrtPriceX64 is the sqrt price at MaxTickIndex.
	MaxSqrtPriceX64 = mustUint128("79226673515401279992447579055")
	// One is 1.0 in Q64.64.
	One = uint128.From64(1).Lsh(Q64Resolution)
)

func mustUint128(s string) uint128.Uint128 {
	v, err := uint128.FromString(s)
	if err != nil {
		panic(fmt.Sprintf("fixedpoint: bad constant %q: %v", s, err))
	}
	return v
}
