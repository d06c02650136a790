package fixedpoint

import (
	"lukechampine.com/uint128"

	"clad/internal/errkind"
)

var (
	ErrLiquidityOverflow  = errkind.New(errkind.Arithmetic, "liquidity overflow")
	ErrLiquidityUnderflow = errkind.New(errkind.Arithmetic, "liquidity underflow")
)

// AddLiquidityDelta returns base+delta. It is the only way liquidity
// figures change, so it never wraps: a result below zero or above 2^128-1
// is an error.
func AddLiquidityDelta(base uint128.Uint128, delta Int128) (uint128.Uint128, error) {
	if delta.neg {
		if delta.abs.Cmp(base) > 0 {
			return uint128.Zero, ErrLiquidityUnderflow
		}
		return base.Sub(delta.abs), nil
	}
	sum, ok := CheckedAdd(base, delta.abs)
	if !ok {
		return uint128.Zero, ErrLiquidityOverflow
	}
	return sum, nil
}

// SubLiquidityDelta returns base-delta without negating delta first, so a
// delta of -2^127 is handled.
func SubLiquidityDelta(base uint128.Uint128, delta Int128) (uint128.Uint128, error) {
	return AddLiquidityDelta(base, Int128{abs: delta.abs, neg: !delta.neg && !delta.abs.IsZero()})
}

// CheckedAdd returns a+b and false when the sum does not fit in 128 bits.
func CheckedAdd(a, b uint128.Uint128) (uint128.Uint128, bool) {
	if a.Cmp(uint128.Max.Sub(b)) > 0 {
		return uint128.Zero, false
	}
	return a.Add(b), true
}
