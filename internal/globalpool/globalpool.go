// Package globalpool is the liquidity, fee and interest ledger of a
// lending-augmented concentrated-liquidity market.
package globalpool

import (
	"bytes"
	"encoding/binary"
	"math"
	"math/bits"

	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"

	"clad/internal/fixedpoint"
)

// Lifecycle is the explicit state tag of a pool.
type Lifecycle uint8

const (
	Uninitialized Lifecycle = iota
	Active
)

func (l Lifecycle) String() string {
	switch l {
	case Uninitialized:
		return "uninitialized"
	case Active:
		return "active"
	default:
		return "unknown"
	}
}

// Globalpool is one market per token pair, fee tier and tick spacing.
// Operations validate every input before touching a field, so a failed
// call leaves the pool unchanged.
type Globalpool struct {
	Bump [1]byte

	TickSpacing     uint16
	TickSpacingSeed [2]byte

	// Hundredths of a basis point.
	FeeRate     uint16
	FeeRateSeed [2]byte

	// Basis points of the fee.
	ProtocolFeeRate uint16

	LiquidityAvailable uint128.Uint128
	LiquidityBorrowed  uint128.Uint128

	SqrtPrice        uint128.Uint128 // Q64.64
	TickCurrentIndex int32

	ProtocolFeeOwedA uint64
	ProtocolFeeOwedB uint64

	TokenMintA       solana.PublicKey
	TokenVaultA      solana.PublicKey
	FeeGrowthGlobalA uint128.Uint128 // Q64.64

	TokenMintB       solana.PublicKey
	TokenVaultB      solana.PublicKey
	FeeGrowthGlobalB uint128.Uint128 // Q64.64

	InceptionTime uint64
	FeeAuthority  solana.PublicKey

	Lifecycle Lifecycle
}

// InitializeParams carries the validated accounts and parameters of a new
// pool. InceptionTime is the caller's clock in unix seconds.
type InitializeParams struct {
	Bump            uint8
	TickSpacing     uint16
	SqrtPrice       uint128.Uint128
	FeeRate         uint16
	ProtocolFeeRate uint16
	FeeAuthority    solana.PublicKey
	TokenMintA      solana.PublicKey
	TokenVaultA     solana.PublicKey
	TokenMintB      solana.PublicKey
	TokenVaultB     solana.PublicKey
	InceptionTime   uint64
}

// SwapUpdate is the outcome of a swap computed by the swap routine.
// FeeGrowthGlobal is the new accumulated value for the fee side, not a delta.
type SwapUpdate struct {
	LiquidityAvailable uint128.Uint128
	TickIndex          int32
	SqrtPrice          uint128.Uint128
	FeeGrowthGlobal    uint128.Uint128
	ProtocolFee        uint64
	IsTokenFeeInA      bool
}

// IsInitialized reports whether the pool has been through Initialize.
func (g *Globalpool) IsInitialized() bool {
	return g.Lifecycle == Active
}

func (g *Globalpool) Initialize(p InitializeParams) error {
	if bytes.Compare(p.TokenMintA[:], p.TokenMintB[:]) >= 0 {
		return ErrInvalidTokenMintOrder
	}
	if !sqrtPriceInBounds(p.SqrtPrice) {
		return ErrSqrtPriceOutOfBounds
	}
	if g.IsInitialized() || !g.SqrtPrice.IsZero() || g.InceptionTime != 0 {
		return ErrAccountAlreadyInitialized
	}
	if p.FeeRate > fixedpoint.MaxFeeRate {
		return ErrFeeRateMaxExceeded
	}
	if p.ProtocolFeeRate > fixedpoint.MaxProtocolFeeRate {
		return ErrProtocolFeeRateMaxExceeded
	}

	*g = Globalpool{
		Bump:             [1]byte{p.Bump},
		TickSpacing:      p.TickSpacing,
		FeeRate:          p.FeeRate,
		ProtocolFeeRate:  p.ProtocolFeeRate,
		SqrtPrice:        p.SqrtPrice,
		TickCurrentIndex: fixedpoint.TickIndexFromSqrtPrice(p.SqrtPrice),
		TokenMintA:       p.TokenMintA,
		TokenVaultA:      p.TokenVaultA,
		TokenMintB:       p.TokenMintB,
		TokenVaultB:      p.TokenVaultB,
		InceptionTime:    p.InceptionTime,
		FeeAuthority:     p.FeeAuthority,
		Lifecycle:        Active,
	}
	binary.LittleEndian.PutUint16(g.TickSpacingSeed[:], p.TickSpacing)
	binary.LittleEndian.PutUint16(g.FeeRateSeed[:], p.FeeRate)
	return nil
}

// UpdateLiquidity overwrites the liquidity available at the current tick.
func (g *Globalpool) UpdateLiquidity(liquidity uint128.Uint128) error {
	if !g.IsInitialized() {
		return ErrNotInitialized
	}
	g.LiquidityAvailable = liquidity
	return nil
}

// UpdateAfterSwap replaces price, tick and liquidity and credits the
// protocol fee to exactly one side.
func (g *Globalpool) UpdateAfterSwap(u SwapUpdate) error {
	if !g.IsInitialized() {
		return ErrNotInitialized
	}
	if !sqrtPriceInBounds(u.SqrtPrice) {
		return ErrSqrtPriceOutOfBounds
	}

	growth, owed := &g.FeeGrowthGlobalB, &g.ProtocolFeeOwedB
	if u.IsTokenFeeInA {
		growth, owed = &g.FeeGrowthGlobalA, &g.ProtocolFeeOwedA
	}
	if u.FeeGrowthGlobal.Cmp(*growth) < 0 {
		return ErrFeeGrowthRegression
	}
	nextOwed, carry := bits.Add64(*owed, u.ProtocolFee, 0)
	if carry != 0 {
		return ErrProtocolFeeOverflow
	}

	g.TickCurrentIndex = u.TickIndex
	g.SqrtPrice = u.SqrtPrice
	g.LiquidityAvailable = u.LiquidityAvailable
	*growth = u.FeeGrowthGlobal
	*owed = nextOwed
	return nil
}

// UpdateAfterLoan accrues interest into the fee side's growth and moves
// liquidityDelta from available to borrowed. A positive delta opens or
// grows a loan, a negative delta repays it.
func (g *Globalpool) UpdateAfterLoan(liquidityDelta fixedpoint.Int128, interestAmount uint64, isTokenFeeInA bool) error {
	if !g.IsInitialized() {
		return ErrNotInitialized
	}

	growth := &g.FeeGrowthGlobalB
	if isTokenFeeInA {
		growth = &g.FeeGrowthGlobalA
	}
	nextGrowth := *growth
	if interestAmount > 0 {
		accrued := fixedpoint.InterestFeeGrowth(interestAmount, g.LiquidityAvailable)
		var ok bool
		if nextGrowth, ok = fixedpoint.CheckedAdd(nextGrowth, accrued); !ok {
			return ErrFeeGrowthOverflow
		}
	}

	available, err := fixedpoint.SubLiquidityDelta(g.LiquidityAvailable, liquidityDelta)
	if err != nil {
		return err
	}
	borrowed, err := fixedpoint.AddLiquidityDelta(g.LiquidityBorrowed, liquidityDelta)
	if err != nil {
		return err
	}

	*growth = nextGrowth
	g.LiquidityAvailable = available
	g.LiquidityBorrowed = borrowed
	return nil
}

// ResetProtocolFeesOwed zeroes both owed counters and returns what was owed.
func (g *Globalpool) ResetProtocolFeesOwed() (owedA, owedB uint64, err error) {
	if !g.IsInitialized() {
		return 0, 0, ErrNotInitialized
	}
	owedA, owedB = g.ProtocolFeeOwedA, g.ProtocolFeeOwedB
	g.ProtocolFeeOwedA = 0
	g.ProtocolFeeOwedB = 0
	return owedA, owedB, nil
}

// FeeFromAmount is the swap fee charged on amount, rounded down.
func (g *Globalpool) FeeFromAmount(amount uint64) uint64 {
	return mulDiv(amount, uint64(g.FeeRate), fixedpoint.FeeRateMulValue)
}

// ProtocolFeeFromFee is the protocol's share of a swap fee, rounded down.
func (g *Globalpool) ProtocolFeeFromFee(fee uint64) uint64 {
	return mulDiv(fee, uint64(g.ProtocolFeeRate), fixedpoint.ProtocolFeeRateMulValue)
}

// mulDiv computes a*b/d, saturating when a rate above its denominator
// pushes the quotient past 64 bits.
func mulDiv(a, b, d uint64) uint64 {
	q := uint128.From64(a).Mul64(b).Div64(d)
	if q.Hi != 0 {
		return math.MaxUint64
	}
	return q.Lo
}

func sqrtPriceInBounds(sqrtPrice uint128.Uint128) bool {
	return sqrtPrice.Cmp(fixedpoint.MinSqrtPriceX64) >= 0 && sqrtPrice.Cmp(fixedpoint.MaxSqrtPriceX64) <= 0
}
