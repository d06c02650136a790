package fixedpoint

import (
	"fmt"

	"github.com/holiman/uint256"
	"lukechampine.com/uint128"
)

// bitPrecision is the number of log2 fraction bits computed before the
// estimate is resolved against SqrtPriceFromTickIndex.
const bitPrecision = 14

// log_b(2) in Q32.32 with b = sqrt(1.0001).
const logB2X32 = 59543866431248

// Error margins that bracket the true tick around the log estimate.
const (
	logBPErrMarginLowerX64 = 184467440737095516
	logBPErrMarginUpperX64 = 15793534762490258745
)

var (
	positiveTickEven = mustUint256("79228162514264337593543950336")
	positiveTickOdd  = mustUint256("79232123823359799118286999567")

	// Q96 multipliers for tick bits 1<<1 .. 1<<18.
	positiveTickMultipliers = [...]*uint256.Int{
		mustUint256("79236085330515764027303304731"),
		mustUint256("79244008939048815603706035061"),
		mustUint256("79259858533276714757314932305"),
		mustUint256("79291567232598584799939703904"),
		mustUint256("79355022692464371645785046466"),
		mustUint256("79482085999252804386437311141"),
		mustUint256("79736823300114093921829183326"),
		mustUint256("80248749790819932309965073892"),
		mustUint256("81282483887344747381513967011"),
		mustUint256("83390072131320151908154831281"),
		mustUint256("87770609709833776024991924138"),
		mustUint256("97234110755111693312479820773"),
		mustUint256("119332217159966728226237229890"),
		mustUint256("179736315981702064433883588727"),
		mustUint256("407748233172238350107850275304"),
		mustUint256("2098478828474011932436660412517"),
		mustUint256("55581415166113811149459800483533"),
		mustUint256("38992368544603139932233054999993551"),
	}
)

const negativeTickOdd uint64 = 18445821805675392311

// Q64 multipliers for tick bits 1<<1 .. 1<<18.
var negativeTickMultipliers = [...]uint64{
	18444899583751176498,
	18443055278223354162,
	18439367220385604838,
	18431993317065449817,
	18417254355718160513,
	18387811781193591352,
	18329067761203520168,
	18212142134806087854,
	17980523815641551639,
	17526086738831147013,
	16651378430235024244,
	15030750278693429944,
	12247334978882834399,
	8131365268884726200,
	3584323654723342297,
	696457651847595233,
	26294789957452057,
	37481735321082,
}

// SqrtPriceFromTickIndex returns sqrt(1.0001^tick) in Q64.64. Ticks outside
// [MinTickIndex, MaxTickIndex] are clamped.
func SqrtPriceFromTickIndex(tick int32) uint128.Uint128 {
	if tick < MinTickIndex {
		tick = MinTickIndex
	}
	if tick > MaxTickIndex {
		tick = MaxTickIndex
	}
	if tick >= 0 {
		return sqrtPricePositiveTick(tick)
	}
	return sqrtPriceNegativeTick(-tick)
}

func sqrtPricePositiveTick(tick int32) uint128.Uint128 {
	ratio := new(uint256.Int)
	if tick&1 != 0 {
		ratio.Set(positiveTickOdd)
	} else {
		ratio.Set(positiveTickEven)
	}
	for i, multiplier := range positiveTickMultipliers {
		if tick&(2<<i) != 0 {
			ratio.Mul(ratio, multiplier)
			ratio.Rsh(ratio, 96)
		}
	}
	ratio.Rsh(ratio, 32)
	return uint128.New(ratio[0], ratio[1])
}

func sqrtPriceNegativeTick(absTick int32) uint128.Uint128 {
	ratio := One
	if absTick&1 != 0 {
		ratio = uint128.From64(negativeTickOdd)
	}
	for i, multiplier := range negativeTickMultipliers {
		if absTick&(2<<i) != 0 {
			ratio = ratio.Mul64(multiplier).Rsh(64)
		}
	}
	return ratio
}

// TickIndexFromSqrtPrice returns the greatest tick whose sqrt price is at or
// below sqrtPrice. Inputs outside [MinSqrtPriceX64, MaxSqrtPriceX64] are
// clamped to the boundary tick; callers validate bounds first.
func TickIndexFromSqrtPrice(sqrtPrice uint128.Uint128) int32 {
	if sqrtPrice.Cmp(MinSqrtPriceX64) <= 0 {
		return MinTickIndex
	}
	if sqrtPrice.Cmp(MaxSqrtPriceX64) >= 0 {
		return MaxTickIndex
	}

	msb := 127 - sqrtPrice.LeadingZeros()
	log2pIntegerX32 := int64(msb-64) << 32

	// Normalize so the most significant bit sits at position 63.
	var r uint64
	if msb >= 64 {
		r = sqrtPrice.Rsh(uint(msb - 63)).Lo
	} else {
		r = sqrtPrice.Lsh(uint(63 - msb)).Lo
	}

	var fractionX64 uint64
	bit := uint64(1) << 63
	for precision := 0; precision < bitPrecision && bit > 0; precision++ {
		squared := uint128.From64(r).Mul64(r)
		moreThanTwo := uint(squared.Hi >> 63)
		r = squared.Rsh(63 + moreThanTwo).Lo
		if moreThanTwo == 1 {
			fractionX64 |= bit
		}
		bit >>= 1
	}
	log2pX32 := log2pIntegerX32 + int64(fractionX64>>32)

	logbpX64 := new(uint256.Int).Mul(signedUint256(log2pX32), uint256.NewInt(logB2X32))
	low := new(uint256.Int).Sub(logbpX64, uint256.NewInt(logBPErrMarginLowerX64))
	high := new(uint256.Int).Add(logbpX64, uint256.NewInt(logBPErrMarginUpperX64))
	tickLow := int32(int64(low.SRsh(low, 64).Uint64()))
	tickHigh := int32(int64(high.SRsh(high, 64).Uint64()))

	if tickLow == tickHigh {
		return tickLow
	}
	if SqrtPriceFromTickIndex(tickHigh).Cmp(sqrtPrice) <= 0 {
		return tickHigh
	}
	return tickLow
}

// signedUint256 encodes v in 256-bit two's complement so Mul and SRsh
// behave as signed arithmetic.
func signedUint256(v int64) *uint256.Int {
	if v >= 0 {
		return uint256.NewInt(uint64(v))
	}
	z := uint256.NewInt(uint64(-v))
	return z.Neg(z)
}

func mustUint256(s string) *uint256.Int {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		panic(fmt.Sprintf("fixedpoint: bad constant %q: %v", s, err))
	}
	return v
}
