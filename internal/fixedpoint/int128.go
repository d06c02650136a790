package fixedpoint

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"lukechampine.com/uint128"

	"clad/internal/errkind"
)

var (
	ErrInt128OutOfRange = errkind.New(errkind.Validation, "value out of signed 128-bit range")
	ErrInvalidInt128    = errkind.New(errkind.Validation, "invalid signed 128-bit integer")
)

// int128MinAbs is |-2^127|, the largest magnitude a negative Int128 can hold.
var int128MinAbs = uint128.From64(1).Lsh(127)

// Int128 is a signed 128-bit liquidity delta stored as sign and magnitude.
// Positive deltas add liquidity (open), negative deltas remove it (close).
type Int128 struct {
	abs uint128.Uint128
	neg bool
}

// NewInt128 converts an int64.
func NewInt128(v int64) Int128 {
	if v < 0 {
		// -(v+1)+1 avoids overflowing on math.MinInt64.
		return Int128{abs: uint128.From64(uint64(-(v + 1)) + 1), neg: true}
	}
	return Int128{abs: uint128.From64(uint64(v))}
}

// Int128FromUint128 builds a non-negative delta, failing above 2^127-1.
func Int128FromUint128(v uint128.Uint128) (Int128, error) {
	if v.Cmp(int128MinAbs) >= 0 {
		return Int128{}, ErrInt128OutOfRange
	}
	return Int128{abs: v}, nil
}

// Int128FromBig converts b, failing outside [-2^127, 2^127-1].
func Int128FromBig(b *big.Int) (Int128, error) {
	if b == nil {
		return Int128{}, nil
	}
	neg := b.Sign() < 0
	abs := new(big.Int).Abs(b)
	if abs.BitLen() > 128 {
		return Int128{}, ErrInt128OutOfRange
	}
	mag := uint128.FromBig(abs)
	limit := mag.Cmp(int128MinAbs)
	if (neg && limit > 0) || (!neg && limit >= 0) {
		return Int128{}, ErrInt128OutOfRange
	}
	return Int128{abs: mag, neg: neg && !mag.IsZero()}, nil
}

// ParseInt128 parses a base-10 string.
func ParseInt128(s string) (Int128, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Int128{}, nil
	}
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Int128{}, fmt.Errorf("%w: %q", ErrInvalidInt128, s)
	}
	return Int128FromBig(b)
}

// Sign returns -1, 0 or 1.
func (i Int128) Sign() int {
	switch {
	case i.abs.IsZero():
		return 0
	case i.neg:
		return -1
	default:
		return 1
	}
}

// Abs returns the magnitude.
func (i Int128) Abs() uint128.Uint128 {
	return i.abs
}

// IsNegative reports whether the delta removes liquidity.
func (i Int128) IsNegative() bool {
	return i.neg
}

// Big returns the value as a big.Int.
func (i Int128) Big() *big.Int {
	b := i.abs.Big()
	if i.neg {
		b.Neg(b)
	}
	return b
}

func (i Int128) String() string {
	if i.neg {
		return "-" + i.abs.String()
	}
	return i.abs.String()
}

// MarshalJSON encodes the delta as a decimal string.
func (i Int128) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.String())
}

// UnmarshalJSON accepts a decimal string or a JSON number.
func (i *Int128) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		text = string(data)
	}
	parsed, err := ParseInt128(text)
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
