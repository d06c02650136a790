package fixedpoint

import (
	"testing"

	"lukechampine.com/uint128"
)

func TestSqrtPriceFromTickIndexKnownValues(t *testing.T) {
	cases := []struct {
		tick int32
		want string
	}{
		{tick: 0, want: "18446744073709551616"},
		{tick: 1, want: "18447666387855959850"},
		{tick: -1, want: "18445821805675392311"},
		{tick: 64, want: "18505865242158250041"},
		{tick: -64, want: "18387811781193591352"},
		{tick: 100, want: "18539204128674405812"},
		{tick: -100, want: "18354745142194483561"},
		{tick: 10000, want: "30412779051191548722"},
		{tick: -10000, want: "11188795550323325955"},
		{tick: 443635, want: "79222712478800779441888593664"},
		{tick: -443635, want: "4295262763"},
		{tick: MaxTickIndex, want: MaxSqrtPriceX64.String()},
		{tick: MinTickIndex, want: MinSqrtPriceX64.String()},
	}
	for _, tc := range cases {
		got := SqrtPriceFromTickIndex(tc.tick)
		if got.String() != tc.want {
			t.Fatalf("sqrt price mismatch at tick %d: got %s want %s", tc.tick, got, tc.want)
		}
	}
}

func TestSqrtPriceFromTickIndexClamps(t *testing.T) {
	if got := SqrtPriceFromTickIndex(MaxTickIndex + 10); got != MaxSqrtPriceX64 {
		t.Fatalf("expected clamp to max sqrt price, got %s", got)
	}
	if got := SqrtPriceFromTickIndex(MinTickIndex - 10); got != MinSqrtPriceX64 {
		t.Fatalf("expected clamp to min sqrt price, got %s", got)
	}
}

func TestTickIndexFromSqrtPriceRoundTrip(t *testing.T) {
	ticks := []int32{MinTickIndex, MinTickIndex + 1, -200000, -10000, -101, -100, -2, -1, 0, 1, 2, 99, 100, 4096, 65537, 300000, MaxTickIndex - 1, MaxTickIndex}
	for tick := int32(-1500); tick <= 1500; tick += 7 {
		ticks = append(ticks, tick)
	}
	for _, tick := range ticks {
		sqrtPrice := SqrtPriceFromTickIndex(tick)
		if got := TickIndexFromSqrtPrice(sqrtPrice); got != tick {
			t.Fatalf("round trip mismatch: tick %d -> %s -> %d", tick, sqrtPrice, got)
		}
		if tick == MaxTickIndex {
			continue
		}
		// Anything below the next tick's price still floors to tick.
		below := SqrtPriceFromTickIndex(tick + 1).Sub64(1)
		if got := TickIndexFromSqrtPrice(below); got != tick {
			t.Fatalf("floor mismatch below tick %d: got %d", tick+1, got)
		}
	}
}

func TestTickIndexFromSqrtPriceNearOne(t *testing.T) {
	if got := TickIndexFromSqrtPrice(One.Add64(1)); got != 0 {
		t.Fatalf("expected tick 0 just above 1.0, got %d", got)
	}
	if got := TickIndexFromSqrtPrice(One.Sub64(1)); got != -1 {
		t.Fatalf("expected tick -1 just below 1.0, got %d", got)
	}
}

func TestTickIndexFromSqrtPriceClamps(t *testing.T) {
	if got := TickIndexFromSqrtPrice(uint128.Zero); got != MinTickIndex {
		t.Fatalf("expected min tick for zero price, got %d", got)
	}
	if got := TickIndexFromSqrtPrice(uint128.Max); got != MaxTickIndex {
		t.Fatalf("expected max tick for max value, got %d", got)
	}
}

func TestSqrtPriceIsMonotonic(t *testing.T) {
	prev := SqrtPriceFromTickIndex(-3000)
	for tick := int32(-2999); tick <= 3000; tick++ {
		cur := SqrtPriceFromTickIndex(tick)
		if cur.Cmp(prev) <= 0 {
			t.Fatalf("sqrt price not increasing at tick %d", tick)
		}
		prev = cur
	}
}
