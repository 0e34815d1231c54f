package fixedpoint

import (
	"math"
	"testing"
)

func TestMulDiv(t *testing.T) {
	tests := []struct {
		name   string
		a, b   uint64
		den    uint64
		want   uint64
		wantOK bool
	}{
		{"exact", 10, 4, 2, 20, true},
		{"truncates toward zero", 7, 3, 2, 10, true},
		{"zero numerator", 0, math.MaxUint64, 7, 0, true},
		{"zero denominator", 1, 1, 0, 0, false},
		{"large intermediate fits", math.MaxUint64, 1_000_000_000, 1_000_000_000, math.MaxUint64, true},
		{"quotient overflows", math.MaxUint64, 2, 1, 0, false},
		{"scale round trip", 5_000_000_000, PriceScale, PriceScale, 5_000_000_000, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MulDiv(tt.a, tt.b, tt.den)
			if ok != tt.wantOK {
				t.Fatalf("MulDiv(%d,%d,%d) ok = %v, want %v", tt.a, tt.b, tt.den, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Fatalf("MulDiv(%d,%d,%d) = %d, want %d", tt.a, tt.b, tt.den, got, tt.want)
			}
		})
	}
}

func TestAddSubMul(t *testing.T) {
	if got, ok := Add(math.MaxUint64, 1); ok {
		t.Fatalf("Add overflow not reported, got %d", got)
	}
	if got, ok := Add(2, 3); !ok || got != 5 {
		t.Fatalf("Add(2,3) = %d, %v", got, ok)
	}
	if _, ok := Sub(1, 2); ok {
		t.Fatal("Sub underflow not reported")
	}
	if got, ok := Sub(5, 2); !ok || got != 3 {
		t.Fatalf("Sub(5,2) = %d, %v", got, ok)
	}
	if _, ok := Mul(math.MaxUint64, 2); ok {
		t.Fatal("Mul overflow not reported")
	}
	if got, ok := Mul(1<<32, 1<<31); !ok || got != 1<<63 {
		t.Fatalf("Mul(2^32,2^31) = %d, %v", got, ok)
	}
}

func TestPow10(t *testing.T) {
	if got, ok := Pow10(0); !ok || got != 1 {
		t.Fatalf("Pow10(0) = %d, %v", got, ok)
	}
	if got, ok := Pow10(9); !ok || got != 1_000_000_000 {
		t.Fatalf("Pow10(9) = %d, %v", got, ok)
	}
	if got, ok := Pow10(19); !ok || got != 10_000_000_000_000_000_000 {
		t.Fatalf("Pow10(19) = %d, %v", got, ok)
	}
	if _, ok := Pow10(20); ok {
		t.Fatal("Pow10(20) should not fit in 64 bits")
	}
}

func TestPowScaled(t *testing.T) {
	tests := []struct {
		name   string
		factor uint64
		n      uint64
		want   uint64
		wantOK bool
	}{
		{"identity to the zero", 2 * PriceScale, 0, PriceScale, true},
		{"one squared", PriceScale, 17, PriceScale, true},
		{"double once", 2 * PriceScale, 1, 2 * PriceScale, true},
		{"double thrice", 2 * PriceScale, 3, 8 * PriceScale, true},
		{"half squared", PriceScale / 2, 2, PriceScale / 4, true},
		{"overflow", 1000 * PriceScale, 8, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PowScaled(tt.factor, tt.n)
			if ok != tt.wantOK {
				t.Fatalf("PowScaled(%d,%d) ok = %v, want %v", tt.factor, tt.n, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Fatalf("PowScaled(%d,%d) = %d, want %d", tt.factor, tt.n, got, tt.want)
			}
		})
	}
}

// Growth at 1.5x per interval stays non-decreasing as intervals accrue.
func TestPowScaledMonotone(t *testing.T) {
	factor := PriceScale + PriceScale/2
	prev := uint64(0)
	for n := uint64(0); n <= 20; n++ {
		got, ok := PowScaled(factor, n)
		if !ok {
			t.Fatalf("PowScaled overflowed at n=%d", n)
		}
		if got < prev {
			t.Fatalf("PowScaled decreased at n=%d: %d < %d", n, got, prev)
		}
		prev = got
	}
}
