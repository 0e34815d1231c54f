// Package fixedpoint implements the checked integer arithmetic used for
// all price and amount computation. Prices carry nine decimal places
// (scale 1e9). Nothing in this package wraps or saturates: every helper
// reports overflow to the caller, and the caller aborts the operation.
// Floating point is never used so that independent re-execution of the
// same inputs always reproduces the same result bit for bit.
package fixedpoint

import "math/bits"

const (
	// PriceScale is the fixed-point scale for prices: nine decimals.
	PriceScale uint64 = 1_000_000_000

	// PriceDecimals is the number of decimals carried by a price.
	PriceDecimals = 9

	// BpsDenom is the denominator for basis-point values (500 = 5%).
	BpsDenom uint64 = 10_000

	// SecondsPerYear converts annualized rates to per-interval growth.
	SecondsPerYear uint64 = 31_536_000
)

// Add returns a+b, reporting overflow.
func Add(a, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	return sum, carry == 0
}

// Sub returns a-b, reporting underflow.
func Sub(a, b uint64) (uint64, bool) {
	diff, borrow := bits.Sub64(a, b, 0)
	return diff, borrow == 0
}

// Mul returns a*b, reporting overflow.
func Mul(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0
}

// MulDiv returns floor(a*b/den) using a 128-bit intermediate product.
// It reports failure when den is zero or the quotient does not fit in
// 64 bits.
func MulDiv(a, b, den uint64) (uint64, bool) {
	if den == 0 {
		return 0, false
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= den {
		// Quotient would need more than 64 bits.
		return 0, false
	}
	quo, _ := bits.Div64(hi, lo, den)
	return quo, true
}

// Pow10 returns 10^n, reporting failure for n > 19 (the largest power of
// ten representable in 64 bits).
func Pow10(n uint32) (uint64, bool) {
	if n > 19 {
		return 0, false
	}
	p := uint64(1)
	for i := uint32(0); i < n; i++ {
		p *= 10
	}
	return p, true
}

// PowScaled raises a scale-1e9 fixed-point factor to the n-th power by
// square and multiply, truncating toward zero after each step. The
// algorithm is fixed so that every node recomputes identical values.
func PowScaled(factor uint64, n uint64) (uint64, bool) {
	acc := PriceScale
	base := factor
	ok := true
	for n > 0 {
		if n&1 == 1 {
			acc, ok = MulDiv(acc, base, PriceScale)
			if !ok {
				return 0, false
			}
		}
		n >>= 1
		if n > 0 {
			base, ok = MulDiv(base, base, PriceScale)
			if !ok {
				return 0, false
			}
		}
	}
	return acc, true
}
