// Package settlement implements the decimal-normalized exchange
// arithmetic shared by every take operation: output amounts, fees, and
// dual-leg principal splits. All functions here are pure; callers check
// the result code before moving any tokens.
package settlement

import (
	"github.com/vennlabs/custodiad/internal/core/fixedpoint"
	"github.com/vennlabs/custodiad/internal/core/result"
)

// Quote is the settlement result for a single-output exchange.
//
// The fee is charged in the input token on top of the principal: the
// taker is debited AmountIn + FeeAmount and credited AmountOut in full.
type Quote struct {
	AmountOut  uint64
	FeeAmount  uint64
	TotalDebit uint64
}

// DualQuote is the settlement result for a dual-leg redemption: the
// principal is split between two output tokens by the configured ratio.
type DualQuote struct {
	AmountOutOne uint64
	AmountOutTwo uint64
	FeeAmount    uint64
	TotalDebit   uint64
}

// Compute settles amountIn against a scale-1e9 price across a decimal
// boundary:
//
//	amountOut = floor(amountIn * 10^(decimalsOut+9) / (price * 10^decimalsIn))
//	fee       = floor(amountIn * feeBps / 10000)
//
// Divisions truncate toward zero. Every multiply and divide is checked;
// any overflow yields an arithmetic failure and no partial values.
func Compute(amountIn, price uint64, decimalsIn, decimalsOut uint32, feeBps uint32) (Quote, result.Result) {
	if price == 0 {
		return Quote{}, result.BadPrice
	}
	if amountIn == 0 {
		return Quote{}, result.BadAmount
	}
	if uint64(feeBps) > fixedpoint.BpsDenom {
		return Quote{}, result.BadFee
	}

	outScale, ok := fixedpoint.Pow10(decimalsOut + fixedpoint.PriceDecimals)
	if !ok {
		return Quote{}, result.ArithmeticOverflow
	}
	inScale, ok := fixedpoint.Pow10(decimalsIn)
	if !ok {
		return Quote{}, result.ArithmeticOverflow
	}

	// The denominator is price * 10^decimalsIn as a single value so the
	// 128-bit intermediate is divided all at once. Splitting the divide
	// would overflow on quotients whose final value still fits.
	den, ok := fixedpoint.Mul(price, inScale)
	if !ok {
		return Quote{}, result.ArithmeticOverflow
	}
	amountOut, ok := fixedpoint.MulDiv(amountIn, outScale, den)
	if !ok {
		return Quote{}, result.ArithmeticOverflow
	}

	fee, ok := fixedpoint.MulDiv(amountIn, uint64(feeBps), fixedpoint.BpsDenom)
	if !ok {
		return Quote{}, result.ArithmeticOverflow
	}
	total, ok := fixedpoint.Add(amountIn, fee)
	if !ok {
		return Quote{}, result.ArithmeticOverflow
	}

	return Quote{AmountOut: amountOut, FeeAmount: fee, TotalDebit: total}, result.Success
}

// ComputeDual settles a dual-leg redemption. The principal is split by
// ratioBps (share routed to leg one, remainder to leg two); each leg is
// then priced independently under the same rounding rule. The fee is
// charged once, on the full principal.
func ComputeDual(amountIn uint64, priceOne, priceTwo uint64, ratioBps uint32,
	decimalsIn, decimalsOutOne, decimalsOutTwo uint32, feeBps uint32) (DualQuote, result.Result) {

	if uint64(ratioBps) > fixedpoint.BpsDenom {
		return DualQuote{}, result.BadRatio
	}
	if uint64(feeBps) > fixedpoint.BpsDenom {
		return DualQuote{}, result.BadFee
	}
	if amountIn == 0 {
		return DualQuote{}, result.BadAmount
	}

	legOne, ok := fixedpoint.MulDiv(amountIn, uint64(ratioBps), fixedpoint.BpsDenom)
	if !ok {
		return DualQuote{}, result.ArithmeticOverflow
	}
	legTwo := amountIn - legOne

	var outOne, outTwo uint64
	if legOne > 0 {
		q, r := Compute(legOne, priceOne, decimalsIn, decimalsOutOne, 0)
		if r != result.Success {
			return DualQuote{}, r
		}
		outOne = q.AmountOut
	}
	if legTwo > 0 {
		q, r := Compute(legTwo, priceTwo, decimalsIn, decimalsOutTwo, 0)
		if r != result.Success {
			return DualQuote{}, r
		}
		outTwo = q.AmountOut
	}

	fee, ok := fixedpoint.MulDiv(amountIn, uint64(feeBps), fixedpoint.BpsDenom)
	if !ok {
		return DualQuote{}, result.ArithmeticOverflow
	}
	total, ok := fixedpoint.Add(amountIn, fee)
	if !ok {
		return DualQuote{}, result.ArithmeticOverflow
	}

	return DualQuote{
		AmountOutOne: outOne,
		AmountOutTwo: outTwo,
		FeeAmount:    fee,
		TotalDebit:   total,
	}, result.Success
}
