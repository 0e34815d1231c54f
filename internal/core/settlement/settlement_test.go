package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vennlabs/custodiad/internal/core/result"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name        string
		amountIn    uint64
		price       uint64
		decimalsIn  uint32
		decimalsOut uint32
		feeBps      uint32
		wantOut     uint64
		wantFee     uint64
		wantDebit   uint64
		wantResult  result.Result
	}{
		{
			// 10 units at price 2.0, same decimals: 5 units out.
			name:     "same decimals",
			amountIn: 10_000_000_000, price: 2_000_000_000,
			decimalsIn: 9, decimalsOut: 9, feeBps: 0,
			wantOut: 5_000_000_000, wantFee: 0, wantDebit: 10_000_000_000,
			wantResult: result.Success,
		},
		{
			// 15 units of a 6-decimal token at price 3.0 into a
			// 9-decimal token: exactly 5 units out.
			name:     "cross decimals up",
			amountIn: 15_000_000, price: 3_000_000_000,
			decimalsIn: 6, decimalsOut: 9, feeBps: 0,
			wantOut: 5_000_000_000, wantFee: 0, wantDebit: 15_000_000,
			wantResult: result.Success,
		},
		{
			// 9-decimal input into 6-decimal output at price 1.0.
			name:     "cross decimals down",
			amountIn: 7_000_000_000, price: 1_000_000_000,
			decimalsIn: 9, decimalsOut: 6, feeBps: 0,
			wantOut: 7_000_000, wantFee: 0, wantDebit: 7_000_000_000,
			wantResult: result.Success,
		},
		{
			// 5% fee charged on top of the principal.
			name:     "fee on top",
			amountIn: 10_000_000_000, price: 2_000_000_000,
			decimalsIn: 9, decimalsOut: 9, feeBps: 500,
			wantOut: 5_000_000_000, wantFee: 500_000_000, wantDebit: 10_500_000_000,
			wantResult: result.Success,
		},
		{
			// Truncation toward zero: 1 at price 3.0 is 0.333... out.
			name:     "truncates",
			amountIn: 1_000_000_000, price: 3_000_000_000,
			decimalsIn: 9, decimalsOut: 9, feeBps: 0,
			wantOut: 333_333_333, wantFee: 0, wantDebit: 1_000_000_000,
			wantResult: result.Success,
		},
		{
			// 40 units at price 2.0: amountIn*10^18/price alone needs
			// more than 64 bits, but against the full denominator the
			// result is an ordinary 20 units.
			name:     "large principal fits",
			amountIn: 40_000_000_000, price: 2_000_000_000,
			decimalsIn: 9, decimalsOut: 9, feeBps: 0,
			wantOut: 20_000_000_000, wantFee: 0, wantDebit: 40_000_000_000,
			wantResult: result.Success,
		},
		{
			name:     "zero price",
			amountIn: 1, price: 0,
			decimalsIn: 9, decimalsOut: 9,
			wantResult: result.BadPrice,
		},
		{
			name:     "zero amount",
			amountIn: 0, price: 1_000_000_000,
			decimalsIn: 9, decimalsOut: 9,
			wantResult: result.BadAmount,
		},
		{
			name:     "fee above denominator",
			amountIn: 1, price: 1_000_000_000,
			decimalsIn: 9, decimalsOut: 9, feeBps: 10_001,
			wantResult: result.BadFee,
		},
		{
			// amountIn * 10^18 cannot fit the 64-bit quotient at a
			// tiny price.
			name:     "overflow",
			amountIn: 1 << 60, price: 1,
			decimalsIn: 9, decimalsOut: 9, feeBps: 0,
			wantResult: result.ArithmeticOverflow,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, r := Compute(tt.amountIn, tt.price, tt.decimalsIn, tt.decimalsOut, tt.feeBps)
			require.Equal(t, tt.wantResult, r)
			if r != result.Success {
				assert.Zero(t, q)
				return
			}
			assert.Equal(t, tt.wantOut, q.AmountOut, "amountOut")
			assert.Equal(t, tt.wantFee, q.FeeAmount, "feeAmount")
			assert.Equal(t, tt.wantDebit, q.TotalDebit, "totalDebit")
		})
	}
}

func TestComputeDual(t *testing.T) {
	// 100 units in, 40% to leg one at price 2.0, 60% to leg two at
	// price 1.0, all at 9 decimals, 1% fee.
	q, r := ComputeDual(100_000_000_000, 2_000_000_000, 1_000_000_000, 4_000, 9, 9, 9, 100)
	require.Equal(t, result.Success, r)
	assert.Equal(t, uint64(20_000_000_000), q.AmountOutOne)
	assert.Equal(t, uint64(60_000_000_000), q.AmountOutTwo)
	assert.Equal(t, uint64(1_000_000_000), q.FeeAmount)
	assert.Equal(t, uint64(101_000_000_000), q.TotalDebit)
}

func TestComputeDualRatioBoundaries(t *testing.T) {
	// ratio=0 routes the whole principal to leg two.
	q, r := ComputeDual(10_000_000_000, 2_000_000_000, 1_000_000_000, 0, 9, 9, 9, 0)
	require.Equal(t, result.Success, r)
	assert.Zero(t, q.AmountOutOne)
	assert.Equal(t, uint64(10_000_000_000), q.AmountOutTwo)

	// ratio=10000 routes everything to leg one.
	q, r = ComputeDual(10_000_000_000, 2_000_000_000, 1_000_000_000, 10_000, 9, 9, 9, 0)
	require.Equal(t, result.Success, r)
	assert.Equal(t, uint64(5_000_000_000), q.AmountOutOne)
	assert.Zero(t, q.AmountOutTwo)

	// ratio above the denominator is rejected.
	_, r = ComputeDual(10_000_000_000, 2_000_000_000, 1_000_000_000, 10_001, 9, 9, 9, 0)
	assert.Equal(t, result.BadRatio, r)
}

func TestComputeDualCrossDecimals(t *testing.T) {
	// 6-decimal input split evenly into a 9-decimal and a 6-decimal leg.
	q, r := ComputeDual(10_000_000, 1_000_000_000, 2_000_000_000, 5_000, 6, 9, 6, 0)
	require.Equal(t, result.Success, r)
	assert.Equal(t, uint64(5_000_000_000), q.AmountOutOne)
	assert.Equal(t, uint64(2_500_000), q.AmountOutTwo)
}
