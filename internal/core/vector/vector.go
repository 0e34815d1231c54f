// Package vector implements the dynamic-pricing schedule attached to an
// offer: a fixed table of pricing vectors and the deterministic
// current-price computation derived from them.
package vector

import (
	"math"

	"github.com/vennlabs/custodiad/internal/core/fixedpoint"
	"github.com/vennlabs/custodiad/internal/core/result"
)

// MaxVectors is the capacity of an offer's vector table.
const MaxVectors = 10

// Vector is one dynamic-pricing schedule entry. ID 0 marks a free slot.
//
// ScheduledAt is the insertion time, recorded independently of the
// pricing-epoch anchor so bulk deletions can be ordered by insertion.
type Vector struct {
	ID          uint64
	ScheduledAt int64
	AnchorAt    int64
	BasePrice   uint64
	Rate        int64
	Interval    int64
}

// IsFree reports whether the slot is unoccupied.
func (v *Vector) IsFree() bool {
	return v.ID == 0
}

// Table is an offer's vector schedule. Vector ids are issued from a
// per-offer monotonic counter and never reused, even after deletion.
type Table struct {
	Slots   [MaxVectors]Vector
	Counter uint64
}

// Add validates and inserts a pricing vector into the first free slot.
// Returns the issued vector id.
func (t *Table) Add(now, anchorAt int64, basePrice uint64, rate, interval int64) (uint64, result.Result) {
	if interval <= 0 {
		return 0, result.BadInterval
	}
	if basePrice == 0 {
		return 0, result.BadPrice
	}
	if _, r := growthFactor(rate, interval); r != result.Success {
		return 0, r
	}
	for i := range t.Slots {
		if t.Slots[i].IsFree() {
			t.Counter++
			t.Slots[i] = Vector{
				ID:          t.Counter,
				ScheduledAt: now,
				AnchorAt:    anchorAt,
				BasePrice:   basePrice,
				Rate:        rate,
				Interval:    interval,
			}
			return t.Counter, result.Success
		}
	}
	return 0, result.VectorTableFull
}

// Delete zeroes the slot holding the given vector id.
func (t *Table) Delete(vectorID uint64) result.Result {
	if vectorID == 0 {
		return result.VectorNotFound
	}
	for i := range t.Slots {
		if t.Slots[i].ID == vectorID {
			t.Slots[i] = Vector{}
			return result.Success
		}
	}
	return result.VectorNotFound
}

// DeleteAll zeroes every occupied slot. Deleting an already-empty table
// succeeds as a no-op. The counter is untouched so ids stay unique.
func (t *Table) DeleteAll() result.Result {
	for i := range t.Slots {
		t.Slots[i] = Vector{}
	}
	return result.Success
}

// Live returns the number of occupied slots.
func (t *Table) Live() int {
	n := 0
	for i := range t.Slots {
		if !t.Slots[i].IsFree() {
			n++
		}
	}
	return n
}

// ActiveAt selects the active vector at the given instant: among live
// vectors whose anchor is not in the future, the one with the latest
// anchor wins, ties broken by the largest vector id. Returns nil when no
// vector is active.
func (t *Table) ActiveAt(now int64) *Vector {
	var active *Vector
	for i := range t.Slots {
		v := &t.Slots[i]
		if v.IsFree() || v.AnchorAt > now {
			continue
		}
		if active == nil || v.AnchorAt > active.AnchorAt ||
			(v.AnchorAt == active.AnchorAt && v.ID > active.ID) {
			active = v
		}
	}
	return active
}

// PriceAt computes the current price: the active vector's base price
// compounded once per elapsed whole interval at the per-interval growth
// derived from the annualized rate. Pure with respect to the table; any
// overflow aborts with an arithmetic failure rather than wrapping.
func (t *Table) PriceAt(now int64) (uint64, result.Result) {
	active := t.ActiveAt(now)
	if active == nil {
		return 0, result.NoActiveVector
	}
	return active.priceAt(now)
}

func (v *Vector) priceAt(now int64) (uint64, result.Result) {
	factor, r := growthFactor(v.Rate, v.Interval)
	if r != result.Success {
		return 0, r
	}
	elapsed := uint64((now - v.AnchorAt) / v.Interval)
	growth, ok := fixedpoint.PowScaled(factor, elapsed)
	if !ok {
		return 0, result.ArithmeticOverflow
	}
	price, ok := fixedpoint.MulDiv(v.BasePrice, growth, fixedpoint.PriceScale)
	if !ok {
		return 0, result.ArithmeticOverflow
	}
	if price == 0 {
		// A negative rate can decay the price to nothing; a zero price
		// can never settle an exchange.
		return 0, result.ArithmeticOverflow
	}
	return price, result.Success
}

// growthFactor converts an annualized scale-1e9 rate into the scale-1e9
// per-interval compounding factor. The factor must stay positive: a rate
// that wipes out the whole price in one interval is rejected up front.
func growthFactor(rate, interval int64) (uint64, result.Result) {
	// absInt64 cannot represent -MinInt64, so the guard below would let
	// the product wrap.
	if rate == math.MinInt64 {
		return 0, result.ArithmeticOverflow
	}
	if rate != 0 && absInt64(rate) > math.MaxInt64/interval {
		return 0, result.ArithmeticOverflow
	}
	perInterval := rate * interval / int64(fixedpoint.SecondsPerYear)
	factor := int64(fixedpoint.PriceScale) + perInterval
	if factor <= 0 {
		return 0, result.BadPrice
	}
	return uint64(factor), result.Success
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
