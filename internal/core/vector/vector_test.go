package vector

import (
	"math"
	"testing"

	"github.com/vennlabs/custodiad/internal/core/fixedpoint"
	"github.com/vennlabs/custodiad/internal/core/result"
)

const scale = fixedpoint.PriceScale

func TestAddIssuesMonotonicIDs(t *testing.T) {
	var tbl Table

	id1, r := tbl.Add(100, 100, scale, 0, 60)
	if r != result.Success || id1 != 1 {
		t.Fatalf("first add: id=%d r=%v", id1, r)
	}
	id2, r := tbl.Add(100, 200, scale, 0, 60)
	if r != result.Success || id2 != 2 {
		t.Fatalf("second add: id=%d r=%v", id2, r)
	}
	if r := tbl.Delete(id1); r != result.Success {
		t.Fatalf("delete: %v", r)
	}
	// Deleted ids are never reissued even though the slot recycles.
	id3, r := tbl.Add(100, 300, scale, 0, 60)
	if r != result.Success || id3 != 3 {
		t.Fatalf("add after delete: id=%d r=%v", id3, r)
	}
	if tbl.Live() != 2 {
		t.Fatalf("live = %d, want 2", tbl.Live())
	}
}

func TestAddValidation(t *testing.T) {
	var tbl Table
	if _, r := tbl.Add(0, 0, scale, 0, 0); r != result.BadInterval {
		t.Fatalf("zero interval: %v", r)
	}
	if _, r := tbl.Add(0, 0, scale, 0, -5); r != result.BadInterval {
		t.Fatalf("negative interval: %v", r)
	}
	if _, r := tbl.Add(0, 0, 0, 0, 60); r != result.BadPrice {
		t.Fatalf("zero base price: %v", r)
	}
	// A rate that erases the entire price within one interval is invalid.
	if _, r := tbl.Add(0, 0, scale, -int64(scale), int64(fixedpoint.SecondsPerYear)); r != result.BadPrice {
		t.Fatalf("total-wipe rate: %v", r)
	}
	// MinInt64 has no positive counterpart; rate*interval would wrap to
	// an arbitrary value instead of overflowing loudly.
	if _, r := tbl.Add(0, 0, scale, math.MinInt64, 2); r != result.ArithmeticOverflow {
		t.Fatalf("min int64 rate: %v", r)
	}
	if _, r := tbl.Add(0, 0, scale, math.MaxInt64, 2); r != result.ArithmeticOverflow {
		t.Fatalf("max int64 rate: %v", r)
	}
}

func TestTableCapacity(t *testing.T) {
	var tbl Table
	for i := 0; i < MaxVectors; i++ {
		if _, r := tbl.Add(0, int64(i), scale, 0, 60); r != result.Success {
			t.Fatalf("add %d: %v", i, r)
		}
	}
	if _, r := tbl.Add(0, 99, scale, 0, 60); r != result.VectorTableFull {
		t.Fatalf("over-capacity add: %v", r)
	}
	if r := tbl.DeleteAll(); r != result.Success {
		t.Fatalf("delete all: %v", r)
	}
	if tbl.Live() != 0 {
		t.Fatalf("live after DeleteAll = %d", tbl.Live())
	}
	// DeleteAll on an empty table is a no-op success.
	if r := tbl.DeleteAll(); r != result.Success {
		t.Fatalf("delete all on empty: %v", r)
	}
	// DeleteAll then Add yields exactly one live vector with a fresh id.
	id, r := tbl.Add(0, 0, scale, 0, 60)
	if r != result.Success || id != MaxVectors+1 {
		t.Fatalf("add after DeleteAll: id=%d r=%v", id, r)
	}
	if tbl.Live() != 1 {
		t.Fatalf("live = %d, want 1", tbl.Live())
	}
}

func TestActiveAt(t *testing.T) {
	var tbl Table
	mustAdd := func(anchor int64) uint64 {
		t.Helper()
		id, r := tbl.Add(0, anchor, scale, 0, 60)
		if r != result.Success {
			t.Fatalf("add anchor=%d: %v", anchor, r)
		}
		return id
	}

	early := mustAdd(100)
	late := mustAdd(200)
	future := mustAdd(10_000)

	if v := tbl.ActiveAt(50); v != nil {
		t.Fatalf("vector active before all anchors: %d", v.ID)
	}
	if v := tbl.ActiveAt(150); v == nil || v.ID != early {
		t.Fatal("early vector should be active at 150")
	}
	if v := tbl.ActiveAt(500); v == nil || v.ID != late {
		t.Fatal("late vector should shadow the early one")
	}
	if v := tbl.ActiveAt(20_000); v == nil || v.ID != future {
		t.Fatal("future vector should activate once reached")
	}

	// Same anchor: the larger id wins.
	var tie Table
	first, _ := tie.Add(0, 100, scale, 0, 60)
	second, _ := tie.Add(0, 100, 2*scale, 0, 60)
	if v := tie.ActiveAt(100); v == nil || v.ID != second {
		t.Fatalf("tie should go to the larger id (got %v, ids %d/%d)", v, first, second)
	}
}

func TestPriceAt(t *testing.T) {
	// 100% annualized over one-year intervals doubles the price each
	// interval: growth factor is exactly 2.0 at scale.
	year := int64(fixedpoint.SecondsPerYear)
	var tbl Table
	if _, r := tbl.Add(0, 0, 3*scale, int64(scale), year); r != result.Success {
		t.Fatalf("add: %v", r)
	}

	tests := []struct {
		now  int64
		want uint64
	}{
		{0, 3 * scale},
		{year - 1, 3 * scale},
		{year, 6 * scale},
		{2*year + 10, 12 * scale},
	}
	for _, tt := range tests {
		got, r := tbl.PriceAt(tt.now)
		if r != result.Success {
			t.Fatalf("PriceAt(%d): %v", tt.now, r)
		}
		if got != tt.want {
			t.Fatalf("PriceAt(%d) = %d, want %d", tt.now, got, tt.want)
		}
	}

	// Deterministic: identical inputs reproduce identical prices.
	a, _ := tbl.PriceAt(year)
	b, _ := tbl.PriceAt(year)
	if a != b {
		t.Fatalf("PriceAt not reproducible: %d != %d", a, b)
	}
}

func TestPriceAtNoActiveVector(t *testing.T) {
	var tbl Table
	if _, r := tbl.PriceAt(100); r != result.NoActiveVector {
		t.Fatalf("empty table: %v", r)
	}
	if _, r := tbl.Add(0, 500, scale, 0, 60); r != result.Success {
		t.Fatal("add failed")
	}
	if _, r := tbl.PriceAt(100); r != result.NoActiveVector {
		t.Fatalf("future-only table: %v", r)
	}
}

func TestPriceAtOverflow(t *testing.T) {
	year := int64(fixedpoint.SecondsPerYear)
	var tbl Table
	// Doubling every interval overflows 64 bits well before 64 intervals.
	if _, r := tbl.Add(0, 0, scale, int64(scale), year); r != result.Success {
		t.Fatal("add failed")
	}
	if _, r := tbl.PriceAt(100 * year); r != result.ArithmeticOverflow {
		t.Fatalf("overflow not signaled: %v", r)
	}
}

func TestPriceAtMonotoneForNonNegativeRate(t *testing.T) {
	year := int64(fixedpoint.SecondsPerYear)
	var tbl Table
	// 50% annualized compounded over ~monthly intervals.
	interval := year / 12
	if _, r := tbl.Add(0, 0, 7*scale/2, int64(scale)/2, interval); r != result.Success {
		t.Fatal("add failed")
	}
	prev := uint64(0)
	for now := int64(0); now < 3*year; now += interval / 2 {
		got, r := tbl.PriceAt(now)
		if r != result.Success {
			t.Fatalf("PriceAt(%d): %v", now, r)
		}
		if got < prev {
			t.Fatalf("price decreased at %d: %d < %d", now, got, prev)
		}
		prev = got
	}
}
