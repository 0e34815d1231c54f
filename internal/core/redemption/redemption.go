// Package redemption implements the fixed-capacity redemption offer
// registries (single-leg and dual-leg) and the request records produced
// by the nonce-protected redemption-request workflow.
//
// Redemption offers settle at a fixed price inside a time window rather
// than against a pricing-vector schedule. Each offer carries its
// registered redemption admin (the mandatory co-signer for requests) and
// the running total of accepted redemption requests; the total only ever
// grows from this core's perspective.
package redemption

import (
	"github.com/vennlabs/custodiad/internal/core/fixedpoint"
	"github.com/vennlabs/custodiad/internal/core/result"
	"github.com/vennlabs/custodiad/internal/core/types"
)

// MaxOffers is the per-kind redemption offer capacity.
const MaxOffers = 50

// Status is the lifecycle state of a redemption request. This core only
// ever creates Pending requests; the later transitions are decided by the
// off-chain approval flow and written back from outside.
type Status uint8

const (
	StatusPending Status = iota
	StatusApproved
	StatusRejected
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusApproved:
		return "approved"
	case StatusRejected:
		return "rejected"
	case StatusExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// SingleOffer is a single-leg redemption offer: one input token redeemed
// for one output token at a fixed price inside [StartAt, EndAt).
// ID 0 marks a free slot.
type SingleOffer struct {
	ID       uint64
	TokenIn  types.ID
	TokenOut types.ID
	Price    uint64
	FeeBps   uint32
	StartAt  int64
	EndAt    int64
	Admin    types.ID

	// RequestedRedemptions accumulates the amounts of accepted requests.
	// It is never decremented by this core.
	RequestedRedemptions uint64
}

// IsFree reports whether the slot is unoccupied.
func (o *SingleOffer) IsFree() bool {
	return o.ID == 0
}

// InWindow reports whether the offer is takeable at the given instant.
func (o *SingleOffer) InWindow(now int64) bool {
	return now >= o.StartAt && now < o.EndAt
}

// DualOffer is a dual-leg redemption offer: one input token redeemed into
// two output tokens, the principal split by RatioBps (share to leg one).
type DualOffer struct {
	ID          uint64
	TokenIn     types.ID
	TokenOutOne types.ID
	TokenOutTwo types.ID
	PriceOne    uint64
	PriceTwo    uint64
	RatioBps    uint32
	FeeBps      uint32
	StartAt     int64
	EndAt       int64
	Admin       types.ID

	RequestedRedemptions uint64
}

// IsFree reports whether the slot is unoccupied.
func (o *DualOffer) IsFree() bool {
	return o.ID == 0
}

// InWindow reports whether the offer is takeable at the given instant.
func (o *DualOffer) InWindow(now int64) bool {
	return now >= o.StartAt && now < o.EndAt
}

// Request is an accepted redemption request. Records are immutable from
// this core's perspective once created: the (offer, redeemer, nonce) key
// is consumed forever.
type Request struct {
	Key       types.RequestKey
	Amount    uint64
	ExpiresAt int64
	CreatedAt int64
	Status    Status
}

// SingleRegistry is the fixed array of single-leg redemption offers plus
// its monotonic id counter. Same slot discipline as the exchange venues:
// first free slot wins, ids are never reused.
type SingleRegistry struct {
	Offers  [MaxOffers]SingleOffer
	Counter uint64
}

// Make allocates a slot for a new single-leg redemption offer.
func (r *SingleRegistry) Make(tokenIn, tokenOut, admin types.ID, price uint64, feeBps uint32, startAt, endAt int64) (uint64, result.Result) {
	if tokenIn.IsZero() || tokenOut.IsZero() || admin.IsZero() {
		return 0, result.NullIdentity
	}
	if tokenIn == tokenOut {
		return 0, result.SameTokenPair
	}
	if price == 0 {
		return 0, result.BadPrice
	}
	if uint64(feeBps) > fixedpoint.BpsDenom {
		return 0, result.BadFee
	}
	if startAt >= endAt {
		return 0, result.BadWindow
	}
	for i := range r.Offers {
		if r.Offers[i].IsFree() {
			r.Counter++
			r.Offers[i] = SingleOffer{
				ID:       r.Counter,
				TokenIn:  tokenIn,
				TokenOut: tokenOut,
				Price:    price,
				FeeBps:   feeBps,
				StartAt:  startAt,
				EndAt:    endAt,
				Admin:    admin,
			}
			return r.Counter, result.Success
		}
	}
	return 0, result.RegistryFull
}

// Find returns the live offer with the given id, or nil.
func (r *SingleRegistry) Find(id uint64) *SingleOffer {
	if id == 0 {
		return nil
	}
	for i := range r.Offers {
		if r.Offers[i].ID == id {
			return &r.Offers[i]
		}
	}
	return nil
}

// UpdateFee changes the fee of a live offer.
func (r *SingleRegistry) UpdateFee(id uint64, feeBps uint32) result.Result {
	if uint64(feeBps) > fixedpoint.BpsDenom {
		return result.BadFee
	}
	offer := r.Find(id)
	if offer == nil {
		return result.OfferNotFound
	}
	offer.FeeBps = feeBps
	return result.Success
}

// Close zeroes the offer's slot. The counter is untouched.
func (r *SingleRegistry) Close(id uint64) result.Result {
	offer := r.Find(id)
	if offer == nil {
		return result.OfferNotFound
	}
	*offer = SingleOffer{}
	return result.Success
}

// Live returns the number of occupied slots.
func (r *SingleRegistry) Live() int {
	n := 0
	for i := range r.Offers {
		if !r.Offers[i].IsFree() {
			n++
		}
	}
	return n
}

// DualRegistry is the fixed array of dual-leg redemption offers.
type DualRegistry struct {
	Offers  [MaxOffers]DualOffer
	Counter uint64
}

// Make allocates a slot for a new dual-leg redemption offer. The split
// ratio is validated here: 10001 basis points is rejected at creation,
// while the 0 and 10000 boundaries are legal (everything to one leg).
func (r *DualRegistry) Make(tokenIn, tokenOutOne, tokenOutTwo, admin types.ID,
	priceOne, priceTwo uint64, ratioBps, feeBps uint32, startAt, endAt int64) (uint64, result.Result) {

	if tokenIn.IsZero() || tokenOutOne.IsZero() || tokenOutTwo.IsZero() || admin.IsZero() {
		return 0, result.NullIdentity
	}
	if priceOne == 0 || priceTwo == 0 {
		return 0, result.BadPrice
	}
	if uint64(ratioBps) > fixedpoint.BpsDenom {
		return 0, result.BadRatio
	}
	if uint64(feeBps) > fixedpoint.BpsDenom {
		return 0, result.BadFee
	}
	if startAt >= endAt {
		return 0, result.BadWindow
	}
	for i := range r.Offers {
		if r.Offers[i].IsFree() {
			r.Counter++
			r.Offers[i] = DualOffer{
				ID:          r.Counter,
				TokenIn:     tokenIn,
				TokenOutOne: tokenOutOne,
				TokenOutTwo: tokenOutTwo,
				PriceOne:    priceOne,
				PriceTwo:    priceTwo,
				RatioBps:    ratioBps,
				FeeBps:      feeBps,
				StartAt:     startAt,
				EndAt:       endAt,
				Admin:       admin,
			}
			return r.Counter, result.Success
		}
	}
	return 0, result.RegistryFull
}

// Find returns the live offer with the given id, or nil.
func (r *DualRegistry) Find(id uint64) *DualOffer {
	if id == 0 {
		return nil
	}
	for i := range r.Offers {
		if r.Offers[i].ID == id {
			return &r.Offers[i]
		}
	}
	return nil
}

// UpdateFee changes the fee of a live offer.
func (r *DualRegistry) UpdateFee(id uint64, feeBps uint32) result.Result {
	if uint64(feeBps) > fixedpoint.BpsDenom {
		return result.BadFee
	}
	offer := r.Find(id)
	if offer == nil {
		return result.OfferNotFound
	}
	offer.FeeBps = feeBps
	return result.Success
}

// Close zeroes the offer's slot. The counter is untouched.
func (r *DualRegistry) Close(id uint64) result.Result {
	offer := r.Find(id)
	if offer == nil {
		return result.OfferNotFound
	}
	*offer = DualOffer{}
	return result.Success
}

// Live returns the number of occupied slots.
func (r *DualRegistry) Live() int {
	n := 0
	for i := range r.Offers {
		if !r.Offers[i].IsFree() {
			n++
		}
	}
	return n
}
