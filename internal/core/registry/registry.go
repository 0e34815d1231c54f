// Package registry implements the fixed-capacity offer registry backing
// both exchange venues. The sell-side and buy-side venues are structurally
// identical registries with reversed exchange direction; each holds up to
// ten offers in a flat array, with slot liveness marked by a nonzero id.
package registry

import (
	"github.com/vennlabs/custodiad/internal/core/fixedpoint"
	"github.com/vennlabs/custodiad/internal/core/result"
	"github.com/vennlabs/custodiad/internal/core/types"
	"github.com/vennlabs/custodiad/internal/core/vector"
)

// MaxOffers is the per-venue offer capacity.
const MaxOffers = 10

// Offer is one registered token-pair exchange venue entry. ID 0 marks a
// free slot. TokenIn is what the taker pays, TokenOut what the taker
// receives; the buy-side registry holds offers with the direction
// reversed but the same invariants.
type Offer struct {
	ID       uint64
	TokenIn  types.ID
	TokenOut types.ID
	FeeBps   uint32
	Vectors  vector.Table
}

// IsFree reports whether the slot is unoccupied.
func (o *Offer) IsFree() bool {
	return o.ID == 0
}

// Registry is a fixed array of offers plus the venue's monotonic id
// counter. Ids are 1-based and never reused for the life of the registry,
// even though array slots recycle after Close.
type Registry struct {
	Offers  [MaxOffers]Offer
	Counter uint64
}

// Make allocates the first free slot for a new offer and issues its id.
func (r *Registry) Make(tokenIn, tokenOut types.ID, feeBps uint32) (uint64, result.Result) {
	if tokenIn.IsZero() || tokenOut.IsZero() {
		return 0, result.NullIdentity
	}
	if tokenIn == tokenOut {
		return 0, result.SameTokenPair
	}
	if uint64(feeBps) > fixedpoint.BpsDenom {
		return 0, result.BadFee
	}
	for i := range r.Offers {
		if r.Offers[i].IsFree() {
			r.Counter++
			r.Offers[i] = Offer{
				ID:       r.Counter,
				TokenIn:  tokenIn,
				TokenOut: tokenOut,
				FeeBps:   feeBps,
			}
			return r.Counter, result.Success
		}
	}
	return 0, result.RegistryFull
}

// Find returns the live offer with the given id, or nil. Id 0 never
// matches: it is the free-slot sentinel, not an offer.
func (r *Registry) Find(id uint64) *Offer {
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
func (r *Registry) UpdateFee(id uint64, feeBps uint32) result.Result {
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

// Close zeroes the offer's entire slot, vector table included. The venue
// counter is untouched, so a closed id can never come back.
func (r *Registry) Close(id uint64) result.Result {
	offer := r.Find(id)
	if offer == nil {
		return result.OfferNotFound
	}
	*offer = Offer{}
	return result.Success
}

// AddVector inserts a pricing vector into the offer's schedule.
func (r *Registry) AddVector(id uint64, now, anchorAt int64, basePrice uint64, rate, interval int64) (uint64, result.Result) {
	offer := r.Find(id)
	if offer == nil {
		return 0, result.OfferNotFound
	}
	return offer.Vectors.Add(now, anchorAt, basePrice, rate, interval)
}

// DeleteVector removes one pricing vector from the offer's schedule.
func (r *Registry) DeleteVector(id, vectorID uint64) result.Result {
	offer := r.Find(id)
	if offer == nil {
		return result.OfferNotFound
	}
	return offer.Vectors.Delete(vectorID)
}

// DeleteAllVectors clears the offer's whole schedule.
func (r *Registry) DeleteAllVectors(id uint64) result.Result {
	offer := r.Find(id)
	if offer == nil {
		return result.OfferNotFound
	}
	return offer.Vectors.DeleteAll()
}

// PriceAt returns the offer's current price. Pure.
func (r *Registry) PriceAt(id uint64, now int64) (uint64, result.Result) {
	offer := r.Find(id)
	if offer == nil {
		return 0, result.OfferNotFound
	}
	return offer.Vectors.PriceAt(now)
}

// Live returns the number of occupied slots.
func (r *Registry) Live() int {
	n := 0
	for i := range r.Offers {
		if !r.Offers[i].IsFree() {
			n++
		}
	}
	return n
}
