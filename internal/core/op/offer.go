package op

import (
	"github.com/vennlabs/custodiad/internal/core/fixedpoint"
	"github.com/vennlabs/custodiad/internal/core/result"
	"github.com/vennlabs/custodiad/internal/core/types"
)

// MakeOffer opens an exchange venue slot for a token pair.
type MakeOffer struct {
	Caller   types.ID
	Venue    Venue
	TokenIn  types.ID
	TokenOut types.ID
	FeeBps   uint32
}

func (o *MakeOffer) Kind() Kind      { return KindMakeOffer }
func (o *MakeOffer) Actor() types.ID { return o.Caller }

func (o *MakeOffer) Preflight() result.Result {
	if o.Caller.IsZero() {
		return result.NullIdentity
	}
	if !o.Venue.Valid() {
		return result.OfferNotFound
	}
	if !validFee(o.FeeBps) {
		return result.BadFee
	}
	return result.Success
}

func (o *MakeOffer) Apply(ctx *Context) result.Result {
	if !ctx.View.Authority.IsOwner(o.Caller) {
		return result.NotOwner
	}
	_, res := ctx.venue(o.Venue).Make(o.TokenIn, o.TokenOut, o.FeeBps)
	return res
}

// UpdateOfferFee changes an offer's fee in place.
type UpdateOfferFee struct {
	Caller  types.ID
	Venue   Venue
	OfferID uint64
	FeeBps  uint32
}

func (o *UpdateOfferFee) Kind() Kind      { return KindUpdateOfferFee }
func (o *UpdateOfferFee) Actor() types.ID { return o.Caller }

func (o *UpdateOfferFee) Preflight() result.Result {
	if o.Caller.IsZero() {
		return result.NullIdentity
	}
	if !o.Venue.Valid() {
		return result.OfferNotFound
	}
	if !validFee(o.FeeBps) {
		return result.BadFee
	}
	return result.Success
}

func (o *UpdateOfferFee) Apply(ctx *Context) result.Result {
	if !ctx.View.Authority.IsOwner(o.Caller) {
		return result.NotOwner
	}
	return ctx.venue(o.Venue).UpdateFee(o.OfferID, o.FeeBps)
}

// CloseOffer zeroes an offer slot. The slot becomes reusable; the id
// does not.
type CloseOffer struct {
	Caller  types.ID
	Venue   Venue
	OfferID uint64
}

func (o *CloseOffer) Kind() Kind      { return KindCloseOffer }
func (o *CloseOffer) Actor() types.ID { return o.Caller }

func (o *CloseOffer) Preflight() result.Result {
	if o.Caller.IsZero() {
		return result.NullIdentity
	}
	if !o.Venue.Valid() {
		return result.OfferNotFound
	}
	return result.Success
}

func (o *CloseOffer) Apply(ctx *Context) result.Result {
	if !ctx.View.Authority.IsOwner(o.Caller) {
		return result.NotOwner
	}
	return ctx.venue(o.Venue).Close(o.OfferID)
}

// AddVector schedules a pricing entry on an offer. The engine clock at
// apply time becomes the vector's scheduling timestamp; the pricing
// epoch anchor is the caller's to choose.
type AddVector struct {
	Caller    types.ID
	Venue     Venue
	OfferID   uint64
	AnchorAt  int64
	BasePrice uint64
	Rate      int64
	Interval  int64
}

func (o *AddVector) Kind() Kind      { return KindAddVector }
func (o *AddVector) Actor() types.ID { return o.Caller }

func (o *AddVector) Preflight() result.Result {
	if o.Caller.IsZero() {
		return result.NullIdentity
	}
	if !o.Venue.Valid() {
		return result.OfferNotFound
	}
	if o.Interval <= 0 {
		return result.BadInterval
	}
	if o.BasePrice == 0 {
		return result.BadPrice
	}
	return result.Success
}

func (o *AddVector) Apply(ctx *Context) result.Result {
	if !ctx.View.Authority.IsOwner(o.Caller) {
		return result.NotOwner
	}
	_, res := ctx.venue(o.Venue).AddVector(o.OfferID, ctx.Now, o.AnchorAt, o.BasePrice, o.Rate, o.Interval)
	return res
}

// DeleteVector removes one pricing entry.
type DeleteVector struct {
	Caller   types.ID
	Venue    Venue
	OfferID  uint64
	VectorID uint64
}

func (o *DeleteVector) Kind() Kind      { return KindDeleteVector }
func (o *DeleteVector) Actor() types.ID { return o.Caller }

func (o *DeleteVector) Preflight() result.Result {
	if o.Caller.IsZero() {
		return result.NullIdentity
	}
	if !o.Venue.Valid() {
		return result.OfferNotFound
	}
	return result.Success
}

func (o *DeleteVector) Apply(ctx *Context) result.Result {
	if !ctx.View.Authority.IsOwner(o.Caller) {
		return result.NotOwner
	}
	return ctx.venue(o.Venue).DeleteVector(o.OfferID, o.VectorID)
}

// DeleteAllVectors clears an offer's whole pricing schedule. Succeeds
// even when the schedule is already empty.
type DeleteAllVectors struct {
	Caller  types.ID
	Venue   Venue
	OfferID uint64
}

func (o *DeleteAllVectors) Kind() Kind      { return KindDeleteAllVectors }
func (o *DeleteAllVectors) Actor() types.ID { return o.Caller }

func (o *DeleteAllVectors) Preflight() result.Result {
	if o.Caller.IsZero() {
		return result.NullIdentity
	}
	if !o.Venue.Valid() {
		return result.OfferNotFound
	}
	return result.Success
}

func (o *DeleteAllVectors) Apply(ctx *Context) result.Result {
	if !ctx.View.Authority.IsOwner(o.Caller) {
		return result.NotOwner
	}
	return ctx.venue(o.Venue).DeleteAllVectors(o.OfferID)
}

func validFee(feeBps uint32) bool {
	return uint64(feeBps) <= fixedpoint.BpsDenom
}
