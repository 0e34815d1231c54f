package op

import (
	"github.com/vennlabs/custodiad/internal/core/fixedpoint"
	"github.com/vennlabs/custodiad/internal/core/keylet"
	"github.com/vennlabs/custodiad/internal/core/redemption"
	"github.com/vennlabs/custodiad/internal/core/result"
	"github.com/vennlabs/custodiad/internal/core/types"
)

// CreateRequest records a co-signed intent to redeem against a
// redemption offer. The redeemer signs as actor; the offer's registered
// admin must co-sign. The redeemer's nonce must match their stored
// next-expected value exactly, which makes every (offer, redeemer,
// nonce) key single-use forever. On success the nonce increments, the
// request is recorded as Pending, the offer's running total grows by
// the amount, and the amount moves from the redeemer into the offer's
// escrow account — all in the same commit.
type CreateRequest struct {
	Leg       Leg
	OfferID   uint64
	Redeemer  types.ID
	Amount    uint64
	ExpiresAt int64
	Nonce     uint64
}

func (o *CreateRequest) Kind() Kind      { return KindCreateRequest }
func (o *CreateRequest) Actor() types.ID { return o.Redeemer }

func (o *CreateRequest) Preflight() result.Result {
	if o.Redeemer.IsZero() {
		return result.NullIdentity
	}
	if !o.Leg.Valid() {
		return result.OfferNotFound
	}
	if o.Amount == 0 {
		return result.BadAmount
	}
	return result.Success
}

func (o *CreateRequest) Apply(ctx *Context) result.Result {
	var (
		admin   types.ID
		tokenIn types.ID
		escrow  types.ID
		total   *uint64
	)
	switch o.Leg {
	case SingleLeg:
		offer := ctx.View.Singles.Find(o.OfferID)
		if offer == nil {
			return result.OfferNotFound
		}
		admin, tokenIn = offer.Admin, offer.TokenIn
		escrow = keylet.SingleEscrow(offer.ID)
		total = &offer.RequestedRedemptions
	case DualLeg:
		offer := ctx.View.Duals.Find(o.OfferID)
		if offer == nil {
			return result.OfferNotFound
		}
		admin, tokenIn = offer.Admin, offer.TokenIn
		escrow = keylet.DualEscrow(offer.ID)
		total = &offer.RequestedRedemptions
	default:
		return result.OfferNotFound
	}

	if !ctx.Signed(admin) {
		return result.MissingSigner
	}
	if o.ExpiresAt <= ctx.Now {
		return result.ExpiryInPast
	}
	if o.Nonce != ctx.View.NonceOf(o.Redeemer) {
		return result.NonceMismatch
	}

	key := types.RequestKey{OfferID: o.OfferID, Redeemer: o.Redeemer, Nonce: o.Nonce}
	if _, exists := ctx.View.Request(key); exists {
		return result.RequestReplayed
	}

	sum, ok := fixedpoint.Add(*total, o.Amount)
	if !ok {
		return result.ArithmeticOverflow
	}

	if res := ctx.View.Transfer(o.Redeemer, escrow, tokenIn, o.Amount); res != result.Success {
		return res
	}

	*total = sum
	ctx.View.SetNonce(o.Redeemer, o.Nonce+1)
	ctx.View.PutRequest(redemption.Request{
		Key:       key,
		Amount:    o.Amount,
		ExpiresAt: o.ExpiresAt,
		CreatedAt: ctx.Now,
		Status:    redemption.StatusPending,
	})
	return result.Success
}
