package op

import (
	"github.com/vennlabs/custodiad/internal/core/keylet"
	"github.com/vennlabs/custodiad/internal/core/registry"
	"github.com/vennlabs/custodiad/internal/core/result"
	"github.com/vennlabs/custodiad/internal/core/settlement"
	"github.com/vennlabs/custodiad/internal/core/types"
)

// TakeOffer settles against an exchange offer at its current vector
// price. The taker is debited amountIn plus fee in the input token and
// credited the computed output amount in full; the vault is the direct
// counterparty.
type TakeOffer struct {
	Taker    types.ID
	Venue    Venue
	OfferID  uint64
	AmountIn uint64
}

func (o *TakeOffer) Kind() Kind      { return KindTakeOffer }
func (o *TakeOffer) Actor() types.ID { return o.Taker }

func (o *TakeOffer) Preflight() result.Result {
	if o.Taker.IsZero() {
		return result.NullIdentity
	}
	if !o.Venue.Valid() {
		return result.OfferNotFound
	}
	if o.AmountIn == 0 {
		return result.BadAmount
	}
	return result.Success
}

func (o *TakeOffer) Apply(ctx *Context) result.Result {
	return takeExchange(ctx, o.Venue, o.OfferID, o.AmountIn, o.Taker, types.Zero)
}

// TakeOfferViaIntermediary settles the same way as TakeOffer but routes
// both token movements through a relayer escrow account. The relayer
// must be a registered approver and must co-sign the call; the net
// balance outcome for the taker and the vault is identical to the
// direct form.
type TakeOfferViaIntermediary struct {
	Taker    types.ID
	Relayer  types.ID
	Venue    Venue
	OfferID  uint64
	AmountIn uint64
}

func (o *TakeOfferViaIntermediary) Kind() Kind      { return KindTakeOfferViaIntermediary }
func (o *TakeOfferViaIntermediary) Actor() types.ID { return o.Taker }

func (o *TakeOfferViaIntermediary) Preflight() result.Result {
	if o.Taker.IsZero() || o.Relayer.IsZero() {
		return result.NullIdentity
	}
	if !o.Venue.Valid() {
		return result.OfferNotFound
	}
	if o.AmountIn == 0 {
		return result.BadAmount
	}
	return result.Success
}

func (o *TakeOfferViaIntermediary) Apply(ctx *Context) result.Result {
	if !ctx.View.Authority.IsApprover(o.Relayer) {
		return result.ApproverNotFound
	}
	if !ctx.Signed(o.Relayer) {
		return result.MissingSigner
	}
	return takeExchange(ctx, o.Venue, o.OfferID, o.AmountIn, o.Taker, o.Relayer)
}

// takeExchange prices, quotes, and settles one exchange take. A zero
// relayer settles directly against the vault; a non-zero relayer routes
// both movements through that relayer's escrow account.
func takeExchange(ctx *Context, venue Venue, offerID, amountIn uint64, taker, relayer types.ID) result.Result {
	offer := ctx.venue(venue).Find(offerID)
	if offer == nil {
		return result.OfferNotFound
	}

	price, res := offer.Vectors.PriceAt(ctx.Now)
	if res != result.Success {
		return res
	}

	decimalsIn, res := ctx.View.Decimals(offer.TokenIn)
	if res != result.Success {
		return res
	}
	decimalsOut, res := ctx.View.Decimals(offer.TokenOut)
	if res != result.Success {
		return res
	}

	quote, res := settlement.Compute(amountIn, price, decimalsIn, decimalsOut, offer.FeeBps)
	if res != result.Success {
		return res
	}

	vault := keylet.Vault()
	if res := routedTransfer(ctx, taker, vault, relayer, offer.TokenIn, quote.TotalDebit); res != result.Success {
		return res
	}
	return routedTransfer(ctx, vault, taker, relayer, offer.TokenOut, quote.AmountOut)
}

// Quote prices an exchange take without settling it. Read-only surfaces
// use it for current-price and expected-output queries.
func Quote(view interface {
	Decimals(types.ID) (uint32, result.Result)
}, offer *registry.Offer, amountIn uint64, now int64) (settlement.Quote, result.Result) {
	price, res := offer.Vectors.PriceAt(now)
	if res != result.Success {
		return settlement.Quote{}, res
	}
	decimalsIn, res := view.Decimals(offer.TokenIn)
	if res != result.Success {
		return settlement.Quote{}, res
	}
	decimalsOut, res := view.Decimals(offer.TokenOut)
	if res != result.Success {
		return settlement.Quote{}, res
	}
	return settlement.Compute(amountIn, price, decimalsIn, decimalsOut, offer.FeeBps)
}
