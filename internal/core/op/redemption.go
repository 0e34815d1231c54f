package op

import (
	"github.com/vennlabs/custodiad/internal/core/keylet"
	"github.com/vennlabs/custodiad/internal/core/result"
	"github.com/vennlabs/custodiad/internal/core/settlement"
	"github.com/vennlabs/custodiad/internal/core/types"
)

// MakeSingleRedemption opens a single-leg redemption offer: a fixed
// price, a redemption window, and the admin identity that co-signs
// requests against it.
type MakeSingleRedemption struct {
	Caller   types.ID
	TokenIn  types.ID
	TokenOut types.ID
	Admin    types.ID
	Price    uint64
	FeeBps   uint32
	StartAt  int64
	EndAt    int64
}

func (o *MakeSingleRedemption) Kind() Kind      { return KindMakeSingleRedemption }
func (o *MakeSingleRedemption) Actor() types.ID { return o.Caller }

func (o *MakeSingleRedemption) Preflight() result.Result {
	if o.Caller.IsZero() {
		return result.NullIdentity
	}
	if !validFee(o.FeeBps) {
		return result.BadFee
	}
	return result.Success
}

func (o *MakeSingleRedemption) Apply(ctx *Context) result.Result {
	if !ctx.View.Authority.IsOwner(o.Caller) {
		return result.NotOwner
	}
	_, res := ctx.View.Singles.Make(o.TokenIn, o.TokenOut, o.Admin, o.Price, o.FeeBps, o.StartAt, o.EndAt)
	return res
}

// UpdateSingleRedemptionFee changes a single-leg offer's fee.
type UpdateSingleRedemptionFee struct {
	Caller  types.ID
	OfferID uint64
	FeeBps  uint32
}

func (o *UpdateSingleRedemptionFee) Kind() Kind      { return KindUpdateSingleRedemptionFee }
func (o *UpdateSingleRedemptionFee) Actor() types.ID { return o.Caller }

func (o *UpdateSingleRedemptionFee) Preflight() result.Result {
	if o.Caller.IsZero() {
		return result.NullIdentity
	}
	if !validFee(o.FeeBps) {
		return result.BadFee
	}
	return result.Success
}

func (o *UpdateSingleRedemptionFee) Apply(ctx *Context) result.Result {
	if !ctx.View.Authority.IsOwner(o.Caller) {
		return result.NotOwner
	}
	return ctx.View.Singles.UpdateFee(o.OfferID, o.FeeBps)
}

// CloseSingleRedemption zeroes a single-leg offer slot.
type CloseSingleRedemption struct {
	Caller  types.ID
	OfferID uint64
}

func (o *CloseSingleRedemption) Kind() Kind      { return KindCloseSingleRedemption }
func (o *CloseSingleRedemption) Actor() types.ID { return o.Caller }

func (o *CloseSingleRedemption) Preflight() result.Result {
	if o.Caller.IsZero() {
		return result.NullIdentity
	}
	return result.Success
}

func (o *CloseSingleRedemption) Apply(ctx *Context) result.Result {
	if !ctx.View.Authority.IsOwner(o.Caller) {
		return result.NotOwner
	}
	return ctx.View.Singles.Close(o.OfferID)
}

// TakeSingleRedemption settles immediately against a single-leg offer
// at its fixed price, inside its window. A non-zero relayer routes the
// movements through the relayer's escrow, same as the exchange form.
type TakeSingleRedemption struct {
	Taker    types.ID
	Relayer  types.ID
	OfferID  uint64
	AmountIn uint64
}

func (o *TakeSingleRedemption) Kind() Kind      { return KindTakeSingleRedemption }
func (o *TakeSingleRedemption) Actor() types.ID { return o.Taker }

func (o *TakeSingleRedemption) Preflight() result.Result {
	if o.Taker.IsZero() {
		return result.NullIdentity
	}
	if o.AmountIn == 0 {
		return result.BadAmount
	}
	return result.Success
}

func (o *TakeSingleRedemption) Apply(ctx *Context) result.Result {
	offer := ctx.View.Singles.Find(o.OfferID)
	if offer == nil {
		return result.OfferNotFound
	}
	if !offer.InWindow(ctx.Now) {
		return result.WindowClosed
	}
	if res := checkRelayer(ctx, o.Relayer); res != result.Success {
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
	quote, res := settlement.Compute(o.AmountIn, offer.Price, decimalsIn, decimalsOut, offer.FeeBps)
	if res != result.Success {
		return res
	}

	if res := routedTransfer(ctx, o.Taker, keylet.Vault(), o.Relayer, offer.TokenIn, quote.TotalDebit); res != result.Success {
		return res
	}
	return routedTransfer(ctx, keylet.Vault(), o.Taker, o.Relayer, offer.TokenOut, quote.AmountOut)
}

// MakeDualRedemption opens a dual-leg redemption offer: one input token
// redeemed into two output tokens under a basis-point split ratio.
type MakeDualRedemption struct {
	Caller      types.ID
	TokenIn     types.ID
	TokenOutOne types.ID
	TokenOutTwo types.ID
	Admin       types.ID
	PriceOne    uint64
	PriceTwo    uint64
	RatioBps    uint32
	FeeBps      uint32
	StartAt     int64
	EndAt       int64
}

func (o *MakeDualRedemption) Kind() Kind      { return KindMakeDualRedemption }
func (o *MakeDualRedemption) Actor() types.ID { return o.Caller }

func (o *MakeDualRedemption) Preflight() result.Result {
	if o.Caller.IsZero() {
		return result.NullIdentity
	}
	if !validFee(o.FeeBps) {
		return result.BadFee
	}
	return result.Success
}

func (o *MakeDualRedemption) Apply(ctx *Context) result.Result {
	if !ctx.View.Authority.IsOwner(o.Caller) {
		return result.NotOwner
	}
	_, res := ctx.View.Duals.Make(o.TokenIn, o.TokenOutOne, o.TokenOutTwo, o.Admin,
		o.PriceOne, o.PriceTwo, o.RatioBps, o.FeeBps, o.StartAt, o.EndAt)
	return res
}

// UpdateDualRedemptionFee changes a dual-leg offer's fee.
type UpdateDualRedemptionFee struct {
	Caller  types.ID
	OfferID uint64
	FeeBps  uint32
}

func (o *UpdateDualRedemptionFee) Kind() Kind      { return KindUpdateDualRedemptionFee }
func (o *UpdateDualRedemptionFee) Actor() types.ID { return o.Caller }

func (o *UpdateDualRedemptionFee) Preflight() result.Result {
	if o.Caller.IsZero() {
		return result.NullIdentity
	}
	if !validFee(o.FeeBps) {
		return result.BadFee
	}
	return result.Success
}

func (o *UpdateDualRedemptionFee) Apply(ctx *Context) result.Result {
	if !ctx.View.Authority.IsOwner(o.Caller) {
		return result.NotOwner
	}
	return ctx.View.Duals.UpdateFee(o.OfferID, o.FeeBps)
}

// CloseDualRedemption zeroes a dual-leg offer slot.
type CloseDualRedemption struct {
	Caller  types.ID
	OfferID uint64
}

func (o *CloseDualRedemption) Kind() Kind      { return KindCloseDualRedemption }
func (o *CloseDualRedemption) Actor() types.ID { return o.Caller }

func (o *CloseDualRedemption) Preflight() result.Result {
	if o.Caller.IsZero() {
		return result.NullIdentity
	}
	return result.Success
}

func (o *CloseDualRedemption) Apply(ctx *Context) result.Result {
	if !ctx.View.Authority.IsOwner(o.Caller) {
		return result.NotOwner
	}
	return ctx.View.Duals.Close(o.OfferID)
}

// TakeDualRedemption settles immediately against a dual-leg offer. The
// input splits across both output legs by the offer's ratio, each leg
// priced independently.
type TakeDualRedemption struct {
	Taker    types.ID
	Relayer  types.ID
	OfferID  uint64
	AmountIn uint64
}

func (o *TakeDualRedemption) Kind() Kind      { return KindTakeDualRedemption }
func (o *TakeDualRedemption) Actor() types.ID { return o.Taker }

func (o *TakeDualRedemption) Preflight() result.Result {
	if o.Taker.IsZero() {
		return result.NullIdentity
	}
	if o.AmountIn == 0 {
		return result.BadAmount
	}
	return result.Success
}

func (o *TakeDualRedemption) Apply(ctx *Context) result.Result {
	offer := ctx.View.Duals.Find(o.OfferID)
	if offer == nil {
		return result.OfferNotFound
	}
	if !offer.InWindow(ctx.Now) {
		return result.WindowClosed
	}
	if res := checkRelayer(ctx, o.Relayer); res != result.Success {
		return res
	}

	decimalsIn, res := ctx.View.Decimals(offer.TokenIn)
	if res != result.Success {
		return res
	}
	decimalsOne, res := ctx.View.Decimals(offer.TokenOutOne)
	if res != result.Success {
		return res
	}
	decimalsTwo, res := ctx.View.Decimals(offer.TokenOutTwo)
	if res != result.Success {
		return res
	}
	quote, res := settlement.ComputeDual(o.AmountIn, offer.PriceOne, offer.PriceTwo, offer.RatioBps,
		decimalsIn, decimalsOne, decimalsTwo, offer.FeeBps)
	if res != result.Success {
		return res
	}

	if res := routedTransfer(ctx, o.Taker, keylet.Vault(), o.Relayer, offer.TokenIn, quote.TotalDebit); res != result.Success {
		return res
	}
	if res := routedTransfer(ctx, keylet.Vault(), o.Taker, o.Relayer, offer.TokenOutOne, quote.AmountOutOne); res != result.Success {
		return res
	}
	return routedTransfer(ctx, keylet.Vault(), o.Taker, o.Relayer, offer.TokenOutTwo, quote.AmountOutTwo)
}

// checkRelayer validates an optional relayer: the zero identity means
// direct settlement, anything else must be a registered approver that
// co-signed the call.
func checkRelayer(ctx *Context, relayer types.ID) result.Result {
	if relayer.IsZero() {
		return result.Success
	}
	if !ctx.View.Authority.IsApprover(relayer) {
		return result.ApproverNotFound
	}
	if !ctx.Signed(relayer) {
		return result.MissingSigner
	}
	return result.Success
}

// routedTransfer moves funds directly, or through the relayer's escrow
// account when a relayer is set. Either way the sender and receiver end
// at the same net balances.
func routedTransfer(ctx *Context, from, to, relayer, token types.ID, amount uint64) result.Result {
	if relayer.IsZero() {
		return ctx.View.Transfer(from, to, token, amount)
	}
	escrow := keylet.IntermediaryEscrow(relayer)
	if res := ctx.View.Transfer(from, escrow, token, amount); res != result.Success {
		return res
	}
	return ctx.View.Transfer(escrow, to, token, amount)
}
