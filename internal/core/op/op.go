// Package op defines the operations that mutate the ledger and the
// engine that applies them. Every operation runs as one atomic unit: a
// preflight pass over its own fields, signature checks against the
// submitted signer set, then an apply pass against a working view that
// only commits on full success.
package op

import (
	"fmt"

	"github.com/vennlabs/custodiad/internal/core/registry"
	"github.com/vennlabs/custodiad/internal/core/result"
	"github.com/vennlabs/custodiad/internal/core/state"
	"github.com/vennlabs/custodiad/internal/core/types"
)

// Kind identifies an operation type on the wire and in history.
type Kind uint16

const (
	KindInitialize Kind = iota + 1
	KindProposeOwner
	KindAcceptOwnership
	KindAddAdmin
	KindRemoveAdmin
	KindAddApprover
	KindRemoveApprover
	KindSetHalt
	KindRegisterToken
	KindMakeOffer
	KindUpdateOfferFee
	KindCloseOffer
	KindAddVector
	KindDeleteVector
	KindDeleteAllVectors
	KindTakeOffer
	KindTakeOfferViaIntermediary
	KindMakeSingleRedemption
	KindUpdateSingleRedemptionFee
	KindCloseSingleRedemption
	KindTakeSingleRedemption
	KindMakeDualRedemption
	KindUpdateDualRedemptionFee
	KindCloseDualRedemption
	KindTakeDualRedemption
	KindCreateRequest
)

var kindNames = map[Kind]string{
	KindInitialize:                "Initialize",
	KindProposeOwner:              "ProposeOwner",
	KindAcceptOwnership:           "AcceptOwnership",
	KindAddAdmin:                  "AddAdmin",
	KindRemoveAdmin:               "RemoveAdmin",
	KindAddApprover:               "AddApprover",
	KindRemoveApprover:            "RemoveApprover",
	KindSetHalt:                   "SetHalt",
	KindRegisterToken:             "RegisterToken",
	KindMakeOffer:                 "MakeOffer",
	KindUpdateOfferFee:            "UpdateOfferFee",
	KindCloseOffer:                "CloseOffer",
	KindAddVector:                 "AddVector",
	KindDeleteVector:              "DeleteVector",
	KindDeleteAllVectors:          "DeleteAllVectors",
	KindTakeOffer:                 "TakeOffer",
	KindTakeOfferViaIntermediary:  "TakeOfferViaIntermediary",
	KindMakeSingleRedemption:      "MakeSingleRedemption",
	KindUpdateSingleRedemptionFee: "UpdateSingleRedemptionFee",
	KindCloseSingleRedemption:     "CloseSingleRedemption",
	KindTakeSingleRedemption:      "TakeSingleRedemption",
	KindMakeDualRedemption:        "MakeDualRedemption",
	KindUpdateDualRedemptionFee:   "UpdateDualRedemptionFee",
	KindCloseDualRedemption:       "CloseDualRedemption",
	KindTakeDualRedemption:        "TakeDualRedemption",
	KindCreateRequest:             "CreateRequest",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint16(k))
}

// Settlement reports whether the kind moves funds. Settlement kinds are
// the ones the halt flag blocks; governance and registry maintenance
// stay available while halted so the halt can actually be managed.
func (k Kind) Settlement() bool {
	switch k {
	case KindTakeOffer, KindTakeOfferViaIntermediary,
		KindTakeSingleRedemption, KindTakeDualRedemption,
		KindCreateRequest:
		return true
	}
	return false
}

// Venue selects one of the two symmetric exchange registries.
type Venue uint8

const (
	Sell Venue = iota
	Buy
)

func (v Venue) String() string {
	switch v {
	case Sell:
		return "sell"
	case Buy:
		return "buy"
	default:
		return fmt.Sprintf("venue(%d)", uint8(v))
	}
}

// Valid reports whether the venue selector names a real venue.
func (v Venue) Valid() bool {
	return v == Sell || v == Buy
}

// Leg selects one of the two redemption registries.
type Leg uint8

const (
	SingleLeg Leg = iota
	DualLeg
)

func (l Leg) String() string {
	switch l {
	case SingleLeg:
		return "single"
	case DualLeg:
		return "dual"
	default:
		return fmt.Sprintf("leg(%d)", uint8(l))
	}
}

// Valid reports whether the leg selector names a real registry.
func (l Leg) Valid() bool {
	return l == SingleLeg || l == DualLeg
}

// Operation is one atomic ledger transition.
type Operation interface {
	// Kind identifies the operation type.
	Kind() Kind

	// Actor is the identity whose signature the engine always requires.
	Actor() types.ID

	// Preflight validates the operation's own fields without touching
	// ledger state.
	Preflight() result.Result

	// Apply executes the operation against the working view. The engine
	// commits the view only when Apply reports success.
	Apply(ctx *Context) result.Result
}

// Context is handed to Apply: the working view, the clock value for this
// call, and the set of signers whose signatures verified.
type Context struct {
	View *state.Working
	Now  int64

	signers map[types.ID]struct{}
}

// Signed reports whether the identity cryptographically authorized this
// call.
func (ctx *Context) Signed(id types.ID) bool {
	_, ok := ctx.signers[id]
	return ok
}

func (ctx *Context) venue(v Venue) *registry.Registry {
	if v == Buy {
		return &ctx.View.Buy
	}
	return &ctx.View.Sell
}
