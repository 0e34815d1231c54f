package op

import (
	"github.com/vennlabs/custodiad/internal/core/result"
	"github.com/vennlabs/custodiad/internal/core/types"
)

// Initialize establishes the first owner. It is the only operation
// accepted on an uninitialized ledger and it is accepted exactly once.
type Initialize struct {
	Owner types.ID
}

func (o *Initialize) Kind() Kind      { return KindInitialize }
func (o *Initialize) Actor() types.ID { return o.Owner }

func (o *Initialize) Preflight() result.Result {
	if o.Owner.IsZero() {
		return result.NullIdentity
	}
	return result.Success
}

func (o *Initialize) Apply(ctx *Context) result.Result {
	return ctx.View.Authority.Initialize(o.Owner)
}

// ProposeOwner stages an ownership handoff. Only the acceptance by the
// exact candidate completes it; re-proposing overwrites any pending
// candidate.
type ProposeOwner struct {
	Caller    types.ID
	Candidate types.ID
}

func (o *ProposeOwner) Kind() Kind      { return KindProposeOwner }
func (o *ProposeOwner) Actor() types.ID { return o.Caller }

func (o *ProposeOwner) Preflight() result.Result {
	if o.Caller.IsZero() || o.Candidate.IsZero() {
		return result.NullIdentity
	}
	return result.Success
}

func (o *ProposeOwner) Apply(ctx *Context) result.Result {
	return ctx.View.Authority.ProposeOwner(o.Caller, o.Candidate)
}

// AcceptOwnership completes a staged handoff.
type AcceptOwnership struct {
	Caller types.ID
}

func (o *AcceptOwnership) Kind() Kind      { return KindAcceptOwnership }
func (o *AcceptOwnership) Actor() types.ID { return o.Caller }

func (o *AcceptOwnership) Preflight() result.Result {
	if o.Caller.IsZero() {
		return result.NullIdentity
	}
	return result.Success
}

func (o *AcceptOwnership) Apply(ctx *Context) result.Result {
	return ctx.View.Authority.AcceptOwnership(o.Caller)
}

// AddAdmin registers a delegated admin.
type AddAdmin struct {
	Caller types.ID
	Admin  types.ID
}

func (o *AddAdmin) Kind() Kind      { return KindAddAdmin }
func (o *AddAdmin) Actor() types.ID { return o.Caller }

func (o *AddAdmin) Preflight() result.Result {
	if o.Caller.IsZero() || o.Admin.IsZero() {
		return result.NullIdentity
	}
	return result.Success
}

func (o *AddAdmin) Apply(ctx *Context) result.Result {
	return ctx.View.Authority.AddAdmin(o.Caller, o.Admin)
}

// RemoveAdmin unregisters a delegated admin.
type RemoveAdmin struct {
	Caller types.ID
	Admin  types.ID
}

func (o *RemoveAdmin) Kind() Kind      { return KindRemoveAdmin }
func (o *RemoveAdmin) Actor() types.ID { return o.Caller }

func (o *RemoveAdmin) Preflight() result.Result {
	if o.Caller.IsZero() || o.Admin.IsZero() {
		return result.NullIdentity
	}
	return result.Success
}

func (o *RemoveAdmin) Apply(ctx *Context) result.Result {
	return ctx.View.Authority.RemoveAdmin(o.Caller, o.Admin)
}

// AddApprover registers an approver identity for relayer-routed
// settlement.
type AddApprover struct {
	Caller   types.ID
	Approver types.ID
}

func (o *AddApprover) Kind() Kind      { return KindAddApprover }
func (o *AddApprover) Actor() types.ID { return o.Caller }

func (o *AddApprover) Preflight() result.Result {
	if o.Caller.IsZero() || o.Approver.IsZero() {
		return result.NullIdentity
	}
	return result.Success
}

func (o *AddApprover) Apply(ctx *Context) result.Result {
	return ctx.View.Authority.AddApprover(o.Caller, o.Approver)
}

// RemoveApprover unregisters an approver identity.
type RemoveApprover struct {
	Caller   types.ID
	Approver types.ID
}

func (o *RemoveApprover) Kind() Kind      { return KindRemoveApprover }
func (o *RemoveApprover) Actor() types.ID { return o.Caller }

func (o *RemoveApprover) Preflight() result.Result {
	if o.Caller.IsZero() || o.Approver.IsZero() {
		return result.NullIdentity
	}
	return result.Success
}

func (o *RemoveApprover) Apply(ctx *Context) result.Result {
	return ctx.View.Authority.RemoveApprover(o.Caller, o.Approver)
}

// SetHalt raises or lowers the emergency halt. Raising is owner-or-admin
// so an incident responder can stop settlement quickly; lowering is
// owner-only.
type SetHalt struct {
	Caller types.ID
	Enable bool
}

func (o *SetHalt) Kind() Kind      { return KindSetHalt }
func (o *SetHalt) Actor() types.ID { return o.Caller }

func (o *SetHalt) Preflight() result.Result {
	if o.Caller.IsZero() {
		return result.NullIdentity
	}
	return result.Success
}

func (o *SetHalt) Apply(ctx *Context) result.Result {
	return ctx.View.Authority.SetHalt(o.Caller, o.Enable)
}

// RegisterToken records a token's decimal count. Settlement refuses
// tokens it cannot normalize, so every token must be registered before
// an offer can trade it.
type RegisterToken struct {
	Caller   types.ID
	Token    types.ID
	Decimals uint32
}

func (o *RegisterToken) Kind() Kind      { return KindRegisterToken }
func (o *RegisterToken) Actor() types.ID { return o.Caller }

func (o *RegisterToken) Preflight() result.Result {
	if o.Caller.IsZero() || o.Token.IsZero() {
		return result.NullIdentity
	}
	return result.Success
}

func (o *RegisterToken) Apply(ctx *Context) result.Result {
	if !ctx.View.Authority.IsOwner(o.Caller) {
		return result.NotOwner
	}
	return ctx.View.RegisterToken(o.Token, o.Decimals)
}
