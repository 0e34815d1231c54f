// Package authority implements the governance tier of the ledger: the
// owner identity, the pending ownership handoff, the delegated admin set,
// the approver set, and the emergency halt flag. Capacities are fixed at
// compile time; membership lives in flat arrays scanned linearly, with
// the null identity marking a free slot.
package authority

import (
	"github.com/vennlabs/custodiad/internal/core/result"
	"github.com/vennlabs/custodiad/internal/core/types"
)

const (
	// MaxAdmins is the capacity of the delegated admin set.
	MaxAdmins = 20

	// MaxApprovers is the capacity of the approver set.
	MaxApprovers = 2
)

// State is the authorization context threaded into every privileged
// operation. Callers are re-validated against this stored state on every
// call; no authorization decision is ever cached.
type State struct {
	Initialized   bool
	Owner         types.ID
	ProposedOwner types.ID
	Admins        [MaxAdmins]types.ID
	Approvers     [MaxApprovers]types.ID
	Halted        bool
}

// Initialize installs the first owner. It can run exactly once.
func (s *State) Initialize(owner types.ID) result.Result {
	if s.Initialized {
		return result.AlreadyInitialized
	}
	if owner.IsZero() {
		return result.NullIdentity
	}
	s.Initialized = true
	s.Owner = owner
	return result.Success
}

// IsOwner reports whether the identity is the current owner.
func (s *State) IsOwner(id types.ID) bool {
	return s.Initialized && id == s.Owner
}

// IsAdmin reports whether the identity is a registered admin.
func (s *State) IsAdmin(id types.ID) bool {
	if id.IsZero() {
		return false
	}
	for _, admin := range s.Admins {
		if admin == id {
			return true
		}
	}
	return false
}

// IsApprover reports whether the identity is a registered approver.
func (s *State) IsApprover(id types.ID) bool {
	if id.IsZero() {
		return false
	}
	for _, approver := range s.Approvers {
		if approver == id {
			return true
		}
	}
	return false
}

// ProposeOwner records a pending ownership handoff. A later proposal
// overwrites an earlier one; the handoff completes only when the
// candidate itself calls AcceptOwnership.
func (s *State) ProposeOwner(caller, candidate types.ID) result.Result {
	if !s.Initialized {
		return result.NotInitialized
	}
	if !s.IsOwner(caller) {
		return result.NotOwner
	}
	if candidate.IsZero() {
		return result.NullIdentity
	}
	s.ProposedOwner = candidate
	return result.Success
}

// AcceptOwnership completes a pending handoff. The "no proposal" and
// "wrong caller" failures are distinct so a mistyped candidate is
// distinguishable from a stale acceptance.
func (s *State) AcceptOwnership(caller types.ID) result.Result {
	if !s.Initialized {
		return result.NotInitialized
	}
	if s.ProposedOwner.IsZero() {
		return result.NoProposal
	}
	if caller != s.ProposedOwner {
		return result.NotProposedOwner
	}
	s.Owner = caller
	s.ProposedOwner = types.Zero
	return result.Success
}

// AddAdmin registers a delegated admin. Duplicates are rejected.
func (s *State) AddAdmin(caller, admin types.ID) result.Result {
	if !s.Initialized {
		return result.NotInitialized
	}
	if !s.IsOwner(caller) {
		return result.NotOwner
	}
	if admin.IsZero() {
		return result.NullIdentity
	}
	if s.IsAdmin(admin) {
		return result.DuplicateAdmin
	}
	for i := range s.Admins {
		if s.Admins[i].IsZero() {
			s.Admins[i] = admin
			return result.Success
		}
	}
	return result.AdminSetFull
}

// RemoveAdmin clears a registered admin slot.
func (s *State) RemoveAdmin(caller, admin types.ID) result.Result {
	if !s.Initialized {
		return result.NotInitialized
	}
	if !s.IsOwner(caller) {
		return result.NotOwner
	}
	for i := range s.Admins {
		if !s.Admins[i].IsZero() && s.Admins[i] == admin {
			s.Admins[i] = types.Zero
			return result.Success
		}
	}
	return result.AdminNotFound
}

// AddApprover registers an approver identity used for auxiliary
// cryptographic approval checks on settlement paths.
func (s *State) AddApprover(caller, approver types.ID) result.Result {
	if !s.Initialized {
		return result.NotInitialized
	}
	if !s.IsOwner(caller) {
		return result.NotOwner
	}
	if approver.IsZero() {
		return result.NullIdentity
	}
	if s.IsApprover(approver) {
		return result.DuplicateApprover
	}
	for i := range s.Approvers {
		if s.Approvers[i].IsZero() {
			s.Approvers[i] = approver
			return result.Success
		}
	}
	return result.ApproverSetFull
}

// RemoveApprover clears a registered approver slot.
func (s *State) RemoveApprover(caller, approver types.ID) result.Result {
	if !s.Initialized {
		return result.NotInitialized
	}
	if !s.IsOwner(caller) {
		return result.NotOwner
	}
	for i := range s.Approvers {
		if !s.Approvers[i].IsZero() && s.Approvers[i] == approver {
			s.Approvers[i] = types.Zero
			return result.Success
		}
	}
	return result.ApproverNotFound
}

// SetHalt raises or lowers the emergency halt. Raising is allowed for the
// owner or any admin; lowering is owner-only.
func (s *State) SetHalt(caller types.ID, enable bool) result.Result {
	if !s.Initialized {
		return result.NotInitialized
	}
	if enable {
		if !s.IsOwner(caller) && !s.IsAdmin(caller) {
			return result.NotOwnerOrAdmin
		}
	} else {
		if !s.IsOwner(caller) {
			return result.NotOwner
		}
	}
	s.Halted = enable
	return result.Success
}
