package authority

import (
	"testing"

	"github.com/vennlabs/custodiad/internal/core/result"
	"github.com/vennlabs/custodiad/internal/core/types"
)

func id(b byte) types.ID {
	var v types.ID
	v[0] = b
	return v
}

var (
	owner    = id(1)
	alice    = id(2)
	bob      = id(3)
	carol    = id(4)
	stranger = id(9)
)

func initialized(t *testing.T) *State {
	t.Helper()
	var s State
	if r := s.Initialize(owner); r != result.Success {
		t.Fatalf("Initialize: %v", r)
	}
	return &s
}

func TestInitialize(t *testing.T) {
	var s State
	if r := s.Initialize(types.Zero); r != result.NullIdentity {
		t.Fatalf("null owner accepted: %v", r)
	}
	if r := s.Initialize(owner); r != result.Success {
		t.Fatalf("Initialize: %v", r)
	}
	if r := s.Initialize(alice); r != result.AlreadyInitialized {
		t.Fatalf("second Initialize: %v", r)
	}
	if !s.IsOwner(owner) {
		t.Fatal("owner not set")
	}
}

func TestOwnershipHandoff(t *testing.T) {
	s := initialized(t)

	if r := s.AcceptOwnership(alice); r != result.NoProposal {
		t.Fatalf("accept without proposal: %v", r)
	}
	if r := s.ProposeOwner(alice, bob); r != result.NotOwner {
		t.Fatalf("non-owner proposal: %v", r)
	}
	if r := s.ProposeOwner(owner, types.Zero); r != result.NullIdentity {
		t.Fatalf("null candidate: %v", r)
	}
	if r := s.ProposeOwner(owner, alice); r != result.Success {
		t.Fatalf("propose: %v", r)
	}
	// A later proposal overwrites the earlier one.
	if r := s.ProposeOwner(owner, bob); r != result.Success {
		t.Fatalf("overwrite proposal: %v", r)
	}
	if r := s.AcceptOwnership(alice); r != result.NotProposedOwner {
		t.Fatalf("stale candidate accepted: %v", r)
	}
	if r := s.AcceptOwnership(bob); r != result.Success {
		t.Fatalf("accept: %v", r)
	}
	if !s.IsOwner(bob) || s.IsOwner(owner) {
		t.Fatal("ownership did not transfer")
	}
	if !s.ProposedOwner.IsZero() {
		t.Fatal("proposal not cleared on acceptance")
	}
}

func TestAdminSet(t *testing.T) {
	s := initialized(t)

	if r := s.AddAdmin(alice, bob); r != result.NotOwner {
		t.Fatalf("non-owner add: %v", r)
	}
	if r := s.AddAdmin(owner, alice); r != result.Success {
		t.Fatalf("add: %v", r)
	}
	if r := s.AddAdmin(owner, alice); r != result.DuplicateAdmin {
		t.Fatalf("duplicate add: %v", r)
	}
	if !s.IsAdmin(alice) {
		t.Fatal("admin not registered")
	}
	if r := s.RemoveAdmin(owner, bob); r != result.AdminNotFound {
		t.Fatalf("remove missing admin: %v", r)
	}
	if r := s.RemoveAdmin(owner, alice); r != result.Success {
		t.Fatalf("remove: %v", r)
	}
	if s.IsAdmin(alice) {
		t.Fatal("admin still registered after removal")
	}
}

func TestAdminCapacity(t *testing.T) {
	s := initialized(t)
	for i := 0; i < MaxAdmins; i++ {
		if r := s.AddAdmin(owner, id(byte(10+i))); r != result.Success {
			t.Fatalf("add %d: %v", i, r)
		}
	}
	if r := s.AddAdmin(owner, id(200)); r != result.AdminSetFull {
		t.Fatalf("over-capacity add: %v", r)
	}
	// Freeing a slot makes room again.
	if r := s.RemoveAdmin(owner, id(10)); r != result.Success {
		t.Fatalf("remove: %v", r)
	}
	if r := s.AddAdmin(owner, id(200)); r != result.Success {
		t.Fatalf("reuse freed slot: %v", r)
	}
}

func TestApproverSet(t *testing.T) {
	s := initialized(t)
	if r := s.AddApprover(owner, alice); r != result.Success {
		t.Fatalf("add: %v", r)
	}
	if r := s.AddApprover(owner, alice); r != result.DuplicateApprover {
		t.Fatalf("duplicate: %v", r)
	}
	if r := s.AddApprover(owner, bob); r != result.Success {
		t.Fatalf("add second: %v", r)
	}
	if r := s.AddApprover(owner, carol); r != result.ApproverSetFull {
		t.Fatalf("over capacity: %v", r)
	}
	if r := s.RemoveApprover(owner, carol); r != result.ApproverNotFound {
		t.Fatalf("remove missing: %v", r)
	}
	if r := s.RemoveApprover(owner, alice); r != result.Success {
		t.Fatalf("remove: %v", r)
	}
}

func TestHalt(t *testing.T) {
	s := initialized(t)
	if r := s.AddAdmin(owner, alice); r != result.Success {
		t.Fatalf("add admin: %v", r)
	}

	if r := s.SetHalt(stranger, true); r != result.NotOwnerOrAdmin {
		t.Fatalf("stranger raised halt: %v", r)
	}
	// An admin may raise the halt.
	if r := s.SetHalt(alice, true); r != result.Success {
		t.Fatalf("admin raise: %v", r)
	}
	if !s.Halted {
		t.Fatal("halt not raised")
	}
	// Only the owner may lower it.
	if r := s.SetHalt(alice, false); r != result.NotOwner {
		t.Fatalf("admin lowered halt: %v", r)
	}
	if r := s.SetHalt(owner, false); r != result.Success {
		t.Fatalf("owner lower: %v", r)
	}
	if s.Halted {
		t.Fatal("halt not lowered")
	}
}

func TestUninitialized(t *testing.T) {
	var s State
	if r := s.SetHalt(owner, true); r != result.NotInitialized {
		t.Fatalf("SetHalt on uninitialized: %v", r)
	}
	if r := s.AddAdmin(owner, alice); r != result.NotInitialized {
		t.Fatalf("AddAdmin on uninitialized: %v", r)
	}
}
