package state

import (
	"testing"

	"github.com/vennlabs/custodiad/internal/core/redemption"
	"github.com/vennlabs/custodiad/internal/core/result"
	"github.com/vennlabs/custodiad/internal/core/types"
)

func id(b byte) types.ID {
	var out types.ID
	out[0] = b
	return out
}

func TestDiscardLeavesBaseUntouched(t *testing.T) {
	s := New()
	s.Nonces[id(1)] = 4

	w := s.Begin()
	if r := w.RegisterToken(id(9), 6); r != result.Success {
		t.Fatalf("RegisterToken: %v", r)
	}
	if r := w.Mint(id(1), id(9), 500); r != result.Success {
		t.Fatalf("Mint: %v", r)
	}
	w.SetNonce(id(1), 5)
	w.Authority.Halted = true

	// w is dropped without Commit.
	if s.Authority.Halted {
		t.Fatal("halt leaked into base")
	}
	if got := s.Nonces[id(1)]; got != 4 {
		t.Fatalf("nonce leaked: got %d, want 4", got)
	}
	if _, ok := s.Book.DecimalsByToken[id(9)]; ok {
		t.Fatal("token registration leaked into base")
	}
	if got := s.Book.Balance(id(1), id(9)); got != 0 {
		t.Fatalf("balance leaked: got %d", got)
	}
}

func TestCommitFlushesEverything(t *testing.T) {
	s := New()

	w := s.Begin()
	if r := w.RegisterToken(id(9), 6); r != result.Success {
		t.Fatalf("RegisterToken: %v", r)
	}
	if r := w.Mint(id(1), id(9), 500); r != result.Success {
		t.Fatalf("Mint: %v", r)
	}
	if r := w.Transfer(id(1), id(2), id(9), 120); r != result.Success {
		t.Fatalf("Transfer: %v", r)
	}
	w.SetNonce(id(1), 1)
	req := redemption.Request{
		Key:    types.RequestKey{OfferID: 1, Redeemer: id(1), Nonce: 0},
		Amount: 120,
		Status: redemption.StatusPending,
	}
	w.PutRequest(req)
	w.Commit()

	if got := s.Book.Balance(id(1), id(9)); got != 380 {
		t.Fatalf("sender balance: got %d, want 380", got)
	}
	if got := s.Book.Balance(id(2), id(9)); got != 120 {
		t.Fatalf("receiver balance: got %d, want 120", got)
	}
	if got := s.Nonces[id(1)]; got != 1 {
		t.Fatalf("nonce: got %d, want 1", got)
	}
	stored, ok := s.Requests[req.Key]
	if !ok || stored.Amount != 120 {
		t.Fatalf("request not committed: %+v ok=%v", stored, ok)
	}
}

func TestWorkingReadsThroughToBase(t *testing.T) {
	s := New()
	s.Book.RegisterToken(id(9), 6)
	s.Book.Mint(id(1), id(9), 50)
	s.Nonces[id(1)] = 7

	w := s.Begin()
	if got := w.NonceOf(id(1)); got != 7 {
		t.Fatalf("NonceOf: got %d, want 7", got)
	}
	if got := w.NonceOf(id(2)); got != 0 {
		t.Fatalf("unseen principal nonce: got %d, want 0", got)
	}
	if got := w.Balance(id(1), id(9)); got != 50 {
		t.Fatalf("Balance: got %d, want 50", got)
	}
	decimals, r := w.Decimals(id(9))
	if r != result.Success || decimals != 6 {
		t.Fatalf("Decimals: got %d %v", decimals, r)
	}
}

func TestDebitFailureModes(t *testing.T) {
	s := New()
	s.Book.RegisterToken(id(9), 6)
	s.Book.Mint(id(1), id(9), 10)

	w := s.Begin()
	if r := w.Debit(id(1), id(9), 11); r != result.InsufficientFunds {
		t.Fatalf("overdraft: got %v, want InsufficientFunds", r)
	}
	if r := w.Debit(id(1), id(8), 1); r != result.TokenNotFound {
		t.Fatalf("unknown token: got %v, want TokenNotFound", r)
	}
}

func TestRegisterTokenConflict(t *testing.T) {
	s := New()
	w := s.Begin()
	if r := w.RegisterToken(id(9), 6); r != result.Success {
		t.Fatalf("first registration: %v", r)
	}
	if r := w.RegisterToken(id(9), 6); r != result.Success {
		t.Fatalf("idempotent registration: %v", r)
	}
	if r := w.RegisterToken(id(9), 7); r != result.BadAmount {
		t.Fatalf("conflicting decimals: got %v, want BadAmount", r)
	}
	if r := w.RegisterToken(types.Zero, 6); r != result.NullIdentity {
		t.Fatalf("null token: got %v, want NullIdentity", r)
	}
}
