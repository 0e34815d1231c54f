// Package state bundles the whole ledger: the authorization context, the
// two exchange venues, both redemption registries, the per-principal
// nonce accounts, the request records, and the balance book. It also
// provides the working view that gives every operation its all-or-nothing
// commit discipline.
package state

import (
	"github.com/vennlabs/custodiad/internal/core/authority"
	"github.com/vennlabs/custodiad/internal/core/bank"
	"github.com/vennlabs/custodiad/internal/core/fixedpoint"
	"github.com/vennlabs/custodiad/internal/core/redemption"
	"github.com/vennlabs/custodiad/internal/core/registry"
	"github.com/vennlabs/custodiad/internal/core/result"
	"github.com/vennlabs/custodiad/internal/core/types"
)

// State is the complete persisted ledger. The registries are fixed-size
// value types; only the nonce accounts, request records, and balance book
// grow with use.
type State struct {
	Authority authority.State
	Sell      registry.Registry
	Buy       registry.Registry
	Singles   redemption.SingleRegistry
	Duals     redemption.DualRegistry
	Nonces    map[types.ID]uint64
	Requests  map[types.RequestKey]redemption.Request
	Book      *bank.Book
}

// New returns an empty ledger.
func New() *State {
	return &State{
		Nonces:   make(map[types.ID]uint64),
		Requests: make(map[types.RequestKey]redemption.Request),
		Book:     bank.NewBook(),
	}
}

// Working is a scratch view of the ledger handed to an operation. The
// fixed-size parts are plain value copies; the growing maps are tracked
// through overlays. Nothing reaches the base State until Commit, so an
// operation that fails anywhere simply drops the view and leaves the
// ledger exactly as it found it.
type Working struct {
	Authority authority.State
	Sell      registry.Registry
	Buy       registry.Registry
	Singles   redemption.SingleRegistry
	Duals     redemption.DualRegistry

	base     *State
	nonces   *overlay[types.ID, uint64]
	requests *overlay[types.RequestKey, redemption.Request]
	balances *overlay[bank.AccountKey, uint64]
	decimals *overlay[types.ID, uint32]
}

// Begin opens a working view over the ledger.
func (s *State) Begin() *Working {
	return &Working{
		Authority: s.Authority,
		Sell:      s.Sell,
		Buy:       s.Buy,
		Singles:   s.Singles,
		Duals:     s.Duals,
		base:      s,
		nonces:    newOverlay(s.Nonces),
		requests:  newOverlay(s.Requests),
		balances:  newOverlay(s.Book.Balances),
		decimals:  newOverlay(s.Book.DecimalsByToken),
	}
}

// Commit writes every pending change back into the base ledger.
func (w *Working) Commit() {
	w.base.Authority = w.Authority
	w.base.Sell = w.Sell
	w.base.Buy = w.Buy
	w.base.Singles = w.Singles
	w.base.Duals = w.Duals
	w.nonces.Commit()
	w.requests.Commit()
	w.balances.Commit()
	w.decimals.Commit()
}

// NonceOf returns the principal's next expected sequence number. Nonce
// accounts are created lazily: an unseen principal is at zero.
func (w *Working) NonceOf(principal types.ID) uint64 {
	nonce, _ := w.nonces.Get(principal)
	return nonce
}

// SetNonce stores the principal's next expected sequence number.
func (w *Working) SetNonce(principal types.ID, nonce uint64) {
	w.nonces.Put(principal, nonce)
}

// Request fetches a request record by its unique key.
func (w *Working) Request(key types.RequestKey) (redemption.Request, bool) {
	return w.requests.Get(key)
}

// PutRequest stores a request record.
func (w *Working) PutRequest(req redemption.Request) {
	w.requests.Put(req.Key, req)
}

// RegisterToken records a token's decimal count in the working view.
func (w *Working) RegisterToken(token types.ID, decimals uint32) result.Result {
	if token.IsZero() {
		return result.NullIdentity
	}
	if decimals > bank.MaxDecimals {
		return result.BadAmount
	}
	if existing, ok := w.decimals.Get(token); ok && existing != decimals {
		return result.BadAmount
	}
	w.decimals.Put(token, decimals)
	return result.Success
}

// Decimals implements bank.Ledger.
func (w *Working) Decimals(token types.ID) (uint32, result.Result) {
	decimals, ok := w.decimals.Get(token)
	if !ok {
		return 0, result.TokenNotFound
	}
	return decimals, result.Success
}

// Balance implements bank.Ledger.
func (w *Working) Balance(holder, token types.ID) uint64 {
	balance, _ := w.balances.Get(bank.AccountKey{Holder: holder, Token: token})
	return balance
}

// Debit implements bank.Ledger.
func (w *Working) Debit(holder, token types.ID, amount uint64) result.Result {
	if _, ok := w.decimals.Get(token); !ok {
		return result.TokenNotFound
	}
	key := bank.AccountKey{Holder: holder, Token: token}
	balance, _ := w.balances.Get(key)
	if balance < amount {
		return result.InsufficientFunds
	}
	w.balances.Put(key, balance-amount)
	return result.Success
}

// Credit implements bank.Ledger.
func (w *Working) Credit(holder, token types.ID, amount uint64) result.Result {
	if _, ok := w.decimals.Get(token); !ok {
		return result.TokenNotFound
	}
	key := bank.AccountKey{Holder: holder, Token: token}
	balance, _ := w.balances.Get(key)
	sum, ok := fixedpoint.Add(balance, amount)
	if !ok {
		return result.ArithmeticOverflow
	}
	w.balances.Put(key, sum)
	return result.Success
}

// Transfer implements bank.Ledger.
func (w *Working) Transfer(from, to, token types.ID, amount uint64) result.Result {
	if r := w.Debit(from, token, amount); r != result.Success {
		return r
	}
	return w.Credit(to, token, amount)
}

// Mint implements bank.Ledger.
func (w *Working) Mint(holder, token types.ID, amount uint64) result.Result {
	return w.Credit(holder, token, amount)
}

// Burn implements bank.Ledger.
func (w *Working) Burn(holder, token types.ID, amount uint64) result.Result {
	return w.Debit(holder, token, amount)
}

var _ bank.Ledger = (*Working)(nil)
