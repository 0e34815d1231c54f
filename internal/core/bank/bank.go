// Package bank implements the token-transfer primitive consumed by the
// settlement paths: atomic debit, credit, mint, and burn over custodial
// balances, plus the per-token decimal registry settlement normalizes
// against. Balances live inside ledger state so that token movement
// commits or aborts together with every other effect of an operation.
package bank

import (
	"github.com/vennlabs/custodiad/internal/core/fixedpoint"
	"github.com/vennlabs/custodiad/internal/core/result"
	"github.com/vennlabs/custodiad/internal/core/types"
)

// AccountKey addresses one holder's balance in one token.
type AccountKey struct {
	Holder types.ID
	Token  types.ID
}

// Ledger is the transfer primitive exposed to operations. Implementations
// must apply every movement atomically with the surrounding operation.
type Ledger interface {
	// Decimals returns the registered decimal count of a token.
	Decimals(token types.ID) (uint32, result.Result)

	// Balance returns the holder's balance; unknown accounts hold zero.
	Balance(holder, token types.ID) uint64

	// Debit removes amount from the holder, failing on insufficient funds.
	Debit(holder, token types.ID, amount uint64) result.Result

	// Credit adds amount to the holder, failing on balance overflow.
	Credit(holder, token types.ID, amount uint64) result.Result

	// Transfer is a debit and credit pair under one failure domain.
	Transfer(from, to, token types.ID, amount uint64) result.Result

	// Mint creates new supply into the holder's balance.
	Mint(holder, token types.ID, amount uint64) result.Result

	// Burn destroys supply out of the holder's balance.
	Burn(holder, token types.ID, amount uint64) result.Result
}

// MaxDecimals bounds registered token decimals so that settlement's
// 10^(decimals+9) factors stay inside 64 bits.
const MaxDecimals = 10

// Book is the in-state ledger of balances and token registrations.
type Book struct {
	DecimalsByToken map[types.ID]uint32
	Balances        map[AccountKey]uint64
}

// NewBook returns an empty balance book.
func NewBook() *Book {
	return &Book{
		DecimalsByToken: make(map[types.ID]uint32),
		Balances:        make(map[AccountKey]uint64),
	}
}

// RegisterToken records a token's decimal count. Re-registration with a
// different decimal count is rejected: decimals are a property of the
// token, not a tunable.
func (b *Book) RegisterToken(token types.ID, decimals uint32) result.Result {
	if token.IsZero() {
		return result.NullIdentity
	}
	if decimals > MaxDecimals {
		return result.BadAmount
	}
	if existing, ok := b.DecimalsByToken[token]; ok && existing != decimals {
		return result.BadAmount
	}
	b.DecimalsByToken[token] = decimals
	return result.Success
}

// Decimals returns the registered decimal count of a token.
func (b *Book) Decimals(token types.ID) (uint32, result.Result) {
	decimals, ok := b.DecimalsByToken[token]
	if !ok {
		return 0, result.TokenNotFound
	}
	return decimals, result.Success
}

// Balance returns the holder's balance; unknown accounts hold zero.
func (b *Book) Balance(holder, token types.ID) uint64 {
	return b.Balances[AccountKey{Holder: holder, Token: token}]
}

// Debit removes amount from the holder.
func (b *Book) Debit(holder, token types.ID, amount uint64) result.Result {
	if _, ok := b.DecimalsByToken[token]; !ok {
		return result.TokenNotFound
	}
	key := AccountKey{Holder: holder, Token: token}
	balance := b.Balances[key]
	if balance < amount {
		return result.InsufficientFunds
	}
	b.Balances[key] = balance - amount
	return result.Success
}

// Credit adds amount to the holder.
func (b *Book) Credit(holder, token types.ID, amount uint64) result.Result {
	if _, ok := b.DecimalsByToken[token]; !ok {
		return result.TokenNotFound
	}
	key := AccountKey{Holder: holder, Token: token}
	sum, ok := fixedpoint.Add(b.Balances[key], amount)
	if !ok {
		return result.ArithmeticOverflow
	}
	b.Balances[key] = sum
	return result.Success
}

// Transfer moves amount between two holders.
func (b *Book) Transfer(from, to, token types.ID, amount uint64) result.Result {
	if r := b.Debit(from, token, amount); r != result.Success {
		return r
	}
	return b.Credit(to, token, amount)
}

// Mint creates supply. The mint authority check is the engine's job; the
// book only does the arithmetic.
func (b *Book) Mint(holder, token types.ID, amount uint64) result.Result {
	return b.Credit(holder, token, amount)
}

// Burn destroys supply.
func (b *Book) Burn(holder, token types.ID, amount uint64) result.Result {
	return b.Debit(holder, token, amount)
}

// Clone returns a deep copy of the book.
func (b *Book) Clone() *Book {
	clone := &Book{
		DecimalsByToken: make(map[types.ID]uint32, len(b.DecimalsByToken)),
		Balances:        make(map[AccountKey]uint64, len(b.Balances)),
	}
	for token, decimals := range b.DecimalsByToken {
		clone.DecimalsByToken[token] = decimals
	}
	for key, balance := range b.Balances {
		clone.Balances[key] = balance
	}
	return clone
}
