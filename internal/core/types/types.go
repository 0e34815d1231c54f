// Package types holds the primitive identifiers shared across the ledger
// core: principal identities, token identities, and the composite keys
// used for redemption requests.
package types

import (
	"encoding/hex"
	"fmt"
)

// IDSize is the size of a ledger identity in bytes.
const IDSize = 32

// ID identifies a principal or a token. The zero value is the null
// identity and is never a valid signer, owner, or token.
type ID [IDSize]byte

// Zero is the null identity.
var Zero ID

// IsZero reports whether the identity is the null identity.
func (id ID) IsZero() bool {
	return id == Zero
}

// String returns the lowercase hex form of the identity.
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// IDFromHex parses a 64-character hex identity.
func IDFromHex(s string) (ID, error) {
	var id ID
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Zero, fmt.Errorf("invalid identity %q: %w", s, err)
	}
	if len(raw) != IDSize {
		return Zero, fmt.Errorf("invalid identity length %d, want %d", len(raw), IDSize)
	}
	copy(id[:], raw)
	return id, nil
}

// IDFromBytes copies a 32-byte slice into an ID. Short or long slices
// yield the null identity.
func IDFromBytes(b []byte) ID {
	var id ID
	if len(b) == IDSize {
		copy(id[:], b)
	}
	return id
}

// RequestKey uniquely addresses a redemption request. A key is consumed
// forever once a request has been created under it: nonces are scoped per
// redeemer, so two redeemers may share a nonce value without colliding.
type RequestKey struct {
	OfferID  uint64
	Redeemer ID
	Nonce    uint64
}

func (k RequestKey) String() string {
	return fmt.Sprintf("%d/%s/%d", k.OfferID, k.Redeemer, k.Nonce)
}
