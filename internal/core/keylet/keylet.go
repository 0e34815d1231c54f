// Package keylet derives the deterministic internal account identities
// used by settlement: the custodial vault and the escrow accounts that
// hold locked redemption funds. Identities are hashes over a fixed space
// tag plus the identifying data, so every node derives the same account
// for the same object and no derived account can collide with another
// space.
package keylet

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/vennlabs/custodiad/internal/core/types"
)

// Space identifiers for derived accounts.
const (
	spaceVault        byte = 'v'
	spaceSingleEscrow byte = 'e'
	spaceDualEscrow   byte = 'E'
	spaceIntermediary byte = 'i'
)

func derive(space byte, data ...[]byte) types.ID {
	h := sha256.New()
	h.Write([]byte("custodiad/keylet"))
	h.Write([]byte{space})
	for _, d := range data {
		h.Write(d)
	}
	return types.IDFromBytes(h.Sum(nil))
}

func uint64Bytes(v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return buf[:]
}

// Vault is the custodial pool account that counterparties every take.
func Vault() types.ID {
	return derive(spaceVault)
}

// SingleEscrow is the escrow account locking funds requested against a
// single-leg redemption offer.
func SingleEscrow(offerID uint64) types.ID {
	return derive(spaceSingleEscrow, uint64Bytes(offerID))
}

// DualEscrow is the escrow account locking funds requested against a
// dual-leg redemption offer.
func DualEscrow(offerID uint64) types.ID {
	return derive(spaceDualEscrow, uint64Bytes(offerID))
}

// IntermediaryEscrow is the relayer-scoped escrow account used by the
// intermediary-routed take variant.
func IntermediaryEscrow(relayer types.ID) types.ID {
	return derive(spaceIntermediary, relayer[:])
}
