// Package crypto provides the signature schemes accepted on submitted
// operations and the derivation of ledger identities from public keys.
package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/decred/dcrd/crypto/ripemd160"
	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/vennlabs/custodiad/internal/core/types"
)

// Algorithm selects a signature scheme. The scheme is carried alongside
// every signature so verification never guesses from key length.
type Algorithm byte

const (
	Ed25519 Algorithm = iota
	Secp256k1
)

func (a Algorithm) String() string {
	switch a {
	case Ed25519:
		return "ed25519"
	case Secp256k1:
		return "secp256k1"
	default:
		return fmt.Sprintf("algorithm(%d)", byte(a))
	}
}

var (
	ErrUnknownAlgorithm = errors.New("unknown signature algorithm")
	ErrInvalidKey       = errors.New("invalid key material")
)

// SignatureProvider implements one signature scheme over raw digests.
type SignatureProvider interface {
	// Algorithm identifies the scheme.
	Algorithm() Algorithm

	// GenerateKeypair returns a fresh private/public key pair.
	GenerateKeypair() (priv, pub []byte, err error)

	// Sign produces a signature over the digest.
	Sign(digest, priv []byte) ([]byte, error)

	// Verify reports whether sig is a valid signature over digest.
	Verify(digest, pub, sig []byte) bool
}

// Provider returns the signature provider for the scheme.
func Provider(a Algorithm) (SignatureProvider, error) {
	switch a {
	case Ed25519:
		return ed25519Provider{}, nil
	case Secp256k1:
		return secp256k1Provider{}, nil
	default:
		return nil, ErrUnknownAlgorithm
	}
}

type ed25519Provider struct{}

func (ed25519Provider) Algorithm() Algorithm { return Ed25519 }

func (ed25519Provider) GenerateKeypair() ([]byte, []byte, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	return priv, pub, nil
}

func (ed25519Provider) Sign(digest, priv []byte) ([]byte, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, ErrInvalidKey
	}
	return ed25519.Sign(ed25519.PrivateKey(priv), digest), nil
}

func (ed25519Provider) Verify(digest, pub, sig []byte) bool {
	if len(pub) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), digest, sig)
}

type secp256k1Provider struct{}

func (secp256k1Provider) Algorithm() Algorithm { return Secp256k1 }

func (secp256k1Provider) GenerateKeypair() ([]byte, []byte, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, nil, err
	}
	return priv.Serialize(), priv.PubKey().SerializeCompressed(), nil
}

func (secp256k1Provider) Sign(digest, priv []byte) ([]byte, error) {
	if len(priv) != 32 {
		return nil, ErrInvalidKey
	}
	key := secp256k1.PrivKeyFromBytes(priv)
	return secpecdsa.Sign(key, digest).Serialize(), nil
}

func (secp256k1Provider) Verify(digest, pub, sig []byte) bool {
	pubKey, err := secp256k1.ParsePubKey(pub)
	if err != nil {
		return false
	}
	parsed, err := secpecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	return parsed.Verify(digest, pubKey)
}

// FingerprintSize is the size of the RIPEMD160(SHA256(pubkey)) account
// fingerprint in bytes.
const FingerprintSize = 20

// AccountID derives the ledger identity of a public key. The 20-byte
// RIPEMD160(SHA256(pubkey)) fingerprint occupies the leading bytes of
// the identity; the tail stays zero. Hashing the full key with two
// different functions keeps the fingerprint safe against length
// extension regardless of the signature scheme.
func AccountID(pub []byte) types.ID {
	inner := sha256.Sum256(pub)
	outer := ripemd160.New()
	outer.Write(inner[:])

	var id types.ID
	copy(id[:FingerprintSize], outer.Sum(nil))
	return id
}
