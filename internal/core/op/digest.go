package op

import (
	"bytes"
	"crypto/sha256"

	"github.com/ugorji/go/codec"
)

// digestPrefix domain-separates operation digests from every other hash
// in the system.
var digestPrefix = []byte{'O', 'P', 'D', 0x00}

var cborHandle = func() *codec.CborHandle {
	h := new(codec.CborHandle)
	h.Canonical = true
	return h
}()

// wireOp is the canonical signing form: the kind tag pins the concrete
// type so two operations with colliding field layouts can never share a
// digest.
type wireOp struct {
	Kind Kind
	Body Operation
}

// Digest computes the canonical signing digest of an operation:
// SHA-256 over a domain prefix plus the deterministic CBOR encoding of
// the kind-tagged operation. Every signer and every verifier derives
// the same bytes for the same operation.
func Digest(operation Operation) ([32]byte, error) {
	var buf bytes.Buffer
	buf.Write(digestPrefix)
	if err := codec.NewEncoder(&buf, cborHandle).Encode(wireOp{Kind: operation.Kind(), Body: operation}); err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(buf.Bytes()), nil
}

// EncodeOperation returns the canonical CBOR encoding of an operation,
// used by the history store and the snapshot log.
func EncodeOperation(operation Operation) ([]byte, error) {
	var buf bytes.Buffer
	if err := codec.NewEncoder(&buf, cborHandle).Encode(wireOp{Kind: operation.Kind(), Body: operation}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
