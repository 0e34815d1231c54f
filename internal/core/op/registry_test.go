package op

import (
	"testing"

	"github.com/vennlabs/custodiad/internal/core/types"
)

func TestEncodeDecodeOperation(t *testing.T) {
	var caller, tokenIn, tokenOut types.ID
	caller[0], tokenIn[0], tokenOut[0] = 1, 2, 3

	original := &MakeOffer{
		Caller:   caller,
		Venue:    Buy,
		TokenIn:  tokenIn,
		TokenOut: tokenOut,
		FeeBps:   125,
	}

	data, err := EncodeOperation(original)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeOperation(data)
	if err != nil {
		t.Fatal(err)
	}

	restored, ok := decoded.(*MakeOffer)
	if !ok {
		t.Fatalf("decoded to %T", decoded)
	}
	if *restored != *original {
		t.Fatalf("round trip mismatch: %+v != %+v", restored, original)
	}
}

func TestDecodePreservesDigest(t *testing.T) {
	original := &CreateRequest{
		Leg:       DualLeg,
		OfferID:   7,
		Redeemer:  types.IDFromBytes(make([]byte, 31)), // zero is fine for digest purposes
		Amount:    5,
		ExpiresAt: 99,
		Nonce:     3,
	}
	original.Redeemer[5] = 0xaa

	data, err := EncodeOperation(original)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeOperation(data)
	if err != nil {
		t.Fatal(err)
	}

	a, err := Digest(original)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Digest(decoded)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatal("digest changed across encode/decode")
	}
}

func TestKindFromName(t *testing.T) {
	k, ok := KindFromName("TakeOffer")
	if !ok || k != KindTakeOffer {
		t.Fatalf("got %v %v", k, ok)
	}
	if _, ok := KindFromName("NoSuchOperation"); ok {
		t.Fatal("resolved a nonexistent kind")
	}
}

func TestEveryKindHasFactory(t *testing.T) {
	for k := range kindNames {
		operation, err := NewFromKind(k)
		if err != nil {
			t.Fatalf("%s: %v", k, err)
		}
		if operation.Kind() != k {
			t.Fatalf("%s: factory built %s", k, operation.Kind())
		}
	}
}
