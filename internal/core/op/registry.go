package op

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ugorji/go/codec"
)

// ErrUnknownKind is returned when an operation kind has no registered
// factory.
var ErrUnknownKind = errors.New("unknown operation kind")

var factories = map[Kind]func() Operation{}

// Register installs a factory for an operation kind. Registration
// happens at package init; duplicate kinds are a programming error.
func Register(k Kind, factory func() Operation) {
	if _, exists := factories[k]; exists {
		panic(fmt.Sprintf("operation kind %s registered twice", k))
	}
	factories[k] = factory
}

// NewFromKind builds an empty operation of the given kind.
func NewFromKind(k Kind) (Operation, error) {
	factory, ok := factories[k]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, k)
	}
	return factory(), nil
}

// KindFromName resolves an operation kind by its wire name.
func KindFromName(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// rawWireOp is the decode-side shape of wireOp: the body stays raw until
// the kind has selected a concrete type.
type rawWireOp struct {
	Kind Kind
	Body codec.Raw
}

var rawHandle = func() *codec.CborHandle {
	h := new(codec.CborHandle)
	h.Canonical = true
	h.Raw = true
	return h
}()

// DecodeOperation reverses EncodeOperation.
func DecodeOperation(data []byte) (Operation, error) {
	var raw rawWireOp
	if err := codec.NewDecoder(bytes.NewReader(data), rawHandle).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode operation frame: %w", err)
	}
	operation, err := NewFromKind(raw.Kind)
	if err != nil {
		return nil, err
	}
	if err := codec.NewDecoder(bytes.NewReader(raw.Body), cborHandle).Decode(operation); err != nil {
		return nil, fmt.Errorf("decode %s body: %w", raw.Kind, err)
	}
	return operation, nil
}

func init() {
	Register(KindInitialize, func() Operation { return new(Initialize) })
	Register(KindProposeOwner, func() Operation { return new(ProposeOwner) })
	Register(KindAcceptOwnership, func() Operation { return new(AcceptOwnership) })
	Register(KindAddAdmin, func() Operation { return new(AddAdmin) })
	Register(KindRemoveAdmin, func() Operation { return new(RemoveAdmin) })
	Register(KindAddApprover, func() Operation { return new(AddApprover) })
	Register(KindRemoveApprover, func() Operation { return new(RemoveApprover) })
	Register(KindSetHalt, func() Operation { return new(SetHalt) })
	Register(KindRegisterToken, func() Operation { return new(RegisterToken) })
	Register(KindMakeOffer, func() Operation { return new(MakeOffer) })
	Register(KindUpdateOfferFee, func() Operation { return new(UpdateOfferFee) })
	Register(KindCloseOffer, func() Operation { return new(CloseOffer) })
	Register(KindAddVector, func() Operation { return new(AddVector) })
	Register(KindDeleteVector, func() Operation { return new(DeleteVector) })
	Register(KindDeleteAllVectors, func() Operation { return new(DeleteAllVectors) })
	Register(KindTakeOffer, func() Operation { return new(TakeOffer) })
	Register(KindTakeOfferViaIntermediary, func() Operation { return new(TakeOfferViaIntermediary) })
	Register(KindMakeSingleRedemption, func() Operation { return new(MakeSingleRedemption) })
	Register(KindUpdateSingleRedemptionFee, func() Operation { return new(UpdateSingleRedemptionFee) })
	Register(KindCloseSingleRedemption, func() Operation { return new(CloseSingleRedemption) })
	Register(KindTakeSingleRedemption, func() Operation { return new(TakeSingleRedemption) })
	Register(KindMakeDualRedemption, func() Operation { return new(MakeDualRedemption) })
	Register(KindUpdateDualRedemptionFee, func() Operation { return new(UpdateDualRedemptionFee) })
	Register(KindCloseDualRedemption, func() Operation { return new(CloseDualRedemption) })
	Register(KindTakeDualRedemption, func() Operation { return new(TakeDualRedemption) })
	Register(KindCreateRequest, func() Operation { return new(CreateRequest) })
}
