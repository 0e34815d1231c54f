package op

import (
	"errors"
	"sync"
	"time"

	"github.com/vennlabs/custodiad/internal/core/result"
	"github.com/vennlabs/custodiad/internal/core/state"
	"github.com/vennlabs/custodiad/internal/core/types"
	"github.com/vennlabs/custodiad/internal/crypto"
)

var errNilOperation = errors.New("nil operation")

// Signature is one signer's authorization over an operation digest.
type Signature struct {
	Signer    types.ID
	Algorithm crypto.Algorithm
	PublicKey []byte
	Raw       []byte
}

// Envelope is a submitted operation plus the signatures authorizing it.
type Envelope struct {
	Op         Operation
	Signatures []Signature
}

// ApplyResult reports the outcome of one submission.
type ApplyResult struct {
	Result  result.Result
	Applied bool
	Digest  [32]byte
}

// Engine applies operations to a ledger one at a time. The mutex is the
// serialization layer the core relies on: any two operations touching
// the same slot, nonce account, or balance are ordered through it, and
// each one sees a consistent snapshot via the working view.
type Engine struct {
	mu    sync.Mutex
	state *state.State
	clock func() int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock. Tests use it to pin time.
func WithClock(clock func() int64) Option {
	return func(e *Engine) { e.clock = clock }
}

// NewEngine returns an engine over the ledger.
func NewEngine(s *state.State, opts ...Option) *Engine {
	e := &Engine{
		state: s,
		clock: func() int64 { return time.Now().Unix() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State exposes the underlying ledger for read-only projections. The
// caller must not retain it across operations without going through
// Snapshot.
func (e *Engine) State() *state.State {
	return e.state
}

// Now returns the engine's current clock reading.
func (e *Engine) Now() int64 {
	return e.clock()
}

// Snapshot runs fn under the engine lock so it observes a consistent
// ledger. fn must not mutate.
func (e *Engine) Snapshot(fn func(s *state.State)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.state)
}

// Apply runs one operation end to end: preflight, signature
// verification, authorization and state checks, then an atomic commit.
// A non-nil error means the submission could not even be hashed; every
// domain failure comes back as a Result with Applied false and the
// ledger untouched.
func (e *Engine) Apply(env Envelope) (ApplyResult, error) {
	if env.Op == nil {
		return ApplyResult{}, errNilOperation
	}

	digest, err := Digest(env.Op)
	if err != nil {
		return ApplyResult{}, err
	}
	out := ApplyResult{Digest: digest}

	if res := env.Op.Preflight(); res != result.Success {
		out.Result = res
		return out, nil
	}

	signers, res := verifySignatures(digest, env.Signatures)
	if res != result.Success {
		out.Result = res
		return out, nil
	}
	if _, ok := signers[env.Op.Actor()]; !ok {
		out.Result = result.MissingSigner
		return out, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	w := e.state.Begin()
	kind := env.Op.Kind()

	if !w.Authority.Initialized && kind != KindInitialize {
		out.Result = result.NotInitialized
		return out, nil
	}
	if w.Authority.Halted && kind.Settlement() {
		out.Result = result.Halted
		return out, nil
	}

	ctx := &Context{View: w, Now: e.clock(), signers: signers}
	res = env.Op.Apply(ctx)
	if res == result.Success {
		w.Commit()
		out.Applied = true
	}
	out.Result = res
	return out, nil
}

// verifySignatures checks every submitted signature against the digest
// and returns the set of identities that actually authorized the call.
// A signature whose public key does not hash to its declared signer is
// an unknown signer; a failed verification is a bad signature. Either
// rejects the whole submission.
func verifySignatures(digest [32]byte, sigs []Signature) (map[types.ID]struct{}, result.Result) {
	signers := make(map[types.ID]struct{}, len(sigs))
	for _, sig := range sigs {
		provider, err := crypto.Provider(sig.Algorithm)
		if err != nil {
			return nil, result.BadSignature
		}
		if crypto.AccountID(sig.PublicKey) != sig.Signer {
			return nil, result.UnknownSigner
		}
		if !provider.Verify(digest[:], sig.PublicKey, sig.Raw) {
			return nil, result.BadSignature
		}
		signers[sig.Signer] = struct{}{}
	}
	return signers, result.Success
}

// Sign produces a signature over the operation's canonical digest.
func Sign(operation Operation, provider crypto.SignatureProvider, priv, pub []byte) (Signature, error) {
	digest, err := Digest(operation)
	if err != nil {
		return Signature{}, err
	}
	raw, err := provider.Sign(digest[:], priv)
	if err != nil {
		return Signature{}, err
	}
	return Signature{
		Signer:    crypto.AccountID(pub),
		Algorithm: provider.Algorithm(),
		PublicKey: pub,
		Raw:       raw,
	}, nil
}
