// Package snapshot persists the whole ledger as one compressed blob.
// The encoding is canonical CBOR so two nodes holding the same ledger
// produce byte-identical snapshots, framed with an lz4 block and a
// fixed header carrying the uncompressed size.
package snapshot

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pierrec/lz4"
	"github.com/ugorji/go/codec"

	"github.com/vennlabs/custodiad/internal/core/state"
	"github.com/vennlabs/custodiad/internal/storage/kv"
)

var (
	// ErrNoSnapshot is returned when the store holds no snapshot yet.
	ErrNoSnapshot = errors.New("no snapshot stored")

	// ErrCorrupt is returned when a stored snapshot fails framing or
	// decoding checks.
	ErrCorrupt = errors.New("corrupt snapshot")
)

var magic = []byte{'C', 'S', 'N', 'P'}

const (
	version    = 1
	headerSize = 4 + 1 + 1 + 8 // magic, version, codec flag, uncompressed size

	codecRaw = 0
	codecLZ4 = 1
)

// currentKey is where the live snapshot lives in the kv store.
var currentKey = []byte("state/current")

var cborHandle = func() *codec.CborHandle {
	h := new(codec.CborHandle)
	h.Canonical = true
	return h
}()

// Encode serializes and compresses a ledger.
func Encode(s *state.State) ([]byte, error) {
	var raw bytes.Buffer
	if err := codec.NewEncoder(&raw, cborHandle).Encode(s); err != nil {
		return nil, fmt.Errorf("encode ledger: %w", err)
	}

	compressed := make([]byte, lz4.CompressBlockBound(raw.Len()))
	n, err := lz4.CompressBlock(raw.Bytes(), compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("compress ledger: %w", err)
	}

	// n == 0 means the block was incompressible; store it raw.
	body := compressed[:n]
	flag := byte(codecLZ4)
	if n == 0 {
		body = raw.Bytes()
		flag = codecRaw
	}

	out := make([]byte, headerSize+len(body))
	copy(out, magic)
	out[4] = version
	out[5] = flag
	binary.BigEndian.PutUint64(out[6:headerSize], uint64(raw.Len()))
	copy(out[headerSize:], body)
	return out, nil
}

// Decode reverses Encode.
func Decode(blob []byte) (*state.State, error) {
	if len(blob) < headerSize || !bytes.Equal(blob[:4], magic) {
		return nil, ErrCorrupt
	}
	if blob[4] != version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, blob[4])
	}

	size := binary.BigEndian.Uint64(blob[6:headerSize])
	var raw []byte
	switch blob[5] {
	case codecRaw:
		raw = blob[headerSize:]
		if uint64(len(raw)) != size {
			return nil, fmt.Errorf("%w: size mismatch", ErrCorrupt)
		}
	case codecLZ4:
		raw = make([]byte, size)
		n, err := lz4.UncompressBlock(blob[headerSize:], raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if uint64(n) != size {
			return nil, fmt.Errorf("%w: size mismatch", ErrCorrupt)
		}
	default:
		return nil, fmt.Errorf("%w: unknown codec %d", ErrCorrupt, blob[5])
	}

	s := state.New()
	if err := codec.NewDecoder(bytes.NewReader(raw), cborHandle).Decode(s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return s, nil
}

// Store persists and restores ledger snapshots through a kv store.
type Store struct {
	db kv.DB
}

func NewStore(db kv.DB) *Store {
	return &Store{db: db}
}

// Save writes the ledger as the current snapshot.
func (st *Store) Save(ctx context.Context, s *state.State) error {
	blob, err := Encode(s)
	if err != nil {
		return err
	}
	return st.db.Write(ctx, currentKey, blob)
}

// Load restores the current snapshot, or ErrNoSnapshot when the store
// is empty.
func (st *Store) Load(ctx context.Context) (*state.State, error) {
	blob, err := st.db.Read(ctx, currentKey)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, ErrNoSnapshot
		}
		return nil, err
	}
	return Decode(blob)
}
