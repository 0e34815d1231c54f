package snapshot

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vennlabs/custodiad/internal/core/state"
	"github.com/vennlabs/custodiad/internal/core/types"
)

func populated(t *testing.T) *state.State {
	t.Helper()
	s := state.New()

	var owner, tok types.ID
	owner[0], tok[0] = 1, 2

	require.True(t, s.Authority.Initialize(owner).OK())
	require.True(t, s.Book.RegisterToken(tok, 9).OK())
	require.True(t, s.Book.Mint(owner, tok, 42_000).OK())
	s.Nonces[owner] = 7

	_, res := s.Sell.Make(tok, owner, 25)
	require.True(t, res.OK())
	return s
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s := populated(t)

	blob, err := Encode(s)
	require.NoError(t, err)

	restored, err := Decode(blob)
	require.NoError(t, err)

	require.Equal(t, s.Authority, restored.Authority)
	require.Equal(t, s.Sell, restored.Sell)
	require.Equal(t, s.Nonces, restored.Nonces)
	require.Equal(t, s.Book.Balances, restored.Book.Balances)
	require.Equal(t, s.Book.DecimalsByToken, restored.Book.DecimalsByToken)
}

func TestEncodeIsDeterministic(t *testing.T) {
	s := populated(t)

	a, err := Encode(s)
	require.NoError(t, err)
	b, err := Encode(s)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not a snapshot"))
	require.ErrorIs(t, err, ErrCorrupt)

	blob, err := Encode(state.New())
	require.NoError(t, err)
	blob[4] = 99 // unsupported version
	_, err = Decode(blob)
	require.ErrorIs(t, err, ErrCorrupt)
}
