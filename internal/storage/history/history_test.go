package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vennlabs/custodiad/internal/core/op"
	"github.com/vennlabs/custodiad/internal/core/result"
	"github.com/vennlabs/custodiad/internal/core/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(context.Background(), DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestAppendAndQuery(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	var caller types.ID
	caller[0] = 1
	operation := &op.SetHalt{Caller: caller, Enable: true}
	digest, err := op.Digest(operation)
	require.NoError(t, err)

	out := op.ApplyResult{Result: result.Success, Applied: true, Digest: digest}
	at := time.Unix(1_700_000_000, 0).UTC()
	require.NoError(t, st.Append(ctx, operation, out, at))

	records, err := st.ByActor(ctx, caller, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	require.Equal(t, op.KindSetHalt, rec.Kind)
	require.Equal(t, "SetHalt", rec.KindName)
	require.Equal(t, caller, rec.Actor)
	require.True(t, rec.Applied)
	require.Equal(t, result.Success, rec.Result)
	require.Equal(t, at, rec.AppliedAt)
	require.NotEmpty(t, rec.Payload)
}

func TestRecentOrdering(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	var caller types.ID
	caller[0] = 2
	for i := uint64(0); i < 3; i++ {
		operation := &op.CloseOffer{Caller: caller, Venue: op.Sell, OfferID: i + 1}
		digest, err := op.Digest(operation)
		require.NoError(t, err)
		out := op.ApplyResult{Result: result.OfferNotFound, Digest: digest}
		require.NoError(t, st.Append(ctx, operation, out, time.Now()))
	}

	records, err := st.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Greater(t, records[0].Seq, records[1].Seq)
}

func TestDuplicateDigestRejected(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	var caller types.ID
	caller[0] = 3
	operation := &op.AcceptOwnership{Caller: caller}
	digest, err := op.Digest(operation)
	require.NoError(t, err)
	out := op.ApplyResult{Result: result.NoProposal, Digest: digest}

	require.NoError(t, st.Append(ctx, operation, out, time.Now()))
	require.Error(t, st.Append(ctx, operation, out, time.Now()))
}

func TestUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "")
	require.ErrorIs(t, err, ErrUnknownDriver)
}
