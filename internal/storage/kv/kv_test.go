package kv_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vennlabs/custodiad/internal/storage/kv"
	"github.com/vennlabs/custodiad/internal/storage/kv/leveldb"
	"github.com/vennlabs/custodiad/internal/storage/kv/pebble"
)

// backends returns one manager per backend, each rooted in a fresh
// temporary directory. Every backend must pass the same contract.
func backends(t *testing.T) map[string]kv.Manager {
	t.Helper()
	return map[string]kv.Manager{
		"pebble":  pebble.NewManager(t.TempDir()),
		"leveldb": leveldb.NewManager(t.TempDir()),
	}
}

func TestReadWriteDelete(t *testing.T) {
	for name, manager := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer manager.Close()
			db, err := manager.Open("contract")
			require.NoError(t, err)

			ctx := context.Background()
			_, err = db.Read(ctx, []byte("missing"))
			require.ErrorIs(t, err, kv.ErrKeyNotFound)

			require.NoError(t, db.Write(ctx, []byte("k"), []byte("v")))
			got, err := db.Read(ctx, []byte("k"))
			require.NoError(t, err)
			require.Equal(t, []byte("v"), got)

			require.NoError(t, db.Delete(ctx, []byte("k")))
			_, err = db.Read(ctx, []byte("k"))
			require.ErrorIs(t, err, kv.ErrKeyNotFound)
		})
	}
}

func TestBatchIsAtomicallyVisible(t *testing.T) {
	for name, manager := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer manager.Close()
			db, err := manager.Open("contract")
			require.NoError(t, err)

			ctx := context.Background()
			require.NoError(t, db.Write(ctx, []byte("stale"), []byte("x")))

			require.NoError(t, db.Batch(ctx, []kv.BatchOperation{
				{Type: kv.BatchPut, Key: []byte("a"), Value: []byte("1")},
				{Type: kv.BatchPut, Key: []byte("b"), Value: []byte("2")},
				{Type: kv.BatchDelete, Key: []byte("stale")},
			}))

			got, err := db.Read(ctx, []byte("a"))
			require.NoError(t, err)
			require.Equal(t, []byte("1"), got)
			_, err = db.Read(ctx, []byte("stale"))
			require.ErrorIs(t, err, kv.ErrKeyNotFound)
		})
	}
}

func TestIteratorRange(t *testing.T) {
	for name, manager := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer manager.Close()
			db, err := manager.Open("contract")
			require.NoError(t, err)

			ctx := context.Background()
			for _, k := range []string{"a", "b", "c", "d"} {
				require.NoError(t, db.Write(ctx, []byte(k), []byte("v-"+k)))
			}

			// [b, d) excludes both ends of the table.
			it, err := db.Iterator(ctx, []byte("b"), []byte("d"))
			require.NoError(t, err)
			defer it.Close()

			var keys []string
			for it.Next() {
				keys = append(keys, string(it.Key()))
			}
			require.NoError(t, it.Error())
			require.Equal(t, []string{"b", "c"}, keys)
		})
	}
}

func TestManagerReopensSameStore(t *testing.T) {
	for name, manager := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer manager.Close()
			first, err := manager.Open("ledger")
			require.NoError(t, err)
			second, err := manager.Open("ledger")
			require.NoError(t, err)

			// Both handles share the underlying store.
			ctx := context.Background()
			require.NoError(t, first.Write(ctx, []byte("k"), []byte("v")))
			got, err := second.Read(ctx, []byte("k"))
			require.NoError(t, err)
			require.Equal(t, []byte("v"), got)
		})
	}
}
