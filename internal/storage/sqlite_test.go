package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "kv.db"), zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	_, ok, err := store.Get(ctx, TicketsKey)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Set(ctx, TicketsKey, "[]"))

	value, ok, err := store.Get(ctx, TicketsKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "[]", value)

	// Set on an existing key upserts.
	require.NoError(t, store.Set(ctx, TicketsKey, `[{"id":"tkt_1"}]`))
	value, _, err = store.Get(ctx, TicketsKey)
	require.NoError(t, err)
	require.Equal(t, `[{"id":"tkt_1"}]`, value)

	require.NoError(t, store.Remove(ctx, TicketsKey))
	_, ok, err = store.Get(ctx, TicketsKey)
	require.NoError(t, err)
	require.False(t, ok)
}
