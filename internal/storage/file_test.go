package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, UsersKey)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Set(ctx, UsersKey, `[{"id":"usr_1"}]`))

	value, ok, err := store.Get(ctx, UsersKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `[{"id":"usr_1"}]`, value)

	// Overwrite is in place.
	require.NoError(t, store.Set(ctx, UsersKey, "[]"))
	value, _, err = store.Get(ctx, UsersKey)
	require.NoError(t, err)
	require.Equal(t, "[]", value)

	require.NoError(t, store.Remove(ctx, UsersKey))
	_, ok, err = store.Get(ctx, UsersKey)
	require.NoError(t, err)
	require.False(t, ok)

	// Removing an absent key is not an error.
	require.NoError(t, store.Remove(ctx, UsersKey))
}

func TestFileStoreKeysDoNotCollide(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "@ticket-check/users", "a"))
	require.NoError(t, store.Set(ctx, "@ticket-check_users", "b"))

	first, _, err := store.Get(ctx, "@ticket-check/users")
	require.NoError(t, err)
	second, _, err := store.Get(ctx, "@ticket-check_users")
	require.NoError(t, err)
	require.Equal(t, "a", first)
	require.Equal(t, "b", second)
}
