package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ticketcheck/ticket-check/pkg/util"
)

type note struct {
	ID   string `json:"id" validate:"required"`
	Body string `json:"body" validate:"required,min=3"`
}

func newNotes(t *testing.T) (*MemoryStore, *Collection[note]) {
	t.Helper()
	store := NewMemoryStore()
	return store, NewCollection[note](store, "@ticket-check/notes")
}

func TestCollectionGetAbsentKeyIsEmpty(t *testing.T) {
	_, notes := newNotes(t)

	items, err := notes.Get(context.Background())
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestCollectionRoundTrip(t *testing.T) {
	_, notes := newNotes(t)
	ctx := context.Background()

	stored, err := notes.Set(ctx, []note{
		{ID: "n1", Body: "first"},
		{ID: "n2", Body: "second"},
	})
	require.NoError(t, err)
	require.Len(t, stored, 2)

	read, err := notes.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, stored, read)
}

func TestCollectionSetNilWritesEmptyArray(t *testing.T) {
	store, notes := newNotes(t)
	ctx := context.Background()

	_, err := notes.Set(ctx, nil)
	require.NoError(t, err)

	raw, ok, err := store.Get(ctx, notes.Key())
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, "[]", raw)
}

func TestCollectionSetRejectsInvalidItem(t *testing.T) {
	store, notes := newNotes(t)
	ctx := context.Background()

	_, err := notes.Set(ctx, []note{{ID: "n1", Body: "ok"}, {ID: "", Body: "no"}})
	require.Error(t, err)

	// Nothing may reach the medium when validation fails.
	_, ok, getErr := store.Get(ctx, notes.Key())
	require.NoError(t, getErr)
	require.False(t, ok)
}

func TestCollectionGetFailsOnInvalidJSON(t *testing.T) {
	store, notes := newNotes(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, notes.Key(), "{not json"))

	_, err := notes.Get(ctx)
	require.Error(t, err)
	require.True(t, util.IsCorruptStorage(err))
}

func TestCollectionGetFailsWhenAnyElementIsInvalid(t *testing.T) {
	store, notes := newNotes(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, notes.Key(), `[{"id":"n1","body":"fine"},{"id":"n2","body":""}]`))

	_, err := notes.Get(ctx)
	require.True(t, util.IsCorruptStorage(err))
}

func TestPersistAppliesUpdater(t *testing.T) {
	_, notes := newNotes(t)
	ctx := context.Background()

	_, err := notes.Set(ctx, []note{{ID: "n1", Body: "first"}})
	require.NoError(t, err)

	updated, err := notes.Persist(ctx, func(_ context.Context, items []note) ([]note, error) {
		return append(items, note{ID: "n2", Body: "second"}), nil
	})
	require.NoError(t, err)
	require.Len(t, updated, 2)

	read, err := notes.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, updated, read)
}

func TestPersistAbortLeavesCollectionUntouched(t *testing.T) {
	_, notes := newNotes(t)
	ctx := context.Background()

	before, err := notes.Set(ctx, []note{{ID: "n1", Body: "first"}})
	require.NoError(t, err)

	boom := errors.New("abort")
	_, err = notes.Persist(ctx, func(_ context.Context, items []note) ([]note, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	after, err := notes.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, before, after)
}
