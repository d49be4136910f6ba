package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ticketcheck/ticket-check/internal/validation"
	"github.com/ticketcheck/ticket-check/pkg/util"
)

// Updater computes the next state of a collection from its current state.
// Raising an error aborts the write and leaves the stored collection
// untouched.
type Updater[T any] func(ctx context.Context, items []T) ([]T, error)

// Collection persists a named JSON array of schema-validated records. It
// exclusively owns serialization and validation; repositories never touch
// the raw medium.
type Collection[T any] struct {
	store Store
	key   string
}

// NewCollection binds a record type to its storage key.
func NewCollection[T any](store Store, key string) *Collection[T] {
	return &Collection[T]{store: store, key: key}
}

// Key returns the storage key the collection lives under.
func (c *Collection[T]) Key() string {
	return c.key
}

// Get reads and validates the whole collection. An absent key is an empty
// collection; a blob that is not a JSON array, or any element failing
// validation, fails the whole read. Consistency over availability.
func (c *Collection[T]) Get(ctx context.Context) ([]T, error) {
	raw, ok, err := c.store.Get(ctx, c.key)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, util.NewCorruptStorage(c.key,
			fmt.Sprintf("storage key %q contains invalid JSON data", c.key), err)
	}
	for i, item := range items {
		if err := validation.Struct(item, fmt.Sprintf("storage key %q", c.key)); err != nil {
			return nil, util.NewCorruptStorage(c.key,
				fmt.Sprintf("storage key %q item %d failed validation", c.key, i), err)
		}
	}
	return items, nil
}

// Set validates and writes the full collection, returning what was stored.
func (c *Collection[T]) Set(ctx context.Context, items []T) ([]T, error) {
	if items == nil {
		items = []T{}
	}
	for i, item := range items {
		if err := validation.Struct(item, fmt.Sprintf("setCollection(%q) item %d", c.key, i)); err != nil {
			return nil, err
		}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	if err := c.store.Set(ctx, c.key, string(data)); err != nil {
		return nil, err
	}
	return items, nil
}

// Persist is the sole read-modify-write primitive: read the current
// collection, apply updater, write the result. It is not protected against
// concurrent interleaving on the same key; callers on a single logical
// thread of control are safe.
func (c *Collection[T]) Persist(ctx context.Context, updater Updater[T]) ([]T, error) {
	items, err := c.Get(ctx)
	if err != nil {
		return nil, err
	}
	next, err := updater(ctx, items)
	if err != nil {
		return nil, err
	}
	return c.Set(ctx, next)
}
