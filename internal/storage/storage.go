// Package storage holds the device-local persistence primitives: a string
// key-value medium, the typed collection store layered on top of it, and the
// session record.
package storage

import "context"

// Store is the persistent key-value medium. Implementations provide durable
// single-key writes; there is no transactional guarantee across keys.
type Store interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes the key; removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
