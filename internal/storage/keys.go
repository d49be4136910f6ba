package storage

import "github.com/google/uuid"

// Storage keys for the persisted collections and the session record.
const (
	UsersKey   = "@ticket-check/users"
	TicketsKey = "@ticket-check/tickets"
	SessionKey = "@ticket-check/auth-session"
)

// NewID produces a globally-unique opaque id, optionally prefixed
// ("usr" -> "usr_<uuid>").
func NewID(prefix string) string {
	id := uuid.NewString()
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}
