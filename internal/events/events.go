// Package events carries in-process change notifications. Screens subscribe
// to refresh after a repository mutation; nothing here crosses a process
// boundary.
package events

import "time"

// EventType names a kind of change.
type EventType string

const (
	// EventAny subscribes a handler to every published event.
	EventAny EventType = "*"

	EventUserCreated EventType = "user.created"
	EventUserUpdated EventType = "user.updated"
	EventUserDeleted EventType = "user.deleted"

	EventTicketCreated EventType = "ticket.created"
	EventTicketUpdated EventType = "ticket.updated"
	EventTicketDeleted EventType = "ticket.deleted"

	EventSessionStarted EventType = "session.started"
	EventSessionEnded   EventType = "session.ended"
)

// Event describes one change to a stored entity.
type Event struct {
	ID        string
	Type      EventType
	EntityID  string
	Timestamp time.Time
}
