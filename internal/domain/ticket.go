package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen     TicketStatus = "ABERTO"
	TicketStatusAccepted TicketStatus = "ACEITO"
	TicketStatusClosed   TicketStatus = "ENCERRADO"
	TicketStatusCanceled TicketStatus = "CANCELADO"
	TicketStatusRejected TicketStatus = "IMPROCEDENTE"
)

// AllTicketStatuses returns every recognized status, in display order.
func AllTicketStatuses() []TicketStatus {
	return []TicketStatus{
		TicketStatusOpen,
		TicketStatusAccepted,
		TicketStatusClosed,
		TicketStatusCanceled,
		TicketStatusRejected,
	}
}

// Valid reports whether s is a recognized status value.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusAccepted, TicketStatusClosed,
		TicketStatusCanceled, TicketStatusRejected:
		return true
	}
	return false
}

// IsClosing reports whether s ends the ticket lifecycle. Transitions into a
// closing status must carry a provider and a closing note in the same update.
func (s TicketStatus) IsClosing() bool {
	return s == TicketStatusClosed || s == TicketStatusCanceled || s == TicketStatusRejected
}

// StoredTicket is the on-disk ticket record. CreatedAt never changes after
// creation; UpdatedAt is bumped on every successful mutation.
type StoredTicket struct {
	ID             string       `json:"id" validate:"required"`
	Title          string       `json:"title" validate:"required,min=3"`
	Details        string       `json:"details"`
	Requester      string       `json:"requester"`
	Deadline       string       `json:"deadline" validate:"required,timestamp"`
	Status         TicketStatus `json:"status" validate:"required,oneof=ABERTO ACEITO ENCERRADO CANCELADO IMPROCEDENTE"`
	Provider       string       `json:"provider,omitempty" validate:"omitempty,min=1"`
	ClosingDetails string       `json:"closingDetails,omitempty" validate:"omitempty,min=1"`
	CreatedAt      string       `json:"createdAt" validate:"required,timestamp"`
	UpdatedAt      string       `json:"updatedAt" validate:"required,timestamp"`
}

// Ticket is the entity view handed to callers.
type Ticket struct {
	ID             string
	Title          string
	Details        string
	Requester      string
	Deadline       time.Time
	Status         TicketStatus
	Provider       string
	ClosingDetails string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CreateTicketInput describes the creation payload. The initial status is
// always ABERTO; callers cannot choose it.
type CreateTicketInput struct {
	Title     string `json:"title" validate:"required,min=3"`
	Details   string `json:"details"`
	Requester string `json:"requester"`
	Deadline  string `json:"deadline" validate:"required,timestamp"`
}

// UpdateTicketInput is a partial patch; nil fields are left untouched. A
// struct-level rule enforces that a closing status carries both a provider
// and closing details in the same patch.
type UpdateTicketInput struct {
	Title          *string       `json:"title,omitempty" validate:"omitempty,min=3"`
	Details        *string       `json:"details,omitempty"`
	Requester      *string       `json:"requester,omitempty"`
	Deadline       *string       `json:"deadline,omitempty" validate:"omitempty,timestamp"`
	Status         *TicketStatus `json:"status,omitempty" validate:"omitempty,oneof=ABERTO ACEITO ENCERRADO CANCELADO IMPROCEDENTE"`
	Provider       *string       `json:"provider,omitempty" validate:"omitempty,min=1"`
	ClosingDetails *string       `json:"closingDetails,omitempty" validate:"omitempty,min=1"`
}

// Empty reports whether the patch carries no fields at all.
func (in UpdateTicketInput) Empty() bool {
	return in.Title == nil && in.Details == nil && in.Requester == nil &&
		in.Deadline == nil && in.Status == nil && in.Provider == nil &&
		in.ClosingDetails == nil
}

// TicketMetrics aggregates the whole collection in a single pass. Every
// status key is always present; AvgClosingTimeMinutes is nil until at least
// one ticket has reached a closing status.
type TicketMetrics struct {
	TotalCount            int
	ByStatus              map[TicketStatus]int
	AvgClosingTimeMinutes *float64
}
