package repository

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ticketcheck/ticket-check/internal/domain"
	"github.com/ticketcheck/ticket-check/internal/events"
	"github.com/ticketcheck/ticket-check/internal/storage"
	"github.com/ticketcheck/ticket-check/internal/validation"
	"github.com/ticketcheck/ticket-check/pkg/util"
)

// TicketsRepository encapsulates ticket persistence. As with users, lookups
// that find nothing return nil, nil.
type TicketsRepository interface {
	Create(ctx context.Context, input domain.CreateTicketInput) (*domain.Ticket, error)
	List(ctx context.Context) ([]domain.Ticket, error)
	ListByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error)
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	Update(ctx context.Context, id string, input domain.UpdateTicketInput) (*domain.Ticket, error)
	Delete(ctx context.Context, id string) (bool, error)
	Metrics(ctx context.Context) (*domain.TicketMetrics, error)
}

type ticketsRepository struct {
	tickets    *storage.Collection[domain.StoredTicket]
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewTicketsRepository builds the repository over the injected medium. The
// dispatcher may be nil to disable change notifications.
func NewTicketsRepository(store storage.Store, dispatcher events.Dispatcher, logger *zap.Logger) TicketsRepository {
	return &ticketsRepository{
		tickets:    storage.NewCollection[domain.StoredTicket](store, storage.TicketsKey),
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// Create opens a new ticket. The initial status is always ABERTO and both
// timestamps start equal.
func (r *ticketsRepository) Create(ctx context.Context, input domain.CreateTicketInput) (*domain.Ticket, error) {
	normalized := domain.CreateTicketInput{
		Title:     collapseWhitespace(input.Title),
		Details:   strings.TrimSpace(input.Details),
		Requester: collapseWhitespace(input.Requester),
		Deadline:  strings.TrimSpace(input.Deadline),
	}
	if err := validation.Struct(normalized, "createTicket input"); err != nil {
		return nil, err
	}

	now := domain.FormatTimestamp(r.now())
	created := domain.StoredTicket{
		ID:        storage.NewID("tkt"),
		Title:     normalized.Title,
		Details:   normalized.Details,
		Requester: normalized.Requester,
		Deadline:  normalized.Deadline,
		Status:    domain.TicketStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := validation.Struct(created, "createTicket payload"); err != nil {
		return nil, err
	}

	_, err := r.tickets.Persist(ctx, func(_ context.Context, tickets []domain.StoredTicket) ([]domain.StoredTicket, error) {
		return append(tickets, created), nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("ticket created", zap.String("id", created.ID))
	r.publish(ctx, events.EventTicketCreated, created.ID)
	return toTicketEntity(created)
}

// List returns every ticket ordered by creation time, newest first. The
// ordering is a presentation contract, not incidental.
func (r *ticketsRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := r.tickets.Get(ctx)
	if err != nil {
		return nil, err
	}

	entities := make([]domain.Ticket, 0, len(tickets))
	for _, ticket := range tickets {
		entity, err := toTicketEntity(ticket)
		if err != nil {
			return nil, err
		}
		entities = append(entities, *entity)
	}
	sort.SliceStable(entities, func(i, j int) bool {
		return entities[i].CreatedAt.After(entities[j].CreatedAt)
	})
	return entities, nil
}

// ListByStatus filters the sorted list down to one recognized status.
func (r *ticketsRepository) ListByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error) {
	normalized := domain.TicketStatus(strings.ToUpper(strings.TrimSpace(string(status))))
	if !normalized.Valid() {
		return nil, validation.NewError("listTicketsByStatus status", validation.FieldError{
			Path:    validation.RootPath,
			Message: "must be one of ABERTO, ACEITO, ENCERRADO, CANCELADO, IMPROCEDENTE",
		})
	}

	entities, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]domain.Ticket, 0, len(entities))
	for _, entity := range entities {
		if entity.Status == normalized {
			filtered = append(filtered, entity)
		}
	}
	return filtered, nil
}

// GetByID returns the ticket with the given id, or nil when absent.
func (r *ticketsRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	parsedID, err := validation.RequiredID(id, "getTicketById id")
	if err != nil {
		return nil, err
	}

	tickets, err := r.tickets.Get(ctx)
	if err != nil {
		return nil, err
	}
	for _, ticket := range tickets {
		if ticket.ID == parsedID {
			return toTicketEntity(ticket)
		}
	}
	return nil, nil
}

// Update merges the supplied fields into the stored record. A closing status
// must arrive together with a provider and closing details; the validation
// failure leaves the stored ticket untouched. createdAt never changes.
func (r *ticketsRepository) Update(ctx context.Context, id string, input domain.UpdateTicketInput) (*domain.Ticket, error) {
	parsedID, err := validation.RequiredID(id, "updateTicket id")
	if err != nil {
		return nil, err
	}

	normalized := normalizeTicketPatch(input)
	if err := validation.Struct(normalized, "updateTicket input"); err != nil {
		return nil, err
	}

	var updated, existing *domain.StoredTicket
	_, err = r.tickets.Persist(ctx, func(_ context.Context, tickets []domain.StoredTicket) ([]domain.StoredTicket, error) {
		idx := -1
		for i, ticket := range tickets {
			if ticket.ID == parsedID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return tickets, nil
		}

		current := tickets[idx]
		existing = &current
		if normalized.Empty() {
			return tickets, nil
		}

		merged := current
		if normalized.Title != nil {
			merged.Title = *normalized.Title
		}
		if normalized.Details != nil {
			merged.Details = *normalized.Details
		}
		if normalized.Requester != nil {
			merged.Requester = *normalized.Requester
		}
		if normalized.Deadline != nil {
			merged.Deadline = *normalized.Deadline
		}
		if normalized.Status != nil {
			merged.Status = *normalized.Status
		}
		if normalized.Provider != nil {
			merged.Provider = *normalized.Provider
		}
		if normalized.ClosingDetails != nil {
			merged.ClosingDetails = *normalized.ClosingDetails
		}
		merged.UpdatedAt = domain.FormatTimestamp(r.now())

		if err := validation.Struct(merged, "updateTicket payload"); err != nil {
			return nil, err
		}

		next := make([]domain.StoredTicket, len(tickets))
		copy(next, tickets)
		next[idx] = merged
		updated = &merged
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	if updated != nil {
		r.publish(ctx, events.EventTicketUpdated, updated.ID)
		return toTicketEntity(*updated)
	}
	if existing != nil {
		return toTicketEntity(*existing)
	}
	return nil, nil
}

// Delete removes the ticket with the given id and reports whether a record
// was actually removed.
func (r *ticketsRepository) Delete(ctx context.Context, id string) (bool, error) {
	parsedID, err := validation.RequiredID(id, "deleteTicket id")
	if err != nil {
		return false, err
	}

	deleted := false
	_, err = r.tickets.Persist(ctx, func(_ context.Context, tickets []domain.StoredTicket) ([]domain.StoredTicket, error) {
		next := make([]domain.StoredTicket, 0, len(tickets))
		for _, ticket := range tickets {
			if ticket.ID == parsedID {
				deleted = true
				continue
			}
			next = append(next, ticket)
		}
		return next, nil
	})
	if err != nil {
		return false, err
	}

	if deleted {
		r.publish(ctx, events.EventTicketDeleted, parsedID)
	}
	return deleted, nil
}

// Metrics aggregates the whole collection in one read: total count, a count
// per status, and the mean open-to-close time in minutes over tickets that
// reached a closing status. The average is nil until one has.
func (r *ticketsRepository) Metrics(ctx context.Context) (*domain.TicketMetrics, error) {
	tickets, err := r.tickets.Get(ctx)
	if err != nil {
		return nil, err
	}

	metrics := &domain.TicketMetrics{
		ByStatus: make(map[domain.TicketStatus]int, 5),
	}
	for _, status := range domain.AllTicketStatuses() {
		metrics.ByStatus[status] = 0
	}

	var closingMinutes float64
	closed := 0
	for _, ticket := range tickets {
		metrics.TotalCount++
		metrics.ByStatus[ticket.Status]++

		if !ticket.Status.IsClosing() {
			continue
		}
		createdAt, err := domain.ParseTimestamp(ticket.CreatedAt)
		if err != nil {
			return nil, util.NewInternalError(err)
		}
		updatedAt, err := domain.ParseTimestamp(ticket.UpdatedAt)
		if err != nil {
			return nil, util.NewInternalError(err)
		}
		closingMinutes += updatedAt.Sub(createdAt).Minutes()
		closed++
	}

	if closed > 0 {
		avg := closingMinutes / float64(closed)
		metrics.AvgClosingTimeMinutes = &avg
	}
	return metrics, nil
}

func (r *ticketsRepository) publish(ctx context.Context, eventType events.EventType, id string) {
	if r.dispatcher == nil {
		return
	}
	r.dispatcher.Publish(ctx, events.Event{Type: eventType, EntityID: id})
}

func normalizeTicketPatch(input domain.UpdateTicketInput) domain.UpdateTicketInput {
	normalized := domain.UpdateTicketInput{}
	if input.Title != nil {
		title := collapseWhitespace(*input.Title)
		normalized.Title = &title
	}
	if input.Details != nil {
		details := strings.TrimSpace(*input.Details)
		normalized.Details = &details
	}
	if input.Requester != nil {
		requester := collapseWhitespace(*input.Requester)
		normalized.Requester = &requester
	}
	if input.Deadline != nil {
		deadline := strings.TrimSpace(*input.Deadline)
		normalized.Deadline = &deadline
	}
	if input.Status != nil {
		status := domain.TicketStatus(strings.ToUpper(strings.TrimSpace(string(*input.Status))))
		normalized.Status = &status
	}
	if input.Provider != nil {
		provider := collapseWhitespace(*input.Provider)
		normalized.Provider = &provider
	}
	if input.ClosingDetails != nil {
		closingDetails := strings.TrimSpace(*input.ClosingDetails)
		normalized.ClosingDetails = &closingDetails
	}
	return normalized
}

func toTicketEntity(stored domain.StoredTicket) (*domain.Ticket, error) {
	deadline, err := domain.ParseTimestamp(stored.Deadline)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	createdAt, err := domain.ParseTimestamp(stored.CreatedAt)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	updatedAt, err := domain.ParseTimestamp(stored.UpdatedAt)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	return &domain.Ticket{
		ID:             stored.ID,
		Title:          stored.Title,
		Details:        stored.Details,
		Requester:      stored.Requester,
		Deadline:       deadline,
		Status:         stored.Status,
		Provider:       stored.Provider,
		ClosingDetails: stored.ClosingDetails,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}, nil
}
