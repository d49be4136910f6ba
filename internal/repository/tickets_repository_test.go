package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ticketcheck/ticket-check/internal/domain"
	"github.com/ticketcheck/ticket-check/internal/storage"
	"github.com/ticketcheck/ticket-check/internal/validation"
)

func newTicketsRepo(t *testing.T) (*ticketsRepository, *time.Time) {
	t.Helper()
	current := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	repo := NewTicketsRepository(storage.NewMemoryStore(), nil, zap.NewNop()).(*ticketsRepository)
	repo.now = func() time.Time { return current }
	return repo, &current
}

func validTicketInput(title string) domain.CreateTicketInput {
	return domain.CreateTicketInput{
		Title:     title,
		Details:   "printer on floor 3 jams on every job",
		Requester: "Ana Lima",
		Deadline:  "2026-09-30T12:00:00Z",
	}
}

func TestCreateTicketStartsOpen(t *testing.T) {
	repo, _ := newTicketsRepo(t)

	created, err := repo.Create(context.Background(), validTicketInput("  Broken   printer "))
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusOpen, created.Status)
	require.Equal(t, "Broken printer", created.Title)
	require.Empty(t, created.Provider)
	require.True(t, created.CreatedAt.Equal(created.UpdatedAt))
}

func TestCreateTicketRejectsBadDeadline(t *testing.T) {
	repo, _ := newTicketsRepo(t)

	input := validTicketInput("Broken printer")
	input.Deadline = "30/09/2026"

	_, err := repo.Create(context.Background(), input)
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
}

func TestListOrdersNewestFirst(t *testing.T) {
	repo, current := newTicketsRepo(t)
	ctx := context.Background()

	first, err := repo.Create(ctx, validTicketInput("First ticket"))
	require.NoError(t, err)
	*current = current.Add(time.Minute)
	second, err := repo.Create(ctx, validTicketInput("Second ticket"))
	require.NoError(t, err)
	*current = current.Add(time.Minute)
	third, err := repo.Create(ctx, validTicketInput("Third ticket"))
	require.NoError(t, err)

	tickets, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, tickets, 3)
	require.Equal(t, third.ID, tickets[0].ID)
	require.Equal(t, second.ID, tickets[1].ID)
	require.Equal(t, first.ID, tickets[2].ID)
}

func TestListByStatusFiltersAndNormalizes(t *testing.T) {
	repo, _ := newTicketsRepo(t)
	ctx := context.Background()

	open, err := repo.Create(ctx, validTicketInput("Stays open"))
	require.NoError(t, err)
	other, err := repo.Create(ctx, validTicketInput("Gets accepted"))
	require.NoError(t, err)

	accepted := domain.TicketStatusAccepted
	_, err = repo.Update(ctx, other.ID, domain.UpdateTicketInput{Status: &accepted})
	require.NoError(t, err)

	// Lowercase input is folded to the canonical value.
	tickets, err := repo.ListByStatus(ctx, domain.TicketStatus(" aberto "))
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	require.Equal(t, open.ID, tickets[0].ID)
}

func TestListByStatusRejectsUnknownStatus(t *testing.T) {
	repo, _ := newTicketsRepo(t)

	_, err := repo.ListByStatus(context.Background(), "PENDING")
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
}

func TestCloseTicketRequiresProviderAndClosingDetails(t *testing.T) {
	repo, _ := newTicketsRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, validTicketInput("Broken printer"))
	require.NoError(t, err)

	closed := domain.TicketStatusClosed
	_, err = repo.Update(ctx, created.ID, domain.UpdateTicketInput{Status: &closed})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)

	// The rejected update must not have touched the stored record.
	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusOpen, stored.Status)
	require.True(t, stored.UpdatedAt.Equal(created.UpdatedAt))
}

func TestCloseTicketWithAuditFields(t *testing.T) {
	repo, current := newTicketsRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, validTicketInput("Broken printer"))
	require.NoError(t, err)

	*current = current.Add(10 * time.Minute)
	closed := domain.TicketStatusClosed
	provider := "Ana"
	note := "replaced the fuser unit"
	updated, err := repo.Update(ctx, created.ID, domain.UpdateTicketInput{
		Status:         &closed,
		Provider:       &provider,
		ClosingDetails: &note,
	})
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusClosed, updated.Status)
	require.Equal(t, "Ana", updated.Provider)
	require.Equal(t, "replaced the fuser unit", updated.ClosingDetails)
	require.True(t, updated.CreatedAt.Equal(created.CreatedAt))
	require.True(t, updated.UpdatedAt.After(created.UpdatedAt))
}

func TestUpdateTicketEmptyPatchDoesNotBumpUpdatedAt(t *testing.T) {
	repo, current := newTicketsRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, validTicketInput("Broken printer"))
	require.NoError(t, err)

	*current = current.Add(time.Hour)
	unchanged, err := repo.Update(ctx, created.ID, domain.UpdateTicketInput{})
	require.NoError(t, err)
	require.True(t, unchanged.UpdatedAt.Equal(created.UpdatedAt))
}

func TestDeleteTicketIsIdempotent(t *testing.T) {
	repo, _ := newTicketsRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, validTicketInput("Broken printer"))
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, deleted)
}

func TestMetricsOnEmptyCollection(t *testing.T) {
	repo, _ := newTicketsRepo(t)

	metrics, err := repo.Metrics(context.Background())
	require.NoError(t, err)
	require.Zero(t, metrics.TotalCount)
	require.Nil(t, metrics.AvgClosingTimeMinutes)
	require.Len(t, metrics.ByStatus, 5)
	for _, status := range domain.AllTicketStatuses() {
		require.Zero(t, metrics.ByStatus[status])
	}
}

func TestMetricsAveragesClosingTime(t *testing.T) {
	repo, current := newTicketsRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, validTicketInput("Closed later"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, validTicketInput("Still open"))
	require.NoError(t, err)

	*current = current.Add(10 * time.Minute)
	canceled := domain.TicketStatusCanceled
	provider := "Ana"
	note := "requester withdrew the report"
	_, err = repo.Update(ctx, created.ID, domain.UpdateTicketInput{
		Status:         &canceled,
		Provider:       &provider,
		ClosingDetails: &note,
	})
	require.NoError(t, err)

	metrics, err := repo.Metrics(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, metrics.TotalCount)
	require.Equal(t, 1, metrics.ByStatus[domain.TicketStatusOpen])
	require.Equal(t, 1, metrics.ByStatus[domain.TicketStatusCanceled])
	require.NotNil(t, metrics.AvgClosingTimeMinutes)
	require.InDelta(t, 10, *metrics.AvgClosingTimeMinutes, 0.001)
}
