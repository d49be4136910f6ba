package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublishReachesTypedAndWildcardSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var typed, wildcard []Event
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, event Event) {
		typed = append(typed, event)
	})
	dispatcher.Subscribe(EventAny, func(_ context.Context, event Event) {
		wildcard = append(wildcard, event)
	})

	ctx := context.Background()
	dispatcher.Publish(ctx, Event{Type: EventTicketCreated, EntityID: "tkt_1"})
	dispatcher.Publish(ctx, Event{Type: EventUserDeleted, EntityID: "usr_1"})

	require.Len(t, typed, 1)
	require.Equal(t, "tkt_1", typed[0].EntityID)

	require.Len(t, wildcard, 2)
	require.Equal(t, EventUserDeleted, wildcard[1].Type)
}

func TestPublishFillsEventMetadata(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var got Event
	dispatcher.Subscribe(EventSessionStarted, func(_ context.Context, event Event) {
		got = event
	})

	dispatcher.Publish(context.Background(), Event{Type: EventSessionStarted, EntityID: "usr_1"})

	require.NotEmpty(t, got.ID)
	require.False(t, got.Timestamp.IsZero())
}
