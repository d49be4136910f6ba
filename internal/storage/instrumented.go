package storage

import (
	"context"

	"github.com/ticketcheck/ticket-check/internal/observability"
)

// instrumentedStore decorates a Store with per-key operation counters.
type instrumentedStore struct {
	next    Store
	metrics *observability.Metrics
}

// Instrument wraps store so every operation is counted. A nil metrics
// receiver disables recording, so the decorator is always safe to apply.
func Instrument(store Store, metrics *observability.Metrics) Store {
	return &instrumentedStore{next: store, metrics: metrics}
}

func (s *instrumentedStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, ok, err := s.next.Get(ctx, key)
	s.metrics.RecordOperation(key, "get", err)
	return value, ok, err
}

func (s *instrumentedStore) Set(ctx context.Context, key, value string) error {
	err := s.next.Set(ctx, key, value)
	s.metrics.RecordOperation(key, "set", err)
	return err
}

func (s *instrumentedStore) Remove(ctx context.Context, key string) error {
	err := s.next.Remove(ctx, key)
	s.metrics.RecordOperation(key, "remove", err)
	return err
}
