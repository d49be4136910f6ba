package storage

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/ticketcheck/ticket-check/internal/validation"
)

type sessionRecord struct {
	UserID string `json:"userId" validate:"required"`
}

// SessionStore keeps the single current-user record. Corruption here is
// never an error for callers: a stored value that fails to parse or validate
// is deleted and reported as "no session".
type SessionStore struct {
	store  Store
	logger *zap.Logger
}

// NewSessionStore builds the session store over the shared medium.
func NewSessionStore(store Store, logger *zap.Logger) *SessionStore {
	return &SessionStore{store: store, logger: logger}
}

// UserID returns the authenticated user's id, or "" when no session exists.
func (s *SessionStore) UserID(ctx context.Context) (string, error) {
	raw, ok, err := s.store.Get(ctx, SessionKey)
	if err != nil {
		return "", err
	}
	if !ok || raw == "" {
		return "", nil
	}

	var record sessionRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return "", s.discardCorrupt(ctx, err)
	}
	record.UserID = strings.TrimSpace(record.UserID)
	if err := validation.Struct(record, "auth session data"); err != nil {
		return "", s.discardCorrupt(ctx, err)
	}
	return record.UserID, nil
}

// SetUserID persists id as the current session.
func (s *SessionStore) SetUserID(ctx context.Context, id string) error {
	record := sessionRecord{UserID: strings.TrimSpace(id)}
	if err := validation.Struct(record, "setSessionUserId input"); err != nil {
		return err
	}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, SessionKey, string(data))
}

// Clear removes the session record.
func (s *SessionStore) Clear(ctx context.Context) error {
	return s.store.Remove(ctx, SessionKey)
}

func (s *SessionStore) discardCorrupt(ctx context.Context, cause error) error {
	s.logger.Warn("discarding corrupt session record", zap.Error(cause))
	return s.store.Remove(ctx, SessionKey)
}
