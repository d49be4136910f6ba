package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/ticketcheck/ticket-check/internal/domain"
	"github.com/ticketcheck/ticket-check/internal/events"
	"github.com/ticketcheck/ticket-check/internal/repository"
	"github.com/ticketcheck/ticket-check/internal/storage"
	"github.com/ticketcheck/ticket-check/pkg/util"
)

// AuthService coordinates registration, sign-in and session restore over the
// users repository and the session record.
//
// Credentials are stored and compared in plaintext. That mirrors the system
// this core persists data for; see DESIGN.md before shipping anything that
// holds real accounts.
type AuthService struct {
	users      repository.UsersRepository
	session    *storage.SessionStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuthService builds the service. The dispatcher may be nil.
func NewAuthService(users repository.UsersRepository, session *storage.SessionStore, dispatcher events.Dispatcher, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:      users,
		session:    session,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Register creates the account and opens a session for it.
func (s *AuthService) Register(ctx context.Context, input domain.CreateUserInput) (*domain.User, error) {
	user, err := s.users.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := s.session.SetUserID(ctx, user.ID); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventSessionStarted, user.ID)
	return user, nil
}

// SignIn authenticates and persists the session. The error for a bad email
// and a bad password is deliberately the same.
func (s *AuthService) SignIn(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	user, err := s.users.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, util.NewUnauthorized("invalid credentials")
	}
	if err := s.session.SetUserID(ctx, user.ID); err != nil {
		return nil, err
	}
	s.logger.Info("session started", zap.String("userId", user.ID))
	s.publish(ctx, events.EventSessionStarted, user.ID)
	return user, nil
}

// SignOut clears the session. Signing out without a session is a no-op.
func (s *AuthService) SignOut(ctx context.Context) error {
	id, err := s.session.UserID(ctx)
	if err != nil {
		return err
	}
	if err := s.session.Clear(ctx); err != nil {
		return err
	}
	if id != "" {
		s.publish(ctx, events.EventSessionEnded, id)
	}
	return nil
}

// CurrentUser restores the session owner. A session pointing at a user that
// no longer exists is cleared and reported as no session.
func (s *AuthService) CurrentUser(ctx context.Context) (*domain.User, error) {
	id, err := s.session.UserID(ctx)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, nil
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.logger.Warn("session references a missing user; clearing", zap.String("userId", id))
		if err := s.session.Clear(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return user, nil
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, id string) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Publish(ctx, events.Event{Type: eventType, EntityID: id})
}
