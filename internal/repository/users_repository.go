package repository

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ticketcheck/ticket-check/internal/domain"
	"github.com/ticketcheck/ticket-check/internal/events"
	"github.com/ticketcheck/ticket-check/internal/storage"
	"github.com/ticketcheck/ticket-check/internal/validation"
	"github.com/ticketcheck/ticket-check/pkg/util"
)

// UsersRepository defines persistence access for users. Lookups that find
// nothing return a nil entity and a nil error; absence is a normal outcome,
// not a failure.
type UsersRepository interface {
	Create(ctx context.Context, input domain.CreateUserInput) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, id string, input domain.UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, id string) (bool, error)
	Login(ctx context.Context, creds domain.Credentials) (*domain.User, error)
}

type usersRepository struct {
	users      *storage.Collection[domain.StoredUser]
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewUsersRepository builds the repository over the injected medium. The
// dispatcher may be nil to disable change notifications.
func NewUsersRepository(store storage.Store, dispatcher events.Dispatcher, logger *zap.Logger) UsersRepository {
	return &usersRepository{
		users:      storage.NewCollection[domain.StoredUser](store, storage.UsersKey),
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// Create registers a new user. The uniqueness scan and the append happen in
// one read-modify-write pass; a duplicate normalized email aborts the whole
// write with a conflict.
func (r *usersRepository) Create(ctx context.Context, input domain.CreateUserInput) (*domain.User, error) {
	normalized := domain.CreateUserInput{
		Name:     collapseWhitespace(input.Name),
		Email:    normalizeEmail(input.Email),
		Phone:    strings.TrimSpace(input.Phone),
		Password: strings.TrimSpace(input.Password),
	}
	if err := validation.Struct(normalized, "createUser input"); err != nil {
		return nil, err
	}

	var created domain.StoredUser
	_, err := r.users.Persist(ctx, func(_ context.Context, users []domain.StoredUser) ([]domain.StoredUser, error) {
		for _, user := range users {
			if user.Email == normalized.Email {
				return nil, util.NewConflict("email already in use", map[string]any{"email": normalized.Email})
			}
		}

		now := domain.FormatTimestamp(r.now())
		created = domain.StoredUser{
			ID:        storage.NewID("usr"),
			Name:      normalized.Name,
			Email:     normalized.Email,
			Phone:     normalized.Phone,
			Password:  normalized.Password,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := validation.Struct(created, "createUser payload"); err != nil {
			return nil, err
		}
		return append(users, created), nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("user created", zap.String("id", created.ID))
	r.publish(ctx, events.EventUserCreated, created.ID)
	return toUserEntity(created)
}

// GetByID returns the user with the given id, or nil when absent.
func (r *usersRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	parsedID, err := validation.RequiredID(id, "getUserById id")
	if err != nil {
		return nil, err
	}

	users, err := r.users.Get(ctx)
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		if user.ID == parsedID {
			return toUserEntity(user)
		}
	}
	return nil, nil
}

// List returns every stored user as an entity.
func (r *usersRepository) List(ctx context.Context) ([]domain.User, error) {
	users, err := r.users.Get(ctx)
	if err != nil {
		return nil, err
	}

	entities := make([]domain.User, 0, len(users))
	for _, user := range users {
		entity, err := toUserEntity(user)
		if err != nil {
			return nil, err
		}
		entities = append(entities, *entity)
	}
	return entities, nil
}

// Update merges the supplied fields into the stored record. A missing id
// yields nil; an empty patch returns the record as-is without bumping
// updatedAt.
func (r *usersRepository) Update(ctx context.Context, id string, input domain.UpdateUserInput) (*domain.User, error) {
	parsedID, err := validation.RequiredID(id, "updateUser id")
	if err != nil {
		return nil, err
	}

	normalized := normalizeUserPatch(input)
	if err := validation.Struct(normalized, "updateUser input"); err != nil {
		return nil, err
	}

	var updated, existing *domain.StoredUser
	_, err = r.users.Persist(ctx, func(_ context.Context, users []domain.StoredUser) ([]domain.StoredUser, error) {
		idx := -1
		for i, user := range users {
			if user.ID == parsedID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return users, nil
		}

		current := users[idx]
		existing = &current
		if normalized.Empty() {
			return users, nil
		}

		merged := current
		if normalized.Name != nil {
			merged.Name = *normalized.Name
		}
		if normalized.Email != nil {
			merged.Email = *normalized.Email
		}
		if normalized.Phone != nil {
			merged.Phone = *normalized.Phone
		}
		if normalized.Password != nil {
			merged.Password = *normalized.Password
		}
		merged.UpdatedAt = domain.FormatTimestamp(r.now())

		if err := validation.Struct(merged, "updateUser payload"); err != nil {
			return nil, err
		}

		next := make([]domain.StoredUser, len(users))
		copy(next, users)
		next[idx] = merged
		updated = &merged
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	if updated != nil {
		r.publish(ctx, events.EventUserUpdated, updated.ID)
		return toUserEntity(*updated)
	}
	if existing != nil {
		return toUserEntity(*existing)
	}
	return nil, nil
}

// Delete removes the user with the given id and reports whether a record
// was actually removed.
func (r *usersRepository) Delete(ctx context.Context, id string) (bool, error) {
	parsedID, err := validation.RequiredID(id, "deleteUser id")
	if err != nil {
		return false, err
	}

	deleted := false
	_, err = r.users.Persist(ctx, func(_ context.Context, users []domain.StoredUser) ([]domain.StoredUser, error) {
		next := make([]domain.StoredUser, 0, len(users))
		for _, user := range users {
			if user.ID == parsedID {
				deleted = true
				continue
			}
			next = append(next, user)
		}
		return next, nil
	})
	if err != nil {
		return false, err
	}

	if deleted {
		r.publish(ctx, events.EventUserDeleted, parsedID)
	}
	return deleted, nil
}

// Login matches credentials against the stored users. No-such-email and
// wrong-password both come back as nil, nil so callers cannot tell which
// emails are registered.
func (r *usersRepository) Login(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	normalized := domain.Credentials{
		Email:    normalizeEmail(creds.Email),
		Password: strings.TrimSpace(creds.Password),
	}
	if err := validation.Struct(normalized, "loginUser input"); err != nil {
		return nil, err
	}

	users, err := r.users.Get(ctx)
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		if user.Email != normalized.Email {
			continue
		}
		if user.Password != normalized.Password {
			return nil, nil
		}
		return toUserEntity(user)
	}
	return nil, nil
}

func (r *usersRepository) publish(ctx context.Context, eventType events.EventType, id string) {
	if r.dispatcher == nil {
		return
	}
	r.dispatcher.Publish(ctx, events.Event{Type: eventType, EntityID: id})
}

func normalizeUserPatch(input domain.UpdateUserInput) domain.UpdateUserInput {
	normalized := domain.UpdateUserInput{}
	if input.Name != nil {
		name := collapseWhitespace(*input.Name)
		normalized.Name = &name
	}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		normalized.Email = &email
	}
	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		normalized.Phone = &phone
	}
	if input.Password != nil {
		password := strings.TrimSpace(*input.Password)
		normalized.Password = &password
	}
	return normalized
}

func toUserEntity(stored domain.StoredUser) (*domain.User, error) {
	createdAt, err := domain.ParseTimestamp(stored.CreatedAt)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	updatedAt, err := domain.ParseTimestamp(stored.UpdatedAt)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	return &domain.User{
		ID:        stored.ID,
		Name:      stored.Name,
		Email:     stored.Email,
		Phone:     stored.Phone,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}
