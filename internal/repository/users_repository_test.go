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
	"github.com/ticketcheck/ticket-check/pkg/util"
)

func newUsersRepo(t *testing.T) (*usersRepository, *time.Time) {
	t.Helper()
	current := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	repo := NewUsersRepository(storage.NewMemoryStore(), nil, zap.NewNop()).(*usersRepository)
	repo.now = func() time.Time { return current }
	return repo, &current
}

func validUserInput() domain.CreateUserInput {
	return domain.CreateUserInput{
		Name:     "Ana Lima",
		Email:    "ana@example.com",
		Phone:    "(11) 91234-5678",
		Password: "secret1",
	}
}

func TestCreateUserAndGetByID(t *testing.T) {
	repo, _ := newUsersRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, validUserInput())
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "Ana Lima", created.Name)
	require.Equal(t, "ana@example.com", created.Email)
	require.True(t, created.CreatedAt.Equal(created.UpdatedAt))

	fetched, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created, fetched)
}

func TestCreateUserNormalizesInput(t *testing.T) {
	repo, _ := newUsersRepo(t)

	input := validUserInput()
	input.Name = "  Ana   Lima "
	input.Email = " ANA@Example.COM "

	created, err := repo.Create(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, "Ana Lima", created.Name)
	require.Equal(t, "ana@example.com", created.Email)
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	repo, _ := newUsersRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, validUserInput())
	require.NoError(t, err)

	// Case and padding must not defeat the uniqueness check.
	dup := validUserInput()
	dup.Email = "  Ana@EXAMPLE.com "
	_, err = repo.Create(ctx, dup)
	require.True(t, util.IsConflict(err))

	users, listErr := repo.List(ctx)
	require.NoError(t, listErr)
	require.Len(t, users, 1)
}

func TestCreateUserRejectsInvalidInput(t *testing.T) {
	repo, _ := newUsersRepo(t)

	input := validUserInput()
	input.Password = "tiny"

	_, err := repo.Create(context.Background(), input)
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
}

func TestUpdateUserMergesAndBumpsUpdatedAt(t *testing.T) {
	repo, current := newUsersRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, validUserInput())
	require.NoError(t, err)

	*current = current.Add(5 * time.Minute)
	name := "Ana Souza"
	updated, err := repo.Update(ctx, created.ID, domain.UpdateUserInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Ana Souza", updated.Name)
	require.Equal(t, created.Email, updated.Email)
	require.True(t, updated.CreatedAt.Equal(created.CreatedAt))
	require.True(t, updated.UpdatedAt.After(created.UpdatedAt))
}

func TestUpdateUserEmptyPatchDoesNotBumpUpdatedAt(t *testing.T) {
	repo, current := newUsersRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, validUserInput())
	require.NoError(t, err)

	*current = current.Add(5 * time.Minute)
	unchanged, err := repo.Update(ctx, created.ID, domain.UpdateUserInput{})
	require.NoError(t, err)
	require.True(t, unchanged.UpdatedAt.Equal(created.UpdatedAt))
}

func TestUpdateUserMissingIDReturnsNil(t *testing.T) {
	repo, _ := newUsersRepo(t)

	name := "Ana Souza"
	updated, err := repo.Update(context.Background(), "usr_missing", domain.UpdateUserInput{Name: &name})
	require.NoError(t, err)
	require.Nil(t, updated)
}

func TestGetUserByIDAbsentReturnsNil(t *testing.T) {
	repo, _ := newUsersRepo(t)

	user, err := repo.GetByID(context.Background(), "usr_missing")
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestDeleteUser(t *testing.T) {
	repo, _ := newUsersRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, validUserInput())
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	// A second delete finds nothing and says so.
	deleted, err = repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, deleted)
}

func TestLoginMatchesNormalizedEmail(t *testing.T) {
	repo, _ := newUsersRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, validUserInput())
	require.NoError(t, err)

	user, err := repo.Login(ctx, domain.Credentials{Email: " ANA@example.com ", Password: "secret1"})
	require.NoError(t, err)
	require.NotNil(t, user)
	require.Equal(t, created.ID, user.ID)
}

func TestLoginFailureIsIndistinguishable(t *testing.T) {
	repo, _ := newUsersRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, validUserInput())
	require.NoError(t, err)

	wrongPassword, err := repo.Login(ctx, domain.Credentials{Email: "ana@example.com", Password: "wrong99"})
	require.NoError(t, err)

	unknownEmail, err := repo.Login(ctx, domain.Credentials{Email: "nobody@example.com", Password: "secret1"})
	require.NoError(t, err)

	require.Nil(t, wrongPassword)
	require.Nil(t, unknownEmail)
}
