// Copyright (c) 2026 Corven. All rights reserved.
// Author: dev@corven.io

package user_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corven-io/corven/internal/platform/apperr"
	"github.com/corven-io/corven/internal/platform/crud"
	"github.com/corven-io/corven/internal/platform/dberr"
	"github.com/corven-io/corven/internal/platform/sec"
	"github.com/corven-io/corven/internal/users/user"
	"github.com/corven-io/corven/pkg/uuidv7"
)

// memoryStore backs the service tests with the generic in-memory store
// plus linear scans for the username and email lookups.
type memoryStore struct {
	*crud.MemoryStore[*user.User, string]
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		MemoryStore: crud.NewMemoryStore[*user.User, string](
			uuidv7.New,
			func(original *user.User) *user.User {
				copied := *original
				return &copied
			},
		),
	}
}

func (store *memoryStore) findBy(ctx context.Context, match func(*user.User) bool) (*user.User, error) {
	all, err := store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, candidate := range all {
		if match(candidate) {
			return candidate, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (store *memoryStore) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	return store.findBy(ctx, func(u *user.User) bool { return u.Username == username })
}

func (store *memoryStore) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return store.findBy(ctx, func(u *user.User) bool { return u.Email == email })
}

func (store *memoryStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := store.FindByUsername(ctx, username)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (store *memoryStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := store.FindByEmail(ctx, email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func newTestService() (*user.Service, *memoryStore) {
	store := newMemoryStore()
	return user.NewService(store, slog.Default()), store
}

func mustCreate(t *testing.T, service *user.Service, username, email, password string) *user.User {
	t.Helper()
	created, err := service.Create(context.Background(), &user.User{
		Username:     username,
		Email:        email,
		PasswordHash: password,
	})
	require.NoError(t, err)
	return created
}

func TestCreateHashesPassword(t *testing.T) {
	t.Parallel()

	service, _ := newTestService()
	created := mustCreate(t, service, "alice", "alice@example.com", "secret123")

	assert.NotEqual(t, "secret123", created.PasswordHash)
	assert.True(t, sec.LooksHashed(created.PasswordHash))
	assert.True(t, sec.CheckPasswordHash("secret123", created.PasswordHash))
	assert.True(t, created.IsActive())
}

func TestCreateRejectsDuplicateUsername(t *testing.T) {
	t.Parallel()

	service, _ := newTestService()
	mustCreate(t, service, "alice", "alice@example.com", "secret123")

	_, err := service.Create(context.Background(), &user.User{
		Username:     "alice",
		Email:        "other@example.com",
		PasswordHash: "secret123",
	})
	requireCode(t, err, "VALIDATION_ERROR")
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	t.Parallel()

	service, _ := newTestService()
	mustCreate(t, service, "alice", "alice@example.com", "secret123")

	_, err := service.Create(context.Background(), &user.User{
		Username:     "bob",
		Email:        "alice@example.com",
		PasswordHash: "secret123",
	})
	requireCode(t, err, "VALIDATION_ERROR")
}

func TestSoftDeletedAccountStillReservesIdentity(t *testing.T) {
	t.Parallel()

	service, _ := newTestService()
	created := mustCreate(t, service, "alice", "alice@example.com", "secret123")

	require.NoError(t, service.SoftDelete(context.Background(), created.GetID()))

	// The username stays taken even though the account is gone from
	// active views.
	available, err := service.UsernameAvailable(context.Background(), "alice")
	require.NoError(t, err)
	assert.False(t, available)

	_, err = service.GetByUsername(context.Background(), "alice")
	requireCode(t, err, "NOT_FOUND")

	_, err = service.Create(context.Background(), &user.User{
		Username:     "alice",
		Email:        "new@example.com",
		PasswordHash: "secret123",
	})
	requireCode(t, err, "VALIDATION_ERROR")
}

func TestUpdateMergesProfileFields(t *testing.T) {
	t.Parallel()

	service, _ := newTestService()
	created := mustCreate(t, service, "alice", "alice@example.com", "secret123")
	originalHash := created.PasswordHash

	updated, err := service.Update(context.Background(), created.GetID(), &user.User{
		FirstName:   "Alice",
		PhoneNumber: "+1-555-0100",
	})
	require.NoError(t, err)

	assert.Equal(t, "Alice", updated.FirstName)
	assert.Equal(t, "+1-555-0100", updated.PhoneNumber)
	assert.Equal(t, "alice", updated.Username, "username is immutable through merge")
	assert.Equal(t, "alice@example.com", updated.Email)
	assert.Equal(t, originalHash, updated.PasswordHash, "password untouched when not supplied")
}

func TestUpdateRejectsTakenEmail(t *testing.T) {
	t.Parallel()

	service, _ := newTestService()
	mustCreate(t, service, "alice", "alice@example.com", "secret123")
	bob := mustCreate(t, service, "bob", "bob@example.com", "secret123")

	_, err := service.Update(context.Background(), bob.GetID(), &user.User{
		Email: "alice@example.com",
	})
	requireCode(t, err, "VALIDATION_ERROR")
}

func TestUpdateSameEmailIsNoop(t *testing.T) {
	t.Parallel()

	service, _ := newTestService()
	created := mustCreate(t, service, "alice", "alice@example.com", "secret123")

	updated, err := service.Update(context.Background(), created.GetID(), &user.User{
		Email: "alice@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", updated.Email)
}

func TestUpdateRehashesNewPassword(t *testing.T) {
	t.Parallel()

	service, _ := newTestService()
	created := mustCreate(t, service, "alice", "alice@example.com", "secret123")
	originalHash := created.PasswordHash

	updated, err := service.Update(context.Background(), created.GetID(), &user.User{
		PasswordHash: "newsecret456",
	})
	require.NoError(t, err)

	assert.NotEqual(t, originalHash, updated.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("newsecret456", updated.PasswordHash))
}

func TestUpdateSkipsRehashForRoundTrippedHash(t *testing.T) {
	t.Parallel()

	service, _ := newTestService()
	created := mustCreate(t, service, "alice", "alice@example.com", "secret123")
	originalHash := created.PasswordHash

	// A caller that fetched the record and sent it back unchanged must
	// not get the stored hash re-hashed.
	updated, err := service.Update(context.Background(), created.GetID(), &user.User{
		PasswordHash: originalHash,
	})
	require.NoError(t, err)
	assert.Equal(t, originalHash, updated.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("secret123", updated.PasswordHash))
}

func TestGetByEmail(t *testing.T) {
	t.Parallel()

	service, _ := newTestService()
	mustCreate(t, service, "alice", "alice@example.com", "secret123")

	found, err := service.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", found.Username)

	_, err = service.GetByEmail(context.Background(), "nobody@example.com")
	requireCode(t, err, "NOT_FOUND")
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr := apperr.As(err)
	require.NotNil(t, appErr, "expected a typed application error, got %v", err)
	assert.Equal(t, code, appErr.Code)
}
