// Copyright (c) 2026 Corven. All rights reserved.
// Author: dev@corven.io

package user

import (
	"context"
	"errors"
	"log/slog"

	"github.com/corven-io/corven/internal/platform/apperr"
	"github.com/corven-io/corven/internal/platform/crud"
	"github.com/corven-io/corven/internal/platform/dberr"
	"github.com/corven-io/corven/internal/platform/sec"
)

// Service wraps the generic CRUD service with user-specific rules:
// uniqueness checks at creation, the partial-update merge strategy, and
// password hashing on the way in.
type Service struct {
	*crud.Service[*User, string]

	store  Store
	logger *slog.Logger
}

// NewService wires the user merge strategy and creation rules into the
// generic service, so every create and update path enforces them.
func NewService(store Store, logger *slog.Logger) *Service {
	service := &Service{
		store:  store,
		logger: logger,
	}
	service.Service = crud.NewService[*User, string](store, service.mergeUser, "User", logger)
	service.SetPrepare(service.prepareCreate)
	return service
}

// Create registers a new account and logs the registration.
func (service *Service) Create(ctx context.Context, candidate *User) (*User, error) {
	created, err := service.Save(ctx, candidate)
	if err != nil {
		return nil, err
	}

	service.logger.Info("user_created",
		slog.String("user_id", created.GetID()),
		slog.String("username", created.Username),
	)
	return created, nil
}

// prepareCreate enforces creation-time rules: username and email must be
// free across all records, soft-deleted ones included, and the raw
// password is replaced with its bcrypt hash before anything is persisted.
//
// A taken username or email is an input validation failure (400), the same
// as a colliding email change during update. CONFLICT is reserved for
// uniqueness violations surfacing from the database itself.
func (service *Service) prepareCreate(ctx context.Context, candidate *User) error {
	if taken, err := service.store.ExistsByUsername(ctx, candidate.Username); err != nil {
		return err
	} else if taken {
		return apperr.ValidationError("Username already in use")
	}

	if taken, err := service.store.ExistsByEmail(ctx, candidate.Email); err != nil {
		return err
	} else if taken {
		return apperr.ValidationError("Email already in use")
	}

	if !sec.LooksHashed(candidate.PasswordHash) {
		hash, err := sec.HashPassword(candidate.PasswordHash)
		if err != nil {
			return apperr.Internal(err)
		}
		candidate.PasswordHash = hash
	}

	return nil
}

// GetByUsername returns the active account with the given username.
// Soft-deleted accounts read as absent.
func (service *Service) GetByUsername(ctx context.Context, username string) (*User, error) {
	found, err := service.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.NotFound("User")
		}
		return nil, err
	}
	if !found.IsActive() {
		return nil, apperr.NotFound("User")
	}
	return found, nil
}

// GetByEmail returns the active account with the given email.
// Soft-deleted accounts read as absent.
func (service *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	found, err := service.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.NotFound("User")
		}
		return nil, err
	}
	if !found.IsActive() {
		return nil, apperr.NotFound("User")
	}
	return found, nil
}

// UsernameAvailable reports whether the username is unused across all
// records, soft-deleted ones included.
func (service *Service) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	taken, err := service.store.ExistsByUsername(ctx, username)
	return !taken, err
}

// EmailAvailable reports whether the email is unused across all records.
func (service *Service) EmailAvailable(ctx context.Context, email string) (bool, error) {
	taken, err := service.store.ExistsByEmail(ctx, email)
	return !taken, err
}

// mergeUser applies a partial update onto the stored record.
//
// Profile fields overwrite only when the patch supplies them. An email
// change is availability-checked first. A supplied password is re-hashed
// unless it already looks like a bcrypt hash, which happens when a caller
// round-trips a previously fetched record.
func (service *Service) mergeUser(ctx context.Context, existing, patch *User) error {
	if patch.FirstName != "" {
		existing.FirstName = patch.FirstName
	}
	if patch.LastName != "" {
		existing.LastName = patch.LastName
	}
	if patch.PhoneNumber != "" {
		existing.PhoneNumber = patch.PhoneNumber
	}
	if patch.BirthDate != nil {
		existing.BirthDate = patch.BirthDate
	}

	if patch.Email != "" && patch.Email != existing.Email {
		taken, err := service.store.ExistsByEmail(ctx, patch.Email)
		if err != nil {
			return err
		}
		if taken {
			return apperr.ValidationError("Email already in use")
		}
		existing.Email = patch.Email
	}

	if patch.PasswordHash != "" && !sec.LooksHashed(patch.PasswordHash) {
		hash, err := sec.HashPassword(patch.PasswordHash)
		if err != nil {
			return apperr.Internal(err)
		}
		existing.PasswordHash = hash
	}

	return nil
}
