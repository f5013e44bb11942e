// Copyright (c) 2026 Corven. All rights reserved.
// Author: dev@corven.io

package user

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corven-io/corven/internal/platform/crud"
)

// PostgresStore persists users through the generic store and adds the
// username/email lookups on top of it.
type PostgresStore struct {
	*crud.PostgresStore[*User, string]
}

// NewPostgresStore creates the pgx-backed user store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		PostgresStore: crud.NewPostgresStore[*User, string](db, Mapper{}),
	}
}

func (store *PostgresStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	return store.FindOneWhere(ctx, "username = $1", username)
}

func (store *PostgresStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return store.FindOneWhere(ctx, "email = $1", email)
}

// ExistsByUsername checks all rows, soft-deleted included.
func (store *PostgresStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return store.ExistsWhere(ctx, "username = $1", username)
}

// ExistsByEmail checks all rows, soft-deleted included.
func (store *PostgresStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return store.ExistsWhere(ctx, "email = $1", email)
}
