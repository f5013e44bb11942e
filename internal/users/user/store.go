// Copyright (c) 2026 Corven. All rights reserved.
// Author: dev@corven.io

package user

import (
	"context"

	"github.com/corven-io/corven/internal/platform/crud"
)

// Store extends the generic contract with username and email lookups.
//
// All four scan every row regardless of lifecycle state: a soft-deleted
// account still holds its username and email, and the authentication
// pipeline needs to see disabled accounts to resolve their principals.
// Callers that only want active accounts filter on the result.
type Store interface {
	crud.Store[*User, string]

	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
