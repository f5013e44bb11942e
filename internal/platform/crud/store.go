// Copyright (c) 2026 Corven. All rights reserved.
// Author: dev@corven.io

package crud

import "context"

// Store is the generic persistence contract over a uniquely-keyed collection.
//
// # Contracts
//
//   - Lookups return [dberr.ErrNotFound] when the id does not exist; the
//     active-filtered variants additionally hide soft-deleted records.
//   - Save is an upsert: it creates when the id is unset (assigning a fresh
//     id and stamping CreatedAt) and overwrites when set (stamping UpdatedAt).
//   - DeleteByID is irreversible. SoftDelete and Restore only flip the
//     active flag; both fail with NotFound when the id does not exist at
//     all, and are no-ops when the flag already has the target value.
//
// Soft-deleted records remain fully present and fetchable via the
// non-filtered operations; only the active-filtered ones hide them.
// Uniqueness constraints on natural keys span all rows regardless of the
// active flag.
type Store[T Entity[ID], ID comparable] interface {
	FindAll(ctx context.Context) ([]T, error)
	FindAllActive(ctx context.Context) ([]T, error)
	FindPage(ctx context.Context, limit, offset int) ([]T, int, error)
	FindByID(ctx context.Context, id ID) (T, error)
	FindByIDAndActive(ctx context.Context, id ID) (T, error)
	Save(ctx context.Context, entity T) error
	DeleteByID(ctx context.Context, id ID) error
	SoftDelete(ctx context.Context, id ID) error
	Restore(ctx context.Context, id ID) error
}

// Mapper supplies the per-entity details the generic Postgres store needs:
// the table, the entity-specific columns, and how to move values between
// rows and entities. Lifecycle columns (id, created_at, updated_at, active)
// are owned by the store itself.
type Mapper[T Entity[ID], ID comparable] interface {
	// Table returns the fully qualified table name.
	Table() string

	// Columns returns the entity-specific column names, excluding the
	// lifecycle columns.
	Columns() []string

	// Values returns the entity-specific column values in Columns order.
	Values(entity T) []any

	// New returns an empty entity ready to be scanned into.
	New() T

	// ScanDests returns scan destinations for the entity-specific columns,
	// in Columns order, pointing into the given entity.
	ScanDests(entity T) []any

	// NewID produces a fresh, never-reused identifier.
	NewID() ID
}
