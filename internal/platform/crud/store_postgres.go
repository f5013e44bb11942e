// Copyright (c) 2026 Corven. All rights reserved.
// Author: dev@corven.io

package crud

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corven-io/corven/internal/platform/dberr"
)

// PostgresStore is the generic [Store] implementation over pgxpool.
//
// All SQL is derived from the injected [Mapper]: the store owns the
// lifecycle columns, the mapper owns everything entity-specific.
type PostgresStore[T Entity[ID], ID comparable] struct {
	db     *pgxpool.Pool
	mapper Mapper[T, ID]
	now    func() time.Time
}

// NewPostgresStore constructs a generic Postgres-backed store for one entity type.
func NewPostgresStore[T Entity[ID], ID comparable](db *pgxpool.Pool, mapper Mapper[T, ID]) *PostgresStore[T, ID] {
	return &PostgresStore[T, ID]{
		db:     db,
		mapper: mapper,
		now:    time.Now,
	}
}

// selectList returns the full select list: id, entity columns, lifecycle columns.
func (store *PostgresStore[T, ID]) selectList() string {
	columns := append([]string{"id"}, store.mapper.Columns()...)
	columns = append(columns, "created_at", "updated_at", "active")
	return strings.Join(columns, ", ")
}

// scanEntity hydrates one entity from a row whose select list is [selectList].
func (store *PostgresStore[T, ID]) scanEntity(row pgx.Row) (T, error) {
	entity := store.mapper.New()

	var (
		id        ID
		createdAt time.Time
		updatedAt *time.Time
		active    bool
	)

	dests := append([]any{&id}, store.mapper.ScanDests(entity)...)
	dests = append(dests, &createdAt, &updatedAt, &active)

	if err := row.Scan(dests...); err != nil {
		var zero T
		return zero, err
	}

	entity.SetID(id)
	entity.hydrate(createdAt, updatedAt, active)
	return entity, nil
}

// collectRows drains a result set into a slice of hydrated entities.
func (store *PostgresStore[T, ID]) collectRows(rows pgx.Rows) ([]T, error) {
	defer rows.Close()

	var entities []T
	for rows.Next() {
		entity, err := store.scanEntity(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}

	return entities, rows.Err()
}

// FindAll returns every record, soft-deleted ones included.
func (store *PostgresStore[T, ID]) FindAll(ctx context.Context) ([]T, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY id`, store.selectList(), store.mapper.Table())

	rows, err := store.db.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "find_all_"+store.mapper.Table())
	}

	entities, err := store.collectRows(rows)
	return entities, dberr.Wrap(err, "scan_"+store.mapper.Table())
}

// FindAllActive returns only the records whose active flag is true.
func (store *PostgresStore[T, ID]) FindAllActive(ctx context.Context) ([]T, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE active ORDER BY id`, store.selectList(), store.mapper.Table())

	rows, err := store.db.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "find_all_active_"+store.mapper.Table())
	}

	entities, err := store.collectRows(rows)
	return entities, dberr.Wrap(err, "scan_"+store.mapper.Table())
}

// FindPage returns one page of all records plus the unfiltered total count.
func (store *PostgresStore[T, ID]) FindPage(ctx context.Context, limit, offset int) ([]T, int, error) {
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s`, store.mapper.Table())

	var total int
	if err := store.db.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_"+store.mapper.Table())
	}

	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY id LIMIT $1 OFFSET $2`,
		store.selectList(), store.mapper.Table())

	rows, err := store.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "find_page_"+store.mapper.Table())
	}

	entities, err := store.collectRows(rows)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "scan_"+store.mapper.Table())
	}

	return entities, total, nil
}

// FindByID returns the record with the given id regardless of active state.
func (store *PostgresStore[T, ID]) FindByID(ctx context.Context, id ID) (T, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, store.selectList(), store.mapper.Table())

	entity, err := store.scanEntity(store.db.QueryRow(ctx, query, id))
	if err != nil {
		var zero T
		return zero, dberr.Wrap(err, "find_by_id_"+store.mapper.Table())
	}

	return entity, nil
}

// FindByIDAndActive returns the record only when it exists and is active.
func (store *PostgresStore[T, ID]) FindByIDAndActive(ctx context.Context, id ID) (T, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 AND active`, store.selectList(), store.mapper.Table())

	entity, err := store.scanEntity(store.db.QueryRow(ctx, query, id))
	if err != nil {
		var zero T
		return zero, dberr.Wrap(err, "find_by_id_active_"+store.mapper.Table())
	}

	return entity, nil
}

// FindOneWhere returns the single record matching the given predicate.
// The predicate references the entity's own columns with numbered
// placeholders starting at $1 (e.g. "username = $1 AND active").
//
// Entity-specific stores use this to keep their extra lookups on the
// shared select list and scan path.
func (store *PostgresStore[T, ID]) FindOneWhere(ctx context.Context, predicate string, args ...any) (T, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s`, store.selectList(), store.mapper.Table(), predicate)

	entity, err := store.scanEntity(store.db.QueryRow(ctx, query, args...))
	if err != nil {
		var zero T
		return zero, dberr.Wrap(err, "find_one_"+store.mapper.Table())
	}

	return entity, nil
}

// ExistsWhere reports whether any record matches the predicate, regardless
// of active state.
func (store *PostgresStore[T, ID]) ExistsWhere(ctx context.Context, predicate string, args ...any) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s)`, store.mapper.Table(), predicate)

	var exists bool
	if err := store.db.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "exists_"+store.mapper.Table())
	}

	return exists, nil
}

// Save upserts the entity.
//
// A zero id means creation: a fresh id is assigned, CreatedAt is stamped,
// and the active flag defaults to true. A set id means overwrite: UpdatedAt
// is refreshed and CreatedAt left untouched.
func (store *PostgresStore[T, ID]) Save(ctx context.Context, entity T) error {
	var zero ID
	if entity.GetID() == zero {
		return store.insert(ctx, entity)
	}
	return store.update(ctx, entity)
}

func (store *PostgresStore[T, ID]) insert(ctx context.Context, entity T) error {
	entity.SetID(store.mapper.NewID())
	entity.MarkCreated(store.now())

	columns := append([]string{"id"}, store.mapper.Columns()...)
	columns = append(columns, "created_at", "updated_at", "active")

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = "$" + fmt.Sprint(i+1)
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		store.mapper.Table(),
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)

	args := append([]any{entity.GetID()}, store.mapper.Values(entity)...)
	args = append(args, entity.GetCreatedAt(), entity.GetUpdatedAt(), entity.IsActive())

	_, err := store.db.Exec(ctx, query, args...)
	return dberr.Wrap(err, "insert_"+store.mapper.Table())
}

func (store *PostgresStore[T, ID]) update(ctx context.Context, entity T) error {
	entity.MarkUpdated(store.now())

	assignments := make([]string, 0, len(store.mapper.Columns())+2)
	for i, column := range store.mapper.Columns() {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, i+2))
	}
	next := len(store.mapper.Columns()) + 2
	assignments = append(assignments,
		fmt.Sprintf("updated_at = $%d", next),
		fmt.Sprintf("active = $%d", next+1),
	)

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $1`,
		store.mapper.Table(), strings.Join(assignments, ", "))

	args := append([]any{entity.GetID()}, store.mapper.Values(entity)...)
	args = append(args, entity.GetUpdatedAt(), entity.IsActive())

	cmd, err := store.db.Exec(ctx, query, args...)
	if err != nil {
		return dberr.Wrap(err, "update_"+store.mapper.Table())
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

// DeleteByID irreversibly removes the record.
func (store *PostgresStore[T, ID]) DeleteByID(ctx context.Context, id ID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, store.mapper.Table())

	cmd, err := store.db.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_"+store.mapper.Table())
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

// SoftDelete marks the record inactive. Already-inactive records are left
// as-is without error; a missing id is NotFound.
func (store *PostgresStore[T, ID]) SoftDelete(ctx context.Context, id ID) error {
	return store.setActive(ctx, id, false)
}

// Restore marks the record active again. Same existence contract as SoftDelete.
func (store *PostgresStore[T, ID]) Restore(ctx context.Context, id ID) error {
	return store.setActive(ctx, id, true)
}

func (store *PostgresStore[T, ID]) setActive(ctx context.Context, id ID, active bool) error {
	// Only touch rows whose flag actually changes, so a repeated soft delete
	// or restore leaves updated_at alone. Zero affected rows is then
	// ambiguous: either the id is absent, or the row is already in the
	// requested state, so disambiguate with an existence check.
	query := fmt.Sprintf(`UPDATE %s SET active = $2, updated_at = $3 WHERE id = $1 AND active <> $2`, store.mapper.Table())

	cmd, err := store.db.Exec(ctx, query, id, active, store.now())
	if err != nil {
		return dberr.Wrap(err, "set_active_"+store.mapper.Table())
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}

	exists, err := store.ExistsWhere(ctx, "id = $1", id)
	if err != nil {
		return err
	}
	if !exists {
		return dberr.ErrNotFound
	}

	return nil
}
