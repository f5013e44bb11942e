// Copyright (c) 2026 Corven. All rights reserved.
// Author: dev@corven.io

package crud

import (
	"context"
	"errors"
	"log/slog"

	"github.com/corven-io/corven/internal/platform/apperr"
	"github.com/corven-io/corven/internal/platform/dberr"
)

// MergeFunc is the entity-specific update strategy.
//
// It receives the freshly loaded record and the incoming patch, and decides
// field by field whether the patch overwrites the existing value. Returning
// an error aborts the update without persisting anything.
type MergeFunc[T Entity[ID], ID comparable] func(ctx context.Context, existing, patch T) error

// Service wraps a [Store] with domain-level guarantees: absent records
// surface as signaled NotFound errors rather than empty results, and
// updates are funneled through the injected merge strategy.
//
// Each operation is atomic with respect to a single entity; there are no
// multi-entity transactions at this layer.
type Service[T Entity[ID], ID comparable] struct {
	store    Store[T, ID]
	merge    MergeFunc[T, ID]
	prepare  PrepareFunc[T, ID]
	resource string
	logger   *slog.Logger
}

// PrepareFunc runs before a brand-new entity is persisted. Entity services
// install one to enforce creation-time rules such as uniqueness checks or
// credential hashing. Returning an error aborts the save.
type PrepareFunc[T Entity[ID], ID comparable] func(ctx context.Context, entity T) error

// NewService constructs a generic service for one entity type.
//
// resource names the entity in NotFound messages (e.g. "User").
func NewService[T Entity[ID], ID comparable](
	store Store[T, ID],
	merge MergeFunc[T, ID],
	resource string,
	logger *slog.Logger,
) *Service[T, ID] {
	return &Service[T, ID]{
		store:    store,
		merge:    merge,
		resource: resource,
		logger:   logger,
	}
}

// SetPrepare installs the creation hook. It must be called during wiring,
// before the service handles requests.
func (service *Service[T, ID]) SetPrepare(prepare PrepareFunc[T, ID]) {
	service.prepare = prepare
}

// Store exposes the underlying store for entity-specific extensions.
func (service *Service[T, ID]) Store() Store[T, ID] { return service.store }

// FindAll returns every record, including soft-deleted ones.
func (service *Service[T, ID]) FindAll(ctx context.Context) ([]T, error) {
	return service.store.FindAll(ctx)
}

// FindAllActive returns only active records.
func (service *Service[T, ID]) FindAllActive(ctx context.Context) ([]T, error) {
	return service.store.FindAllActive(ctx)
}

// FindPage returns one page of all records with the total count.
func (service *Service[T, ID]) FindPage(ctx context.Context, limit, offset int) ([]T, int, error) {
	return service.store.FindPage(ctx, limit, offset)
}

// GetByID returns the record or a NotFound error, active or not.
func (service *Service[T, ID]) GetByID(ctx context.Context, id ID) (T, error) {
	entity, err := service.store.FindByID(ctx, id)
	if err != nil {
		var zero T
		return zero, service.notFound(err)
	}
	return entity, nil
}

// GetByIDActive returns the record only when active, or a NotFound error.
func (service *Service[T, ID]) GetByIDActive(ctx context.Context, id ID) (T, error) {
	entity, err := service.store.FindByIDAndActive(ctx, id)
	if err != nil {
		var zero T
		return zero, service.notFound(err)
	}
	return entity, nil
}

// Save persists the entity (create or overwrite) and returns it with its
// lifecycle fields stamped.
func (service *Service[T, ID]) Save(ctx context.Context, entity T) (T, error) {
	var zero T
	var zeroID ID

	if entity.GetID() == zeroID && service.prepare != nil {
		if err := service.prepare(ctx, entity); err != nil {
			return zero, err
		}
	}

	if err := service.store.Save(ctx, entity); err != nil {
		return zero, err
	}
	return entity, nil
}

// Update loads the existing record by id (active or not), applies the merge
// strategy, and persists the result.
func (service *Service[T, ID]) Update(ctx context.Context, id ID, patch T) (T, error) {
	existing, err := service.GetByID(ctx, id)
	if err != nil {
		var zero T
		return zero, err
	}

	if err := service.merge(ctx, existing, patch); err != nil {
		var zero T
		return zero, err
	}

	if err := service.store.Save(ctx, existing); err != nil {
		var zero T
		return zero, err
	}

	service.logger.Info("entity_updated",
		slog.String("resource", service.resource),
		slog.Any("id", id),
	)
	return existing, nil
}

// DeleteByID irreversibly removes the record.
func (service *Service[T, ID]) DeleteByID(ctx context.Context, id ID) error {
	if err := service.store.DeleteByID(ctx, id); err != nil {
		return service.notFound(err)
	}

	service.logger.Warn("entity_deleted_permanently",
		slog.String("resource", service.resource),
		slog.Any("id", id),
	)
	return nil
}

// SoftDelete marks the record inactive.
func (service *Service[T, ID]) SoftDelete(ctx context.Context, id ID) error {
	if err := service.store.SoftDelete(ctx, id); err != nil {
		return service.notFound(err)
	}

	service.logger.Info("entity_soft_deleted",
		slog.String("resource", service.resource),
		slog.Any("id", id),
	)
	return nil
}

// Restore marks the record active again.
func (service *Service[T, ID]) Restore(ctx context.Context, id ID) error {
	if err := service.store.Restore(ctx, id); err != nil {
		return service.notFound(err)
	}

	service.logger.Info("entity_restored",
		slog.String("resource", service.resource),
		slog.Any("id", id),
	)
	return nil
}

// notFound rebrands the store's generic NotFound with the resource name.
func (service *Service[T, ID]) notFound(err error) error {
	if errors.Is(err, dberr.ErrNotFound) {
		return apperr.NotFound(service.resource)
	}
	return err
}
