// Copyright (c) 2026 Corven. All rights reserved.
// Author: dev@corven.io

package crud

import (
	"context"
	"sync"
	"time"

	"github.com/corven-io/corven/internal/platform/dberr"
)

// MemoryStore is an in-memory [Store] used by service tests and local
// experiments. It honors the same contracts as [PostgresStore], including
// insertion-ordered listing (stable within one call).
type MemoryStore[T Entity[ID], ID comparable] struct {
	mu    sync.RWMutex
	items map[ID]T
	order []ID
	newID func() ID
	clone func(T) T
	now   func() time.Time
}

// NewMemoryStore constructs an empty in-memory store.
//
// newID produces fresh identifiers; clone deep-copies an entity so that
// callers never share memory with the stored representation.
func NewMemoryStore[T Entity[ID], ID comparable](newID func() ID, clone func(T) T) *MemoryStore[T, ID] {
	return &MemoryStore[T, ID]{
		items: make(map[ID]T),
		newID: newID,
		clone: clone,
		now:   time.Now,
	}
}

// SetClock overrides the store's time source. Test-only knob.
func (store *MemoryStore[T, ID]) SetClock(now func() time.Time) { store.now = now }

func (store *MemoryStore[T, ID]) FindAll(ctx context.Context) ([]T, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	entities := make([]T, 0, len(store.order))
	for _, id := range store.order {
		entities = append(entities, store.clone(store.items[id]))
	}
	return entities, nil
}

func (store *MemoryStore[T, ID]) FindAllActive(ctx context.Context) ([]T, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	var entities []T
	for _, id := range store.order {
		if entity := store.items[id]; entity.IsActive() {
			entities = append(entities, store.clone(entity))
		}
	}
	return entities, nil
}

func (store *MemoryStore[T, ID]) FindPage(ctx context.Context, limit, offset int) ([]T, int, error) {
	all, err := store.FindAll(ctx)
	if err != nil {
		return nil, 0, err
	}

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}

	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (store *MemoryStore[T, ID]) FindByID(ctx context.Context, id ID) (T, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	entity, found := store.items[id]
	if !found {
		var zero T
		return zero, dberr.ErrNotFound
	}
	return store.clone(entity), nil
}

func (store *MemoryStore[T, ID]) FindByIDAndActive(ctx context.Context, id ID) (T, error) {
	entity, err := store.FindByID(ctx, id)
	if err != nil {
		return entity, err
	}
	if !entity.IsActive() {
		var zero T
		return zero, dberr.ErrNotFound
	}
	return entity, nil
}

func (store *MemoryStore[T, ID]) Save(ctx context.Context, entity T) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	var zero ID
	if entity.GetID() == zero {
		entity.SetID(store.newID())
		entity.MarkCreated(store.now())
		store.order = append(store.order, entity.GetID())
		store.items[entity.GetID()] = store.clone(entity)
		return nil
	}

	if _, found := store.items[entity.GetID()]; !found {
		return dberr.ErrNotFound
	}

	entity.MarkUpdated(store.now())
	store.items[entity.GetID()] = store.clone(entity)
	return nil
}

func (store *MemoryStore[T, ID]) DeleteByID(ctx context.Context, id ID) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, found := store.items[id]; !found {
		return dberr.ErrNotFound
	}

	delete(store.items, id)
	for i, existing := range store.order {
		if existing == id {
			store.order = append(store.order[:i], store.order[i+1:]...)
			break
		}
	}
	return nil
}

func (store *MemoryStore[T, ID]) SoftDelete(ctx context.Context, id ID) error {
	return store.setActive(id, false)
}

func (store *MemoryStore[T, ID]) Restore(ctx context.Context, id ID) error {
	return store.setActive(id, true)
}

func (store *MemoryStore[T, ID]) setActive(id ID, active bool) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	entity, found := store.items[id]
	if !found {
		return dberr.ErrNotFound
	}
	if entity.IsActive() == active {
		return nil
	}

	entity.SetActive(active)
	entity.MarkUpdated(store.now())
	store.items[id] = entity
	return nil
}
