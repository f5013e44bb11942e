// Copyright (c) 2026 Corven. All rights reserved.
// Author: dev@corven.io

package crud_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corven-io/corven/internal/platform/apperr"
	"github.com/corven-io/corven/internal/platform/crud"
)

type note struct {
	crud.Base[string]

	Title string `json:"title"`
	Body  string `json:"body"`
}

func newNoteStore() *crud.MemoryStore[*note, string] {
	nextID := 0
	return crud.NewMemoryStore[*note, string](
		func() string {
			nextID++
			return string(rune('a' + nextID - 1))
		},
		func(original *note) *note {
			copied := *original
			return &copied
		},
	)
}

func newNoteService(store crud.Store[*note, string]) *crud.Service[*note, string] {
	merge := func(ctx context.Context, existing, patch *note) error {
		if patch.Title != "" {
			existing.Title = patch.Title
		}
		if patch.Body != "" {
			existing.Body = patch.Body
		}
		return nil
	}
	return crud.NewService[*note, string](store, merge, "Note", slog.Default())
}

func TestSaveNewEntityDefaults(t *testing.T) {
	t.Parallel()

	store := newNoteStore()
	service := newNoteService(store)

	saved, err := service.Save(context.Background(), &note{Title: "first"})
	require.NoError(t, err)

	assert.NotEmpty(t, saved.GetID())
	assert.True(t, saved.IsActive(), "new entities start active")
	assert.False(t, saved.GetCreatedAt().IsZero())
	assert.Nil(t, saved.GetUpdatedAt(), "updated timestamp stays unset until a mutation")
}

func TestUpdateStampsUpdatedAtOnly(t *testing.T) {
	t.Parallel()

	store := newNoteStore()
	service := newNoteService(store)

	saved, err := service.Save(context.Background(), &note{Title: "first", Body: "draft"})
	require.NoError(t, err)
	createdAt := saved.GetCreatedAt()

	updated, err := service.Update(context.Background(), saved.GetID(), &note{Body: "final"})
	require.NoError(t, err)

	assert.Equal(t, "first", updated.Title, "empty patch fields leave existing values alone")
	assert.Equal(t, "final", updated.Body)
	assert.Equal(t, createdAt, updated.GetCreatedAt(), "creation timestamp never changes")
	require.NotNil(t, updated.GetUpdatedAt())
}

func TestSoftDeleteHidesFromActiveViews(t *testing.T) {
	t.Parallel()

	store := newNoteStore()
	service := newNoteService(store)

	saved, err := service.Save(context.Background(), &note{Title: "first"})
	require.NoError(t, err)

	require.NoError(t, service.SoftDelete(context.Background(), saved.GetID()))

	// The record is gone from active views but still reachable directly.
	_, err = service.GetByIDActive(context.Background(), saved.GetID())
	assertNotFound(t, err)

	found, err := service.GetByID(context.Background(), saved.GetID())
	require.NoError(t, err)
	assert.False(t, found.IsActive())

	active, err := service.FindAllActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := service.FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRestoreBringsEntityBack(t *testing.T) {
	t.Parallel()

	store := newNoteStore()
	service := newNoteService(store)

	saved, err := service.Save(context.Background(), &note{Title: "first"})
	require.NoError(t, err)

	require.NoError(t, service.SoftDelete(context.Background(), saved.GetID()))
	require.NoError(t, service.Restore(context.Background(), saved.GetID()))

	found, err := service.GetByIDActive(context.Background(), saved.GetID())
	require.NoError(t, err)
	assert.True(t, found.IsActive())
}

func TestSoftDeleteIsIdempotent(t *testing.T) {
	t.Parallel()

	store := newNoteStore()
	service := newNoteService(store)

	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	})

	saved, err := service.Save(context.Background(), &note{Title: "first"})
	require.NoError(t, err)

	require.NoError(t, service.SoftDelete(context.Background(), saved.GetID()))
	deleted, err := service.GetByID(context.Background(), saved.GetID())
	require.NoError(t, err)
	firstStamp := deleted.GetUpdatedAt()
	require.NotNil(t, firstStamp)

	// The repeated delete is a no-op: no error and no timestamp churn.
	require.NoError(t, service.SoftDelete(context.Background(), saved.GetID()))
	deleted, err = service.GetByID(context.Background(), saved.GetID())
	require.NoError(t, err)
	require.NotNil(t, deleted.GetUpdatedAt())
	assert.Equal(t, *firstStamp, *deleted.GetUpdatedAt())
}

func TestPermanentDeleteIsIrreversible(t *testing.T) {
	t.Parallel()

	store := newNoteStore()
	service := newNoteService(store)

	saved, err := service.Save(context.Background(), &note{Title: "first"})
	require.NoError(t, err)

	require.NoError(t, service.DeleteByID(context.Background(), saved.GetID()))

	_, err = service.GetByID(context.Background(), saved.GetID())
	assertNotFound(t, err)

	err = service.DeleteByID(context.Background(), saved.GetID())
	assertNotFound(t, err)

	err = service.Restore(context.Background(), saved.GetID())
	assertNotFound(t, err)
}

func TestUpdateUnknownIDReturnsNotFound(t *testing.T) {
	t.Parallel()

	store := newNoteStore()
	service := newNoteService(store)

	_, err := service.Update(context.Background(), "missing", &note{Title: "x"})
	assertNotFound(t, err)
}

func TestUpdateSurvivesSoftDeletedState(t *testing.T) {
	t.Parallel()

	store := newNoteStore()
	service := newNoteService(store)

	saved, err := service.Save(context.Background(), &note{Title: "first"})
	require.NoError(t, err)
	require.NoError(t, service.SoftDelete(context.Background(), saved.GetID()))

	// Updating a soft-deleted record does not resurrect it.
	updated, err := service.Update(context.Background(), saved.GetID(), &note{Title: "renamed"})
	require.NoError(t, err)
	assert.False(t, updated.IsActive())
	assert.Equal(t, "renamed", updated.Title)
}

func TestFindPage(t *testing.T) {
	t.Parallel()

	store := newNoteStore()
	service := newNoteService(store)

	for _, title := range []string{"one", "two", "three"} {
		_, err := service.Save(context.Background(), &note{Title: title})
		require.NoError(t, err)
	}

	page, total, err := service.FindPage(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page, 2)

	page, total, err = service.FindPage(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page, 1)
}

func TestMergeErrorAborts(t *testing.T) {
	t.Parallel()

	store := newNoteStore()
	mergeErr := apperr.ValidationError("Title is immutable")
	service := crud.NewService[*note, string](store,
		func(ctx context.Context, existing, patch *note) error {
			return mergeErr
		}, "Note", slog.Default())

	saved, err := service.Save(context.Background(), &note{Title: "first"})
	require.NoError(t, err)

	_, err = service.Update(context.Background(), saved.GetID(), &note{Title: "second"})
	require.ErrorIs(t, err, mergeErr)

	// The stored record is untouched.
	found, err := service.GetByID(context.Background(), saved.GetID())
	require.NoError(t, err)
	assert.Equal(t, "first", found.Title)
}

func TestMemoryStoreClonesOnReturn(t *testing.T) {
	t.Parallel()

	store := newNoteStore()
	service := newNoteService(store)

	saved, err := service.Save(context.Background(), &note{Title: "first"})
	require.NoError(t, err)

	found, err := service.GetByID(context.Background(), saved.GetID())
	require.NoError(t, err)
	found.Title = "mutated locally"

	again, err := service.GetByID(context.Background(), saved.GetID())
	require.NoError(t, err)
	assert.Equal(t, "first", again.Title)
}

func assertNotFound(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	appErr := apperr.As(err)
	require.NotNil(t, appErr, "expected a typed application error, got %v", err)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}
