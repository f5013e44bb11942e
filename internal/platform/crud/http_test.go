// Copyright (c) 2026 Corven. All rights reserved.
// Author: dev@corven.io

package crud_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corven-io/corven/internal/platform/crud"
)

func newNoteRouter() (chi.Router, *crud.Service[*note, string]) {
	service := newNoteService(newNoteStore())
	handler := crud.NewHandler[*note, string](service,
		func(raw string) (string, error) { return raw, nil },
		func() *note { return &note{} },
	)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router, service
}

func do(router chi.Router, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(method, target, reader))
	return recorder
}

type noteEnvelope struct {
	Success bool `json:"success"`
	Data    note `json:"data"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func TestHandlerCreateReturns201(t *testing.T) {
	t.Parallel()

	router, _ := newNoteRouter()

	recorder := do(router, http.MethodPost, "/", `{"title":"first","body":"draft"}`)
	require.Equal(t, http.StatusCreated, recorder.Code)

	var envelope noteEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "first", envelope.Data.Title)
	assert.NotEmpty(t, envelope.Data.GetID())
	assert.True(t, envelope.Data.IsActive())
	assert.False(t, envelope.Data.GetCreatedAt().IsZero())
}

func TestHandlerCreateRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	router, _ := newNoteRouter()

	recorder := do(router, http.MethodPost, "/", `{"title":`)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var envelope errorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Code)
}

func TestHandlerGetByIDReturnsActiveRecord(t *testing.T) {
	t.Parallel()

	router, service := newNoteRouter()
	saved, err := service.Save(context.Background(), &note{Title: "first"})
	require.NoError(t, err)

	recorder := do(router, http.MethodGet, "/"+saved.GetID(), "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var envelope noteEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, saved.GetID(), envelope.Data.GetID())
	assert.Equal(t, "first", envelope.Data.Title)
}

func TestHandlerGetByIDHidesSoftDeleted(t *testing.T) {
	t.Parallel()

	router, service := newNoteRouter()
	saved, err := service.Save(context.Background(), &note{Title: "first"})
	require.NoError(t, err)
	require.NoError(t, service.SoftDelete(context.Background(), saved.GetID()))

	recorder := do(router, http.MethodGet, "/"+saved.GetID(), "")
	require.Equal(t, http.StatusNotFound, recorder.Code)

	var envelope errorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "NOT_FOUND", envelope.Code)
}

func TestHandlerListOmitsSoftDeleted(t *testing.T) {
	t.Parallel()

	router, service := newNoteRouter()
	kept, err := service.Save(context.Background(), &note{Title: "kept"})
	require.NoError(t, err)
	dropped, err := service.Save(context.Background(), &note{Title: "dropped"})
	require.NoError(t, err)
	require.NoError(t, service.SoftDelete(context.Background(), dropped.GetID()))

	recorder := do(router, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var envelope struct {
		Success bool   `json:"success"`
		Data    []note `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, kept.GetID(), envelope.Data[0].GetID())
}

func TestHandlerUpdateMergesPatch(t *testing.T) {
	t.Parallel()

	router, service := newNoteRouter()
	saved, err := service.Save(context.Background(), &note{Title: "first", Body: "draft"})
	require.NoError(t, err)

	recorder := do(router, http.MethodPut, "/"+saved.GetID(), `{"body":"final"}`)
	require.Equal(t, http.StatusOK, recorder.Code)

	var envelope noteEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, "first", envelope.Data.Title, "unset patch fields leave existing values alone")
	assert.Equal(t, "final", envelope.Data.Body)
	require.NotNil(t, envelope.Data.GetUpdatedAt())
}

func TestHandlerSoftDeleteAndRestoreRoundTrip(t *testing.T) {
	t.Parallel()

	router, service := newNoteRouter()
	saved, err := service.Save(context.Background(), &note{Title: "first"})
	require.NoError(t, err)

	recorder := do(router, http.MethodDelete, "/"+saved.GetID(), "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var acked struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &acked))
	assert.True(t, acked.Success)
	assert.Equal(t, "Entity soft deleted successfully", acked.Message)

	// Hidden from the active view while deleted.
	require.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/"+saved.GetID(), "").Code)

	require.Equal(t, http.StatusOK, do(router, http.MethodPost, "/"+saved.GetID()+"/restore", "").Code)
	require.Equal(t, http.StatusOK, do(router, http.MethodGet, "/"+saved.GetID(), "").Code)
}

func TestHandlerPermanentDeleteRemovesRecord(t *testing.T) {
	t.Parallel()

	router, service := newNoteRouter()
	saved, err := service.Save(context.Background(), &note{Title: "first"})
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, do(router, http.MethodDelete, "/"+saved.GetID()+"/permanent", "").Code)

	require.Equal(t, http.StatusNotFound, do(router, http.MethodPost, "/"+saved.GetID()+"/restore", "").Code)
	require.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/"+saved.GetID(), "").Code)
}

func TestHandlerLifecycleUnknownIDIs404(t *testing.T) {
	t.Parallel()

	router, _ := newNoteRouter()

	recorder := do(router, http.MethodDelete, "/missing", "")
	require.Equal(t, http.StatusNotFound, recorder.Code)

	var envelope errorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, "NOT_FOUND", envelope.Code)
}

func TestHandlerPageMetadata(t *testing.T) {
	t.Parallel()

	router, service := newNoteRouter()
	for _, title := range []string{"one", "two", "three"} {
		_, err := service.Save(context.Background(), &note{Title: title})
		require.NoError(t, err)
	}

	recorder := do(router, http.MethodGet, "/page?page=2&limit=2", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var envelope struct {
		Success bool   `json:"success"`
		Data    []note `json:"data"`
		Meta    struct {
			Page       int `json:"page"`
			Limit      int `json:"limit"`
			Total      int `json:"total"`
			TotalPages int `json:"total_pages"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data, 1)
	assert.Equal(t, 2, envelope.Meta.Page)
	assert.Equal(t, 2, envelope.Meta.Limit)
	assert.Equal(t, 3, envelope.Meta.Total)
	assert.Equal(t, 2, envelope.Meta.TotalPages)
}
