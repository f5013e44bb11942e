// Copyright (c) 2026 Corven. All rights reserved.
// Author: dev@corven.io

package crud

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/corven-io/corven/internal/platform/apperr"
	requestutil "github.com/corven-io/corven/internal/platform/request"
	"github.com/corven-io/corven/internal/platform/respond"
	"github.com/corven-io/corven/pkg/pagination"
)

// Handler maps the generic service primitives to HTTP responses with
// fixed status-code conventions: created is 201, not-found propagates as
// a taxonomy error, everything else succeeds with 200 and the standard
// envelope.
//
// Entity-specific handlers mount these routes under a sub-path (e.g.
// /base) and register their own typed routes next to them.
type Handler[T Entity[ID], ID comparable] struct {
	service *Service[T, ID]

	// parseID converts the raw URL parameter into the identity type.
	parseID func(raw string) (ID, error)

	// newEntity allocates an empty entity for JSON decoding.
	newEntity func() T
}

// NewHandler constructs the generic HTTP surface for one entity type.
func NewHandler[T Entity[ID], ID comparable](
	service *Service[T, ID],
	parseID func(raw string) (ID, error),
	newEntity func() T,
) *Handler[T, ID] {
	return &Handler[T, ID]{
		service:   service,
		parseID:   parseID,
		newEntity: newEntity,
	}
}

// RegisterRoutes mounts the five CRUD primitives plus restore and
// permanent delete on the given router.
func (handler *Handler[T, ID]) RegisterRoutes(router chi.Router) {
	handler.RegisterReadRoutes(router)
	handler.RegisterWriteRoutes(router)
	handler.RegisterLifecycleRoutes(router)
}

// RegisterReadRoutes mounts the read-only routes. Entity handlers that
// need typed request bodies register these and replace the write routes
// with their own.
func (handler *Handler[T, ID]) RegisterReadRoutes(router chi.Router) {
	router.Get("/", handler.listActive)
	router.Get("/page", handler.listPage)
	router.Get("/{id}", handler.getByID)
}

// RegisterWriteRoutes mounts create and update with the entity itself as
// the request body.
func (handler *Handler[T, ID]) RegisterWriteRoutes(router chi.Router) {
	router.Post("/", handler.create)
	router.Put("/{id}", handler.update)
}

// RegisterLifecycleRoutes mounts soft delete, restore, and permanent delete.
func (handler *Handler[T, ID]) RegisterLifecycleRoutes(router chi.Router) {
	router.Delete("/{id}", handler.softDelete)
	router.Post("/{id}/restore", handler.restore)
	router.Delete("/{id}/permanent", handler.permanentDelete)
}

// id extracts and parses the {id} URL parameter.
func (handler *Handler[T, ID]) id(request *http.Request) (ID, error) {
	id, err := handler.parseID(requestutil.Param(request, "id"))
	if err != nil {
		var zero ID
		return zero, apperr.ValidationError("Invalid identifier")
	}
	return id, nil
}

// listActive handles GET / — all active records, soft-deleted ones hidden.
func (handler *Handler[T, ID]) listActive(writer http.ResponseWriter, request *http.Request) {
	entities, err := handler.service.FindAllActive(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, entities)
}

// listPage handles GET /page — a paginated view over all records.
func (handler *Handler[T, ID]) listPage(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	entities, total, err := handler.service.FindPage(request.Context(), params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, entities, pagination.NewMeta(params.Page, params.Limit, total))
}

// getByID handles GET /{id} — active records only.
func (handler *Handler[T, ID]) getByID(writer http.ResponseWriter, request *http.Request) {
	id, err := handler.id(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	entity, err := handler.service.GetByIDActive(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, entity)
}

// create handles POST / and replies 201 with the persisted entity.
func (handler *Handler[T, ID]) create(writer http.ResponseWriter, request *http.Request) {
	entity := handler.newEntity()
	if err := requestutil.DecodeJSON(request, entity); err != nil {
		respond.Error(writer, request, err)
		return
	}

	saved, err := handler.service.Save(request.Context(), entity)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, saved)
}

// update handles PUT /{id} via the entity-specific merge strategy.
func (handler *Handler[T, ID]) update(writer http.ResponseWriter, request *http.Request) {
	id, err := handler.id(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	patch := handler.newEntity()
	if err := requestutil.DecodeJSON(request, patch); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.service.Update(request.Context(), id, patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, updated)
}

// softDelete handles DELETE /{id} — reversible removal.
func (handler *Handler[T, ID]) softDelete(writer http.ResponseWriter, request *http.Request) {
	id, err := handler.id(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.SoftDelete(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Message(writer, "Entity soft deleted successfully")
}

// restore handles POST /{id}/restore.
func (handler *Handler[T, ID]) restore(writer http.ResponseWriter, request *http.Request) {
	id, err := handler.id(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Restore(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Message(writer, "Entity restored successfully")
}

// permanentDelete handles DELETE /{id}/permanent — irreversible.
func (handler *Handler[T, ID]) permanentDelete(writer http.ResponseWriter, request *http.Request) {
	id, err := handler.id(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteByID(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Message(writer, "Entity permanently deleted successfully")
}
