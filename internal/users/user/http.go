// Copyright (c) 2026 Corven. All rights reserved.
// Author: dev@corven.io

package user

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/corven-io/corven/internal/platform/crud"
	"github.com/corven-io/corven/internal/platform/middleware"
	requestutil "github.com/corven-io/corven/internal/platform/request"
	"github.com/corven-io/corven/internal/platform/respond"
	"github.com/corven-io/corven/internal/platform/validate"
	"github.com/corven-io/corven/pkg/pointer"
)

type Handler struct {
	service *Service
	generic *crud.Handler[*User, string]
}

func NewHandler(service *Service) *Handler {
	generic := crud.NewHandler[*User, string](
		service.Service,
		func(raw string) (string, error) { return raw, nil },
		func() *User { return &User{} },
	)
	return &Handler{service: service, generic: generic}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	// Public
	router.Post("/", handler.createUser)
	router.Get("/username/{username}", handler.getByUsername)
	router.Get("/email/{email}", handler.getByEmail)

	// Authenticated
	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)

		handler.generic.RegisterReadRoutes(protected)
		handler.generic.RegisterLifecycleRoutes(protected)
		protected.Put("/{id}", handler.updateUser)
	})
}

type createUserInput struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	BirthDate   string `json:"birth_date"`
}

func (input createUserInput) validate() error {
	v := &validate.Validator{}
	v.Required("username", input.Username).MinLen("username", input.Username, 3).MaxLen("username", input.Username, 50)
	v.Required("email", input.Email)
	if input.Email != "" {
		v.Email("email", input.Email)
	}
	v.Required("password", input.Password).MinLen("password", input.Password, 8)
	v.MaxLen("first_name", input.FirstName, 100)
	v.MaxLen("last_name", input.LastName, 100)
	v.MaxLen("phone_number", input.PhoneNumber, 30)
	if input.BirthDate != "" {
		v.Date("birth_date", input.BirthDate)
	}
	return v.Err()
}

type updateUserInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	BirthDate   string `json:"birth_date"`
}

func (input updateUserInput) validate() error {
	v := &validate.Validator{}
	if input.Email != "" {
		v.Email("email", input.Email)
	}
	if input.Password != "" {
		v.MinLen("password", input.Password, 8)
	}
	v.MaxLen("first_name", input.FirstName, 100)
	v.MaxLen("last_name", input.LastName, 100)
	v.MaxLen("phone_number", input.PhoneNumber, 30)
	if input.BirthDate != "" {
		v.Date("birth_date", input.BirthDate)
	}
	return v.Err()
}

// parseBirthDate converts the wire date into a timestamp. Callers validate
// the format first, so a parse failure here means an empty value.
func parseBirthDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	parsed, err := time.Parse(validate.DateLayout, value)
	if err != nil {
		return nil
	}
	return pointer.To(parsed)
}

func (handler *Handler) createUser(writer http.ResponseWriter, request *http.Request) {
	var input createUserInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := input.validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	candidate := &User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: input.Password,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PhoneNumber:  input.PhoneNumber,
		BirthDate:    parseBirthDate(input.BirthDate),
	}

	created, err := handler.service.Create(request.Context(), candidate)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, created)
}

func (handler *Handler) updateUser(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.Param(request, "id")

	var input updateUserInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := input.validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	patch := &User{
		Email:        input.Email,
		PasswordHash: input.Password,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PhoneNumber:  input.PhoneNumber,
		BirthDate:    parseBirthDate(input.BirthDate),
	}

	updated, err := handler.service.Update(request.Context(), userID, patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, updated)
}

func (handler *Handler) getByUsername(writer http.ResponseWriter, request *http.Request) {
	username := requestutil.Param(request, "username")

	found, err := handler.service.GetByUsername(request.Context(), username)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, found)
}

func (handler *Handler) getByEmail(writer http.ResponseWriter, request *http.Request) {
	email := requestutil.Param(request, "email")

	found, err := handler.service.GetByEmail(request.Context(), email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, found)
}
