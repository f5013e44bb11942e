// Copyright (c) 2026 Corven. All rights reserved.
// Author: dev@corven.io

package auth

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/corven-io/corven/internal/platform/apperr"
	requestutil "github.com/corven-io/corven/internal/platform/request"
	"github.com/corven-io/corven/internal/platform/respond"
	"github.com/corven-io/corven/internal/platform/validate"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/login", handler.login)
	router.Post("/validate", handler.validateToken)
}

type loginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (input loginInput) validate() error {
	v := &validate.Validator{}
	v.Required("username", input.Username)
	v.Required("password", input.Password)
	return v.Err()
}

type validateInput struct {
	Token string `json:"token"`
}

func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := input.validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.Login(request.Context(), input.Username, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

// validateToken accepts the token either in the JSON body or as a bearer
// header, so clients can check their stored token without building a body.
func (handler *Handler) validateToken(writer http.ResponseWriter, request *http.Request) {
	var input validateInput
	if request.ContentLength > 0 {
		if err := requestutil.DecodeJSON(request, &input); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	token := input.Token
	if token == "" {
		header := request.Header.Get("Authorization")
		if after, found := strings.CutPrefix(header, "Bearer "); found {
			token = after
		}
	}

	if token == "" {
		respond.Error(writer, request, validate.RequiredError("token", "This field is required"))
		return
	}

	if !handler.service.ValidateToken(token) {
		respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
		return
	}
	respond.Message(writer, "Token is valid")
}
