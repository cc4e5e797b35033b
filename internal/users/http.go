// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

package users

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/echecmap/echec-map/internal/platform/respond"
	"github.com/echecmap/echec-map/internal/platform/validate"
)

// # Handler Implementation

// Handler implements the HTTP layer for authentication.
type Handler struct {
	service *Service
}

// NewHandler constructs a users [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the auth endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Get("/icons", handler.listIcons)

	return router
}

// # Endpoints

/*
POST /api/v1/auth/register.

Description: Creates an account and returns a session token.

Request:
  - body: RegisterInput

Response:
  - 201: Session
  - 400: ErrValidation
  - 409: ErrConflict: Username taken
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input RegisterInput
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	session, err := handler.service.Register(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, session)
}

/*
POST /api/v1/auth/login.

Description: Verifies credentials and returns a session token.

Request:
  - body: LoginInput

Response:
  - 200: Session
  - 401: ErrUnauthorized: Bad credentials
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input LoginInput
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	session, err := handler.service.Login(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}

/*
GET /api/v1/auth/icons.

Description: Lists the avatar file names offered at registration. Public.

Response:
  - 200: []string
*/
func (handler *Handler) listIcons(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.service.Icons())
}
