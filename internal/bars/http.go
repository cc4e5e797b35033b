// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

/*
Package bars provides the HTTP interface for the Paris board-game bar map.

It exposes endpoints for browsing bars, filtering by district, finding the
nearest bar to an address, and serving each bar's photo and menu PDF.

All endpoints are public: the map is the site's landing experience and
requires no account.
*/
package bars

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/echecmap/echec-map/internal/platform/respond"
	"github.com/echecmap/echec-map/internal/platform/validate"
)

// # Handler Implementation

// Handler implements the HTTP layer for bar discovery.
type Handler struct {
	service *Service
}

// NewHandler constructs a bar [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the bar endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listBars)
	router.Get("/arrondissements", handler.listArrondissements)
	router.Get("/closest", handler.closestBar)
	router.Get("/{name}", handler.getBar)
	router.Get("/{name}/image", handler.serveImage)
	router.Get("/{name}/menu", handler.serveMenu)

	return router
}

// # Endpoints

/*
GET /api/v1/bars.

Description: Lists bars, optionally narrowed by district or name substring.

Request:
  - arrondissement: string (Exact district label, e.g. "11e arr.")
  - q: string (Case-insensitive name substring)

Response:
  - 200: []Bar
*/
func (handler *Handler) listBars(writer http.ResponseWriter, request *http.Request) {
	queryParams := request.URL.Query()

	result := handler.service.List(Filter{
		Arrondissement: queryParams.Get("arrondissement"),
		Query:          queryParams.Get("q"),
	})

	respond.OK(writer, result)
}

/*
GET /api/v1/bars/arrondissements.

Description: Lists the distinct districts that have at least one bar,
ordered by district number for the filter dropdown.

Response:
  - 200: []string
*/
func (handler *Handler) listArrondissements(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.service.Arrondissements())
}

/*
GET /api/v1/bars/closest.

Description: Geocodes the given address and returns the nearest bar with its
distance in kilometres.

Request:
  - address: string (Required free-text address)

Response:
  - 200: ClosestResult
  - 404: ErrNotFound: Address could not be located
  - 422: ErrValidation: Missing address parameter
*/
func (handler *Handler) closestBar(writer http.ResponseWriter, request *http.Request) {
	address := request.URL.Query().Get("address")
	if address == "" {
		respond.Error(writer, request, validate.RequiredError("address", "The address query parameter is required"))
		return
	}

	result, err := handler.service.Closest(request.Context(), address)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

/*
GET /api/v1/bars/{name}.

Description: Fetches one bar by exact display name.

Response:
  - 200: Bar
  - 404: ErrNotFound
*/
func (handler *Handler) getBar(writer http.ResponseWriter, request *http.Request) {
	bar, err := handler.service.Get(chi.URLParam(request, "name"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, bar)
}

/*
GET /api/v1/bars/{name}/image.

Description: Serves the bar's photo, located by fuzzy file matching against
the images directory.

Response:
  - 200: image bytes (content type inferred from the file)
  - 404: ErrNotFound: No image matched
*/
func (handler *Handler) serveImage(writer http.ResponseWriter, request *http.Request) {
	path, err := handler.service.ImagePath(chi.URLParam(request, "name"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.ServeFile(writer, request, path)
}

/*
GET /api/v1/bars/{name}/menu.

Description: Serves the bar's menu PDF, consulting the manual override table
before fuzzy matching.

Response:
  - 200: application/pdf bytes
  - 404: ErrNotFound: No menu matched
*/
func (handler *Handler) serveMenu(writer http.ResponseWriter, request *http.Request) {
	path, err := handler.service.MenuPath(chi.URLParam(request, "name"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	writer.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(writer, request, path)
}
