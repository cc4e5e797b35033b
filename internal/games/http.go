// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

/*
Package games provides the HTTP interface for game availability and the
curated library.

It answers two directions of the same question — which games does this bar
stock, and which bars stock this game — and serves the filterable,
paginated card-grid library.

All endpoints are public.
*/
package games

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/echecmap/echec-map/internal/platform/apperr"
	"github.com/echecmap/echec-map/internal/platform/respond"
	"github.com/echecmap/echec-map/internal/platform/validate"
	"github.com/echecmap/echec-map/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for game discovery.
type Handler struct {
	service *Service
}

// NewHandler constructs a game [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the game endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.gamesForBar)
	router.Get("/bars", handler.barsForGame)
	router.Get("/library", handler.library)
	router.Get("/library/types", handler.libraryTypes)
	router.Get("/library/{name}", handler.libraryEntry)

	return router
}

// # Endpoints

/*
GET /api/v1/games.

Description: Lists the distinct games available at one bar.

Request:
  - bar: string (Required bar display name)

Response:
  - 200: []string: Alphabetical game titles
  - 422: ErrValidation: Missing bar parameter
*/
func (handler *Handler) gamesForBar(writer http.ResponseWriter, request *http.Request) {
	barName := request.URL.Query().Get("bar")
	if barName == "" {
		respond.Error(writer, request, validate.RequiredError("bar", "The bar query parameter is required"))
		return
	}

	respond.OK(writer, handler.service.GamesForBar(barName))
}

/*
GET /api/v1/games/bars.

Description: Lists the bars stocking a game, matching the title exactly
first and by substring otherwise.

Request:
  - game: string (Required game title)

Response:
  - 200: []string: Alphabetical bar names
  - 422: ErrValidation: Missing game parameter
*/
func (handler *Handler) barsForGame(writer http.ResponseWriter, request *http.Request) {
	title := request.URL.Query().Get("game")
	if title == "" {
		respond.Error(writer, request, validate.RequiredError("game", "The game query parameter is required"))
		return
	}

	respond.OK(writer, handler.service.BarsForGame(title))
}

/*
GET /api/v1/games/library.

Description: Returns one page of the filtered catalogue for the card grid.

Request:
  - q: string (Name substring)
  - type: []string (Type labels, repeatable)
  - players: string (One of "1", "2", "3-4", "5-6", "7+")
  - min_age: int (Inclusive-downward age threshold)
  - page, limit: int

Response:
  - 200: []CatalogueEntry with pagination metadata
  - 400: ErrValidation: Unknown players band
*/
func (handler *Handler) library(writer http.ResponseWriter, request *http.Request) {
	queryParams := request.URL.Query()

	band := PlayerBand(queryParams.Get("players"))
	if band != "" && !band.IsValid() {
		respond.Error(writer, request, apperr.ValidationError("Unknown players value", apperr.FieldError{
			Field:   "players",
			Message: `Must be one of "1", "2", "3-4", "5-6", "7+"`,
		}))
		return
	}

	filter := LibraryFilter{
		Query:   queryParams.Get("q"),
		Types:   queryParams["type"],
		Players: band,
		MinAge:  atoiOrZero(queryParams.Get("min_age")),
	}

	entries, meta := handler.service.Library(filter, pagination.FromRequest(request))
	respond.Paginated(writer, entries, meta)
}

/*
GET /api/v1/games/library/types.

Description: Lists the distinct game types for the filter dropdown.

Response:
  - 200: []string
*/
func (handler *Handler) libraryTypes(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.service.Types())
}

/*
GET /api/v1/games/library/{name}.

Description: Fetches one catalogue entry with the bars stocking it, for the
detail dialog.

Response:
  - 200: {entry, bars}
  - 404: ErrNotFound
*/
func (handler *Handler) libraryEntry(writer http.ResponseWriter, request *http.Request) {
	name := chi.URLParam(request, "name")

	entry, found := handler.service.CatalogueEntryByName(name)
	if !found {
		respond.Error(writer, request, apperr.NotFound("Game"))
		return
	}

	respond.OK(writer, map[string]any{
		"entry": entry,
		"bars":  handler.service.BarsForGame(entry.Name),
	})
}

// atoiOrZero parses a decimal query value, treating garbage as absent.
func atoiOrZero(raw string) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0
	}
	return value
}
