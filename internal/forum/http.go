// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

/*
Package forum provides the community layer of the bar map: posts proposing
games at bars, emoji reactions, comments, moderation, and the game request
workflow feeding the availability data.

Reads are public; everything that writes requires an account, and the
moderation queue plus request review are admin-only.
*/
package forum

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/echecmap/echec-map/internal/platform/ctxutil"
	"github.com/echecmap/echec-map/internal/platform/middleware"
	"github.com/echecmap/echec-map/internal/platform/respond"
	"github.com/echecmap/echec-map/internal/platform/sec"
	"github.com/echecmap/echec-map/internal/platform/validate"
)

// # Handler Implementation

// Handler implements the HTTP layer for the forum and the request workflow.
type Handler struct {
	service *Service
}

// NewHandler constructs a forum [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the forum endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/posts", handler.listPosts)

	router.Group(func(authenticated chi.Router) {
		authenticated.Use(middleware.RequireAuth)
		authenticated.Post("/posts", handler.createPost)
		authenticated.Post("/posts/{id}/reactions", handler.addReaction)
		authenticated.Post("/posts/{id}/comments", handler.addComment)
		authenticated.Delete("/posts/{id}/comments/{index}", handler.deleteComment)
		authenticated.Delete("/posts/{id}", handler.deletePost)
		authenticated.Post("/posts/{id}/report", handler.reportPost)
		authenticated.Post("/requests", handler.createRequest)
	})

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		admin.Get("/posts/reported", handler.listReported)
		admin.Delete("/posts/{id}/report", handler.dismissReport)
		admin.Get("/requests", handler.listRequests)
		admin.Post("/requests/{id}/approve", handler.approveRequest)
		admin.Post("/requests/{id}/reject", handler.rejectRequest)
	})

	return router
}

// # Post Endpoints

/*
GET /api/v1/forum/posts.

Description: Returns the full feed, newest first. Public.

Response:
  - 200: []Post
*/
func (handler *Handler) listPosts(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.service.Posts())
}

/*
POST /api/v1/forum/posts.

Description: Publishes a post under the authenticated username.

Request:
  - body: PostInput (message and game required)

Response:
  - 201: Post
  - 400: ErrValidation
  - 422: ErrUnprocessable: Profanity filter rejection
*/
func (handler *Handler) createPost(writer http.ResponseWriter, request *http.Request) {
	var input PostInput
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	claims := ctxutil.GetAuthUser(request.Context())
	post, err := handler.service.CreatePost(request.Context(), claims.Username, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, post)
}

/*
POST /api/v1/forum/posts/{id}/reactions.

Description: Increments an emoji counter on a post.

Request:
  - body: {"emoji": string}

Response:
  - 200: Post (updated)
  - 404: ErrNotFound
*/
func (handler *Handler) addReaction(writer http.ResponseWriter, request *http.Request) {
	var input struct {
		Emoji string `json:"emoji"`
	}
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	post, err := handler.service.React(request.Context(), chi.URLParam(request, "id"), input.Emoji)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, post)
}

/*
POST /api/v1/forum/posts/{id}/comments.

Description: Appends a comment under the authenticated username.

Request:
  - body: {"text": string}

Response:
  - 200: Post (updated)
  - 404: ErrNotFound
  - 422: ErrUnprocessable: Profanity filter rejection
*/
func (handler *Handler) addComment(writer http.ResponseWriter, request *http.Request) {
	var input struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	claims := ctxutil.GetAuthUser(request.Context())
	post, err := handler.service.AddComment(request.Context(), chi.URLParam(request, "id"), claims.Username, input.Text)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, post)
}

/*
DELETE /api/v1/forum/posts/{id}/comments/{index}.

Description: Removes a comment by position. Author-or-admin only; an
out-of-range index succeeds without effect.

Response:
  - 204: Deleted (or index already gone)
  - 403: ErrForbidden
  - 404: ErrNotFound: Unknown post
*/
func (handler *Handler) deleteComment(writer http.ResponseWriter, request *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(request, "index"))
	if err != nil {
		respond.Error(writer, request, validate.RequiredError("index", "The comment index must be an integer"))
		return
	}

	claims := ctxutil.GetAuthUser(request.Context())
	isAdmin := sec.UserRole(claims.Role).AtLeast(sec.RoleAdmin)

	if err := handler.service.DeleteComment(request.Context(), chi.URLParam(request, "id"), index, claims.Username, isAdmin); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
DELETE /api/v1/forum/posts/{id}.

Description: Removes a post entirely. Author-or-admin only.

Response:
  - 204: Deleted
  - 403: ErrForbidden
  - 404: ErrNotFound
*/
func (handler *Handler) deletePost(writer http.ResponseWriter, request *http.Request) {
	claims := ctxutil.GetAuthUser(request.Context())
	isAdmin := sec.UserRole(claims.Role).AtLeast(sec.RoleAdmin)

	if err := handler.service.DeletePost(request.Context(), chi.URLParam(request, "id"), claims.Username, isAdmin); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
POST /api/v1/forum/posts/{id}/report.

Description: Flags a post for admin review.

Request:
  - body: {"reason": string}

Response:
  - 204: Flagged
  - 404: ErrNotFound
*/
func (handler *Handler) reportPost(writer http.ResponseWriter, request *http.Request) {
	var input struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := handler.service.Report(request.Context(), chi.URLParam(request, "id"), input.Reason); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Moderation Endpoints

/*
GET /api/v1/forum/posts/reported.

Description: Lists flagged posts for the moderation queue. Admin only.

Response:
  - 200: []Post
*/
func (handler *Handler) listReported(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.service.Reported())
}

/*
DELETE /api/v1/forum/posts/{id}/report.

Description: Dismisses a report, keeping the post. Admin only.

Response:
  - 204: Dismissed
  - 404: ErrNotFound
*/
func (handler *Handler) dismissReport(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Dismiss(request.Context(), chi.URLParam(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Request Endpoints

/*
POST /api/v1/forum/requests.

Description: Files a pending game request under the authenticated username.

Request:
  - body: RequestInput (bar_name and game_name required)

Response:
  - 201: Request
  - 400: ErrValidation
*/
func (handler *Handler) createRequest(writer http.ResponseWriter, request *http.Request) {
	var input RequestInput
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	claims := ctxutil.GetAuthUser(request.Context())
	created, err := handler.service.CreateRequest(request.Context(), claims.Username, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, created)
}

/*
GET /api/v1/forum/requests.

Description: Lists game requests for review. Admin only.

Request:
  - status: string (Optional filter: pending, approved, rejected)

Response:
  - 200: []Request
*/
func (handler *Handler) listRequests(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.service.Requests(request.URL.Query().Get("status")))
}

/*
POST /api/v1/forum/requests/{id}/approve.

Description: Approves a pending request and records the game as available at
its bar. Admin only.

Response:
  - 204: Approved
  - 404: ErrNotFound
  - 409: ErrConflict: Request already decided
*/
func (handler *Handler) approveRequest(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Approve(request.Context(), chi.URLParam(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
POST /api/v1/forum/requests/{id}/reject.

Description: Rejects a pending request. Admin only.

Response:
  - 204: Rejected
  - 404: ErrNotFound
  - 409: ErrConflict: Request already decided
*/
func (handler *Handler) rejectRequest(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Reject(request.Context(), chi.URLParam(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
