// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

package forum

import (
	"context"
	"time"

	"github.com/echecmap/echec-map/internal/platform/apperr"
	"github.com/echecmap/echec-map/internal/platform/constants"
	"github.com/echecmap/echec-map/internal/platform/validate"
	"github.com/echecmap/echec-map/pkg/uuidv7"
)

// # Service Layer

// GameShelf is the slice of the game service the forum needs: recording
// that an approved request's game is now available at its bar.
type GameShelf interface {
	Add(barName, title string)
}

// Service orchestrates forum posts and game requests: creation, reactions,
// comments, moderation, and the admin approval workflow.
type Service struct {
	store  *Store
	filter *ProfanityFilter
	shelf  GameShelf
	now    func() time.Time
}

// NewService constructs a forum [Service].
func NewService(store *Store, filter *ProfanityFilter, shelf GameShelf) *Service {
	return &Service{
		store:  store,
		filter: filter,
		shelf:  shelf,
		now:    time.Now,
	}
}

// # Posts

// Posts returns the feed, newest first.
func (service *Service) Posts() []Post {
	return service.store.Posts()
}

// PostInput carries the user-supplied fields of a new post.
type PostInput struct {
	Bar     string `json:"bar"`
	Game    string `json:"game"`
	When    string `json:"when"`
	Message string `json:"message"`
}

/*
CreatePost publishes a new forum post.

Description: Message and game are mandatory; both are screened by the
profanity filter before anything is persisted. The post lands at the top of
the feed with a fresh ID and a minute-precision timestamp.

Parameters:
  - ctx: context.Context
  - username: string (Authenticated author)
  - input: PostInput

Returns:
  - Post: The created post
  - error: Validation, profanity (422), or persistence errors
*/
func (service *Service) CreatePost(ctx context.Context, username string, input PostInput) (Post, error) {

	// ── 1. Validation ─────────────────────────────────────────────────────
	validator := &validate.Validator{}
	validator.Required("message", input.Message)
	validator.Required("game", input.Game)
	if err := validator.Err(); err != nil {
		return Post{}, err
	}

	// ── 2. Moderation ─────────────────────────────────────────────────────
	if service.filter.Contains(input.Message) || service.filter.Contains(input.Game) {
		return Post{}, apperr.Unprocessable("Le message contient des termes inappropriés")
	}

	// ── 3. Persist ────────────────────────────────────────────────────────
	post := Post{
		ID:        uuidv7.New(),
		Username:  username,
		Bar:       input.Bar,
		Game:      input.Game,
		When:      input.When,
		Message:   input.Message,
		Timestamp: service.now().Format(constants.CommentTimeLayout),
		Reactions: map[string]int{},
		Comments:  []Comment{},
	}

	if err := service.store.InsertPost(ctx, post); err != nil {
		return Post{}, apperr.Internal(err)
	}
	return post, nil
}

/*
React increments an emoji counter on a post.

Description: Calling twice with the same emoji yields a count of two, not
two entries. Legacy reaction cells were already normalised to counted
mappings at load time.

Returns:
  - Post: The updated post
  - error: Validation, ErrNotFound, or persistence errors
*/
func (service *Service) React(ctx context.Context, postID, emoji string) (Post, error) {
	validator := &validate.Validator{}
	validator.Required("emoji", emoji)
	if err := validator.Err(); err != nil {
		return Post{}, err
	}

	found, err := service.store.MutatePost(ctx, postID, "Add reaction", func(post *Post) {
		if post.Reactions == nil {
			post.Reactions = map[string]int{}
		}
		post.Reactions[emoji]++
	})
	if err != nil {
		return Post{}, apperr.Internal(err)
	}
	if !found {
		return Post{}, apperr.NotFound("Post")
	}

	post, _ := service.store.PostByID(postID)
	return post, nil
}

/*
AddComment appends a timestamped comment under a post.

Returns:
  - Post: The updated post
  - error: Validation, profanity (422), ErrNotFound, or persistence errors
*/
func (service *Service) AddComment(ctx context.Context, postID, author, text string) (Post, error) {
	validator := &validate.Validator{}
	validator.Required("text", text)
	if err := validator.Err(); err != nil {
		return Post{}, err
	}

	if service.filter.Contains(text) {
		return Post{}, apperr.Unprocessable("Le commentaire contient des termes inappropriés")
	}

	comment := Comment{
		Author:    author,
		Text:      text,
		Timestamp: service.now().Format(constants.CommentTimeLayout),
	}

	found, err := service.store.MutatePost(ctx, postID, "Add comment", func(post *Post) {
		post.Comments = append(post.Comments, comment)
	})
	if err != nil {
		return Post{}, apperr.Internal(err)
	}
	if !found {
		return Post{}, apperr.NotFound("Post")
	}

	post, _ := service.store.PostByID(postID)
	return post, nil
}

/*
DeleteComment removes a comment by position.

Description: Only the comment's author or an admin may delete it. An
out-of-range index is a silent no-op, preserving the historical contract
that made double-clicks harmless.

Parameters:
  - ctx: context.Context
  - postID: string
  - commentIndex: int (Position in the post's comment list)
  - actor: string (Authenticated username)
  - isAdmin: bool

Returns:
  - error: ErrNotFound, ErrForbidden, or persistence errors
*/
func (service *Service) DeleteComment(ctx context.Context, postID string, commentIndex int, actor string, isAdmin bool) error {
	post, found := service.store.PostByID(postID)
	if !found {
		return apperr.NotFound("Post")
	}

	if commentIndex < 0 || commentIndex >= len(post.Comments) {
		return nil
	}

	if !isAdmin && post.Comments[commentIndex].Author != actor {
		return apperr.Forbidden("Only the comment author or an admin can delete a comment")
	}

	_, err := service.store.MutatePost(ctx, postID, "Delete comment", func(post *Post) {
		if commentIndex < len(post.Comments) {
			post.Comments = append(post.Comments[:commentIndex], post.Comments[commentIndex+1:]...)
		}
	})
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}

/*
DeletePost removes a post entirely. Only the author or an admin may do so;
deletion is structural, not a flag.

Returns:
  - error: ErrNotFound, ErrForbidden, or persistence errors
*/
func (service *Service) DeletePost(ctx context.Context, postID, actor string, isAdmin bool) error {
	post, found := service.store.PostByID(postID)
	if !found {
		return apperr.NotFound("Post")
	}

	if !isAdmin && post.Username != actor {
		return apperr.Forbidden("Only the post author or an admin can delete a post")
	}

	if _, err := service.store.RemovePost(ctx, postID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

/*
Report flags a post for admin review with a free-text reason.

Returns:
  - error: ErrNotFound or persistence errors
*/
func (service *Service) Report(ctx context.Context, postID, reason string) error {
	found, err := service.store.MutatePost(ctx, postID, "Report post", func(post *Post) {
		post.Reported = true
		post.ReportReason = reason
	})
	if err != nil {
		return apperr.Internal(err)
	}
	if !found {
		return apperr.NotFound("Post")
	}
	return nil
}

/*
Dismiss clears a post's reported flag without deleting it (the admin's
"ignore report" action).

Returns:
  - error: ErrNotFound or persistence errors
*/
func (service *Service) Dismiss(ctx context.Context, postID string) error {
	found, err := service.store.MutatePost(ctx, postID, "Dismiss report", func(post *Post) {
		post.Reported = false
	})
	if err != nil {
		return apperr.Internal(err)
	}
	if !found {
		return apperr.NotFound("Post")
	}
	return nil
}

// Reported lists the posts currently flagged for review.
func (service *Service) Reported() []Post {
	var flagged []Post
	for _, post := range service.store.Posts() {
		if post.Reported {
			flagged = append(flagged, post)
		}
	}
	return flagged
}

// # Game Requests

// RequestInput carries the user-supplied fields of a new game request.
type RequestInput struct {
	BarName     string `json:"bar_name"`
	GameName    string `json:"game_name"`
	ActionType  string `json:"action_type"`
	Description string `json:"description"`
}

// Requests lists game requests, optionally narrowed to one status.
func (service *Service) Requests(status string) []Request {
	all := service.store.Requests()
	if status == "" {
		return all
	}

	var filtered []Request
	for _, request := range all {
		if request.Status == status {
			filtered = append(filtered, request)
		}
	}
	return filtered
}

/*
CreateRequest files a pending game request for admin review.

Returns:
  - Request: The created request
  - error: Validation or persistence errors
*/
func (service *Service) CreateRequest(ctx context.Context, username string, input RequestInput) (Request, error) {
	validator := &validate.Validator{}
	validator.Required("bar_name", input.BarName)
	validator.Required("game_name", input.GameName)
	if err := validator.Err(); err != nil {
		return Request{}, err
	}

	request := Request{
		ID:          uuidv7.New(),
		Timestamp:   service.now().Format(constants.CommentTimeLayout),
		Username:    username,
		BarName:     input.BarName,
		GameName:    input.GameName,
		ActionType:  input.ActionType,
		Description: input.Description,
		Status:      StatusPending,
	}

	if err := service.store.AppendRequest(ctx, request); err != nil {
		return Request{}, apperr.Internal(err)
	}
	return request, nil
}

/*
Approve transitions a pending request to approved and records the game as
available at its bar.

Description: The availability addition is in-memory only; the scraped
per-bar CSVs are never rewritten. Approving a non-pending request is a
conflict, keeping the transition terminal.

Returns:
  - error: ErrNotFound, ErrConflict, or persistence errors
*/
func (service *Service) Approve(ctx context.Context, requestID string) error {
	var (
		approved Request
		conflict bool
	)

	found, err := service.store.MutateRequest(ctx, requestID, "Approve game request", func(request *Request) {
		if request.Status != StatusPending {
			conflict = true
			return
		}
		request.Status = StatusApproved
		approved = *request
	})
	if err != nil {
		return apperr.Internal(err)
	}
	if !found {
		return apperr.NotFound("Request")
	}
	if conflict {
		return apperr.Conflict("Request has already been decided")
	}

	service.shelf.Add(approved.BarName, approved.GameName)
	return nil
}

/*
Reject transitions a pending request to rejected.

Returns:
  - error: ErrNotFound, ErrConflict, or persistence errors
*/
func (service *Service) Reject(ctx context.Context, requestID string) error {
	var conflict bool

	found, err := service.store.MutateRequest(ctx, requestID, "Reject game request", func(request *Request) {
		if request.Status != StatusPending {
			conflict = true
			return
		}
		request.Status = StatusRejected
	})
	if err != nil {
		return apperr.Internal(err)
	}
	if !found {
		return apperr.NotFound("Request")
	}
	if conflict {
		return apperr.Conflict("Request has already been decided")
	}
	return nil
}
