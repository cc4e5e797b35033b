// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

package forum_test

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echecmap/echec-map/internal/forum"
	"github.com/echecmap/echec-map/internal/games"
	"github.com/echecmap/echec-map/internal/platform/apperr"
	"github.com/echecmap/echec-map/internal/platform/gitsync"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStore(t *testing.T) *forum.Store {
	t.Helper()
	dir := t.TempDir()
	store := forum.NewStore(filepath.Join(dir, "forum_posts.csv"), filepath.Join(dir, "game_requests.csv"), gitsync.Noop{}, discardLogger())
	require.Empty(t, store.Load())
	return store
}

func newService(t *testing.T, terms ...string) (*forum.Service, *games.Service) {
	t.Helper()
	shelf := games.NewService(nil, nil)
	service := forum.NewService(newStore(t), forum.NewProfanityFilter(terms), shelf)
	return service, shelf
}

// writePostsFixture writes a posts CSV in the historical column layout.
func writePostsFixture(t *testing.T, path string, rows [][]string) {
	t.Helper()
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	writer := csv.NewWriter(file)
	require.NoError(t, writer.Write([]string{"username", "bar", "game", "when", "message", "timestamp", "reported", "report_reason", "reactions", "comments"}))
	for _, row := range rows {
		require.NoError(t, writer.Write(row))
	}
	writer.Flush()
	require.NoError(t, writer.Error())
}

/*
TestLoad_LegacyComments verifies the three generations of comment cells all
load: JSON arrays as-is, "|||"-delimited strings as anonymous comments, and
anything else as an empty list.
*/
func TestLoad_LegacyComments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "forum_posts.csv")

	writePostsFixture(t, path, [][]string{
		{"alice", "Oya Café", "Catan", "ce soir", "Qui vient ?", "2026-08-01 19:00", "False", "", "", `[{"author":"bob","text":"Moi !","timestamp":"2026-08-01 19:05"}]`},
		{"bob", "Loufoque", "Dixit", "", "Partie demain", "2026-08-02 10:00", "False", "", "nan", "Super idée|||Je passe vers 20h"},
		{"carol", "Oya Café", "Root", "", "Complet", "2026-08-03 12:00", "True", "doublon", "garbage", "garbage"},
	})

	store := forum.NewStore(path, filepath.Join(dir, "game_requests.csv"), gitsync.Noop{}, discardLogger())
	require.Empty(t, store.Load())

	posts := store.Posts()
	require.Len(t, posts, 3)

	require.Len(t, posts[0].Comments, 1)
	assert.Equal(t, "bob", posts[0].Comments[0].Author)

	migrated := posts[1].Comments
	require.Len(t, migrated, 2)
	assert.Equal(t, forum.Comment{Author: "Anonyme", Text: "Super idée", Timestamp: ""}, migrated[0])
	assert.Equal(t, forum.Comment{Author: "Anonyme", Text: "Je passe vers 20h", Timestamp: ""}, migrated[1])
	assert.Equal(t, map[string]int{}, posts[1].Reactions)

	assert.Empty(t, posts[2].Comments)
	assert.Equal(t, map[string]int{}, posts[2].Reactions)
	assert.True(t, posts[2].Reported)
	assert.Equal(t, "doublon", posts[2].ReportReason)
}

/*
TestCreatePost verifies creation prepends to the feed with a fresh ID and
initialised reaction and comment containers.
*/
func TestCreatePost(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	first, err := service.CreatePost(ctx, "alice", forum.PostInput{Bar: "Oya Café", Game: "Catan", Message: "Qui vient ?"})
	require.NoError(t, err)
	second, err := service.CreatePost(ctx, "bob", forum.PostInput{Game: "Dixit", Message: "Partie demain"})
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEmpty(t, first.Timestamp)
	assert.Equal(t, map[string]int{}, first.Reactions)

	posts := service.Posts()
	require.Len(t, posts, 2)
	assert.Equal(t, "bob", posts[0].Username)
	assert.Equal(t, "alice", posts[1].Username)
}

/*
TestCreatePost_Validation verifies message and game are both mandatory.
*/
func TestCreatePost_Validation(t *testing.T) {
	service, _ := newService(t)

	_, err := service.CreatePost(context.Background(), "alice", forum.PostInput{Bar: "Oya Café"})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	assert.Len(t, apperr.As(err).Details, 2)
}

/*
TestCreatePost_Profanity verifies the filter rejects both the message and
the game name with a 422.
*/
func TestCreatePost_Profanity(t *testing.T) {
	service, _ := newService(t, "idiot")
	ctx := context.Background()

	_, err := service.CreatePost(ctx, "alice", forum.PostInput{Game: "Catan", Message: "Bande d'IDIOTS"})
	require.Error(t, err)
	assert.Equal(t, "UNPROCESSABLE", apperr.As(err).Code)

	_, err = service.CreatePost(ctx, "alice", forum.PostInput{Game: "Idiot Quest", Message: "Qui vient ?"})
	require.Error(t, err)
	assert.Equal(t, "UNPROCESSABLE", apperr.As(err).Code)

	assert.Empty(t, service.Posts())
}

/*
TestReact verifies the same emoji twice yields a count of two, not two
entries.
*/
func TestReact(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	post, err := service.CreatePost(ctx, "alice", forum.PostInput{Game: "Catan", Message: "Qui vient ?"})
	require.NoError(t, err)

	_, err = service.React(ctx, post.ID, "👍")
	require.NoError(t, err)
	updated, err := service.React(ctx, post.ID, "👍")
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"👍": 2}, updated.Reactions)

	_, err = service.React(ctx, "missing", "👍")
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestComments verifies the add/delete round-trip, author-or-admin
authorization, and that an out-of-range index is a silent no-op.
*/
func TestComments(t *testing.T) {
	service, _ := newService(t, "idiot")
	ctx := context.Background()

	post, err := service.CreatePost(ctx, "alice", forum.PostInput{Game: "Catan", Message: "Qui vient ?"})
	require.NoError(t, err)

	updated, err := service.AddComment(ctx, post.ID, "bob", "Moi !")
	require.NoError(t, err)
	require.Len(t, updated.Comments, 1)
	assert.Equal(t, "bob", updated.Comments[0].Author)
	assert.NotEmpty(t, updated.Comments[0].Timestamp)

	_, err = service.AddComment(ctx, post.ID, "carol", "quel idiot")
	assert.Equal(t, "UNPROCESSABLE", apperr.As(err).Code)

	// Carol is neither the comment author nor an admin.
	err = service.DeleteComment(ctx, post.ID, 0, "carol", false)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	// Out-of-range index: no-op, not an error.
	require.NoError(t, service.DeleteComment(ctx, post.ID, 5, "bob", false))

	require.NoError(t, service.DeleteComment(ctx, post.ID, 0, "bob", false))
	refreshed := service.Posts()[0]
	assert.Empty(t, refreshed.Comments)
}

/*
TestDeletePost verifies author-or-admin authorization and structural
removal.
*/
func TestDeletePost(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	post, err := service.CreatePost(ctx, "alice", forum.PostInput{Game: "Catan", Message: "Qui vient ?"})
	require.NoError(t, err)

	err = service.DeletePost(ctx, post.ID, "bob", false)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	require.NoError(t, service.DeletePost(ctx, post.ID, "bob", true))
	assert.Empty(t, service.Posts())

	err = service.DeletePost(ctx, post.ID, "alice", false)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestReportLifecycle verifies flagging, the moderation queue, and dismissal.
*/
func TestReportLifecycle(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	post, err := service.CreatePost(ctx, "alice", forum.PostInput{Game: "Catan", Message: "Qui vient ?"})
	require.NoError(t, err)

	require.NoError(t, service.Report(ctx, post.ID, "spam"))
	flagged := service.Reported()
	require.Len(t, flagged, 1)
	assert.Equal(t, "spam", flagged[0].ReportReason)

	require.NoError(t, service.Dismiss(ctx, post.ID))
	assert.Empty(t, service.Reported())
}

/*
TestPersistence verifies a mutation survives a reload from disk through a
second store, including the reaction and comment cells.
*/
func TestPersistence(t *testing.T) {
	dir := t.TempDir()
	postsPath := filepath.Join(dir, "forum_posts.csv")
	requestsPath := filepath.Join(dir, "game_requests.csv")

	store := forum.NewStore(postsPath, requestsPath, gitsync.Noop{}, discardLogger())
	require.Empty(t, store.Load())
	shelf := games.NewService(nil, nil)
	service := forum.NewService(store, forum.NewProfanityFilter(nil), shelf)
	ctx := context.Background()

	post, err := service.CreatePost(ctx, "alice", forum.PostInput{Bar: "Oya Café", Game: "Catan", Message: "Qui vient ?"})
	require.NoError(t, err)
	_, err = service.React(ctx, post.ID, "🎲")
	require.NoError(t, err)
	_, err = service.AddComment(ctx, post.ID, "bob", "Moi !")
	require.NoError(t, err)

	reopened := forum.NewStore(postsPath, requestsPath, gitsync.Noop{}, discardLogger())
	require.Empty(t, reopened.Load())

	posts := reopened.Posts()
	require.Len(t, posts, 1)
	assert.Equal(t, "alice", posts[0].Username)
	assert.Equal(t, map[string]int{"🎲": 1}, posts[0].Reactions)
	require.Len(t, posts[0].Comments, 1)
	assert.Equal(t, "Moi !", posts[0].Comments[0].Text)
}

/*
TestRequestLifecycle verifies creation starts pending, approval records the
game as available at the bar, and decided requests cannot flip again.
*/
func TestRequestLifecycle(t *testing.T) {
	service, shelf := newService(t)
	ctx := context.Background()

	created, err := service.CreateRequest(ctx, "alice", forum.RequestInput{
		BarName:    "La Cabane",
		GameName:   "Root",
		ActionType: "add_game",
	})
	require.NoError(t, err)
	assert.Equal(t, forum.StatusPending, created.Status)
	assert.NotEmpty(t, created.Timestamp)

	require.NoError(t, service.Approve(ctx, created.ID))
	assert.Equal(t, []string{"Root"}, shelf.GamesForBar("La Cabane"))

	pending := service.Requests(forum.StatusPending)
	assert.Empty(t, pending)
	approved := service.Requests(forum.StatusApproved)
	require.Len(t, approved, 1)

	err = service.Approve(ctx, created.ID)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	err = service.Reject(ctx, created.ID)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)

	err = service.Approve(ctx, "missing")
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestCreateRequest_Validation verifies bar and game names are mandatory.
*/
func TestCreateRequest_Validation(t *testing.T) {
	service, _ := newService(t)

	_, err := service.CreateRequest(context.Background(), "alice", forum.RequestInput{Description: "svp"})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

/*
TestReject verifies rejection is terminal and never touches availability.
*/
func TestReject(t *testing.T) {
	service, shelf := newService(t)
	ctx := context.Background()

	created, err := service.CreateRequest(ctx, "alice", forum.RequestInput{BarName: "La Cabane", GameName: "Root"})
	require.NoError(t, err)

	require.NoError(t, service.Reject(ctx, created.ID))
	assert.Empty(t, shelf.GamesForBar("La Cabane"))

	err = service.Approve(ctx, created.ID)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}
