// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

package forum

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/echecmap/echec-map/internal/platform/gitsync"
	"github.com/echecmap/echec-map/pkg/uuidv7"
)

// CSV column layouts. These are the historical file formats; the in-memory
// IDs are deliberately not persisted.
var (
	postColumns    = []string{"username", "bar", "game", "when", "message", "timestamp", "reported", "report_reason", "reactions", "comments"}
	requestColumns = []string{"timestamp", "username", "bar_name", "game_name", "action_type", "description", "status"}
)

// Store holds the forum's two collections and their flat-file persistence.
//
// # Concurrency
//
// Every mutation rewrites the whole backing file from the in-memory state
// under one mutex, then hands the file to the sync collaborator. Two
// replicas writing the same file still race last-writer-wins; that known
// limitation is inherited from the flat-file model, not fixed here.
type Store struct {
	mu           sync.Mutex
	posts        []Post
	requests     []Request
	postsPath    string
	requestsPath string
	syncer       gitsync.Syncer
	log          *slog.Logger
}

// NewStore constructs an empty [Store]; call [Store.Load] before use.
func NewStore(postsPath, requestsPath string, syncer gitsync.Syncer, log *slog.Logger) *Store {
	return &Store{
		postsPath:    postsPath,
		requestsPath: requestsPath,
		syncer:       syncer,
		log:          log,
	}
}

/*
Load reads both collections from disk.

Description: A missing file is an empty collection. A parse failure also
degrades to an empty collection with a warning — availability over strict
correctness, at the documented risk of ignoring a corrupt file's content
until it is repaired. Loaded records receive fresh stable IDs.

Returns:
  - []string: Warnings for unreadable or unparseable files
*/
func (store *Store) Load() []string {
	store.mu.Lock()
	defer store.mu.Unlock()

	var warnings []string

	posts, warning := loadPostsCSV(store.postsPath)
	if warning != "" {
		warnings = append(warnings, warning)
	}
	store.posts = posts

	requests, warning := loadRequestsCSV(store.requestsPath)
	if warning != "" {
		warnings = append(warnings, warning)
	}
	store.requests = requests

	return warnings
}

// # Post Accessors

// Posts returns a snapshot of all posts, newest first.
func (store *Store) Posts() []Post {
	store.mu.Lock()
	defer store.mu.Unlock()

	return clonePosts(store.posts)
}

// PostByID returns a copy of one post.
func (store *Store) PostByID(id string) (Post, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, post := range store.posts {
		if post.ID == id {
			return clonePost(post), true
		}
	}
	return Post{}, false
}

// InsertPost prepends a post (the feed shows newest first) and persists.
func (store *Store) InsertPost(ctx context.Context, post Post) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.posts = append([]Post{post}, store.posts...)
	return store.persistPosts(ctx, "Add forum post")
}

// MutatePost applies fn to the identified post and persists. The boolean
// reports whether the post existed.
func (store *Store) MutatePost(ctx context.Context, id string, message string, fn func(*Post)) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	for index := range store.posts {
		if store.posts[index].ID == id {
			fn(&store.posts[index])
			return true, store.persistPosts(ctx, message)
		}
	}
	return false, nil
}

// RemovePost deletes the identified post outright and persists. Deletion is
// structural, not a soft flag.
func (store *Store) RemovePost(ctx context.Context, id string) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	for index := range store.posts {
		if store.posts[index].ID == id {
			store.posts = append(store.posts[:index], store.posts[index+1:]...)
			return true, store.persistPosts(ctx, "Delete forum post")
		}
	}
	return false, nil
}

// # Request Accessors

// Requests returns a snapshot of all requests, in file order.
func (store *Store) Requests() []Request {
	store.mu.Lock()
	defer store.mu.Unlock()

	out := make([]Request, len(store.requests))
	copy(out, store.requests)
	return out
}

// AppendRequest adds a request at the end and persists.
func (store *Store) AppendRequest(ctx context.Context, request Request) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.requests = append(store.requests, request)
	return store.persistRequests(ctx, "Add game request")
}

// MutateRequest applies fn to the identified request and persists.
func (store *Store) MutateRequest(ctx context.Context, id string, message string, fn func(*Request)) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	for index := range store.requests {
		if store.requests[index].ID == id {
			fn(&store.requests[index])
			return true, store.persistRequests(ctx, message)
		}
	}
	return false, nil
}

// # Persistence

// persistPosts rewrites the posts CSV and triggers a sync. Caller holds the
// mutex. A sync failure is non-fatal: the write already succeeded locally.
func (store *Store) persistPosts(ctx context.Context, message string) error {
	if err := writePostsCSV(store.postsPath, store.posts); err != nil {
		return fmt.Errorf("forum: write posts: %w", err)
	}

	if err := store.syncer.Sync(ctx, message, store.postsPath); err != nil {
		store.log.Warn("forum_posts_sync_failed", slog.Any("error", err))
	}
	return nil
}

// persistRequests mirrors persistPosts for the request collection.
func (store *Store) persistRequests(ctx context.Context, message string) error {
	if err := writeRequestsCSV(store.requestsPath, store.requests); err != nil {
		return fmt.Errorf("forum: write requests: %w", err)
	}

	if err := store.syncer.Sync(ctx, message, store.requestsPath); err != nil {
		store.log.Warn("forum_requests_sync_failed", slog.Any("error", err))
	}
	return nil
}

// # CSV Codec

// loadPostsCSV reads the posts file, tolerating all legacy cell formats.
func loadPostsCSV(path string) ([]Post, string) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ""
		}
		return nil, fmt.Sprintf("posts file unreadable: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Sprintf("posts file unparseable, starting empty: %v", err)
	}
	if len(records) < 2 {
		return nil, ""
	}

	header := records[0]
	field := func(record []string, name string) string {
		for index, cell := range header {
			if cell == name && index < len(record) {
				return record[index]
			}
		}
		return ""
	}

	posts := make([]Post, 0, len(records)-1)
	for _, record := range records[1:] {
		posts = append(posts, Post{
			ID:           uuidv7.New(),
			Username:     field(record, "username"),
			Bar:          field(record, "bar"),
			Game:         field(record, "game"),
			When:         field(record, "when"),
			Message:      field(record, "message"),
			Timestamp:    field(record, "timestamp"),
			Reported:     parseBoolCell(field(record, "reported")),
			ReportReason: field(record, "report_reason"),
			Reactions:    decodeReactions(field(record, "reactions")),
			Comments:     decodeComments(field(record, "comments")),
		})
	}
	return posts, ""
}

// loadRequestsCSV reads the requests file.
func loadRequestsCSV(path string) ([]Request, string) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ""
		}
		return nil, fmt.Sprintf("requests file unreadable: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Sprintf("requests file unparseable, starting empty: %v", err)
	}
	if len(records) < 2 {
		return nil, ""
	}

	header := records[0]
	field := func(record []string, name string) string {
		for index, cell := range header {
			if cell == name && index < len(record) {
				return record[index]
			}
		}
		return ""
	}

	requests := make([]Request, 0, len(records)-1)
	for _, record := range records[1:] {
		requests = append(requests, Request{
			ID:          uuidv7.New(),
			Timestamp:   field(record, "timestamp"),
			Username:    field(record, "username"),
			BarName:     field(record, "bar_name"),
			GameName:    field(record, "game_name"),
			ActionType:  field(record, "action_type"),
			Description: field(record, "description"),
			Status:      field(record, "status"),
		})
	}
	return requests, ""
}

// writePostsCSV rewrites the whole posts file in the historical column
// order. Booleans keep the "True"/"False" spelling older readers expect.
func writePostsCSV(path string, posts []Post) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(postColumns); err != nil {
		return err
	}

	for _, post := range posts {
		record := []string{
			post.Username,
			post.Bar,
			post.Game,
			post.When,
			post.Message,
			post.Timestamp,
			formatBoolCell(post.Reported),
			post.ReportReason,
			encodeJSONCell(post.Reactions),
			encodeJSONCell(post.Comments),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Sync()
}

// writeRequestsCSV rewrites the whole requests file.
func writeRequestsCSV(path string, requests []Request) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(requestColumns); err != nil {
		return err
	}

	for _, request := range requests {
		record := []string{
			request.Timestamp,
			request.Username,
			request.BarName,
			request.GameName,
			request.ActionType,
			request.Description,
			request.Status,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Sync()
}

// parseBoolCell accepts the spellings found in historical files.
func parseBoolCell(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "true", "1":
		return true
	}
	return false
}

// formatBoolCell writes booleans the way the historical writer did.
func formatBoolCell(value bool) string {
	if value {
		return "True"
	}
	return "False"
}

// clonePost deep-copies a post so callers cannot mutate store state.
func clonePost(post Post) Post {
	reactions := make(map[string]int, len(post.Reactions))
	for emoji, count := range post.Reactions {
		reactions[emoji] = count
	}
	comments := make([]Comment, len(post.Comments))
	copy(comments, post.Comments)

	post.Reactions = reactions
	post.Comments = comments
	return post
}

// clonePosts deep-copies a post slice.
func clonePosts(posts []Post) []Post {
	out := make([]Post, len(posts))
	for index, post := range posts {
		out[index] = clonePost(post)
	}
	return out
}
