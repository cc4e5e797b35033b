// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

package users

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/echecmap/echec-map/internal/platform/gitsync"
)

// Store holds the account list and its JSON-file persistence.
//
// # Concurrency
//
// All access goes through one mutex; every mutation rewrites the whole file.
// The collection is tiny (a community site's accounts), so this is simpler
// and safer than anything incremental.
type Store struct {
	mu     sync.Mutex
	users  []User
	path   string
	syncer gitsync.Syncer
	log    *slog.Logger
}

// NewStore constructs an empty [Store]; call [Store.Load] before use.
func NewStore(path string, syncer gitsync.Syncer, log *slog.Logger) *Store {
	return &Store{
		path:   path,
		syncer: syncer,
		log:    log,
	}
}

/*
Load reads the users file.

Description: A missing file is an empty account list. An unparseable file
also degrades to empty with a warning, because a broken users file must not
take the whole site down — it only locks accounts out until repaired.

Returns:
  - string: Warning when the file was unreadable or unparseable, else ""
*/
func (store *Store) Load() string {
	store.mu.Lock()
	defer store.mu.Unlock()

	raw, err := os.ReadFile(store.path)
	if err != nil {
		if os.IsNotExist(err) {
			store.users = nil
			return ""
		}
		store.users = nil
		return fmt.Sprintf("users file unreadable: %v", err)
	}

	var users []User
	if err := json.Unmarshal(raw, &users); err != nil {
		store.users = nil
		return fmt.Sprintf("users file unparseable, starting empty: %v", err)
	}

	store.users = users
	return ""
}

// All returns a snapshot of every account.
func (store *Store) All() []User {
	store.mu.Lock()
	defer store.mu.Unlock()

	out := make([]User, len(store.users))
	copy(out, store.users)
	return out
}

// ByUsername returns one account by exact username.
func (store *Store) ByUsername(username string) (User, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()

	return store.find(username)
}

// Insert adds an account and persists. It fails if the username is taken.
func (store *Store) Insert(ctx context.Context, user User) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, exists := store.find(user.Username); exists {
		return fmt.Errorf("users: username %q already exists", user.Username)
	}

	store.users = append(store.users, user)
	return store.persist(ctx)
}

// Update replaces the account with the same username and persists.
func (store *Store) Update(ctx context.Context, user User) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	for index := range store.users {
		if store.users[index].Username == user.Username {
			store.users[index] = user
			return store.persist(ctx)
		}
	}
	return fmt.Errorf("users: username %q not found", user.Username)
}

// find is the unlocked lookup used internally. Caller holds the mutex.
func (store *Store) find(username string) (User, bool) {
	for _, user := range store.users {
		if user.Username == username {
			return user, true
		}
	}
	return User{}, false
}

/*
persist rewrites the users file and triggers a sync. Caller holds the mutex.

Description: The write is verified by reading the file back and comparing
account counts — a truncated users file silently locks everyone out, which
is the one flat-file failure worth paying an extra read for. The 4-space
indentation matches what older tooling writes. A sync failure is non-fatal.
*/
func (store *Store) persist(ctx context.Context) error {
	data, err := json.MarshalIndent(store.users, "", "    ")
	if err != nil {
		return fmt.Errorf("users: marshal: %w", err)
	}

	file, err := os.Create(store.path)
	if err != nil {
		return fmt.Errorf("users: create file: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		return fmt.Errorf("users: write file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("users: sync file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("users: close file: %w", err)
	}

	// ── Read-back verification ────────────────────────────────────────────
	written, err := os.ReadFile(store.path)
	if err != nil {
		return fmt.Errorf("users: verify read: %w", err)
	}
	var verified []User
	if err := json.Unmarshal(written, &verified); err != nil {
		return fmt.Errorf("users: verify parse: %w", err)
	}
	if len(verified) != len(store.users) {
		return fmt.Errorf("users: verify mismatch: wrote %d accounts, read back %d", len(store.users), len(verified))
	}

	if err := store.syncer.Sync(ctx, "Update users", store.path); err != nil {
		store.log.Warn("users_sync_failed", slog.Any("error", err))
	}
	return nil
}
