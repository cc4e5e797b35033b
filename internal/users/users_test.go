// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

package users_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echecmap/echec-map/internal/platform/apperr"
	"github.com/echecmap/echec-map/internal/platform/gitsync"
	"github.com/echecmap/echec-map/internal/platform/sec"
	"github.com/echecmap/echec-map/internal/users"
)

// stubTokens issues predictable tokens without a signing key.
type stubTokens struct{}

func (stubTokens) GenerateAccessToken(username, role, icon string, _ time.Duration) (string, error) {
	return "token-for-" + username, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(t *testing.T, bcryptPasswords bool) (*users.Service, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "users.json")
	store := users.NewStore(path, gitsync.Noop{}, discardLogger())
	require.Empty(t, store.Load())
	return users.NewService(store, stubTokens{}, filepath.Join(dir, "icons"), bcryptPasswords), path
}

/*
TestRegister verifies an account round-trip: creation, duplicate rejection,
and that the file on disk holds a hash rather than the plain password.
*/
func TestRegister(t *testing.T) {
	service, path := newService(t, false)
	ctx := context.Background()

	session, err := service.Register(ctx, users.RegisterInput{Username: "alice", Password: "secret99", Icon: "chat.png"})
	require.NoError(t, err)
	assert.Equal(t, "token-for-alice", session.Token)
	assert.Equal(t, string(sec.RoleUser), session.Role)
	assert.Equal(t, "chat.png", session.Icon)

	_, err = service.Register(ctx, users.RegisterInput{Username: "alice", Password: "autre999"})
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret99")

	var onDisk []users.User
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	require.Len(t, onDisk, 1)
	assert.Equal(t, sec.HashPasswordSHA256("secret99"), onDisk[0].Password)
}

/*
TestRegister_Validation verifies the username and password rules.
*/
func TestRegister_Validation(t *testing.T) {
	service, _ := newService(t, false)

	_, err := service.Register(context.Background(), users.RegisterInput{Username: "bob", Password: "abc"})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

/*
TestRegister_Bcrypt verifies the opt-in scheme produces a bcrypt hash that
still verifies through the dual-scheme dispatcher.
*/
func TestRegister_Bcrypt(t *testing.T) {
	service, path := newService(t, true)

	_, err := service.Register(context.Background(), users.RegisterInput{Username: "alice", Password: "secret99"})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk []users.User
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	require.Len(t, onDisk, 1)
	assert.True(t, strings.HasPrefix(onDisk[0].Password, "$2"))
	assert.True(t, sec.VerifyPassword("secret99", onDisk[0].Password))
}

/*
TestLogin verifies credential checking and that wrong username and wrong
password are indistinguishable.
*/
func TestLogin(t *testing.T) {
	service, _ := newService(t, false)
	ctx := context.Background()

	_, err := service.Register(ctx, users.RegisterInput{Username: "alice", Password: "secret99"})
	require.NoError(t, err)

	session, err := service.Login(ctx, users.LoginInput{Username: "alice", Password: "secret99"})
	require.NoError(t, err)
	assert.Equal(t, "token-for-alice", session.Token)

	_, badPassword := service.Login(ctx, users.LoginInput{Username: "alice", Password: "wrong"})
	_, badUsername := service.Login(ctx, users.LoginInput{Username: "nobody", Password: "secret99"})
	assert.Equal(t, apperr.As(badPassword).Message, apperr.As(badUsername).Message)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(badPassword).Code)
}

/*
TestLogin_BootstrapAdmin verifies the default admin account materialises on
first login against an empty users file, with the legacy hash scheme.
*/
func TestLogin_BootstrapAdmin(t *testing.T) {
	service, path := newService(t, true)

	session, err := service.Login(context.Background(), users.LoginInput{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	assert.Equal(t, string(sec.RoleAdmin), session.Role)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk []users.User
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	require.Len(t, onDisk, 1)
	assert.Equal(t, sec.HashPasswordSHA256("admin123"), onDisk[0].Password)

	// Wrong password never creates anything on a later attempt.
	_, err = service.Login(context.Background(), users.LoginInput{Username: "admin", Password: "nope"})
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

/*
TestLoadExisting verifies a hand-written legacy file loads and its SHA-256
account can log in.
*/
func TestLoadExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.json")

	legacy := []users.User{{
		Username: "vieux",
		Password: sec.HashPasswordSHA256("motdepasse"),
		Icon:     "pion.png",
		Role:     "user",
	}}
	raw, err := json.MarshalIndent(legacy, "", "    ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	store := users.NewStore(path, gitsync.Noop{}, discardLogger())
	require.Empty(t, store.Load())
	service := users.NewService(store, stubTokens{}, dir, false)

	session, err := service.Login(context.Background(), users.LoginInput{Username: "vieux", Password: "motdepasse"})
	require.NoError(t, err)
	assert.Equal(t, "pion.png", session.Icon)
}

/*
TestIcons verifies only PNG files are listed, sorted, and that a missing
directory yields an empty list.
*/
func TestIcons(t *testing.T) {
	dir := t.TempDir()
	iconsDir := filepath.Join(dir, "icons")
	require.NoError(t, os.MkdirAll(iconsDir, 0o755))
	for _, name := range []string{"zebre.png", "chat.png", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(iconsDir, name), []byte("x"), 0o644))
	}

	store := users.NewStore(filepath.Join(dir, "users.json"), gitsync.Noop{}, discardLogger())
	require.Empty(t, store.Load())

	service := users.NewService(store, stubTokens{}, iconsDir, false)
	assert.Equal(t, []string{"chat.png", "zebre.png"}, service.Icons())

	empty := users.NewService(store, stubTokens{}, filepath.Join(dir, "absent"), false)
	assert.Empty(t, empty.Icons())
}
