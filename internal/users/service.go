// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

package users

import (
	"context"
	"path/filepath"
	"sort"
	"time"

	"github.com/echecmap/echec-map/internal/platform/apperr"
	"github.com/echecmap/echec-map/internal/platform/constants"
	"github.com/echecmap/echec-map/internal/platform/sec"
	"github.com/echecmap/echec-map/internal/platform/validate"
)

// # Service Layer

// TokenProvider issues signed access tokens. Declaring the interface here
// keeps the service testable without a real signing key.
type TokenProvider interface {
	GenerateAccessToken(username, role, icon string, timeToLive time.Duration) (string, error)
}

// Service implements registration, login, and the avatar listing.
type Service struct {
	store    *Store
	tokens   TokenProvider
	iconsDir string
	bcrypt   bool
}

// NewService constructs a users [Service].
//
// bcryptPasswords switches new registrations to bcrypt; existing hashes of
// either scheme keep verifying regardless.
func NewService(store *Store, tokens TokenProvider, iconsDir string, bcryptPasswords bool) *Service {
	return &Service{
		store:    store,
		tokens:   tokens,
		iconsDir: iconsDir,
		bcrypt:   bcryptPasswords,
	}
}

// Session is what both register and login hand back to the client.
type Session struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Icon     string `json:"icon"`
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Icon     string `json:"icon"`
}

/*
Register creates an account and opens a session for it.

Description: Usernames are unique. The password is hashed with the
configured scheme before it touches disk; the plain text is never stored.

Parameters:
  - ctx: context.Context
  - input: RegisterInput

Returns:
  - Session: Token plus the public account fields
  - error: Validation, ErrConflict, or persistence errors
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (Session, error) {

	// ── 1. Validation ─────────────────────────────────────────────────────
	validator := &validate.Validator{}
	validator.Required("username", input.Username)
	validator.Required("password", input.Password)
	validator.MinLen("password", input.Password, 6)
	if err := validator.Err(); err != nil {
		return Session{}, err
	}

	if _, exists := service.store.ByUsername(input.Username); exists {
		return Session{}, apperr.Conflict("Username already taken")
	}

	// ── 2. Hash & Persist ─────────────────────────────────────────────────
	hash := sec.HashPasswordSHA256(input.Password)
	if service.bcrypt {
		var err error
		if hash, err = sec.HashPasswordBcrypt(input.Password); err != nil {
			return Session{}, apperr.Internal(err)
		}
	}

	user := User{
		Username: input.Username,
		Password: hash,
		Icon:     input.Icon,
		Role:     string(sec.RoleUser),
	}
	if err := service.store.Insert(ctx, user); err != nil {
		return Session{}, apperr.Internal(err)
	}

	// ── 3. Open Session ───────────────────────────────────────────────────
	return service.openSession(user)
}

// LoginInput carries the fields of a login request.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

/*
Login verifies credentials and opens a session.

Description: If no admin account exists yet and the default admin
credentials are presented, the account is created on the spot so a fresh
deployment is administrable before anyone edits the users file. Wrong
username and wrong password produce the same error.

Returns:
  - Session: Token plus the public account fields
  - error: Validation, ErrUnauthorized, or persistence errors
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (Session, error) {
	validator := &validate.Validator{}
	validator.Required("username", input.Username)
	validator.Required("password", input.Password)
	if err := validator.Err(); err != nil {
		return Session{}, err
	}

	user, found := service.store.ByUsername(input.Username)
	if !found && input.Username == bootstrapAdminUsername {
		var err error
		if user, err = service.bootstrapAdmin(ctx); err != nil {
			return Session{}, apperr.Internal(err)
		}
		found = true
	}

	if !found || !sec.VerifyPassword(input.Password, user.Password) {
		return Session{}, apperr.Unauthorized("Invalid username or password")
	}

	return service.openSession(user)
}

// bootstrapAdmin creates the default admin account. The legacy SHA-256
// scheme is used unconditionally so the resulting file matches what older
// deployments contain.
func (service *Service) bootstrapAdmin(ctx context.Context) (User, error) {
	admin := User{
		Username: bootstrapAdminUsername,
		Password: sec.HashPasswordSHA256(bootstrapAdminPassword),
		Role:     string(sec.RoleAdmin),
	}
	if err := service.store.Insert(ctx, admin); err != nil {
		return User{}, err
	}
	return admin, nil
}

// openSession issues a token for the given account.
func (service *Service) openSession(user User) (Session, error) {
	token, err := service.tokens.GenerateAccessToken(user.Username, user.Role, user.Icon, constants.AccessTokenTTL)
	if err != nil {
		return Session{}, apperr.Internal(err)
	}

	return Session{
		Token:    token,
		Username: user.Username,
		Role:     user.Role,
		Icon:     user.Icon,
	}, nil
}

/*
Icons lists the avatar file names offered at registration.

Description: Avatars are whatever PNG files sit in the icons directory; the
list is sorted so the picker renders stably. A missing directory is an
empty list, not an error.

Returns:
  - []string: PNG file names
*/
func (service *Service) Icons() []string {
	matches, err := filepath.Glob(filepath.Join(service.iconsDir, "*.png"))
	if err != nil {
		return nil
	}

	icons := make([]string, 0, len(matches))
	for _, match := range matches {
		icons = append(icons, filepath.Base(match))
	}
	sort.Strings(icons)
	return icons
}
