// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

package sec

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// The users file predates this server and stores unsalted SHA-256 hex digests.
// Those hashes must keep verifying forever, and deployments that share the
// file with older tooling must keep producing them. New installs can opt in
// to bcrypt; VerifyPassword dispatches on the stored hash's format.

// HashPasswordSHA256 hashes a plain-text password as a SHA-256 hex digest,
// byte-compatible with the historical users.json contents.
func HashPasswordSHA256(plainTextPassword string) string {
	digest := sha256.Sum256([]byte(plainTextPassword))
	return hex.EncodeToString(digest[:])
}

// HashPasswordBcrypt hashes a plain-text password using the bcrypt algorithm.
func HashPasswordBcrypt(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// VerifyPassword compares a plain-text password with a stored hash of either
// scheme. Bcrypt hashes are recognized by their "$2" version prefix; anything
// else is treated as a legacy SHA-256 hex digest and compared in constant time.
func VerifyPassword(plainTextPassword, storedHash string) bool {
	if strings.HasPrefix(storedHash, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plainTextPassword)) == nil
	}

	candidate := HashPasswordSHA256(plainTextPassword)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(storedHash)) == 1
}
