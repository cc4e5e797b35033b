// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

// Package uuidv7 wraps google/uuid to generate time-ordered UUIDv7 values.
//
// # Why UUIDv7?
//
// Forum posts and game requests used to be addressed by their position in the
// backing CSV, which silently renumbered everything on deletion. Every record
// now gets a time-sortable UUIDv7 at load or creation, so references survive
// deletions while creation order stays recoverable from the ID itself.
package uuidv7

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
//
// # Safety
//
// It panics only if the OS random source is unavailable (extremely rare).
// This is acceptable as OS entropy failure is an unrecoverable system-level error.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuidv7: failed to generate UUID: " + err.Error())
	}

	return id.String()
}
