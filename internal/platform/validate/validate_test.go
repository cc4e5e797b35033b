// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echecmap/echec-map/internal/platform/apperr"
	"github.com/echecmap/echec-map/internal/platform/validate"
)

/*
TestValidator_PassingChain verifies that a chain with no failures yields nil.
*/
func TestValidator_PassingChain(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("username", "oberkampf").
		MinLen("username", "oberkampf", 3).
		OneOf("status", "pending", "pending", "approved", "rejected").
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}

/*
TestValidator_CollectsAllFailures verifies that every failed rule contributes
a field error rather than short-circuiting at the first failure.
*/
func TestValidator_CollectsAllFailures(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("message", "   ").
		MaxLen("bar", "Le dernier bar avant la fin du monde", 10).
		OneOf("status", "maybe", "pending", "approved", "rejected").
		Err()

	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	assert.Len(t, appError.Details, 3)
}

/*
TestValidator_Custom verifies the escape hatch for one-off predicates.
*/
func TestValidator_Custom(t *testing.T) {
	v := &validate.Validator{}

	err := v.Custom("age", -1 < 0, "Must not be negative").Err()

	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "age", appError.Details[0].Field)
}
