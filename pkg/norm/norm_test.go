// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

package norm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/echecmap/echec-map/pkg/norm"
)

/*
TestKey_AccentAndCaseInsensitive verifies that accents, case, spaces and
hyphens all collapse to the same key.
*/
func TestKey_AccentAndCaseInsensitive(t *testing.T) {
	assert.Equal(t, norm.Key("Café Meisia"), norm.Key("cafe_meisia"))
	assert.Equal(t, "cafe_meisia", norm.Key("Café Meisia"))
	assert.Equal(t, "au_de_12", norm.Key("Au Dé 12"))
	assert.Equal(t, "la_taverne_de_fwinax", norm.Key("La-Taverne-De-Fwinax"))
}

/*
TestKey_Trimming verifies surrounding whitespace is removed before separator
replacement, so padded names do not produce leading underscores.
*/
func TestKey_Trimming(t *testing.T) {
	assert.Equal(t, "loufoque", norm.Key("  Loufoque  "))
}

/*
TestKey_EmptyAndNonLatin verifies the degenerate inputs never blow up.
*/
func TestKey_EmptyAndNonLatin(t *testing.T) {
	assert.Equal(t, "", norm.Key(""))

	// Pure non-Latin input has no ASCII projection and collapses to empty.
	assert.Equal(t, "", norm.Key("囲碁"))
}

/*
TestKey_CompatibilityDecomposition verifies NFKD folds compatibility forms
(fullwidth digits) to their ASCII counterparts instead of dropping them.
*/
func TestKey_CompatibilityDecomposition(t *testing.T) {
	assert.Equal(t, "oya_12", norm.Key("Oya １２"))
}
