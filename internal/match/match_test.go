// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

package match_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echecmap/echec-map/internal/match"
)

// touch creates empty files under dir.
func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
}

/*
TestRatio verifies the similarity measure behaves like the classic
Ratcliff/Obershelp ratio: identical strings score 1, disjoint strings 0.
*/
func TestRatio(t *testing.T) {
	assert.Equal(t, 1.0, match.Ratio("cafe_meisia", "cafe_meisia"))
	assert.Equal(t, 0.0, match.Ratio("abc", "xyz"))
	assert.Greater(t, match.Ratio("le_chauve_qui_rit", "le_chauve_qui_rie"), 0.9)
}

/*
TestBestFile_ExactBeatsFuzzy verifies an exact normalized-stem match wins
even when another candidate would score higher on pure similarity.
*/
func TestBestFile_ExactBeatsFuzzy(t *testing.T) {
	dir := t.TempDir()
	// "au_de_12_annexe" is a longer fuzzy candidate; "au_de_12" is exact.
	touch(t, dir, "au_de_12.jpg", "au_de_12_annexe.jpg")

	path, ok := match.BestFile("Au Dé 12", dir, match.ImageExtensions, match.ImageCutoff)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "au_de_12.jpg"), path)
}

/*
TestBestFile_FuzzyFallback verifies a near-miss file name is still found
through the similarity stage.
*/
func TestBestFile_FuzzyFallback(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "cafe_meisia_paris.png", "oberjeux.png")

	path, ok := match.BestFile("Café Meisia", dir, match.ImageExtensions, match.ImageCutoff)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "cafe_meisia_paris.png"), path)
}

/*
TestBestFile_CutoffRejects verifies unrelated file names never match, and an
empty directory reports no result.
*/
func TestBestFile_CutoffRejects(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "zzzzz.jpg")

	_, ok := match.BestFile("Café Meisia", dir, match.ImageExtensions, match.ImageCutoff)
	assert.False(t, ok)

	_, ok = match.BestFile("Café Meisia", t.TempDir(), match.ImageExtensions, match.ImageCutoff)
	assert.False(t, ok)
}

/*
TestBestFile_IgnoresOtherExtensions verifies extension filtering: a matching
stem with the wrong extension is invisible.
*/
func TestBestFile_IgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "loufoque.pdf")

	_, ok := match.BestFile("Loufoque", dir, match.ImageExtensions, match.ImageCutoff)
	assert.False(t, ok)
}

/*
TestMenuPDF_Override verifies the manual table takes precedence over
normalized lookup when its file exists, and is skipped when it does not.
*/
func TestMenuPDF_Override(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "aux_des_cales_XVII.pdf")

	path, ok := match.MenuPDF("Aux Dés Calés XVIIème", dir, nil)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "aux_des_cales_XVII.pdf"), path)

	// Override file missing: falls through to the scan, which also fails.
	_, ok = match.MenuPDF("Le Chauve Qui Rit", t.TempDir(), nil)
	assert.False(t, ok)
}

/*
TestMenuPDF_ConventionalPath verifies the "<normalized>.pdf" probe for bars
absent from the override table.
*/
func TestMenuPDF_ConventionalPath(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "le_baratin.pdf")

	path, ok := match.MenuPDF("Le Baratin", dir, map[string]string{})
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "le_baratin.pdf"), path)
}

/*
TestMenuPDF_FuzzyFallback verifies the looser menu cutoff recovers a
misspelled file name.
*/
func TestMenuPDF_FuzzyFallback(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "cafe_jeux_natema_menu.pdf")

	path, ok := match.MenuPDF("Café Jeux Natema", dir, map[string]string{})
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "cafe_jeux_natema_menu.pdf"), path)
}
