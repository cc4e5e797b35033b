// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

package games_test

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echecmap/echec-map/internal/games"
	"github.com/echecmap/echec-map/pkg/pagination"
)

func intp(v int) *int { return &v }

/*
TestLoadBarGames verifies artifact stripping, per-file de-duplication, and
that an unparseable file is skipped with a warning while the rest load.
*/
func TestLoadBarGames(t *testing.T) {
	dir := t.TempDir()

	meisia := "Nom du jeu;Editeur\nCatan;Kosmos\narrow_rightCatan;Kosmos\n7 Wonders;Repos\n\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "liste_jeux_meisia.csv"), []byte(meisia), 0o644))

	// Wrong header: skipped with a warning.
	broken := "Autre colonne\nvaleur\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "liste_jeux_oya.csv"), []byte(broken), 0o644))

	loaded, warnings := games.LoadBarGames(dir)

	require.Len(t, loaded, 2)
	assert.Equal(t, games.Game{BarName: "Café Meisia", Name: "Catan"}, loaded[0])
	assert.Equal(t, games.Game{BarName: "Café Meisia", Name: "7 Wonders"}, loaded[1])
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "liste_jeux_oya.csv")
}

/*
TestLoadBarGames_CP1252 verifies a Windows-encoded file with an accented
game name loads with the accent intact.
*/
func TestLoadBarGames_CP1252(t *testing.T) {
	dir := t.TempDir()

	// "Détective" in cp1252: 0xE9 for é — invalid as UTF-8.
	raw := []byte("Nom du jeu\nD\xE9tective\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "liste_jeux_loufoque.csv"), raw, 0o644))

	loaded, warnings := games.LoadBarGames(dir)

	require.Empty(t, warnings)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Détective", loaded[0].Name)
	assert.Equal(t, "Loufoque", loaded[0].BarName)
}

/*
TestLoadCatalogue verifies numeric coercion, de-duplication by name, and the
fail-soft behavior for a missing file.
*/
func TestLoadCatalogue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "liste_jeux_complet.csv")

	content := "nom;type;nb_joueurs_min;nb_joueur_max;age_min;duree_min;duree_max;description;lien_photo;extension;Unnamed: 5\n" +
		"Catan;Stratégie;3;4;10;60;90;Colonisez l'île.;http://img/catan.jpg;;x\n" +
		"Catan;Stratégie;3;4;10;60;90;Doublon.;;;x\n" +
		"Dixit;Ambiance;3;6;8;30;;Des images à deviner.;;;x\n" +
		"Mystère;;;abc;;;;Sans chiffres.;;;x\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	entries, warnings := games.LoadCatalogue(path)
	require.Empty(t, warnings)
	require.Len(t, entries, 3)

	catan := entries[0]
	assert.Equal(t, "Catan", catan.Name)
	assert.Equal(t, "Stratégie", catan.Type)
	assert.Equal(t, intp(3), catan.MinPlayers)
	assert.Equal(t, intp(10), catan.MinAge)
	assert.Equal(t, "Colonisez l'île.", catan.Description)

	dixit := entries[1]
	assert.Nil(t, dixit.MaxDuration)
	assert.Equal(t, intp(30), dixit.MinDuration)

	mystere := entries[2]
	assert.Nil(t, mystere.MinPlayers)
	assert.Nil(t, mystere.MaxPlayers)

	// Missing file: empty catalogue plus a warning, never an error.
	entries, warnings = games.LoadCatalogue(filepath.Join(dir, "absent.csv"))
	assert.Empty(t, entries)
	assert.Len(t, warnings, 1)
}

func libraryService() *games.Service {
	catalogue := []games.CatalogueEntry{
		{Name: "Catan", Type: "Stratégie", MinPlayers: intp(3), MaxPlayers: intp(4), MinAge: intp(10)},
		{Name: "Dixit", Type: "Ambiance", MinPlayers: intp(3), MaxPlayers: intp(6), MinAge: intp(8)},
		{Name: "Patchwork", Type: "Stratégie", MinPlayers: intp(2), MaxPlayers: intp(2), MinAge: intp(6)},
		{Name: "Le Seul", Type: "Solo", MinPlayers: intp(1), MaxPlayers: intp(1)},
	}
	return games.NewService(nil, catalogue)
}

/*
TestLibrary_AgeFilter verifies the inclusive-downward age semantic: a
threshold of 8 keeps a game recommended from age 6 and drops one from 10.
Games with an unknown age are dropped while the filter is active.
*/
func TestLibrary_AgeFilter(t *testing.T) {
	service := libraryService()

	entries, _ := service.Library(games.LibraryFilter{MinAge: 8}, pagination.Params{Page: 1, Limit: 12})

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name)
	}
	assert.Equal(t, []string{"Dixit", "Patchwork"}, names)
}

/*
TestLibrary_PlayerBands verifies the fixed band-to-range overlap rules.
*/
func TestLibrary_PlayerBands(t *testing.T) {
	service := libraryService()

	cases := []struct {
		band games.PlayerBand
		want []string
	}{
		{games.BandSolo, []string{"Le Seul"}},
		{games.BandDuo, []string{"Patchwork"}},
		{games.BandSmallGroup, []string{"Catan", "Dixit"}},
		{games.BandLargeGroup, []string{"Dixit"}},
		{games.BandParty, nil},
	}

	for _, tc := range cases {
		entries, _ := service.Library(games.LibraryFilter{Players: tc.band}, pagination.Params{Page: 1, Limit: 12})
		var names []string
		for _, entry := range entries {
			names = append(names, entry.Name)
		}
		assert.Equal(t, tc.want, names, string(tc.band))
	}
}

/*
TestLibrary_SearchAndTypes verifies substring search and type
set-membership compose.
*/
func TestLibrary_SearchAndTypes(t *testing.T) {
	service := libraryService()

	entries, meta := service.Library(games.LibraryFilter{Query: "cat", Types: []string{"Stratégie"}}, pagination.Params{Page: 1, Limit: 12})
	require.Len(t, entries, 1)
	assert.Equal(t, "Catan", entries[0].Name)
	assert.Equal(t, 1, meta.Total)
}

/*
TestLibrary_PageClamp verifies a page index past the filtered result clamps
back to the first page instead of returning an empty slice.
*/
func TestLibrary_PageClamp(t *testing.T) {
	service := libraryService()

	entries, meta := service.Library(games.LibraryFilter{}, pagination.Params{Page: 9, Limit: 2})
	require.Len(t, entries, 2)
	assert.Equal(t, 1, meta.Page)
	assert.Equal(t, 4, meta.Total)
	assert.Equal(t, 2, meta.TotalPages)
}

/*
TestBarsForGame verifies exact match takes precedence and substring match
only applies when nothing matches exactly.
*/
func TestBarsForGame(t *testing.T) {
	available := []games.Game{
		{BarName: "Oya Café", Name: "Catan"},
		{BarName: "Loufoque", Name: "Catan Junior"},
		{BarName: "Café Meisia", Name: "Catan"},
	}
	service := games.NewService(available, nil)

	assert.Equal(t, []string{"Café Meisia", "Oya Café"}, service.BarsForGame("catan"))
	assert.Equal(t, []string{"Loufoque"}, service.BarsForGame("catan junior"))
	assert.Equal(t, []string{"Café Meisia", "Loufoque", "Oya Café"}, service.BarsForGame("cata"))
	assert.Empty(t, service.BarsForGame("inexistant"))
}

/*
TestBackfill verifies bars without a scraped list receive up to 100 random
games and covered bars stay untouched.
*/
func TestBackfill(t *testing.T) {
	available := make([]games.Game, 0, 150)
	for i := 0; i < 150; i++ {
		available = append(available, games.Game{BarName: "Oya Café", Name: "Jeu " + string(rune('A'+i%26)) + string(rune('0'+i/26))})
	}
	service := games.NewService(available, nil)

	added := service.Backfill([]string{"Oya Café", "La Cabane"}, rand.New(rand.NewSource(1)))

	assert.Equal(t, 100, added)
	assert.Len(t, service.GamesForBar("La Cabane"), 100)
	// Covered bar unchanged.
	assert.Len(t, service.GamesForBar("Oya Café"), 150)
}

/*
TestAdd verifies approval-driven additions de-duplicate and clean artifacts.
*/
func TestAdd(t *testing.T) {
	service := games.NewService(nil, nil)

	service.Add("La Cabane", "arrow_right Root ")
	service.Add("La Cabane", "Root")
	service.Add("La Cabane", "   ")

	assert.Equal(t, []string{"Root"}, service.GamesForBar("La Cabane"))
}
