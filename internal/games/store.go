// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

package games

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/echecmap/echec-map/internal/platform/constants"
	"github.com/echecmap/echec-map/internal/platform/textenc"
)

// # Scraped Game Lists

// BarCSVMapping links each scraped CSV file to the display name of the bar
// it was scraped for. Files outside this mapping are ignored.
var BarCSVMapping = map[string]string{
	"liste_jeux_aubonheurdesjeux.csv":  "Au Bonheur des Jeux",
	"liste_jeux_aude12.csv":            "Au Dé 12",
	"liste_jeux_goodgame.csv":          "The good game",
	"liste_jeux_larevanche.csv":        "La revanche",
	"liste_jeux_latavernedefwinax.csv": "La Taverne De Fwinax",
	"liste_jeux_lenid.csv":             "Le nid cocon ludique",
	"liste_jeux_lesgentlemendujeu.csv": "Les Gentlemen du Jeu",
	"liste_jeux_lesmauvaisjoueurs.csv": "Les Mauvais Joueurs",
	"liste_jeux_loufoque.csv":          "Loufoque",
	"liste_jeux_meisia.csv":            "Café Meisia",
	"liste_jeux_oberjeux.csv":          "OberJeux",
	"liste_jeux_oya.csv":               "Oya Café",
}

// gameNameColumn is the one column read from the scraped CSVs.
const gameNameColumn = "Nom du jeu"

/*
LoadBarGames reads every scraped per-bar game list under dir.

Description: Each file is parsed with its detected encoding, then with the
fixed fallback chain when that fails. A file that no encoding can parse is
skipped entirely (availability over completeness) and reported as a warning.
Game names are artifact-stripped, blank rows dropped, and duplicates within
one file removed keeping the first occurrence.

Parameters:
  - dir: string (The scraping output directory)

Returns:
  - []Game: One record per (bar, game) pair, in mapping file order
  - []string: Warnings for skipped files
*/
func LoadBarGames(dir string) ([]Game, []string) {
	var (
		result   []Game
		warnings []string
	)

	// Map iteration order is random; fix it for reproducible load order.
	for _, fileName := range sortedKeys(BarCSVMapping) {
		barName := BarCSVMapping[fileName]
		path := filepath.Join(dir, fileName)

		if _, err := os.Stat(path); err != nil {
			continue
		}

		names, err := readGameColumn(path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v, skipped", fileName, err))
			continue
		}

		for _, name := range names {
			result = append(result, Game{BarName: barName, Name: name})
		}
	}

	return result, warnings
}

// readGameColumn extracts the cleaned, de-duplicated game names from one
// scraped CSV, trying the detected encoding then the fallback chain.
func readGameColumn(path string) ([]string, error) {
	encodings := append([]string{textenc.Detect(path)}, textenc.FallbackChain...)

	var lastErr error
	for _, encoding := range encodings {
		names, err := parseGameCSV(path, encoding)
		if err == nil {
			return names, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// parseGameCSV performs a single parse attempt with the given encoding.
func parseGameCSV(path, encoding string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(textenc.DecodeReader(file, encoding))
	reader.Comma = ';'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}

	column := columnIndex(header, gameNameColumn)
	if column < 0 {
		return nil, fmt.Errorf("missing %q column", gameNameColumn)
	}

	var (
		names []string
		seen  = make(map[string]bool)
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if column >= len(record) {
			continue
		}

		name := CleanGameName(record[column])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}

	return names, nil
}

// CleanGameName strips scraper artifacts and surrounding whitespace.
func CleanGameName(name string) string {
	for _, artifact := range constants.NameArtifacts {
		name = strings.ReplaceAll(name, artifact, "")
	}
	return strings.TrimSpace(name)
}

// # Catalogue Loading

/*
LoadCatalogue reads the curated game library from the semicolon-delimited
catalogue CSV.

Description: The file is parsed as UTF-8, then through the encoding fallback
chain. Numeric columns are coerced with unparseable values becoming unknown
rather than failing the row. Entries are de-duplicated by name keeping the
first occurrence. A missing file yields an empty catalogue, not an error.

Parameters:
  - path: string (Catalogue CSV location)

Returns:
  - []CatalogueEntry: The library, in file order
  - []string: Warnings (unreadable file, failed encodings)
*/
func LoadCatalogue(path string) ([]CatalogueEntry, []string) {
	if _, err := os.Stat(path); err != nil {
		return nil, []string{fmt.Sprintf("catalogue %s missing, library empty", path)}
	}

	encodings := append([]string{textenc.UTF8}, textenc.FallbackChain[1:]...)

	var lastErr error
	for _, encoding := range encodings {
		entries, err := parseCatalogue(path, encoding)
		if err == nil {
			return entries, nil
		}
		lastErr = err
	}

	return nil, []string{fmt.Sprintf("catalogue unparseable in any encoding: %v", lastErr)}
}

// parseCatalogue performs a single catalogue parse attempt.
func parseCatalogue(path, encoding string) ([]CatalogueEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(textenc.DecodeReader(file, encoding))
	reader.Comma = ';'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}

	field := func(record []string, name string) string {
		index := columnIndex(header, name)
		if index < 0 || index >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[index])
	}

	var (
		entries []CatalogueEntry
		seen    = make(map[string]bool)
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		name := field(record, "nom")
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		entries = append(entries, CatalogueEntry{
			Name:        name,
			Type:        field(record, "type"),
			MinPlayers:  parseOptionalInt(field(record, "nb_joueurs_min")),
			MaxPlayers:  parseOptionalInt(field(record, "nb_joueur_max")),
			MinAge:      parseOptionalInt(field(record, "age_min")),
			MinDuration: parseOptionalInt(field(record, "duree_min")),
			MaxDuration: parseOptionalInt(field(record, "duree_max")),
			Description: field(record, "description"),
			PhotoURL:    field(record, "lien_photo"),
			Extension:   field(record, "extension"),
		})
	}

	return entries, nil
}

// parseOptionalInt coerces a cell to an int, accepting float-formatted
// values ("2.0") and returning nil for anything unparseable.
func parseOptionalInt(cell string) *int {
	if cell == "" {
		return nil
	}

	parsed, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", "."), 64)
	if err != nil {
		return nil
	}

	value := int(parsed)
	return &value
}

// columnIndex finds a header position by exact name.
func columnIndex(header []string, name string) int {
	for index, cell := range header {
		if strings.TrimSpace(cell) == name {
			return index
		}
	}
	return -1
}

// sortedKeys returns a map's keys in lexicographic order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
