// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

/*
Package match associates a bar's display name with the files that belong to
it: a photo in the images directory, a menu PDF, a scraped game list.

The file names were produced by hand and by different scraping runs, so they
rarely equal the display name. Lookups therefore go through three stages:

 1. A manual override table (menus only), for names too mangled to match.
 2. An exact match on normalized stems (see [pkg/norm]).
 3. A fuzzy match on normalized stems with a similarity cutoff.

The fuzzy stage uses the classic Ratcliff/Obershelp similarity ratio, which
tolerates the accent, punctuation, and spelling variance the data actually
exhibits ("Les Caves Alliées" vs "les_caves_alliees.pdf").
*/
package match

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/echecmap/echec-map/pkg/norm"
)

// Similarity cutoffs, tuned against the real file sets. Images can afford a
// stricter cutoff because the directory only contains bar photos; menus are
// messier.
const (
	ImageCutoff = 0.6
	MenuCutoff  = 0.5
)

// ImageExtensions are the file types considered when looking up a bar photo.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// DefaultMenuOverrides maps display names to menu PDF file names for the
// bars whose files cannot be recovered by normalization alone.
var DefaultMenuOverrides = map[string]string{
	"Le dernier bar avant la fin du monde": "le_dernier_bar_avant_la_fin_du_monde.pdf",
	"Les grands gamins":                    "les_grands_gamins.pdf",
	"The good game":                        "the_good_game.pdf",
	"Le nid cocon ludique":                 "le_nid_cocon_ludique.pdf",
	"La Cabane":                            "la_cabane.pdf",
	"Loufoque":                             "loufoque.pdf",
	"Les Caves Alliées":                    "les_caves_alliees.pdf",
	"Le Chauve Qui Rit":                    "le_chauve_qui_rit.pdf",
	"Café Meisia":                          "cafe_meisia.pdf",
	"Les Mauvais Joueurs":                  "les_mauvais_joueurs.pdf",
	"Le Duchesse":                          "la_duchesse.pdf",
	"Au Bonheur des Jeux":                  "au_bonheur_des_jeux.pdf",
	"OberJeux":                             "oberjeux.pdf",
	"La revanche":                          "la_revanche.pdf",
	"Au Dé 12":                             "au_de_12.pdf",
	"Multivers (Ground control)":           "multivers_ground_control.pdf",
	"Le 3bis":                              "le_3bis.pdf",
	"La Taverne De Fwinax":                 "la_taverne_de_fwinax.pdf",
	"Aux Dés Calés XVIIème":                "aux_des_cales_XVII.pdf",
	"Aux dés calés XVIIIème":               "aux_des_cales_XVIII.pdf",
	"Jovial":                               "jovial.pdf",
	"Café Jeux Natema":                     "cafe_jeux_natema.pdf",
}

// Ratio returns the Ratcliff/Obershelp similarity of two strings in [0, 1].
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(splitChars(a), splitChars(b)).Ratio()
}

// splitChars breaks a string into per-character elements for the sequence
// matcher, which compares element-wise.
func splitChars(s string) []string {
	return strings.Split(s, "")
}

/*
BestFile finds the file in dir whose name best matches the given display
name.

Description: Candidates are the files whose extension appears in exts
(case-insensitive). An exact normalized-stem match wins outright, even when a
fuzzy candidate scores higher. Otherwise the candidate with the highest
similarity ratio at or above cutoff wins; equal scores keep the
lexicographically first file name so results are stable across directory
scans.

Parameters:
  - name: string (Bar display name)
  - dir: string (Directory to scan)
  - exts: []string (Accepted extensions, with leading dot)
  - cutoff: float64 (Minimum similarity for a fuzzy result)

Returns:
  - string: Full path of the matched file
  - bool: Whether any candidate matched
*/
func BestFile(name, dir string, exts []string, cutoff float64) (string, bool) {
	candidates, err := listFiles(dir, exts)
	if err != nil || len(candidates) == 0 {
		return "", false
	}

	target := norm.Key(name)

	// ── 1. Exact Normalized Stem ──────────────────────────────────────────
	for _, file := range candidates {
		if norm.Key(stem(file)) == target {
			return filepath.Join(dir, file), true
		}
	}

	// ── 2. Fuzzy Match ────────────────────────────────────────────────────
	var (
		bestFile  string
		bestScore float64
	)
	for _, file := range candidates {
		score := Ratio(target, norm.Key(stem(file)))
		if score >= cutoff && score > bestScore {
			bestFile, bestScore = file, score
		}
	}

	if bestFile == "" {
		return "", false
	}
	return filepath.Join(dir, bestFile), true
}

/*
MenuPDF finds the menu PDF for a bar.

Description: The override table is consulted first and short-circuits when
its file exists on disk. Then the conventional "<normalized name>.pdf" path
is probed directly, then the directory is scanned for an exact normalized
stem, and finally a fuzzy match at [MenuCutoff] is attempted.

Parameters:
  - barName: string (Display name)
  - dir: string (Menus directory)
  - overrides: map[string]string (name → file name; nil uses
    [DefaultMenuOverrides])

Returns:
  - string: Full path of the menu PDF
  - bool: Whether a menu was found
*/
func MenuPDF(barName, dir string, overrides map[string]string) (string, bool) {
	if overrides == nil {
		overrides = DefaultMenuOverrides
	}

	// ── 1. Manual Override ────────────────────────────────────────────────
	if fileName, ok := overrides[barName]; ok {
		path := filepath.Join(dir, fileName)
		if fileExists(path) {
			return path, true
		}
	}

	// ── 2. Conventional Path ──────────────────────────────────────────────
	target := norm.Key(barName)
	conventional := filepath.Join(dir, target+".pdf")
	if fileExists(conventional) {
		return conventional, true
	}

	// ── 3. Exact & Fuzzy Directory Scan ───────────────────────────────────
	return BestFile(barName, dir, []string{".pdf"}, MenuCutoff)
}

// listFiles returns the regular files in dir with one of the given
// extensions, sorted by name.
func listFiles(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		lower := strings.ToLower(entry.Name())
		for _, ext := range exts {
			if strings.HasSuffix(lower, ext) {
				files = append(files, entry.Name())
				break
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// stem returns the file name without its extension.
func stem(file string) string {
	return strings.TrimSuffix(file, filepath.Ext(file))
}

// fileExists reports whether path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
