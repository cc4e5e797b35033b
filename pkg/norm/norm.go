// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

// Package norm produces comparison keys from bar and game display names.
//
// # Usage
//
// Display names come from scraped sources and user input, so the same bar can
// appear as "Café Meisia", "cafe meisia" or "cafe_meisia". Matching against
// image files, menu PDFs and CSV catalogues is always done on the key form.
package norm

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Key converts a display name into its canonical comparison key.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFKD (decomposes accented chars: é → e + combining acute).
// 2. Removes combining marks and any remaining non-ASCII runes.
// 3. Converts to lowercase and trims surrounding whitespace.
// 4. Replaces spaces and hyphens with underscores.
//
// The empty string maps to the empty string; Key never fails.
func Key(s string) string {
	// 1. Decompose and strip accents
	t := transform.Chain(norm.NFKD, transform.RemoveFunc(isMn))
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}

	// 2. Drop whatever non-ASCII survived decomposition
	result = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, result)

	// 3. Case-fold and trim
	result = strings.TrimSpace(strings.ToLower(result))

	// 4. Unify separators
	result = strings.ReplaceAll(result, " ", "_")
	result = strings.ReplaceAll(result, "-", "_")

	return result
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
