// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

package forum

import (
	"encoding/json"
	"os"
	"strings"
)

// ProfanityFilter rejects forum content containing any term from the
// community's block list.
//
// Matching is case-insensitive substring containment, the bluntest rule
// that works for the short French insult list this runs against. An empty
// filter (missing list file) rejects nothing.
type ProfanityFilter struct {
	terms []string
}

// NewProfanityFilter builds a filter from an explicit term list.
func NewProfanityFilter(terms []string) *ProfanityFilter {
	lowered := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			lowered = append(lowered, term)
		}
	}
	return &ProfanityFilter{terms: lowered}
}

/*
LoadProfanityFilter reads the block list from disk.

Description: The file is a JSON array of strings, falling back to one term
per line for hand-edited lists. A missing or unreadable file yields an
empty filter — moderation degrades rather than blocking the forum.

Parameters:
  - path: string (Block list location)

Returns:
  - *ProfanityFilter: Ready filter (possibly empty)
  - string: Warning when the file was missing or unreadable
*/
func LoadProfanityFilter(path string) (*ProfanityFilter, string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return NewProfanityFilter(nil), "profanity list unreadable, filter disabled: " + err.Error()
	}

	var terms []string
	if err := json.Unmarshal(raw, &terms); err == nil {
		return NewProfanityFilter(terms), ""
	}

	return NewProfanityFilter(strings.Split(string(raw), "\n")), ""
}

// Contains reports whether text holds any blocked term.
func (filter *ProfanityFilter) Contains(text string) bool {
	if text == "" {
		return false
	}

	lower := strings.ToLower(text)
	for _, term := range filter.terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
