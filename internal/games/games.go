// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

package games

// Game links one game title to one bar that stocks it. The pair is the unit
// of the "which bar has this game" feature.
type Game struct {
	BarName string `json:"bar_name"`
	Name    string `json:"game"`
}

// CatalogueEntry is one game of the curated library, with the metadata shown
// on the game cards.
//
// # Optional Fields
//
// The catalogue CSV has holes: player counts, age, and durations are pointers
// so "unknown" stays distinct from zero. Filters treat unknown as
// non-matching, the same way the site always has.
type CatalogueEntry struct {
	Name        string `json:"nom"`
	Type        string `json:"type,omitempty"`
	MinPlayers  *int   `json:"nb_joueurs_min,omitempty"`
	MaxPlayers  *int   `json:"nb_joueur_max,omitempty"`
	MinAge      *int   `json:"age_min,omitempty"`
	MinDuration *int   `json:"duree_min,omitempty"`
	MaxDuration *int   `json:"duree_max,omitempty"`
	Description string `json:"description,omitempty"`
	PhotoURL    string `json:"lien_photo,omitempty"`
	Extension   string `json:"extension,omitempty"`
}

// PlayerBand is one of the fixed player-count filter choices offered by the
// library UI.
type PlayerBand string

const (
	BandSolo       PlayerBand = "1"
	BandDuo        PlayerBand = "2"
	BandSmallGroup PlayerBand = "3-4"
	BandLargeGroup PlayerBand = "5-6"
	BandParty      PlayerBand = "7+"
)

// IsValid reports whether b is a recognised [PlayerBand] value.
func (b PlayerBand) IsValid() bool {
	switch b {
	case BandSolo, BandDuo, BandSmallGroup, BandLargeGroup, BandParty:
		return true
	}
	return false
}

// Matches reports whether a game with the entry's player range suits the
// band. Entries with unknown bounds never match an active band filter.
func (b PlayerBand) Matches(entry CatalogueEntry) bool {
	min, max := entry.MinPlayers, entry.MaxPlayers

	switch b {
	case BandSolo:
		return min != nil && *min <= 1
	case BandDuo:
		return min != nil && max != nil && *min <= 2 && *max >= 2
	case BandSmallGroup:
		return min != nil && max != nil && *min <= 4 && *max >= 3
	case BandLargeGroup:
		return min != nil && max != nil && *min <= 6 && *max >= 5
	case BandParty:
		return max != nil && *max >= 7
	}
	return false
}
