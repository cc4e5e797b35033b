// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

package games

import (
	"math/rand"
	"sort"
	"strings"
	"sync"

	"github.com/echecmap/echec-map/pkg/pagination"
	"github.com/echecmap/echec-map/pkg/slice"
)

// backfillSampleSize caps how many random games a bar without a scraped list
// receives, so every bar has something to show on the map.
const backfillSampleSize = 100

// # Service Layer

// Service owns the two game datasets: the per-bar availability pairs and the
// curated catalogue.
//
// # Mutability
//
// The availability list grows at runtime (request approvals, backfill), so
// it sits behind a mutex. The catalogue is load-once and read-only.
type Service struct {
	mu        sync.RWMutex
	available []Game

	catalogue []CatalogueEntry
}

// NewService constructs a game [Service] over the loaded datasets.
func NewService(available []Game, catalogue []CatalogueEntry) *Service {
	return &Service{available: available, catalogue: catalogue}
}

/*
Backfill assigns random games to bars that have no scraped list.

Description: For each named bar absent from the availability data, a random
sample of up to 100 distinct known game titles is attached, so no bar shows
an empty shelf. The sample is drawn from the supplied source of randomness;
tests pass a seeded one.

Parameters:
  - barNames: []string (Every bar on the map)
  - rng: *rand.Rand (Randomness source)

Returns:
  - int: Number of (bar, game) pairs added
*/
func (service *Service) Backfill(barNames []string, rng *rand.Rand) int {
	service.mu.Lock()
	defer service.mu.Unlock()

	// ── 1. Inventory ──────────────────────────────────────────────────────
	covered := make(map[string]bool)
	titleSeen := make(map[string]bool)
	var titles []string
	for _, game := range service.available {
		covered[game.BarName] = true
		if !titleSeen[game.Name] {
			titleSeen[game.Name] = true
			titles = append(titles, game.Name)
		}
	}
	if len(titles) == 0 {
		return 0
	}

	// ── 2. Sample Per Uncovered Bar ───────────────────────────────────────
	added := 0
	for _, barName := range barNames {
		if covered[barName] {
			continue
		}

		sample := titles
		if len(titles) > backfillSampleSize {
			perm := rng.Perm(len(titles))[:backfillSampleSize]
			sample = make([]string, 0, backfillSampleSize)
			for _, index := range perm {
				sample = append(sample, titles[index])
			}
		}

		for _, title := range sample {
			service.available = append(service.available, Game{BarName: barName, Name: title})
			added++
		}
	}

	return added
}

/*
GamesForBar lists the distinct game titles available at one bar, sorted
alphabetically.
*/
func (service *Service) GamesForBar(barName string) []string {
	service.mu.RLock()
	defer service.mu.RUnlock()

	seen := make(map[string]bool)
	var titles []string
	for _, game := range service.available {
		if game.BarName == barName && !seen[game.Name] {
			seen[game.Name] = true
			titles = append(titles, game.Name)
		}
	}

	sort.Strings(titles)
	return titles
}

/*
BarsForGame lists the bars stocking a game, sorted alphabetically.

Description: An exact case-insensitive title match is tried first; when it
yields nothing, a substring match takes over so "Catan" still finds
"Les Colons de Catane"-style listings.
*/
func (service *Service) BarsForGame(title string) []string {
	service.mu.RLock()
	defer service.mu.RUnlock()

	lower := strings.ToLower(title)

	exact := service.collectBars(func(game Game) bool {
		return strings.ToLower(game.Name) == lower
	})
	if len(exact) > 0 {
		return exact
	}

	return service.collectBars(func(game Game) bool {
		return strings.Contains(strings.ToLower(game.Name), lower)
	})
}

// collectBars gathers distinct sorted bar names whose games satisfy the
// predicate. Caller holds the read lock.
func (service *Service) collectBars(predicate func(Game) bool) []string {
	seen := make(map[string]bool)
	var barNames []string
	for _, game := range service.available {
		if predicate(game) && !seen[game.BarName] {
			seen[game.BarName] = true
			barNames = append(barNames, game.BarName)
		}
	}

	sort.Strings(barNames)
	return barNames
}

/*
Add records that a bar now stocks a game. Called when an admin approves a
game request; the addition lives in memory only, never written back to the
scraped CSVs.
*/
func (service *Service) Add(barName, title string) {
	title = CleanGameName(title)
	if title == "" {
		return
	}

	service.mu.Lock()
	defer service.mu.Unlock()

	for _, game := range service.available {
		if game.BarName == barName && game.Name == title {
			return
		}
	}
	service.available = append(service.available, Game{BarName: barName, Name: title})
}

// # Library

// LibraryFilter holds the card-grid filter criteria. Zero values mean "no
// constraint".
type LibraryFilter struct {
	Query   string     // Case-insensitive substring of the name.
	Types   []string   // Exact type labels; empty slice matches all.
	Players PlayerBand // Player-count band.
	MinAge  int        // Inclusive-downward age threshold; 0 disables.
}

/*
Library returns one page of the filtered catalogue.

Description: Filters compose as intersections. The age filter keeps entries
whose recommended minimum age is at or below the threshold: "8+" shows games
playable from age 8 or younger, not games requiring 8 and up. A page index
past the filtered result clamps back to the first page, because a filter
change can shrink the result under the client's current page.

Parameters:
  - filter: LibraryFilter
  - params: pagination.Params

Returns:
  - []CatalogueEntry: The page slice
  - pagination.Meta: Page metadata for the response envelope
*/
func (service *Service) Library(filter LibraryFilter, params pagination.Params) ([]CatalogueEntry, pagination.Meta) {
	filtered := service.filterCatalogue(filter)

	params = params.Clamp(len(filtered))
	start := params.Offset()
	end := start + params.Limit
	if start > len(filtered) {
		start, end = 0, 0
	} else if end > len(filtered) {
		end = len(filtered)
	}

	return filtered[start:end], pagination.NewMeta(params.Page, params.Limit, len(filtered))
}

// Types lists the distinct catalogue types, sorted, for the filter dropdown.
func (service *Service) Types() []string {
	seen := make(map[string]bool)
	var types []string
	for _, entry := range service.catalogue {
		if entry.Type != "" && !seen[entry.Type] {
			seen[entry.Type] = true
			types = append(types, entry.Type)
		}
	}

	sort.Strings(types)
	return types
}

// CatalogueEntryByName fetches one catalogue entry by exact name.
func (service *Service) CatalogueEntryByName(name string) (CatalogueEntry, bool) {
	for _, entry := range service.catalogue {
		if entry.Name == name {
			return entry, true
		}
	}
	return CatalogueEntry{}, false
}

// filterCatalogue applies the library filter criteria in sequence.
func (service *Service) filterCatalogue(filter LibraryFilter) []CatalogueEntry {
	query := strings.ToLower(filter.Query)

	typeSet := make(map[string]bool, len(filter.Types))
	for _, t := range filter.Types {
		typeSet[t] = true
	}

	return slice.Filter(service.catalogue, func(entry CatalogueEntry) bool {
		if query != "" && !strings.Contains(strings.ToLower(entry.Name), query) {
			return false
		}
		if len(typeSet) > 0 && !typeSet[entry.Type] {
			return false
		}
		if filter.Players != "" && !filter.Players.Matches(entry) {
			return false
		}
		if filter.MinAge > 0 && (entry.MinAge == nil || *entry.MinAge > filter.MinAge) {
			return false
		}
		return true
	})
}
