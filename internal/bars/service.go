// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

package bars

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/echecmap/echec-map/internal/geo"
	"github.com/echecmap/echec-map/internal/match"
	"github.com/echecmap/echec-map/internal/platform/apperr"
	"github.com/echecmap/echec-map/pkg/slice"
)

// # Service Layer

// AddressResolver turns a free-text address into coordinates. Implemented by
// [geo.Geocoder]; narrowed here so tests can stub it.
type AddressResolver interface {
	Geocode(ctx context.Context, address string) (geo.Point, bool, error)
}

// Service answers every bar-related question: listing, district filtering,
// nearest-bar search, and photo/menu file lookup.
//
// The bar table is loaded once at startup and never mutated, so reads need
// no synchronisation.
type Service struct {
	bars      []Bar
	resolver  AddressResolver
	imagesDir string
	menusDir  string
}

// NewService constructs a bar [Service] over an immutable bar table.
func NewService(bars []Bar, resolver AddressResolver, imagesDir, menusDir string) *Service {
	return &Service{
		bars:      bars,
		resolver:  resolver,
		imagesDir: imagesDir,
		menusDir:  menusDir,
	}
}

// Filter narrows a bar listing.
type Filter struct {
	Arrondissement string // Exact district label, e.g. "11e arr.".
	Query          string // Case-insensitive substring of the name.
}

// ClosestResult is the outcome of a nearest-bar search.
type ClosestResult struct {
	Bar        Bar     `json:"bar"`
	DistanceKm float64 `json:"distance_km"`
}

/*
List returns the bars matching the filter, in load order.

Parameters:
  - filter: Filter (District and name criteria; zero value lists everything)

Returns:
  - []Bar: Matching bars
*/
func (service *Service) List(filter Filter) []Bar {
	query := strings.ToLower(filter.Query)

	return slice.Filter(service.bars, func(bar Bar) bool {
		if filter.Arrondissement != "" && bar.Arrondissement() != filter.Arrondissement {
			return false
		}
		if query != "" && !strings.Contains(strings.ToLower(bar.Name), query) {
			return false
		}
		return true
	})
}

/*
Get fetches a single bar by its exact display name.

Returns:
  - Bar: The matching bar
  - error: ErrNotFound when no bar carries that name
*/
func (service *Service) Get(name string) (Bar, error) {
	for _, bar := range service.bars {
		if bar.Name == name {
			return bar, nil
		}
	}
	return Bar{}, apperr.NotFound("Bar")
}

/*
Arrondissements lists the distinct district labels present in the bar table,
sorted by district number.

Returns:
  - []string: e.g. ["1e arr.", "2e arr.", "11e arr."]
*/
func (service *Service) Arrondissements() []string {
	seen := make(map[string]bool)
	var labels []string

	for _, bar := range service.bars {
		label := bar.Arrondissement()
		if label != "" && !seen[label] {
			seen[label] = true
			labels = append(labels, label)
		}
	}

	sort.Slice(labels, func(i, j int) bool {
		return arrNumber(labels[i]) < arrNumber(labels[j])
	})
	return labels
}

/*
Closest geocodes an address and returns the nearest bar.

Description: The address goes through the [AddressResolver] (cache, then
Nominatim). An unresolvable address and an empty bar table both surface as
not-found conditions, matching how the search behaves on the site.

Parameters:
  - ctx: context.Context
  - address: string (Free-text address)

Returns:
  - ClosestResult: Nearest bar and its distance in kilometres
  - error: ErrNotFound for unresolvable addresses, ErrInternal for transport
    failures
*/
func (service *Service) Closest(ctx context.Context, address string) (ClosestResult, error) {

	// ── 1. Geocode ────────────────────────────────────────────────────────
	point, found, err := service.resolver.Geocode(ctx, address)
	if err != nil {
		return ClosestResult{}, apperr.Internal(err)
	}
	if !found {
		return ClosestResult{}, apperr.NotFound("Address")
	}

	// ── 2. Rank ───────────────────────────────────────────────────────────
	sites := slice.Map(service.bars, Bar.Site)
	best, distance, ok := geo.Closest(point, sites)
	if !ok {
		return ClosestResult{}, apperr.NotFound("Bar")
	}

	bar, err := service.Get(best.Name)
	if err != nil {
		return ClosestResult{}, err
	}

	return ClosestResult{Bar: bar, DistanceKm: distance}, nil
}

/*
ImagePath locates the photo file for a bar via fuzzy file matching.

Returns:
  - string: Full path of the image
  - error: ErrNotFound when no file matches
*/
func (service *Service) ImagePath(name string) (string, error) {
	path, ok := match.BestFile(name, service.imagesDir, match.ImageExtensions, match.ImageCutoff)
	if !ok {
		return "", apperr.NotFound("Image")
	}
	return path, nil
}

/*
MenuPath locates the menu PDF for a bar, consulting the manual override
table before fuzzy matching.

Returns:
  - string: Full path of the PDF
  - error: ErrNotFound when no file matches
*/
func (service *Service) MenuPath(name string) (string, error) {
	path, ok := match.MenuPDF(name, service.menusDir, nil)
	if !ok {
		return "", apperr.NotFound("Menu")
	}
	return path, nil
}

// arrNumber extracts the leading district number from a label like "11e arr.".
func arrNumber(label string) int {
	head, _, _ := strings.Cut(label, "e")
	num, _ := strconv.Atoi(head)
	return num
}
