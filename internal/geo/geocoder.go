// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/echecmap/echec-map/internal/platform/constants"
)

// # Nominatim Client

// Geocoder resolves free-text addresses to coordinates through a
// Nominatim-compatible endpoint, backed by a persistent [Cache].
//
// # Usage Policy
//
// The public Nominatim instance allows one request per second per
// application. The client enforces that with a [rate.Limiter] shared across
// all callers, and identifies itself with a fixed User-Agent as the policy
// requires.
type Geocoder struct {
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
	cache     *Cache
}

// NewGeocoder constructs a [Geocoder]. The cache may be nil, in which case
// every lookup goes to the network.
func NewGeocoder(baseURL, userAgent string, cache *Cache) *Geocoder {
	return &Geocoder{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    &http.Client{},
		limiter:   rate.NewLimiter(rate.Every(constants.GeocoderMinInterval), 1),
		cache:     cache,
	}
}

// nominatimResult is the subset of the jsonv2 search response we consume.
// Nominatim serialises coordinates as strings.
type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

/*
Geocode resolves an address to a coordinate pair.

Description: Checks the cache, then performs a single rate-limited Nominatim
search taking the first result. An address Nominatim cannot resolve is a
miss (found=false), not an error; errors are reserved for transport and
decoding failures.

Parameters:
  - ctx: context.Context (Bounds the wait on the rate limiter and the request)
  - address: string (Free-text address, e.g. "12 rue de la Roquette, Paris")

Returns:
  - Point: Resolved coordinates
  - bool: Whether the address resolved
  - error: Transport, decoding, or context errors
*/
func (g *Geocoder) Geocode(ctx context.Context, address string) (Point, bool, error) {

	// ── 1. Cache Lookup ───────────────────────────────────────────────────
	if g.cache != nil {
		if point, found, err := g.cache.Get(address); err == nil && found {
			return point, true, nil
		}
	}

	// ── 2. Rate-limited Fetch ─────────────────────────────────────────────
	if err := g.limiter.Wait(ctx); err != nil {
		return Point{}, false, fmt.Errorf("geo: rate limiter: %w", err)
	}

	results, err := g.search(ctx, address)
	if err != nil {
		return Point{}, false, err
	}
	if len(results) == 0 {
		return Point{}, false, nil
	}

	// ── 3. Parse First Result ─────────────────────────────────────────────
	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return Point{}, false, fmt.Errorf("geo: unparseable coordinates for %q", address)
	}

	point := Point{Lat: lat, Lon: lon}

	// ── 4. Cache Fill ─────────────────────────────────────────────────────
	if g.cache != nil {
		// A failed cache write only costs a future network call.
		_ = g.cache.Set(address, point)
	}

	return point, true, nil
}

// search performs one Nominatim query and decodes the response.
func (g *Geocoder) search(ctx context.Context, query string) ([]nominatimResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("limit", "1")

	endpoint := g.baseURL + "/search?" + params.Encode()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("geo: build request: %w", err)
	}
	request.Header.Set("User-Agent", g.userAgent)

	response, err := g.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("geo: nominatim request: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geo: nominatim returned status %d", response.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(response.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("geo: decode nominatim response: %w", err)
	}

	return results, nil
}
