// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

package bars

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/echecmap/echec-map/internal/geo"
	"github.com/echecmap/echec-map/internal/platform/constants"
)

// # GeoJSON Loading

// Reprojector converts source coordinates to WGS84. The current data file is
// already WGS84, so loading uses nil; the hook exists for a future export in
// a projected CRS (Paris open data is sometimes Lambert-93).
type Reprojector func(lon, lat float64) (float64, float64)

/*
LoadGeoJSON reads the bar table from a GeoJSON FeatureCollection.

Description: Each feature becomes one [Bar]. Coordinates are taken from the
"longitude"/"latitude" properties (coerced from number or string), falling
back to the feature's point geometry. Scraper artifacts are stripped from
names. Features without a name or without numeric coordinates are dropped
and reported as warnings rather than failing the whole load.

Parameters:
  - path: string (GeoJSON file location)

Returns:
  - []Bar: Cleaned bar table, in file order
  - []string: Human-readable warnings for dropped features
  - error: Unreadable file or invalid GeoJSON
*/
func LoadGeoJSON(path string) ([]Bar, []string, error) {
	return LoadGeoJSONReprojected(path, nil)
}

// LoadGeoJSONReprojected is [LoadGeoJSON] with a coordinate conversion hook
// applied to every feature. A nil reproject means the source is WGS84.
func LoadGeoJSONReprojected(path string, reproject Reprojector) ([]Bar, []string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("bars: read %s: %w", path, err)
	}

	collection, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("bars: parse %s: %w", path, err)
	}

	var (
		result   []Bar
		warnings []string
	)

	for index, feature := range collection.Features {

		// ── 1. Name Cleanup ───────────────────────────────────────────────
		name := CleanName(stringProp(feature.Properties, "Nom"))
		if name == "" {
			warnings = append(warnings, fmt.Sprintf("feature %d: missing name, dropped", index))
			continue
		}

		// ── 2. Coordinate Coercion ────────────────────────────────────────
		lon, lonOK := floatProp(feature.Properties, "longitude")
		lat, latOK := floatProp(feature.Properties, "latitude")
		if !lonOK || !latOK {
			if point, ok := feature.Geometry.(orb.Point); ok {
				lon, lat = point.Lon(), point.Lat()
				lonOK, latOK = true, true
			}
		}
		if !lonOK || !latOK || math.IsNaN(lon) || math.IsNaN(lat) {
			warnings = append(warnings, fmt.Sprintf("feature %d (%s): unusable coordinates, dropped", index, name))
			continue
		}
		if reproject != nil {
			lon, lat = reproject(lon, lat)
		}

		// ── 3. Assemble ───────────────────────────────────────────────────
		result = append(result, Bar{
			Name:       name,
			Address:    stringProp(feature.Properties, "Adresse"),
			Metro:      stringProp(feature.Properties, "Métro"),
			Phone:      stringProp(feature.Properties, "Téléphone"),
			Website:    stringProp(feature.Properties, "Site"),
			PostalCode: strings.TrimSpace(stringProp(feature.Properties, "Code postal")),
			Location:   geo.Point{Lat: lat, Lon: lon},
		})
	}

	return result, warnings, nil
}

// CleanName strips scraper artifacts and surrounding whitespace from a
// display name.
func CleanName(name string) string {
	for _, artifact := range constants.NameArtifacts {
		name = strings.ReplaceAll(name, artifact, "")
	}
	return strings.TrimSpace(name)
}

// stringProp reads a property as a string, tolerating absent keys and
// non-string values.
func stringProp(props geojson.Properties, key string) string {
	value, ok := props[key]
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// floatProp reads a property as a float, coercing numeric strings the way
// the source file stores them.
func floatProp(props geojson.Properties, key string) (float64, bool) {
	value, ok := props[key]
	if !ok || value == nil {
		return 0, false
	}
	switch v := value.(type) {
	case float64:
		return v, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
