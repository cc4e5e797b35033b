// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

/*
Package geo provides the distance computations and address geocoding behind
the "closest bar" feature.

It has three parts:

  - [Haversine] and [Closest]: pure great-circle math over the loaded bars.
  - [Geocoder]: a rate-limited Nominatim client that turns a free-text
    address into coordinates.
  - [Cache]: a bbolt-backed store so repeated addresses never hit Nominatim
    twice.
*/
package geo

import (
	"math"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether both coordinates are real numbers. Bars scraped with
// missing coordinates carry NaN and must be skipped, not ranked.
func (p Point) Valid() bool {
	return !math.IsNaN(p.Lat) && !math.IsNaN(p.Lon)
}

// Site is anything with a name and a location that can be ranked by distance.
type Site struct {
	Name     string
	Location Point
}

// Haversine returns the great-circle distance in kilometres between two
// points given as (lon, lat) pairs in degrees.
func Haversine(lon1, lat1, lon2, lat2 float64) float64 {

	// Degrees to radians
	lon1, lat1 = lon1*math.Pi/180, lat1*math.Pi/180
	lon2, lat2 = lon2*math.Pi/180, lat2*math.Pi/180

	dlon := lon2 - lon1
	dlat := lat2 - lat1

	a := math.Pow(math.Sin(dlat/2), 2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)

	return 2 * math.Asin(math.Sqrt(a)) * EarthRadiusKm
}

// Closest returns the site nearest to the given point and its distance in
// kilometres.
//
// Sites with invalid coordinates are skipped. Ties keep the earliest site in
// the slice, so results are deterministic for a fixed load order. The third
// return is false when no site has usable coordinates.
func Closest(from Point, sites []Site) (Site, float64, bool) {
	var (
		best     Site
		bestDist = math.Inf(1)
		found    bool
	)

	for _, site := range sites {
		if !site.Location.Valid() {
			continue
		}

		dist := Haversine(from.Lon, from.Lat, site.Location.Lon, site.Location.Lat)
		if dist < bestDist {
			best, bestDist, found = site, dist, true
		}
	}

	if !found {
		return Site{}, 0, false
	}
	return best, bestDist, true
}
