// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

package bars_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echecmap/echec-map/internal/bars"
	"github.com/echecmap/echec-map/internal/geo"
)

const sampleGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [2.347, 48.859]},
      "properties": {
        "Nom": "arrow_rightLe Dernier Bar",
        "Adresse": "19 Avenue Victoria, 75001 Paris",
        "Code postal": "75001",
        "Métro": "Châtelet",
        "longitude": "2.347",
        "latitude": "48.859"
      }
    },
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [2.378, 48.855]},
      "properties": {
        "Nom": "Au Dé 12 ->",
        "Adresse": "12 Rue de la Roquette, 75011 Paris",
        "longitude": 2.378,
        "latitude": 48.855
      }
    },
    {
      "type": "Feature",
      "geometry": null,
      "properties": {
        "Nom": "Fantôme",
        "longitude": "abc",
        "latitude": ""
      }
    },
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [2.0, 48.0]},
      "properties": {"Nom": "   "}
    }
  ]
}`

func writeGeoJSON(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bars.geojson")
	require.NoError(t, os.WriteFile(path, []byte(sampleGeoJSON), 0o644))
	return path
}

/*
TestLoadGeoJSON verifies name cleanup, string/number coordinate coercion,
and that unusable features are dropped with warnings instead of errors.
*/
func TestLoadGeoJSON(t *testing.T) {
	loaded, warnings, err := bars.LoadGeoJSON(writeGeoJSON(t))
	require.NoError(t, err)

	require.Len(t, loaded, 2)
	assert.Equal(t, "Le Dernier Bar", loaded[0].Name)
	assert.Equal(t, "Au Dé 12", loaded[1].Name)
	assert.Equal(t, geo.Point{Lat: 48.859, Lon: 2.347}, loaded[0].Location)
	assert.Equal(t, geo.Point{Lat: 48.855, Lon: 2.378}, loaded[1].Location)

	// One feature without coordinates, one without a name.
	assert.Len(t, warnings, 2)
}

/*
TestLoadGeoJSON_MissingFile verifies an unreadable path is a hard error: the
bar table is the application's backbone.
*/
func TestLoadGeoJSON_MissingFile(t *testing.T) {
	_, _, err := bars.LoadGeoJSON(filepath.Join(t.TempDir(), "nope.geojson"))
	assert.Error(t, err)
}

/*
TestCleanName verifies every scraper artifact is stripped.
*/
func TestCleanName(t *testing.T) {
	assert.Equal(t, "Oya Café", bars.CleanName("arrow_down Oya Café ->"))
	assert.Equal(t, "Loufoque", bars.CleanName("Loufoque"))
}

/*
TestArrondissement verifies district label derivation, including the
fallback that extracts the postal code from the address line.
*/
func TestArrondissement(t *testing.T) {
	withCode := bars.Bar{PostalCode: "75002"}
	assert.Equal(t, "2e arr.", withCode.Arrondissement())

	fromAddress := bars.Bar{Address: "33 Rue du Faubourg Saint-Antoine, 75011 Paris"}
	assert.Equal(t, "11e arr.", fromAddress.Arrondissement())

	outOfTown := bars.Bar{PostalCode: "93100"}
	assert.Equal(t, "", outOfTown.Arrondissement())
}

func testService(t *testing.T, resolver bars.AddressResolver) *bars.Service {
	t.Helper()
	table := []bars.Bar{
		{Name: "Café Meisia", PostalCode: "75011", Location: geo.Point{Lat: 48.855, Lon: 2.378}},
		{Name: "Le Dernier Bar", PostalCode: "75001", Location: geo.Point{Lat: 48.859, Lon: 2.347}},
		{Name: "OberJeux", PostalCode: "75011", Location: geo.Point{Lat: 48.863, Lon: 2.370}},
	}
	return bars.NewService(table, resolver, t.TempDir(), t.TempDir())
}

/*
TestService_List verifies district and substring filters compose.
*/
func TestService_List(t *testing.T) {
	service := testService(t, nil)

	eleventh := service.List(bars.Filter{Arrondissement: "11e arr."})
	require.Len(t, eleventh, 2)

	meisia := service.List(bars.Filter{Arrondissement: "11e arr.", Query: "meisia"})
	require.Len(t, meisia, 1)
	assert.Equal(t, "Café Meisia", meisia[0].Name)

	assert.Len(t, service.List(bars.Filter{}), 3)
}

/*
TestService_Arrondissements verifies labels are distinct and numerically
sorted ("2e" before "11e", which lexicographic order would get wrong).
*/
func TestService_Arrondissements(t *testing.T) {
	table := []bars.Bar{
		{Name: "A", PostalCode: "75011"},
		{Name: "B", PostalCode: "75002"},
		{Name: "C", PostalCode: "75011"},
	}
	service := bars.NewService(table, nil, "", "")

	assert.Equal(t, []string{"2e arr.", "11e arr."}, service.Arrondissements())
}

// stubResolver returns a fixed geocoding answer.
type stubResolver struct {
	point geo.Point
	found bool
}

func (s stubResolver) Geocode(context.Context, string) (geo.Point, bool, error) {
	return s.point, s.found, nil
}

/*
TestService_Closest verifies the geocode-then-rank flow and the not-found
path for unresolvable addresses.
*/
func TestService_Closest(t *testing.T) {
	service := testService(t, stubResolver{point: geo.Point{Lat: 48.8591, Lon: 2.3472}, found: true})

	result, err := service.Closest(context.Background(), "19 Avenue Victoria, Paris")
	require.NoError(t, err)
	assert.Equal(t, "Le Dernier Bar", result.Bar.Name)
	assert.Less(t, result.DistanceKm, 0.1)

	service = testService(t, stubResolver{found: false})
	_, err = service.Closest(context.Background(), "nowhere")
	assert.Error(t, err)
}
