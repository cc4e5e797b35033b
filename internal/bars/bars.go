// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

package bars

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/echecmap/echec-map/internal/geo"
)

// Bar is a board-game bar on the Paris map.
//
// # Data Source
//
// Bars come from a hand-maintained GeoJSON file. The scraper that produced
// it left navigation artifacts inside names and some rows without usable
// coordinates; the loader cleans the former and drops the latter.
type Bar struct {
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	Metro      string    `json:"metro,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Website    string    `json:"website,omitempty"`
	PostalCode string    `json:"postal_code,omitempty"`
	Location   geo.Point `json:"location"`
}

// parisPostalCode matches a Paris postal code embedded in an address line.
var parisPostalCode = regexp.MustCompile(`75\d{3}`)

// EffectivePostalCode returns the bar's postal code, recovering it from the
// address when the dedicated field is empty.
func (b Bar) EffectivePostalCode() string {
	if b.PostalCode != "" {
		return b.PostalCode
	}
	return parisPostalCode.FindString(b.Address)
}

// Arrondissement renders the bar's district label ("2e arr.") from its
// postal code. Empty when the code is not a five-digit Paris code.
func (b Bar) Arrondissement() string {
	return ArrondissementFromPostal(b.EffectivePostalCode())
}

// ArrondissementFromPostal converts "75002" to "2e arr.". Codes that are not
// five digits starting with 75 yield an empty string.
func ArrondissementFromPostal(code string) string {
	if len(code) != 5 || !strings.HasPrefix(code, "75") {
		return ""
	}

	num, err := strconv.Atoi(code[3:])
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%de arr.", num)
}

// Site converts the bar into the geo package's ranking shape.
func (b Bar) Site() geo.Site {
	return geo.Site{Name: b.Name, Location: b.Location}
}
