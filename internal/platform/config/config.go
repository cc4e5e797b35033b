// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (stores, geocoder) via constructors.
  - Zero Hidden State: No global variables are used to store config.

All data files live under DataDir by default, mirroring the flat repository
layout the community tool has always used, so a fresh deployment only needs
to point DATA_DIR at a checkout of the data repository.
*/
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Echec et Map API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// DataDir is the root of the flat-file data repository (bars GeoJSON,
	// game CSVs, forum CSV, users JSON, images, menus).
	DataDir string `env:"DATA_DIR" envDefault:"./data"`

	// Individual file overrides. Empty values resolve against DataDir.
	BarsGeoJSONPath  string `env:"BARS_GEOJSON_PATH"`
	GamesCSVDir      string `env:"GAMES_CSV_DIR"`
	CataloguePath    string `env:"CATALOGUE_CSV_PATH"`
	ForumCSVPath     string `env:"FORUM_CSV_PATH"`
	RequestsCSVPath  string `env:"REQUESTS_CSV_PATH"`
	UsersJSONPath    string `env:"USERS_JSON_PATH"`
	ImagesDir        string `env:"IMAGES_DIR"`
	MenusDir         string `env:"MENUS_DIR"`
	IconsDir         string `env:"ICONS_DIR"`
	InsultsPath      string `env:"INSULTS_PATH"`
	GeocodeCachePath string `env:"GEOCODE_CACHE_PATH"`

	// Session signing secret (HS256).
	SessionSecret string `env:"SESSION_SECRET,required"`

	// BcryptPasswords switches new registrations to bcrypt hashing. Legacy
	// SHA-256 hashes keep verifying either way; leave this off if the users
	// file must stay bit-identical to what older deployments produce.
	BcryptPasswords bool `env:"AUTH_BCRYPT" envDefault:"false"`

	// Geocoding (Nominatim-compatible endpoint)
	GeocoderBaseURL   string `env:"GEOCODER_BASE_URL"   envDefault:"https://nominatim.openstreetmap.org"`
	GeocoderUserAgent string `env:"GEOCODER_USER_AGENT" envDefault:"echec_map_app"`

	// Persistence sync (git commit-and-push collaborator)
	SyncEnabled bool   `env:"SYNC_ENABLED" envDefault:"false"`
	SyncRetry   string `env:"SYNC_RETRY_SCHEDULE" envDefault:"@every 5m"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and resolves all
// unset file paths against DataDir.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	cfg.resolvePaths()

	return cfg, nil
}

// resolvePaths fills every empty path field with its conventional location
// under DataDir. The names mirror the files of the historical data repository.
func (c *Config) resolvePaths() {
	resolve := func(field *string, parts ...string) {
		if *field == "" {
			*field = filepath.Join(append([]string{c.DataDir}, parts...)...)
		}
	}

	resolve(&c.BarsGeoJSONPath, "liste_bar_OK.geojson")
	resolve(&c.GamesCSVDir, "Scraping Liste Jeux")
	resolve(&c.CataloguePath, "liste_jeux_complet.csv")
	resolve(&c.ForumCSVPath, "forum_comments.csv")
	resolve(&c.RequestsCSVPath, "game_requests.csv")
	resolve(&c.UsersJSONPath, "users.json")
	resolve(&c.ImagesDir, "images_bars", "images_bars")
	resolve(&c.MenusDir, "Menus_bars")
	resolve(&c.IconsDir, "icone_joueurs", "icone_joueurs")
	resolve(&c.InsultsPath, "liste_insultes.txt")
	resolve(&c.GeocodeCachePath, "cache", "geocode.db")
}

// AllowedExtraOrigins returns the comma-separated EXTRA_ORIGINS value as a
// slice of origins, with blanks removed.
func (c *Config) AllowedExtraOrigins() []string {
	if c.ExtraOrigins == "" {
		return nil
	}

	var origins []string
	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
