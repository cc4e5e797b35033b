// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

// Command api is the entry point for the Echec et Map HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Load the flat-file data: bars GeoJSON, per-bar game CSVs, catalogue.
//  4. Open the geocode cache and construct the geocoder.
//  5. Load forum posts, game requests, and user accounts.
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/echecmap/echec-map/internal/api"
	"github.com/echecmap/echec-map/internal/bars"
	"github.com/echecmap/echec-map/internal/forum"
	"github.com/echecmap/echec-map/internal/games"
	"github.com/echecmap/echec-map/internal/geo"
	"github.com/echecmap/echec-map/internal/platform/config"
	"github.com/echecmap/echec-map/internal/platform/constants"
	"github.com/echecmap/echec-map/internal/platform/gitsync"
	"github.com/echecmap/echec-map/internal/platform/sec"
	"github.com/echecmap/echec-map/internal/users"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[EchecMap] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("data_dir", cfg.DataDir),
	)

	// ── 3. Data Loading ───────────────────────────────────────────────────
	// Loader degradations are warnings, never fatal: a bar with bad
	// coordinates or one unreadable CSV must not take the site down.
	barList, warnings, err := bars.LoadGeoJSON(cfg.BarsGeoJSONPath)
	must(log, err, "load bars geojson")
	logWarnings(log, "bars_loader", warnings)
	log.Info("bars_loaded", slog.Int("count", len(barList)))

	available, warnings := games.LoadBarGames(cfg.GamesCSVDir)
	logWarnings(log, "games_loader", warnings)

	catalogue, warnings := games.LoadCatalogue(cfg.CataloguePath)
	logWarnings(log, "catalogue_loader", warnings)
	log.Info("games_loaded",
		slog.Int("available", len(available)),
		slog.Int("catalogue", len(catalogue)),
	)

	// ── 4. Geocoding ──────────────────────────────────────────────────────
	geocodeCache, err := geo.OpenCache(cfg.GeocodeCachePath)
	must(log, err, "open geocode cache")
	defer func() {
		log.Info("closing geocode cache")
		if cerr := geocodeCache.Close(); cerr != nil {
			log.Error("geocode cache close error", slog.Any("error", cerr))
		}
	}()

	geocoder := geo.NewGeocoder(cfg.GeocoderBaseURL, cfg.GeocoderUserAgent, geocodeCache)

	// ── 5. Persistence Sync ───────────────────────────────────────────────
	var syncer gitsync.Syncer = gitsync.Noop{}
	if cfg.SyncEnabled {
		gitSyncer, err := gitsync.NewGit(cfg.DataDir, log)
		must(log, err, "initialize git sync")
		must(log, gitSyncer.StartRetry(cfg.SyncRetry), "start sync retry schedule")
		defer gitSyncer.Stop()
		syncer = gitSyncer
	}

	// ── 6. Auth Service ───────────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.SessionSecret, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckGeocodeCache: func() error {
			_, _, err := geocodeCache.Get("readiness-probe")
			return err
		},
		CheckDataFiles: func() error {
			_, err := os.Stat(cfg.BarsGeoJSONPath)
			return err
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	gamesService := games.NewService(available, catalogue)
	backfilled := gamesService.Backfill(barNames(barList), rand.New(rand.NewSource(time.Now().UnixNano())))
	if backfilled > 0 {
		log.Info("games_backfilled", slog.Int("count", backfilled))
	}

	barsService := bars.NewService(barList, geocoder, cfg.ImagesDir, cfg.MenusDir)

	profanity, warning := forum.LoadProfanityFilter(cfg.InsultsPath)
	if warning != "" {
		log.Warn("forum_loader", slog.String("warning", warning))
	}

	forumStore := forum.NewStore(cfg.ForumCSVPath, cfg.RequestsCSVPath, syncer, log)
	logWarnings(log, "forum_loader", forumStore.Load())
	forumService := forum.NewService(forumStore, profanity, gamesService)

	usersStore := users.NewStore(cfg.UsersJSONPath, syncer, log)
	if warning := usersStore.Load(); warning != "" {
		log.Warn("users_loader", slog.String("warning", warning))
	}
	usersService := users.NewService(usersStore, jwtSvc, cfg.IconsDir, cfg.BcryptPasswords)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      users.NewHandler(usersService),
		Bars:      bars.NewHandler(barsService),
		Games:     games.NewHandler(gamesService),
		Forum:     forum.NewHandler(forumService),
	}

	server := api.NewServer(rootCtx, cfg, log, jwtSvc, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// barNames extracts the display names used to key the availability data.
func barNames(barList []bars.Bar) []string {
	names := make([]string, 0, len(barList))
	for _, bar := range barList {
		names = append(names, bar.Name)
	}
	return names
}

// logWarnings emits one structured warning per loader degradation.
func logWarnings(log *slog.Logger, source string, warnings []string) {
	for _, warning := range warnings {
		log.Warn(source, slog.String("warning", warning))
	}
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
