// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package main is the entry point for the Marquee web server.
//
// Marquee serves movie recommendations from a precomputed similarity matrix
// with posters resolved from TMDB.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, config.yaml, then environment (Koanf v2)
//  2. Logging: zerolog with optional lumberjack file rotation
//  3. Model: catalog and similarity matrix (CSV, JSON or Parquet). Missing
//     or inconsistent data is fatal.
//  4. Posters: TMDB client with rate limiting, circuit breaker, in-memory
//     LRU and optional BadgerDB store. A missing TMDB_API_KEY only disables
//     posters.
//  5. HTTP: Chi router serving the page, the JSON API and /metrics
//  6. Supervisor: suture tree running the HTTP server, store GC and the
//     config watcher
//
// # Example Usage
//
//	export TMDB_API_KEY=your-tmdb-key
//	export CATALOG_PATH=data/movies.csv
//	export SIMILARITY_PATH=data/similarity.parquet
//	./marquee
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the supervisor tree. In-flight requests drain
// for up to HTTP_SHUTDOWN_TIMEOUT before the process exits.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/marquee/internal/api"
	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/poster"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/supervisor"
	"github.com/tomtom215/marquee/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.Logging.ToLogging())
	defer func() {
		if err := logging.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing log file")
		}
	}()

	logging.Info().Str("version", version).Msg("Starting Marquee with supervisor tree")
	logging.Debug().Str("config", cfg.String()).Msg("Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine, resolver, breaker, store := buildEngine(ctx, cfg)
	if store != nil {
		defer func() {
			if err := store.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing poster store")
			}
		}()
	}

	handler := api.NewHandler(engine,
		api.WithPosterStats(resolver),
		api.WithBreakerState(breaker),
		api.WithVersion(version),
	)
	chiMiddleware := api.NewChiMiddlewareFromSecurity(
		cfg.Security.CORSOrigins,
		cfg.Security.RateLimitReqs,
		cfg.Security.RateLimitWindow,
		cfg.Security.RateLimitDisabled,
	)
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewRouter(handler, chiMiddleware).SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	if store != nil {
		tree.AddStorageService(services.NewStoreGCService(store, cfg.Poster.GCInterval, cfg.Poster.GCDiscardRatio))
	}
	if path := config.ConfigFile(); path != "" {
		tree.AddStorageService(services.NewWatchService("config-watcher", func() (func() error, error) {
			return config.WatchConfigFile(path, reloadLogLevel)
		}))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree...")
	if err := tree.Run(ctx); err != nil {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().Msg("Application stopped gracefully")
}

// buildEngine loads the model and assembles the poster pipeline. It exits
// the process when startup data is missing or unusable.
func buildEngine(ctx context.Context, cfg *config.Config) (*recommend.Engine, *poster.Resolver, *poster.BreakerClient, *poster.BadgerStore) {
	model, err := loadModel(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).
			Str("catalog", cfg.Data.CatalogPath).
			Str("matrix", cfg.Data.MatrixPath).
			Msg("Failed to load recommendation model")
	}

	client := poster.NewClient(cfg.TMDB.ClientConfig())
	breaker := poster.NewBreakerClient(client, cfg.TMDB.BreakerConfig())
	if !client.Configured() {
		logging.Warn().Msg("TMDB_API_KEY is not set; posters are disabled and placeholders will be shown")
	}

	var store *poster.BadgerStore
	if cfg.Poster.StorePath != "" {
		store, err = poster.OpenBadgerStore(cfg.Poster.StorePath)
		if err != nil {
			logging.Warn().Err(err).Str("path", cfg.Poster.StorePath).Msg("Poster store unavailable, using memory cache only")
			store = nil
		} else {
			logging.Info().Str("path", cfg.Poster.StorePath).Msg("Poster store opened")
		}
	}

	// A nil *BadgerStore must not become a non-nil poster.Store.
	var tier2 poster.Store
	if store != nil {
		tier2 = store
	}
	resolver := poster.NewResolver(breaker, tier2, cfg.ResolverConfig())

	engine, err := recommend.NewEngine(model, resolver, cfg.Recommend.ToRecommend(), logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}
	return engine, resolver, breaker, store
}

func loadModel(ctx context.Context, cfg *config.Config) (*catalog.Model, error) {
	start := time.Now()
	model, err := catalog.LoadModel(ctx, cfg.Data.CatalogPath, cfg.Data.MatrixPath)
	if err != nil {
		return nil, err
	}
	metrics.RecordModelLoad(model.Size(), time.Since(start))
	return model, nil
}

// reloadLogLevel applies the log level from a changed config file. Other
// settings take effect on restart.
func reloadLogLevel() {
	cfg, err := config.Load()
	if err != nil {
		logging.Warn().Err(err).Msg("Ignoring invalid configuration change")
		return
	}
	logging.SetLevelString(cfg.Logging.Level)
	logging.Info().Str("level", cfg.Logging.Level).Msg("Log level reloaded")
}
