// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/affinity/internal/api"
	"github.com/tomtom215/affinity/internal/config"
	"github.com/tomtom215/affinity/internal/database"
	"github.com/tomtom215/affinity/internal/graphexport"
	"github.com/tomtom215/affinity/internal/logging"
	"github.com/tomtom215/affinity/internal/supervisor"
	"github.com/tomtom215/affinity/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup always runs.
//
//nolint:gocyclo // sequential startup steps
func run() int {
	cfg, err := config.Load()
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load configuration")
		return 1
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Service:   "affinity",
		Version:   version,
		Output:    os.Stderr,
	})
	logger := logging.Logger()
	api.Version = version

	logger.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Affinity with supervisor tree")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize database")
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing database")
		}
	}()
	logger.Info().Msg("Database initialized successfully")

	rc, err := initRecommend(cfg, db, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize recommendation engine")
		return 1
	}
	defer func() {
		if err := rc.Cache.Close(); err != nil {
			logger.Warn().Err(err).Msg("Error closing cache")
		}
	}()

	neo4jRunner, err := initGraphExport(ctx, cfg, db, rc, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize graph export")
		return 1
	}
	if neo4jRunner != nil {
		defer closeNeo4j(neo4jRunner)
	}

	syncer := initCatalogSync(cfg, db, rc, logger)

	ev, err := initEvents(cfg, db, rc, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize event bus")
		return 1
	}
	if ev != nil {
		defer func() {
			if err := ev.Close(); err != nil {
				logger.Warn().Err(err).Msg("Error closing event bus")
			}
		}()
	}

	deps := api.HandlerDeps{
		Recommender: rc.Composer,
		Recorder:    rc.Recorder,
		Builder:     rc.Builder,
		DB:          db,
		Config:      cfg,
	}
	if ev != nil {
		deps.Publisher = ev.Publisher
	}
	handler := api.NewHandler(deps)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(&cfg.Security)))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create supervisor tree")
		return 1
	}

	tree.AddDataService(services.NewGraphBuildService(rc.Builder, &cfg.Recommend, logger))
	if syncer != nil {
		tree.AddDataService(services.NewCatalogSyncService(syncer, &cfg.Catalog, logger))
	}
	if ev != nil {
		tree.AddMessagingService(services.NewEventRouterService(ev.Router, logger))
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	logger.Info().Str("addr", server.Addr).Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	exitCode := 0
	select {
	case <-ctx.Done():
		logger.Info().Msg("Context canceled, waiting for supervisor to finish...")
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("Supervisor stopped with error")
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, suture.ErrTerminateSupervisorTree) {
			logger.Error().Err(err).Msg("Supervisor tree failed")
			exitCode = 1
		}
		cancel()
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logger.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logger.Info().Msg("Affinity stopped")
	return exitCode
}

func closeNeo4j(r *graphexport.Neo4jRunner) {
	if err := r.Close(context.Background()); err != nil {
		logging.Warn().Err(err).Msg("Error closing Neo4j driver")
	}
}
