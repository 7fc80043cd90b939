// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/affinity/internal/catalog"
	"github.com/tomtom215/affinity/internal/config"
	"github.com/tomtom215/affinity/internal/database"
	"github.com/tomtom215/affinity/internal/graphexport"
)

// initCatalogSync returns nil when the remote catalog is disabled.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initCatalogSync(cfg *config.Config, db *database.DB, rc *RecommendComponents, logger zerolog.Logger) *catalog.Syncer {
	if !cfg.Catalog.Enabled {
		logger.Info().Msg("Catalog sync disabled (CATALOG_ENABLED=false)")
		return nil
	}
	fetcher := catalog.NewBreakerClient(catalog.NewClient(&cfg.Catalog), &cfg.Catalog)
	syncer := catalog.NewSyncer(fetcher, db, cfg.Catalog.PageConcurrency, cfg.Catalog.MaxPages, logger,
		catalog.WithOnSynced(rc.Composer.InvalidateCache))

	logger.Info().
		Str("base_url", cfg.Catalog.BaseURL).
		Dur("sync_interval", cfg.Catalog.SyncInterval).
		Msg("Catalog sync initialized")
	return syncer
}

// initGraphExport connects to Neo4j, ensures constraints and registers the
// exporter as a post-build hook. It returns nil when export is disabled.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initGraphExport(ctx context.Context, cfg *config.Config, db *database.DB, rc *RecommendComponents, logger zerolog.Logger) (*graphexport.Neo4jRunner, error) {
	if !cfg.GraphExport.Enabled {
		logger.Info().Msg("Graph export disabled (NEO4J_ENABLED=false)")
		return nil, nil
	}

	runner, err := graphexport.NewNeo4jRunner(&cfg.GraphExport)
	if err != nil {
		return nil, err
	}
	initCtx, cancel := context.WithTimeout(ctx, cfg.GraphExport.Timeout)
	defer cancel()

	if err := runner.Verify(initCtx); err != nil {
		_ = runner.Close(ctx)
		return nil, fmt.Errorf("neo4j connectivity: %w", err)
	}

	exporter := graphexport.NewExporter(runner, db, cfg.GraphExport.BatchSize, cfg.GraphExport.Timeout, logger)
	if err := exporter.EnsureSchema(initCtx); err != nil {
		_ = runner.Close(ctx)
		return nil, fmt.Errorf("neo4j schema: %w", err)
	}
	rc.Builder.OnComplete(exporter.Hook())

	logger.Info().Str("uri", cfg.GraphExport.URI).Msg("Graph export initialized")
	return runner, nil
}
