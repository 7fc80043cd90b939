// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tomtom215/affinity/internal/config"
	"github.com/tomtom215/affinity/internal/recommend"
	"github.com/tomtom215/affinity/internal/recommend/graph"
)

// GraphRunner runs one affinity graph build.
type GraphRunner interface {
	Run(ctx context.Context) (graph.BuildStats, error)
}

// CatalogSyncer pulls the remote catalog into local storage.
type CatalogSyncer interface {
	Sync(ctx context.Context) (int, error)
}

// NewGraphBuildService schedules graph builds. A build already running
// (for example one triggered through the admin endpoint) is skipped quietly.
func NewGraphBuildService(builder GraphRunner, cfg *config.RecommendConfig, logger zerolog.Logger) *PeriodicService {
	job := func(ctx context.Context) error {
		_, err := builder.Run(ctx)
		return err
	}
	return NewPeriodicService(job, PeriodicConfig{
		Name:      "graph-build",
		Interval:  cfg.BuildInterval,
		Timeout:   cfg.BuildTimeout,
		OnStartup: cfg.BuildOnStartup,
		Quiet:     []error{recommend.ErrBuildInProgress},
	}, logger)
}

// NewCatalogSyncService schedules catalog syncs.
func NewCatalogSyncService(syncer CatalogSyncer, cfg *config.CatalogConfig, logger zerolog.Logger) *PeriodicService {
	job := func(ctx context.Context) error {
		_, err := syncer.Sync(ctx)
		return err
	}
	return NewPeriodicService(job, PeriodicConfig{
		Name:      "catalog-sync",
		Interval:  cfg.SyncInterval,
		OnStartup: cfg.SyncOnStartup,
	}, logger)
}
