// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/affinity/internal/metrics"
	"github.com/tomtom215/affinity/internal/recommend"
)

// ProductWriter persists catalog products. *database.DB implements it.
type ProductWriter interface {
	UpsertProducts(ctx context.Context, products []recommend.Product) error
}

// Syncer mirrors the upstream catalog into local storage.
type Syncer struct {
	fetcher     Fetcher
	store       ProductWriter
	concurrency int
	maxPages    int
	logger      zerolog.Logger

	// onSynced runs after a successful sync, e.g. to drop cached views.
	onSynced func(ctx context.Context) error
}

// SyncerOption configures a Syncer.
type SyncerOption func(*Syncer)

// WithOnSynced registers fn to run after each successful sync.
func WithOnSynced(fn func(ctx context.Context) error) SyncerOption {
	return func(s *Syncer) { s.onSynced = fn }
}

// NewSyncer creates a syncer that pulls pages from fetcher into store.
func NewSyncer(fetcher Fetcher, store ProductWriter, concurrency, maxPages int, logger zerolog.Logger, opts ...SyncerOption) *Syncer {
	if maxPages < 1 {
		maxPages = 1
	}
	s := &Syncer{
		fetcher:     fetcher,
		store:       store,
		concurrency: concurrency,
		maxPages:    maxPages,
		logger:      logger.With().Str("component", "catalog-sync").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync fetches the whole catalog and upserts it. It returns the number of
// products written.
func (s *Syncer) Sync(ctx context.Context) (int, error) {
	start := time.Now()
	products, err := FetchAll(ctx, s.fetcher, s.concurrency, s.maxPages)
	if err != nil {
		metrics.RecordCatalogSync(0, err)
		return 0, fmt.Errorf("fetch catalog: %w", err)
	}
	if err := s.store.UpsertProducts(ctx, products); err != nil {
		metrics.RecordCatalogSync(0, err)
		return 0, fmt.Errorf("store catalog: %w", err)
	}
	metrics.RecordCatalogSync(len(products), nil)

	if s.onSynced != nil {
		if err := s.onSynced(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("post-sync hook failed")
		}
	}

	s.logger.Info().
		Int("products", len(products)).
		Dur("duration", time.Since(start)).
		Msg("Catalog synced")
	return len(products), nil
}
