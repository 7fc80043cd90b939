// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package graph

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/affinity/internal/metrics"
	"github.com/tomtom215/affinity/internal/recommend"
	"github.com/tomtom215/affinity/internal/recommend/algorithms"
)

// Config contains configuration for graph builds.
type Config struct {
	Similarity algorithms.SimilarityConfig `json:"similarity"`

	// PurchaseNormalizer is the shared-buyer count at which BOUGHT_TOGETHER saturates.
	PurchaseNormalizer float64 `json:"purchase_normalizer"`

	// ViewNormalizer is the shared-viewer count at which VIEWED_TOGETHER saturates.
	ViewNormalizer float64 `json:"view_normalizer"`
}

// DefaultConfig returns the production build settings.
func DefaultConfig() Config {
	return Config{
		Similarity:         algorithms.DefaultSimilarityConfig(),
		PurchaseNormalizer: algorithms.PurchaseNormalizer,
		ViewNormalizer:     algorithms.ViewNormalizer,
	}
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if err := c.Similarity.Validate(); err != nil {
		return err
	}
	if c.PurchaseNormalizer <= 0 || c.ViewNormalizer <= 0 {
		return fmt.Errorf("co-occurrence normalizers must be positive")
	}
	return nil
}

// BuildStats reports what one build did.
type BuildStats struct {
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration"`

	Products            int `json:"products"`
	SimilarCompared     int `json:"similar_compared"`
	SimilarPairs        int `json:"similar_pairs"`
	BoughtTogetherPairs int `json:"bought_together_pairs"`
	ViewedTogetherPairs int `json:"viewed_together_pairs"`
	EdgesWritten        int `json:"edges_written"`

	// Errors counts product pairs that were skipped.
	Errors int `json:"errors"`
}

// Hook runs after a build that completed without a pass error.
type Hook func(ctx context.Context, stats BuildStats) error

// Builder rebuilds the product relationship graph. Builds never overlap: a
// Run while another is in flight returns recommend.ErrBuildInProgress.
//
// Edges are upserted pair by pair; nothing is deleted, so a failed or
// cancelled build leaves previously committed edges intact.
type Builder struct {
	cfg          Config
	catalog      recommend.Catalog
	interactions recommend.InteractionStore
	graph        recommend.GraphStore
	logger       zerolog.Logger

	buildMu sync.Mutex

	stateMu   sync.RWMutex
	running   bool
	lastStats *BuildStats
	hooks     []Hook

	now func() time.Time
}

// NewBuilder creates a graph builder.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBuilder(cfg Config, catalog recommend.Catalog, interactions recommend.InteractionStore, graph recommend.GraphStore, logger zerolog.Logger) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid graph config: %w", err)
	}
	if catalog == nil || interactions == nil || graph == nil {
		return nil, errors.New("graph builder requires catalog, interaction store and graph store")
	}
	return &Builder{
		cfg:          cfg,
		catalog:      catalog,
		interactions: interactions,
		graph:        graph,
		logger:       logger.With().Str("component", "graph-builder").Logger(),
		now:          time.Now,
	}, nil
}

// OnComplete registers a hook to run after successful builds, in order.
func (b *Builder) OnComplete(h Hook) {
	b.stateMu.Lock()
	defer b.stateMu.Unlock()
	b.hooks = append(b.hooks, h)
}

// Running reports whether a build is in flight.
func (b *Builder) Running() bool {
	b.stateMu.RLock()
	defer b.stateMu.RUnlock()
	return b.running
}

// LastStats returns the stats of the last finished build.
func (b *Builder) LastStats() (BuildStats, bool) {
	b.stateMu.RLock()
	defer b.stateMu.RUnlock()
	if b.lastStats == nil {
		return BuildStats{}, false
	}
	return *b.lastStats, true
}

// acquireBuildLock attempts to start a build.
func (b *Builder) acquireBuildLock() error {
	if !b.buildMu.TryLock() {
		return recommend.ErrBuildInProgress
	}
	b.stateMu.Lock()
	b.running = true
	b.stateMu.Unlock()
	return nil
}

func (b *Builder) releaseBuildLock(stats *BuildStats) {
	b.stateMu.Lock()
	b.running = false
	b.lastStats = stats
	b.stateMu.Unlock()
	b.buildMu.Unlock()
}

// Run performs a full build: the similarity pass, then the BOUGHT_TOGETHER and
// VIEWED_TOGETHER co-occurrence passes. The passes are independent; a failing
// pass is reported but does not stop the others. Cancelling ctx stops the build
// between pairs.
func (b *Builder) Run(ctx context.Context) (BuildStats, error) {
	if err := b.acquireBuildLock(); err != nil {
		metrics.RecordGraphBuildRejected()
		return BuildStats{}, err
	}

	stats := BuildStats{StartedAt: b.now()}
	defer func() {
		b.releaseBuildLock(&stats)
	}()

	b.logger.Info().Msg("graph build started")

	var passErrs []error
	if err := b.similarityPass(ctx, &stats); err != nil {
		passErrs = append(passErrs, fmt.Errorf("similarity pass: %w", err))
	}

	coPasses := []struct {
		interaction  recommend.InteractionType
		relationship recommend.RelationshipType
		normalizer   float64
		pairs        *int
	}{
		{recommend.InteractionPurchase, recommend.RelationshipBoughtTogether, b.cfg.PurchaseNormalizer, &stats.BoughtTogetherPairs},
		{recommend.InteractionView, recommend.RelationshipViewedTogether, b.cfg.ViewNormalizer, &stats.ViewedTogetherPairs},
	}
	for _, p := range coPasses {
		if ctx.Err() != nil {
			passErrs = append(passErrs, ctx.Err())
			break
		}
		n, err := b.coOccurrencePass(ctx, p.interaction, p.relationship, p.normalizer, &stats)
		*p.pairs = n
		if err != nil {
			passErrs = append(passErrs, fmt.Errorf("%s pass: %w", p.relationship, err))
		}
	}

	stats.FinishedAt = b.now()
	stats.Duration = stats.FinishedAt.Sub(stats.StartedAt)
	err := errors.Join(passErrs...)
	metrics.RecordGraphBuild(stats.Duration, stats.Errors, err)

	if err != nil {
		b.logger.Error().Err(err).
			Int("edges_written", stats.EdgesWritten).
			Int("pair_errors", stats.Errors).
			Dur("duration", stats.Duration).
			Msg("graph build failed")
		return stats, err
	}

	b.logger.Info().
		Int("products", stats.Products).
		Int("similar_pairs", stats.SimilarPairs).
		Int("bought_together_pairs", stats.BoughtTogetherPairs).
		Int("viewed_together_pairs", stats.ViewedTogetherPairs).
		Int("edges_written", stats.EdgesWritten).
		Int("pair_errors", stats.Errors).
		Dur("duration", stats.Duration).
		Msg("graph build completed")

	b.stateMu.RLock()
	hooks := append([]Hook(nil), b.hooks...)
	b.stateMu.RUnlock()
	for _, h := range hooks {
		if herr := h(ctx, stats); herr != nil {
			b.logger.Warn().Err(herr).Msg("post-build hook failed")
		}
	}

	return stats, nil
}

func (b *Builder) similarityPass(ctx context.Context, stats *BuildStats) error {
	products, err := b.catalog.AllProducts(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	stats.Products = len(products)

	res, err := algorithms.FindSimilarPairs(ctx, products, b.cfg.Similarity, func(p algorithms.Pair, err error) {
		stats.Errors++
		b.logger.Warn().Err(err).Str("product_a", p.A).Str("product_b", p.B).Msg("skipping product pair")
	})
	stats.SimilarCompared = res.Compared
	if err != nil {
		return err
	}
	stats.SimilarPairs = len(res.Pairs)

	written := 0
	for _, p := range res.Pairs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if b.writePair(ctx, p.Pair, recommend.RelationshipSimilar, algorithms.Clamp01(p.Score), 0, stats) {
			written += 2
		}
	}
	metrics.RecordEdgesWritten(recommend.RelationshipSimilar.String(), written)
	return nil
}

func (b *Builder) coOccurrencePass(ctx context.Context, it recommend.InteractionType, rt recommend.RelationshipType, normalizer float64, stats *BuildStats) (int, error) {
	counter := algorithms.NewPairCounter()
	err := b.interactions.ScanUserProducts(ctx, it, func(_ string, productIDs []string) error {
		if algorithms.ContextCancelled(ctx) {
			return ctx.Err()
		}
		counter.Add(productIDs)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan %s interactions: %w", it, err)
	}

	pairs := counter.Pairs()
	written := 0
	for _, p := range pairs {
		if ctx.Err() != nil {
			return len(pairs), ctx.Err()
		}
		strength := algorithms.CoOccurrenceStrength(p.Count, normalizer)
		if b.writePair(ctx, p.Pair, rt, strength, p.Count, stats) {
			written += 2
		}
	}
	metrics.RecordEdgesWritten(rt.String(), written)
	return len(pairs), nil
}

// writePair upserts both directions of a symmetric edge. A failure is logged
// and counted; the pass continues with the next pair.
func (b *Builder) writePair(ctx context.Context, p algorithms.Pair, rt recommend.RelationshipType, strength float64, count int64, stats *BuildStats) bool {
	edge := recommend.Edge{
		SourceID:        p.A,
		TargetID:        p.B,
		Type:            rt,
		Strength:        strength,
		OccurrenceCount: count,
	}
	if err := b.graph.UpsertEdgePair(ctx, edge); err != nil {
		stats.Errors++
		b.logger.Warn().Err(err).
			Str("product_a", p.A).
			Str("product_b", p.B).
			Stringer("relationship", rt).
			Msg("edge upsert failed, skipping pair")
		return false
	}
	stats.EdgesWritten += 2
	return true
}
