// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/affinity/internal/cache"
	"github.com/tomtom215/affinity/internal/config"
	"github.com/tomtom215/affinity/internal/database"
	"github.com/tomtom215/affinity/internal/recommend"
	"github.com/tomtom215/affinity/internal/recommend/algorithms"
	"github.com/tomtom215/affinity/internal/recommend/graph"
)

// RecommendComponents holds the recommendation read and write paths.
type RecommendComponents struct {
	Recorder *recommend.Recorder
	Composer *recommend.Composer
	Builder  *graph.Builder
	Cache    cache.Cacher
}

// initRecommend wires the recorder, composer and graph builder over db. Each
// completed build invalidates the composer cache.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initRecommend(cfg *config.Config, db *database.DB, logger zerolog.Logger) (*RecommendComponents, error) {
	cacher, err := cache.NewCacher(buildCacheConfig(&cfg.Cache))
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}

	recorder := recommend.NewRecorder(db, logger)

	composer, err := recommend.NewComposer(buildComposerConfig(&cfg.Recommend), recommend.ComposerDeps{
		Catalog:      db,
		Interactions: db,
		Graph:        db,
		Recorder:     recorder,
		Cache:        cacher,
	}, logger)
	if err != nil {
		_ = cacher.Close()
		return nil, err
	}

	builder, err := graph.NewBuilder(buildGraphConfig(&cfg.Recommend), db, db, db, logger)
	if err != nil {
		_ = cacher.Close()
		return nil, err
	}
	builder.OnComplete(func(ctx context.Context, _ graph.BuildStats) error {
		return composer.InvalidateCache(ctx)
	})

	logger.Info().
		Str("cache", cfg.Cache.Backend).
		Dur("build_interval", cfg.Recommend.BuildInterval).
		Bool("build_on_startup", cfg.Recommend.BuildOnStartup).
		Msg("Recommendation engine initialized")

	return &RecommendComponents{
		Recorder: recorder,
		Composer: composer,
		Builder:  builder,
		Cache:    cacher,
	}, nil
}

func buildCacheConfig(c *config.CacheConfig) cache.CacheConfig {
	return cache.CacheConfig{
		Backend:       cache.Backend(c.Backend),
		TTL:           c.TTL,
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisDB:       c.RedisDB,
		KeyPrefix:     c.KeyPrefix,
	}
}

// buildComposerConfig overlays configured values on the defaults; zero
// values keep the default.
func buildComposerConfig(r *config.RecommendConfig) recommend.Config {
	out := recommend.DefaultConfig()
	if r.SeedCount > 0 {
		out.SeedCount = r.SeedCount
	}
	if r.TrendingWindow > 0 {
		out.TrendingWindow = r.TrendingWindow
	}
	if r.DefaultLookahead > 0 {
		out.DefaultLookahead = r.DefaultLookahead
	}
	if r.DefaultFBTLimit > 0 {
		out.DefaultFBTLimit = r.DefaultFBTLimit
	}
	if r.MaxFBTLimit > 0 {
		out.MaxFBTLimit = r.MaxFBTLimit
	}
	if r.FetchConcurrency > 0 {
		out.FetchConcurrency = r.FetchConcurrency
	}
	return out
}

// buildGraphConfig maps the loaded settings as is. Defaults come from the
// koanf struct provider, so a configured zero is honored.
func buildGraphConfig(r *config.RecommendConfig) graph.Config {
	var out graph.Config
	out.Similarity = algorithms.SimilarityConfig{
		CategoryWeight: r.CategoryWeight,
		PriceWeight:    r.PriceWeight,
		OwnerWeight:    r.OwnerWeight,
		Threshold:      r.SimilarityThreshold,
		MaxPerProduct:  r.MaxSimilarPerProduct,
	}
	out.PurchaseNormalizer = r.PurchaseNormalizer
	out.ViewNormalizer = r.ViewNormalizer
	return out
}
