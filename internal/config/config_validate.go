// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tomtom215/affinity/internal/logging"
)

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateRecommend,
		c.validateCache,
		c.validateEvents,
		c.validateCatalog,
		c.validateGraphExport,
		c.validateSecurity,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.Server.Timeout)
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("ENVIRONMENT must be development, staging or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be >= 0, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := &c.Recommend
	if r.SeedCount <= 0 {
		return fmt.Errorf("RECOMMEND_SEED_COUNT must be positive, got %d", r.SeedCount)
	}
	if r.TrendingWindow <= 0 {
		return fmt.Errorf("RECOMMEND_TRENDING_WINDOW must be positive, got %s", r.TrendingWindow)
	}
	if r.DefaultLookahead <= 0 {
		return fmt.Errorf("RECOMMEND_DEFAULT_LOOKAHEAD must be positive, got %s", r.DefaultLookahead)
	}
	if r.DefaultFBTLimit <= 0 || r.MaxFBTLimit < r.DefaultFBTLimit {
		return fmt.Errorf("RECOMMEND_DEFAULT_FBT_LIMIT (%d) must be positive and <= RECOMMEND_MAX_FBT_LIMIT (%d)", r.DefaultFBTLimit, r.MaxFBTLimit)
	}
	if r.FetchConcurrency <= 0 {
		return fmt.Errorf("RECOMMEND_FETCH_CONCURRENCY must be positive, got %d", r.FetchConcurrency)
	}
	if r.SimilarityThreshold < 0 || r.SimilarityThreshold >= 1 || math.IsNaN(r.SimilarityThreshold) {
		return fmt.Errorf("RECOMMEND_SIMILARITY_THRESHOLD must be in [0, 1), got %v", r.SimilarityThreshold)
	}
	if r.MaxSimilarPerProduct < 0 {
		return fmt.Errorf("RECOMMEND_MAX_SIMILAR_PER_PRODUCT must be >= 0, got %d", r.MaxSimilarPerProduct)
	}
	if r.CategoryWeight < 0 || r.PriceWeight < 0 || r.OwnerWeight < 0 || r.CategoryWeight+r.PriceWeight+r.OwnerWeight <= 0 {
		return fmt.Errorf("similarity weights must be non-negative with a positive sum")
	}
	if r.PurchaseNormalizer <= 0 || r.ViewNormalizer <= 0 {
		return fmt.Errorf("co-occurrence normalizers must be positive")
	}
	if r.BuildInterval < time.Minute {
		return fmt.Errorf("GRAPH_BUILD_INTERVAL must be at least 1m, got %s", r.BuildInterval)
	}
	if r.BuildTimeout <= 0 {
		return fmt.Errorf("GRAPH_BUILD_TIMEOUT must be positive, got %s", r.BuildTimeout)
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case "memory", "none":
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when CACHE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be memory, redis or none, got %q", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.Cache.TTL)
	}
	return nil
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		if c.Events.AsyncInteractions {
			return fmt.Errorf("EVENTS_ASYNC_INTERACTIONS requires EVENTS_ENABLED=true")
		}
		return nil
	}
	switch c.Events.Transport {
	case "memory":
	case "nats":
		if err := validateNATSURL(c.Events.NATSURL); err != nil {
			return fmt.Errorf("NATS_URL is invalid: %w", err)
		}
		if c.Events.SubscribersCount < 1 {
			return fmt.Errorf("NATS_SUBSCRIBERS must be at least 1, got %d", c.Events.SubscribersCount)
		}
	default:
		return fmt.Errorf("EVENTS_TRANSPORT must be memory or nats, got %q", c.Events.Transport)
	}
	if c.Events.InteractionsTopic == "" || c.Events.ProductsTopic == "" {
		return fmt.Errorf("event topics must not be empty")
	}
	if c.Events.RetryCount < 0 {
		return fmt.Errorf("EVENTS_RETRY_COUNT must be >= 0, got %d", c.Events.RetryCount)
	}
	if c.Events.DeduplicationCapacity <= 0 {
		return fmt.Errorf("EVENTS_DEDUP_CAPACITY must be positive, got %d", c.Events.DeduplicationCapacity)
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if !c.Catalog.Enabled {
		return nil
	}
	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("CATALOG_BASE_URL is required when CATALOG_ENABLED=true")
	}
	if err := validateHTTPURL(c.Catalog.BaseURL, "CATALOG_BASE_URL"); err != nil {
		return err
	}
	if c.Catalog.SyncInterval < time.Minute {
		return fmt.Errorf("CATALOG_SYNC_INTERVAL must be at least 1m, got %s", c.Catalog.SyncInterval)
	}
	if c.Catalog.PageConcurrency < 1 {
		return fmt.Errorf("CATALOG_PAGE_CONCURRENCY must be at least 1, got %d", c.Catalog.PageConcurrency)
	}
	if c.Catalog.MaxPages < 1 {
		return fmt.Errorf("CATALOG_MAX_PAGES must be at least 1, got %d", c.Catalog.MaxPages)
	}
	if c.Catalog.BreakerMaxFailures == 0 {
		return fmt.Errorf("CATALOG_BREAKER_MAX_FAILURES must be at least 1")
	}
	return nil
}

func (c *Config) validateGraphExport() error {
	if !c.GraphExport.Enabled {
		return nil
	}
	if err := validateNeo4jURI(c.GraphExport.URI); err != nil {
		return fmt.Errorf("NEO4J_URI is invalid: %w", err)
	}
	if c.GraphExport.BatchSize < 1 {
		return fmt.Errorf("NEO4J_BATCH_SIZE must be at least 1, got %d", c.GraphExport.BatchSize)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow < time.Second {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s, got %s", c.Security.RateLimitWindow)
		}
	}
	if c.Security.MaxBodyBytes < 1 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", c.Security.MaxBodyBytes)
	}
	return nil
}

// ShouldWarnAboutCORS reports a wildcard CORS origin in production.
func (c *Config) ShouldWarnAboutCORS() bool {
	if !c.IsProduction() {
		return false
	}
	for _, o := range c.Security.CORSOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL is invalid: %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
