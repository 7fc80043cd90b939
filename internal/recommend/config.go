// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package recommend

import (
	"fmt"
	"time"
)

// Config contains the read-path settings of the recommendation composer.
type Config struct {
	// SeedCount is how many of the user's top interacted products seed
	// personalized recommendations.
	SeedCount int `json:"seed_count"`

	// TrendingWindow is how far back interactions count toward trending.
	TrendingWindow time.Duration `json:"trending_window"`

	// DefaultLookahead is used by UpcomingSeasonalProducts when the caller
	// passes a non-positive lookahead.
	DefaultLookahead time.Duration `json:"default_lookahead"`

	// DefaultFBTLimit is used by FrequentlyBoughtTogether for non-positive limits.
	DefaultFBTLimit int `json:"default_fbt_limit"`

	// MaxFBTLimit caps FrequentlyBoughtTogether.
	MaxFBTLimit int `json:"max_fbt_limit"`

	// FetchConcurrency bounds concurrent neighbor lookups per request.
	FetchConcurrency int `json:"fetch_concurrency"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		SeedCount:        10,
		TrendingWindow:   7 * 24 * time.Hour,
		DefaultLookahead: 30 * 24 * time.Hour,
		DefaultFBTLimit:  10,
		MaxFBTLimit:      50,
		FetchConcurrency: 8,
	}
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if c.SeedCount <= 0 {
		return fmt.Errorf("seed_count must be positive, got %d", c.SeedCount)
	}
	if c.TrendingWindow <= 0 {
		return fmt.Errorf("trending_window must be positive, got %s", c.TrendingWindow)
	}
	if c.DefaultLookahead <= 0 {
		return fmt.Errorf("default_lookahead must be positive, got %s", c.DefaultLookahead)
	}
	if c.DefaultFBTLimit <= 0 || c.MaxFBTLimit < c.DefaultFBTLimit {
		return fmt.Errorf("fbt limits invalid: default %d, max %d", c.DefaultFBTLimit, c.MaxFBTLimit)
	}
	if c.FetchConcurrency <= 0 {
		return fmt.Errorf("fetch_concurrency must be positive, got %d", c.FetchConcurrency)
	}
	return nil
}
