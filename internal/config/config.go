// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
//
// Loading order (Koanf v2):
//  1. Built-in defaults
//  2. Optional YAML file (CONFIG_PATH, ./config.yaml, /etc/affinity/config.yaml)
//  3. Environment variables
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Error().Err(err).Msg("invalid configuration")
//	}
//	db, err := database.New(&cfg.Database)
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Database    DatabaseConfig    `koanf:"database"`
	Recommend   RecommendConfig   `koanf:"recommend"`
	Cache       CacheConfig       `koanf:"cache"`
	Events      EventsConfig      `koanf:"events"`
	Catalog     CatalogConfig     `koanf:"catalog"`
	GraphExport GraphExportConfig `koanf:"graph_export"`
	Security    SecurityConfig    `koanf:"security"`
	Logging     LoggingConfig     `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()
}

// RecommendConfig holds read-path and graph build settings.
type RecommendConfig struct {
	SeedCount        int           `koanf:"seed_count"`
	TrendingWindow   time.Duration `koanf:"trending_window"`
	DefaultLookahead time.Duration `koanf:"default_lookahead"`
	DefaultFBTLimit  int           `koanf:"default_fbt_limit"`
	MaxFBTLimit      int           `koanf:"max_fbt_limit"`
	FetchConcurrency int           `koanf:"fetch_concurrency"`

	SimilarityThreshold  float64 `koanf:"similarity_threshold"`
	MaxSimilarPerProduct int     `koanf:"max_similar_per_product"`
	CategoryWeight       float64 `koanf:"category_weight"`
	PriceWeight          float64 `koanf:"price_weight"`
	OwnerWeight          float64 `koanf:"owner_weight"`
	PurchaseNormalizer   float64 `koanf:"purchase_normalizer"`
	ViewNormalizer       float64 `koanf:"view_normalizer"`

	BuildInterval  time.Duration `koanf:"build_interval"`
	BuildOnStartup bool          `koanf:"build_on_startup"`
	BuildTimeout   time.Duration `koanf:"build_timeout"`
}

// CacheConfig selects the read cache backend.
type CacheConfig struct {
	Backend       string        `koanf:"backend"` // memory, redis, none
	TTL           time.Duration `koanf:"ttl"`
	RedisAddr     string        `koanf:"redis_addr"`
	RedisPassword string        `koanf:"redis_password"`
	RedisDB       int           `koanf:"redis_db"`
	KeyPrefix     string        `koanf:"key_prefix"`
}

// EventsConfig holds event bus settings.
type EventsConfig struct {
	Enabled bool `koanf:"enabled"`

	// Transport is memory (in-process gochannel) or nats.
	Transport string `koanf:"transport"`
	NATSURL   string `koanf:"nats_url"`

	// AsyncInteractions makes POST /api/v1/interactions publish an event and
	// return 202 instead of writing synchronously.
	AsyncInteractions bool `koanf:"async_interactions"`

	InteractionsTopic string `koanf:"interactions_topic"`
	ProductsTopic     string `koanf:"products_topic"`

	DurableName      string `koanf:"durable_name"`
	QueueGroup       string `koanf:"queue_group"`
	SubscribersCount int    `koanf:"subscribers_count"`

	// Router middleware.
	RetryCount            int           `koanf:"retry_count"`
	RetryInitialInterval  time.Duration `koanf:"retry_initial_interval"`
	ThrottlePerSecond     int64         `koanf:"throttle_per_second"`
	DeduplicationTTL      time.Duration `koanf:"deduplication_ttl"`
	DeduplicationCapacity int           `koanf:"deduplication_capacity"`
	PoisonQueueTopic      string        `koanf:"poison_queue_topic"`
	CloseTimeout          time.Duration `koanf:"close_timeout"`
}

// CatalogConfig holds settings for the remote catalog client and syncer.
type CatalogConfig struct {
	Enabled         bool          `koanf:"enabled"`
	BaseURL         string        `koanf:"base_url"`
	SyncInterval    time.Duration `koanf:"sync_interval"`
	SyncOnStartup   bool          `koanf:"sync_on_startup"`
	Timeout         time.Duration `koanf:"timeout"`
	PageConcurrency int           `koanf:"page_concurrency"`
	MaxPages        int           `koanf:"max_pages"`

	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// GraphExportConfig holds Neo4j export settings.
type GraphExportConfig struct {
	Enabled   bool          `koanf:"enabled"`
	URI       string        `koanf:"uri"`
	Username  string        `koanf:"username"`
	Password  string        `koanf:"password"`
	Database  string        `koanf:"database"`
	BatchSize int           `koanf:"batch_size"`
	Timeout   time.Duration `koanf:"timeout"`
}

// SecurityConfig holds HTTP hardening settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	MaxBodyBytes      int64         `koanf:"max_body_bytes"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from defaults, an optional file and the environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
