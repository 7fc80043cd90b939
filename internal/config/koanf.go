// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/affinity/config.yaml",
	"/etc/affinity/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			Path:      "/data/affinity.duckdb",
			MaxMemory: "1GB",
		},
		Recommend: RecommendConfig{
			SeedCount:        10,
			TrendingWindow:   7 * 24 * time.Hour,
			DefaultLookahead: 30 * 24 * time.Hour,
			DefaultFBTLimit:  10,
			MaxFBTLimit:      50,
			FetchConcurrency: 8,

			SimilarityThreshold:  0.5,
			MaxSimilarPerProduct: 0,
			CategoryWeight:       0.6,
			PriceWeight:          0.3,
			OwnerWeight:          0.1,
			PurchaseNormalizer:   10,
			ViewNormalizer:       20,

			BuildInterval:  24 * time.Hour,
			BuildOnStartup: false,
			BuildTimeout:   30 * time.Minute,
		},
		Cache: CacheConfig{
			Backend:   "memory",
			TTL:       5 * time.Minute,
			KeyPrefix: "affinity:cache:",
		},
		Events: EventsConfig{
			Enabled:           false,
			Transport:         "memory",
			NATSURL:           "nats://127.0.0.1:4222",
			InteractionsTopic: "affinity.interactions",
			ProductsTopic:     "affinity.products",
			DurableName:       "affinity-recorder",
			QueueGroup:        "affinity",
			SubscribersCount:  2,

			RetryCount:            3,
			RetryInitialInterval:  100 * time.Millisecond,
			ThrottlePerSecond:     0,
			DeduplicationTTL:      10 * time.Minute,
			DeduplicationCapacity: 100000,
			PoisonQueueTopic:      "affinity.poison",
			CloseTimeout:          30 * time.Second,
		},
		Catalog: CatalogConfig{
			Enabled:            false,
			SyncInterval:       time.Hour,
			SyncOnStartup:      true,
			Timeout:            15 * time.Second,
			PageConcurrency:    4,
			MaxPages:           1000,
			BreakerMaxFailures: 5,
			BreakerTimeout:     60 * time.Second,
		},
		GraphExport: GraphExportConfig{
			Enabled:   false,
			URI:       "neo4j://localhost:7687",
			Username:  "neo4j",
			Database:  "neo4j",
			BatchSize: 1000,
			Timeout:   5 * time.Minute,
		},
		Security: SecurityConfig{
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
			MaxBodyBytes:    1 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads configuration with precedence ENV > file > defaults and
// validates the result.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma-separated env values for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		parts := strings.Split(s, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Server
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Recommend
	"recommend_seed_count":              "recommend.seed_count",
	"recommend_trending_window":         "recommend.trending_window",
	"recommend_default_lookahead":       "recommend.default_lookahead",
	"recommend_default_fbt_limit":       "recommend.default_fbt_limit",
	"recommend_max_fbt_limit":           "recommend.max_fbt_limit",
	"recommend_fetch_concurrency":       "recommend.fetch_concurrency",
	"recommend_similarity_threshold":    "recommend.similarity_threshold",
	"recommend_max_similar_per_product": "recommend.max_similar_per_product",
	"recommend_category_weight":         "recommend.category_weight",
	"recommend_price_weight":            "recommend.price_weight",
	"recommend_owner_weight":            "recommend.owner_weight",
	"recommend_purchase_normalizer":     "recommend.purchase_normalizer",
	"recommend_view_normalizer":         "recommend.view_normalizer",
	"graph_build_interval":              "recommend.build_interval",
	"graph_build_on_startup":            "recommend.build_on_startup",
	"graph_build_timeout":               "recommend.build_timeout",

	// Cache
	"cache_backend":  "cache.backend",
	"cache_ttl":      "cache.ttl",
	"redis_addr":     "cache.redis_addr",
	"redis_password": "cache.redis_password",
	"redis_db":       "cache.redis_db",
	"cache_prefix":   "cache.key_prefix",

	// Events
	"events_enabled":            "events.enabled",
	"events_transport":          "events.transport",
	"nats_url":                  "events.nats_url",
	"events_async_interactions": "events.async_interactions",
	"events_interactions_topic": "events.interactions_topic",
	"events_products_topic":     "events.products_topic",
	"nats_durable_name":         "events.durable_name",
	"nats_queue_group":          "events.queue_group",
	"nats_subscribers":          "events.subscribers_count",
	"events_retry_count":        "events.retry_count",
	"events_retry_interval":     "events.retry_initial_interval",
	"events_throttle":           "events.throttle_per_second",
	"events_dedup_ttl":          "events.deduplication_ttl",
	"events_dedup_capacity":     "events.deduplication_capacity",
	"events_poison_topic":       "events.poison_queue_topic",
	"events_close_timeout":      "events.close_timeout",

	// Catalog
	"catalog_enabled":              "catalog.enabled",
	"catalog_base_url":             "catalog.base_url",
	"catalog_sync_interval":        "catalog.sync_interval",
	"catalog_sync_on_startup":      "catalog.sync_on_startup",
	"catalog_timeout":              "catalog.timeout",
	"catalog_page_concurrency":     "catalog.page_concurrency",
	"catalog_max_pages":            "catalog.max_pages",
	"catalog_breaker_max_failures": "catalog.breaker_max_failures",
	"catalog_breaker_timeout":      "catalog.breaker_timeout",

	// Graph export
	"neo4j_enabled":    "graph_export.enabled",
	"neo4j_uri":        "graph_export.uri",
	"neo4j_username":   "graph_export.username",
	"neo4j_password":   "graph_export.password",
	"neo4j_database":   "graph_export.database",
	"neo4j_batch_size": "graph_export.batch_size",
	"neo4j_timeout":    "graph_export.timeout",

	// Security
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",
	"max_body_bytes":      "security.max_body_bytes",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
