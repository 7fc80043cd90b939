// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

/*
Package config provides layered configuration for the affinity service.

# Configuration Sources

Values are merged with Koanf v2 in increasing priority:

 1. Struct defaults (defaultConfig)
 2. YAML file from CONFIG_PATH, ./config.yaml or /etc/affinity/config.yaml
 3. Environment variables listed in envMappings

Unmapped environment variables are ignored. Durations accept Go syntax
("90s", "24h"). CORS_ORIGINS takes a comma-separated list.

# Environment Variables

Server:
  - HTTP_PORT (default 8080), HTTP_HOST, HTTP_TIMEOUT, ENVIRONMENT

Database:
  - DUCKDB_PATH (default /data/affinity.duckdb), DUCKDB_MAX_MEMORY, DUCKDB_THREADS

Recommendations and graph builds:
  - RECOMMEND_SEED_COUNT, RECOMMEND_TRENDING_WINDOW, RECOMMEND_SIMILARITY_THRESHOLD
  - GRAPH_BUILD_INTERVAL (default 24h), GRAPH_BUILD_ON_STARTUP, GRAPH_BUILD_TIMEOUT

Cache:
  - CACHE_BACKEND (memory, redis, none), CACHE_TTL, REDIS_ADDR, REDIS_PASSWORD, REDIS_DB

Events:
  - EVENTS_ENABLED, EVENTS_TRANSPORT (memory, nats), NATS_URL, EVENTS_ASYNC_INTERACTIONS

Catalog:
  - CATALOG_ENABLED, CATALOG_BASE_URL, CATALOG_SYNC_INTERVAL

Graph export:
  - NEO4J_ENABLED, NEO4J_URI, NEO4J_USERNAME, NEO4J_PASSWORD

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Example

	cfg, err := config.Load()
	if err != nil {
	    logging.Error().Err(err).Msg("configuration error")
	}
	srv := &http.Server{Addr: cfg.Server.Addr()}
*/
package config
