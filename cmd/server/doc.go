// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

/*
Package main is the entry point for the Affinity server.

Affinity records user interactions with catalog products, builds a weighted
product relationship graph (SIMILAR, BOUGHT_TOGETHER, VIEWED_TOGETHER) in
DuckDB, and serves personalized, similar, trending, seasonal and
frequently-bought-together views over a REST API.

# Application Architecture

	RootSupervisor ("affinity")
	├── DataSupervisor ("data-layer")
	│   ├── Graph build scheduler
	│   └── Catalog sync (optional, CATALOG_ENABLED=true)
	├── MessagingSupervisor ("messaging-layer")
	│   └── Event router (optional, EVENTS_ENABLED=true)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Component initialization order:

 1. Configuration: Koanf v2 with defaults, optional config file and environment
 2. Logging: zerolog, with slog and watermill adapters
 3. Database: DuckDB product, interaction and relationship tables
 4. Cache: in-memory, Redis or disabled
 5. Recommendation: recorder, composer and graph builder
 6. Graph export (optional): Neo4j mirror refreshed after each build
 7. Catalog sync (optional): paged remote catalog behind a circuit breaker
 8. Events (optional): watermill router over gochannel or NATS JetStream
 9. HTTP Server: chi router with CORS, rate limiting and Prometheus metrics

# Signal Handling

SIGINT and SIGTERM cancel the root context. The supervisor stops the HTTP
server (draining in-flight requests up to the configured shutdown timeout), the event
router and the periodic jobs; then the event transport, cache, Neo4j driver
and database are closed in that order.

# Example Usage

	export DUCKDB_PATH=/data/affinity.duckdb
	export GRAPH_BUILD_ON_STARTUP=true
	./affinity

With Redis caching and NATS:

	export CACHE_BACKEND=redis
	export REDIS_ADDR=redis:6379
	export EVENTS_ENABLED=true
	export EVENTS_TRANSPORT=nats
	export NATS_URL=nats://nats:4222
	./affinity
*/
package main
