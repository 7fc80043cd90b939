// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

/*
Package metrics provides Prometheus metrics for the affinity service.

Metrics are registered on the default registry with promauto and exposed at
/metrics:

	curl http://localhost:8080/metrics

# Families

  - affinity_duckdb_*: query latency, errors, conflict retries
  - affinity_interactions_recorded_total: recorded interactions by type
  - affinity_graph_*: build duration, outcomes, edges written, skipped pairs
  - affinity_recommendation_requests_total, affinity_cache_*: read path
  - affinity_api_*: HTTP latency and throughput
  - affinity_events_*: event bus publish/consume outcomes
  - affinity_catalog_sync_*: catalog mirror runs
  - affinity_circuit_breaker_*: catalog client breaker state

Callers use the Record* helpers rather than touching the collectors directly.
*/
package metrics
