// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "affinity_duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affinity_duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	DBConflictRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "affinity_duckdb_conflict_retries_total",
			Help: "Total number of upserts retried after a transaction conflict",
		},
	)

	// Interaction Metrics
	InteractionsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affinity_interactions_recorded_total",
			Help: "Total number of recorded user-product interactions",
		},
		[]string{"type"},
	)

	// Graph Build Metrics
	GraphBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "affinity_graph_build_duration_seconds",
			Help:    "Duration of relationship graph builds in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300, 900, 1800},
		},
	)

	GraphBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affinity_graph_builds_total",
			Help: "Total number of graph builds by outcome",
		},
		[]string{"status"}, // success, error, rejected
	)

	GraphEdgesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affinity_graph_edges_written_total",
			Help: "Total number of directed edges upserted",
		},
		[]string{"relationship"},
	)

	GraphPairErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "affinity_graph_pair_errors_total",
			Help: "Total number of product pairs skipped due to errors",
		},
	)

	GraphLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "affinity_graph_last_success_timestamp",
			Help: "Unix timestamp of the last successful graph build",
		},
	)

	// Recommendation Metrics
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affinity_recommendation_requests_total",
			Help: "Total number of recommendation requests by view and source",
		},
		[]string{"view", "source"}, // source: graph, cache, fallback
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affinity_cache_hits_total",
			Help: "Total number of recommendation cache hits",
		},
		[]string{"view"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affinity_cache_misses_total",
			Help: "Total number of recommendation cache misses",
		},
		[]string{"view"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affinity_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "affinity_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "affinity_api_active_requests",
			Help: "Number of in-flight API requests",
		},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affinity_events_published_total",
			Help: "Total number of events published",
		},
		[]string{"topic"},
	)

	EventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affinity_events_processed_total",
			Help: "Total number of events processed by outcome",
		},
		[]string{"topic", "status"}, // ok, duplicate, invalid, error
	)

	// Catalog Sync Metrics
	CatalogSyncProducts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "affinity_catalog_sync_products_total",
			Help: "Total number of products mirrored from the catalog service",
		},
	)

	CatalogSyncErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "affinity_catalog_sync_errors_total",
			Help: "Total number of failed catalog sync runs",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "affinity_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affinity_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affinity_circuit_breaker_requests_total",
			Help: "Total number of requests through the circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordInteraction counts a recorded interaction of the given type name.
func RecordInteraction(interactionType string) {
	InteractionsRecorded.WithLabelValues(interactionType).Inc()
}

// RecordGraphBuild records the outcome of a graph build.
func RecordGraphBuild(duration time.Duration, pairErrors int, err error) {
	GraphBuildDuration.Observe(duration.Seconds())
	GraphPairErrors.Add(float64(pairErrors))
	if err != nil {
		GraphBuildsTotal.WithLabelValues("error").Inc()
		return
	}
	GraphBuildsTotal.WithLabelValues("success").Inc()
	GraphLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordGraphBuildRejected counts a build rejected because one was already running.
func RecordGraphBuildRejected() {
	GraphBuildsTotal.WithLabelValues("rejected").Inc()
}

// RecordEdgesWritten counts upserted directed edges for a relationship type.
func RecordEdgesWritten(relationship string, n int) {
	GraphEdgesWritten.WithLabelValues(relationship).Add(float64(n))
}

// RecordRecommendation counts a served recommendation view.
func RecordRecommendation(view, source string) {
	RecommendationRequests.WithLabelValues(view, source).Inc()
}

// RecordCacheLookup counts a cache hit or miss for a view.
func RecordCacheLookup(view string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(view).Inc()
		return
	}
	CacheMisses.WithLabelValues(view).Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordEventPublished counts a published event.
func RecordEventPublished(topic string) {
	EventsPublished.WithLabelValues(topic).Inc()
}

// RecordEventProcessed counts a consumed event by outcome.
func RecordEventProcessed(topic, status string) {
	EventsProcessed.WithLabelValues(topic, status).Inc()
}

// RecordCatalogSync records a catalog sync run.
func RecordCatalogSync(products int, err error) {
	if err != nil {
		CatalogSyncErrors.Inc()
		return
	}
	CatalogSyncProducts.Add(float64(products))
}
