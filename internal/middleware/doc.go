// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

/*
Package middleware provides HTTP middleware shared by the API router.

Key Components:

  - RequestID: assigns or propagates X-Request-ID and X-Correlation-ID and
    stores them, plus a request-scoped zerolog logger, in the request context
  - PrometheusMetrics: records request count, latency and in-flight requests,
    labelled by the chi route pattern rather than the raw path

Both are standard func(http.Handler) http.Handler middleware:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
