// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

/*
Package api provides the HTTP surface of the recommendation engine.

Routes (chi):

	GET  /health/live                               liveness
	GET  /health/ready                              readiness (DuckDB ping)
	GET  /metrics                                   Prometheus
	POST /api/v1/interactions                       record an interaction
	POST /api/v1/products/{id}/views                record a view (X-User-ID)
	GET  /api/v1/users/{id}/recommendations         personalized
	GET  /api/v1/products/{id}/similar              similar products
	GET  /api/v1/products/{id}/bought-together      frequently bought together
	GET  /api/v1/products/trending                  trending
	GET  /api/v1/products/seasonal                  in season now
	GET  /api/v1/products/seasonal/upcoming         coming into season
	POST /api/v1/admin/graph/build                  run a graph build

List views accept page (0-based) and page_size (default 20, max 100).

Every response uses the models.APIResponse envelope. Domain errors map to
VALIDATION_ERROR (400), BUILD_IN_PROGRESS (409), SERVICE_UNAVAILABLE (503)
and INTERNAL_ERROR (500).

Middleware order: request and correlation ids with a request-scoped logger,
real IP, panic recovery, CORS (go-chi/cors), then on /api/v1 a per-IP rate
limit (go-chi/httprate) and Prometheus instrumentation.
*/
package api
