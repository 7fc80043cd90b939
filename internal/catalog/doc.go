// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

// Package catalog mirrors the upstream product catalog into local storage.
//
// Client reads GET {base}/products?page=N (0-based) and backs off on HTTP
// 429. BreakerClient guards it with a sony/gobreaker circuit breaker so a
// failing catalog is not hammered by every sync; failures surface as
// ErrCatalogUnavailable. Syncer fetches all pages concurrently and upserts
// them in one transaction.
package catalog
