// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

// Package graphexport mirrors the product relationship graph into Neo4j after
// each successful graph build. Products become (:Product {id}) nodes and each
// edge a typed relationship (SIMILAR, BOUGHT_TOGETHER, VIEWED_TOGETHER) with
// strength and occurrences properties. The export is optional and never
// affects recommendations, which are served from DuckDB.
package graphexport
