// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

// Package algorithms implements the scoring used to build the product graph.
//
//   - Content similarity: weighted category, price and owner agreement,
//     with candidate pairs generated from a category-bucket index.
//   - Co-occurrence: symmetric pair counting over per-user product sets.
//   - Blending: exponential moving average applied when an existing edge is
//     re-upserted.
//
// Functions here are pure; persistence and scheduling live in the graph and
// database packages.
package algorithms
