// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

// Package recommend implements the product affinity engine: interaction
// recording, the relationship graph read path and seasonal views.
//
// # Architecture
//
// The engine is split into a write path and a read path:
//
//   - Recorder aggregates user-product interactions into weighted counters
//     (VIEW=1, CART=2, WISHLIST=3, REVIEW=4, PURCHASE=5).
//   - The graph subpackage periodically derives SIMILAR, BOUGHT_TOGETHER and
//     VIEWED_TOGETHER edges from the catalog and the counters.
//   - Composer turns the graph and counters into ranked, paginated views:
//     personalized, similar, frequently bought together, trending, seasonal
//     and upcoming seasonal.
//
// Storage is abstracted behind Catalog, InteractionStore and GraphStore. The
// database package implements them on DuckDB; recommendtest provides an
// in-memory implementation with the same semantics.
//
// # Ordering
//
// Every ranked view orders by score descending, then product id ascending,
// so repeated calls over unchanged data return identical pages.
//
// # Fallback
//
// Users with no interactions, or whose seeds yield no graph candidates, get
// exactly the trending view. Trending itself falls back to catalog purchase
// counts when no interaction falls inside the trending window.
//
// # Usage
//
//	recorder := recommend.NewRecorder(store, logger)
//	composer, err := recommend.NewComposer(recommend.DefaultConfig(), recommend.ComposerDeps{
//	    Catalog:      store,
//	    Interactions: store,
//	    Graph:        store,
//	    Recorder:     recorder,
//	    Cache:        cacher,
//	}, logger)
//
//	page, err := composer.PersonalizedRecommendations(ctx, userID, recommend.PageRequest{PageSize: 20})
package recommend
