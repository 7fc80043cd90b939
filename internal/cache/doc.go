// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

// Package cache provides the recommendation result cache and the key set
// used for event deduplication.
//
// # Result cache
//
// Cacher is implemented by an in-process TTL cache (default) and by Redis for
// multi-replica deployments. Values are JSON bytes; keys are built with
// GenerateKey so that equal parameters always map to the same key.
//
// The cache is created once by the server wiring, shared by the HTTP
// handlers, cleared after every graph build, and closed on shutdown.
//
// # Deduplication
//
// LRUCache tracks recently seen event ids with a TTL and bounded capacity.
package cache
