// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package recommend

import (
	"context"
	"time"
)

// The interfaces below are implemented by the database package. Keeping them
// here lets the recommend packages be tested with in-memory fakes.

// Catalog is the read-only catalog collaborator.
type Catalog interface {
	// AllProducts enumerates the full catalog.
	AllProducts(ctx context.Context) ([]Product, error)

	// ProductsByIDs returns the known products among ids. Unknown ids are absent
	// from the map; this is not an error.
	ProductsByIDs(ctx context.Context, ids []string) (map[string]Product, error)
}

// InteractionStore persists interaction counters and answers aggregate queries.
type InteractionStore interface {
	// UpsertInteraction atomically creates the (user, product, type) row with
	// count 1 or increments it, setting score = weight * count.
	UpsertInteraction(ctx context.Context, userID, productID string, t InteractionType, at time.Time) error

	// TopUserProducts returns up to k product ids ranked by the user's summed
	// score, desc, tie-broken by product id.
	TopUserProducts(ctx context.Context, userID string, k int) ([]string, error)

	// UserProductIDs returns every product the user interacted with, any type.
	UserProductIDs(ctx context.Context, userID string) ([]string, error)

	// TrendingProducts ranks catalog products by summed score over interactions
	// updated at or after since, desc, tie-broken by product id.
	TrendingProducts(ctx context.Context, since time.Time, page PageRequest) (Page[ScoredID], error)

	// ScanUserProducts calls fn once per user with the distinct products the user
	// interacted with under type t. Users are visited in id order.
	ScanUserProducts(ctx context.Context, t InteractionType, fn func(userID string, productIDs []string) error) error
}

// GraphStore persists the product relationship graph.
type GraphStore interface {
	// UpsertEdgePair writes e and e.Reverse() in one transaction. Each row is
	// inserted or blended into the existing row (strength = 0.7*old + 0.3*new,
	// occurrence count replaced), so either both directions change or neither.
	UpsertEdgePair(ctx context.Context, e Edge) error

	// Neighbors returns all outgoing edges of productID with type t, ordered by
	// strength desc, then target id.
	Neighbors(ctx context.Context, productID string, t RelationshipType) ([]Edge, error)

	// NeighborsPage is Neighbors restricted to targets present in the catalog
	// and paginated.
	NeighborsPage(ctx context.Context, productID string, t RelationshipType, page PageRequest) (Page[Edge], error)

	// ScanEdges calls fn for every edge of type t.
	ScanEdges(ctx context.Context, t RelationshipType, fn func(Edge) error) error
}
