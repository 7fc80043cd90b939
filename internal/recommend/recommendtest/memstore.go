// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

// Package recommendtest provides an in-memory implementation of the
// recommend store interfaces for tests.
package recommendtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/affinity/internal/recommend"
	"github.com/tomtom215/affinity/internal/recommend/algorithms"
)

type interactionKey struct {
	user    string
	product string
	typ     recommend.InteractionType
}

type edgeKey struct {
	source string
	target string
	typ    recommend.RelationshipType
}

// MemStore implements recommend.Catalog, recommend.InteractionStore and
// recommend.GraphStore with the same semantics as the DuckDB store.
type MemStore struct {
	mu           sync.Mutex
	products     map[string]recommend.Product
	interactions map[interactionKey]*recommend.Interaction
	edges        map[edgeKey]*recommend.Edge

	// FailEdge, when set, makes UpsertEdgePair fail for matching edges.
	FailEdge func(recommend.Edge) error

	// FailCatalog, when set, is returned by AllProducts.
	FailCatalog error

	// EdgeWrites counts successful UpsertEdgePair calls.
	EdgeWrites int
}

var (
	_ recommend.Catalog          = (*MemStore)(nil)
	_ recommend.InteractionStore = (*MemStore)(nil)
	_ recommend.GraphStore       = (*MemStore)(nil)
)

// NewMemStore creates an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		products:     make(map[string]recommend.Product),
		interactions: make(map[interactionKey]*recommend.Interaction),
		edges:        make(map[edgeKey]*recommend.Edge),
	}
}

// PutProducts adds or replaces catalog products.
func (m *MemStore) PutProducts(products ...recommend.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range products {
		m.products[p.ID] = p
	}
}

// AllProducts returns the catalog ordered by id.
func (m *MemStore) AllProducts(_ context.Context) ([]recommend.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCatalog != nil {
		return nil, m.FailCatalog
	}
	out := make([]recommend.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ProductsByIDs returns the known products among ids.
func (m *MemStore) ProductsByIDs(_ context.Context, ids []string) (map[string]recommend.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]recommend.Product, len(ids))
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

// UpsertInteraction creates or increments a counter.
func (m *MemStore) UpsertInteraction(_ context.Context, userID, productID string, t recommend.InteractionType, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := interactionKey{userID, productID, t}
	if in, ok := m.interactions[k]; ok {
		in.Count++
		in.Score = t.Weight() * float64(in.Count)
		in.LastUpdated = at
		return nil
	}
	m.interactions[k] = &recommend.Interaction{
		UserID: userID, ProductID: productID, Type: t,
		Count: 1, Score: t.Weight(), LastUpdated: at,
	}
	return nil
}

// Interaction returns a copy of one counter.
func (m *MemStore) Interaction(userID, productID string, t recommend.InteractionType) (recommend.Interaction, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.interactions[interactionKey{userID, productID, t}]
	if !ok {
		return recommend.Interaction{}, false
	}
	return *in, true
}

// SetInteraction stores a counter verbatim.
func (m *MemStore) SetInteraction(in recommend.Interaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := in
	m.interactions[interactionKey{in.UserID, in.ProductID, in.Type}] = &cp
}

// TopUserProducts ranks the user's products by summed score.
func (m *MemStore) TopUserProducts(_ context.Context, userID string, k int) ([]string, error) {
	m.mu.Lock()
	sums := make(map[string]float64)
	for key, in := range m.interactions {
		if key.user == userID {
			sums[key.product] += in.Score
		}
	}
	m.mu.Unlock()

	ranked := rank(sums)
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	ids := make([]string, len(ranked))
	for i, s := range ranked {
		ids[i] = s.ProductID
	}
	return ids, nil
}

// UserProductIDs lists every product the user touched.
func (m *MemStore) UserProductIDs(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]struct{})
	for key := range m.interactions {
		if key.user == userID {
			seen[key.product] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// TrendingProducts ranks catalog products by recent summed score.
func (m *MemStore) TrendingProducts(_ context.Context, since time.Time, page recommend.PageRequest) (recommend.Page[recommend.ScoredID], error) {
	m.mu.Lock()
	sums := make(map[string]float64)
	for key, in := range m.interactions {
		if _, ok := m.products[key.product]; !ok {
			continue
		}
		if in.LastUpdated.Before(since) {
			continue
		}
		sums[key.product] += in.Score
	}
	m.mu.Unlock()
	return recommend.Paginate(rank(sums), page), nil
}

// ScanUserProducts groups products by user for one interaction type.
func (m *MemStore) ScanUserProducts(_ context.Context, t recommend.InteractionType, fn func(string, []string) error) error {
	m.mu.Lock()
	byUser := make(map[string][]string)
	for key := range m.interactions {
		if key.typ == t {
			byUser[key.user] = append(byUser[key.user], key.product)
		}
	}
	m.mu.Unlock()

	users := make([]string, 0, len(byUser))
	for u := range byUser {
		users = append(users, u)
	}
	sort.Strings(users)
	for _, u := range users {
		ids := byUser[u]
		sort.Strings(ids)
		if err := fn(u, ids); err != nil {
			return err
		}
	}
	return nil
}

// UpsertEdgePair writes both directions with the blending rule.
func (m *MemStore) UpsertEdgePair(_ context.Context, e recommend.Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailEdge != nil {
		if err := m.FailEdge(e); err != nil {
			return err
		}
	}
	for _, d := range []recommend.Edge{e, e.Reverse()} {
		k := edgeKey{d.SourceID, d.TargetID, d.Type}
		if cur, ok := m.edges[k]; ok {
			cur.Strength = algorithms.BlendStrength(cur.Strength, d.Strength)
			cur.OccurrenceCount = d.OccurrenceCount
			continue
		}
		cp := d
		m.edges[k] = &cp
	}
	m.EdgeWrites++
	return nil
}

// Edge returns one directed edge.
func (m *MemStore) Edge(source, target string, t recommend.RelationshipType) (recommend.Edge, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.edges[edgeKey{source, target, t}]
	if !ok {
		return recommend.Edge{}, false
	}
	return *e, true
}

// SetEdge stores a directed edge verbatim, without its reverse.
func (m *MemStore) SetEdge(e recommend.Edge) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := e
	m.edges[edgeKey{e.SourceID, e.TargetID, e.Type}] = &cp
}

// Edges returns all edges of type t ordered by source then target.
func (m *MemStore) Edges(t recommend.RelationshipType) []recommend.Edge {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]recommend.Edge, 0)
	for k, e := range m.edges {
		if k.typ == t {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SourceID != out[j].SourceID {
			return out[i].SourceID < out[j].SourceID
		}
		return out[i].TargetID < out[j].TargetID
	})
	return out
}

// Neighbors returns outgoing edges by strength desc, target asc.
func (m *MemStore) Neighbors(_ context.Context, productID string, t recommend.RelationshipType) ([]recommend.Edge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.neighborsLocked(productID, t, false), nil
}

// NeighborsPage paginates Neighbors over targets present in the catalog.
func (m *MemStore) NeighborsPage(_ context.Context, productID string, t recommend.RelationshipType, page recommend.PageRequest) (recommend.Page[recommend.Edge], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return recommend.Paginate(m.neighborsLocked(productID, t, true), page), nil
}

// ScanEdges visits every edge of type t.
func (m *MemStore) ScanEdges(_ context.Context, t recommend.RelationshipType, fn func(recommend.Edge) error) error {
	for _, e := range m.Edges(t) {
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemStore) neighborsLocked(productID string, t recommend.RelationshipType, inCatalog bool) []recommend.Edge {
	out := make([]recommend.Edge, 0)
	for k, e := range m.edges {
		if k.source != productID || k.typ != t {
			continue
		}
		if inCatalog {
			if _, ok := m.products[k.target]; !ok {
				continue
			}
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Strength != out[j].Strength {
			return out[i].Strength > out[j].Strength
		}
		return out[i].TargetID < out[j].TargetID
	})
	return out
}

func rank(sums map[string]float64) []recommend.ScoredID {
	out := make([]recommend.ScoredID, 0, len(sums))
	for id, s := range sums {
		out = append(out, recommend.ScoredID{ProductID: id, Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out
}
