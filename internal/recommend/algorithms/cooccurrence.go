// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package algorithms

import (
	"math"
	"sort"
)

// Co-occurrence normalizers: strength reaches 1 at this many shared users.
const (
	PurchaseNormalizer = 10
	ViewNormalizer     = 20
)

// PairCounter counts, for every unordered product pair, how many distinct
// baskets (one per user) contained both products.
//
// The counter keeps only pairs; memory grows with the number of distinct
// co-occurring pairs, not with the number of users.
type PairCounter struct {
	counts  map[Pair]int64
	baskets int
}

// NewPairCounter creates an empty counter.
func NewPairCounter() *PairCounter {
	return &PairCounter{counts: make(map[Pair]int64)}
}

// Add counts every unordered pair of one user's basket. Duplicate and empty
// ids are ignored; baskets with fewer than two distinct products add nothing.
func (c *PairCounter) Add(productIDs []string) {
	items := dedupe(productIDs)
	if len(items) < 2 {
		return
	}
	c.baskets++

	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			itemA, itemB := items[i], items[j]

			// Ensure consistent ordering for symmetric pairs
			if itemA > itemB {
				itemA, itemB = itemB, itemA
			}
			c.counts[Pair{A: itemA, B: itemB}]++
		}
	}
}

// Count returns the count of the unordered pair (a, b).
func (c *PairCounter) Count(a, b string) int64 {
	return c.counts[NewPair(a, b)]
}

// Len returns the number of distinct pairs.
func (c *PairCounter) Len() int {
	return len(c.counts)
}

// Baskets returns how many baskets contributed at least one pair.
func (c *PairCounter) Baskets() int {
	return c.baskets
}

// Pairs returns all counted pairs ordered by A then B.
func (c *PairCounter) Pairs() []CountedPair {
	out := make([]CountedPair, 0, len(c.counts))
	for p, n := range c.counts {
		out = append(out, CountedPair{Pair: p, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

// CoOccurrenceStrength maps a shared-user count to [0, 1] as min(1, count/normalizer).
// A non-positive normalizer or count yields 0.
func CoOccurrenceStrength(count int64, normalizer float64) float64 {
	if count <= 0 || normalizer <= 0 {
		return 0
	}
	return math.Min(1, float64(count)/normalizer)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
