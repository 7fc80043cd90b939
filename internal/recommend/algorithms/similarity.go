// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package algorithms

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/tomtom215/affinity/internal/recommend"
)

// SimilarityConfig contains configuration for content similarity.
type SimilarityConfig struct {
	CategoryWeight float64 `json:"category_weight"`
	PriceWeight    float64 `json:"price_weight"`
	OwnerWeight    float64 `json:"owner_weight"`

	// Threshold is the exclusive lower bound for creating a SIMILAR edge.
	Threshold float64 `json:"threshold"`

	// MaxPerProduct keeps only each product's strongest matches. A pair
	// survives when it is in the top MaxPerProduct of either endpoint.
	// Zero, the default, keeps every pair above Threshold.
	MaxPerProduct int `json:"max_per_product"`
}

// DefaultSimilarityConfig returns the production weights.
func DefaultSimilarityConfig() SimilarityConfig {
	return SimilarityConfig{
		CategoryWeight: 0.6,
		PriceWeight:    0.3,
		OwnerWeight:    0.1,
		Threshold:      0.5,
	}
}

// Validate checks the configuration for invalid values.
func (c SimilarityConfig) Validate() error {
	if c.CategoryWeight < 0 || c.PriceWeight < 0 || c.OwnerWeight < 0 {
		return fmt.Errorf("similarity weights must be non-negative")
	}
	if c.CategoryWeight+c.PriceWeight+c.OwnerWeight == 0 {
		return fmt.Errorf("at least one similarity weight must be positive")
	}
	if c.Threshold < 0 || c.Threshold >= 1 {
		return fmt.Errorf("similarity threshold must be in [0, 1), got %v", c.Threshold)
	}
	if c.MaxPerProduct < 0 {
		return fmt.Errorf("max_per_product must be non-negative, got %d", c.MaxPerProduct)
	}
	return nil
}

// crossCategoryBound is the best score a pair with two different, non-empty
// categories can reach.
func (c SimilarityConfig) crossCategoryBound() float64 {
	total := c.CategoryWeight + c.PriceWeight + c.OwnerWeight
	return (c.PriceWeight + c.OwnerWeight) / total
}

func normalizeCategory(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// PriceProximity returns 1 - |p1-p2|/max(p1,p2). It is 0 when either price
// is missing or the larger price is not positive.
func PriceProximity(p1, p2 *float64) float64 {
	if p1 == nil || p2 == nil {
		return 0
	}
	hi := math.Max(*p1, *p2)
	if hi <= 0 {
		return 0
	}
	return 1 - math.Abs(*p1-*p2)/hi
}

func checkPrice(p *float64) error {
	if p == nil {
		return nil
	}
	if math.IsNaN(*p) || math.IsInf(*p, 0) || *p < 0 {
		return fmt.Errorf("invalid price %v", *p)
	}
	return nil
}

// SimilarityScore computes the weighted content similarity of a and b:
//
//	sum(w_i * f_i) / sum(w_i)
//
// over the contributing factors only. Category contributes when both products
// have one, price when both prices are present and the larger is positive,
// owner when both owner ids are set. With no contributing factor the score
// is 0. The score is symmetric and lies in [0, 1].
func SimilarityScore(a, b *recommend.Product, cfg SimilarityConfig) (float64, error) {
	if err := checkPrice(a.Price); err != nil {
		return 0, fmt.Errorf("product %s: %w", a.ID, err)
	}
	if err := checkPrice(b.Price); err != nil {
		return 0, fmt.Errorf("product %s: %w", b.ID, err)
	}

	var num, den float64

	ca, cb := normalizeCategory(a.Category), normalizeCategory(b.Category)
	if ca != "" && cb != "" {
		den += cfg.CategoryWeight
		if ca == cb {
			num += cfg.CategoryWeight
		}
	}

	if a.Price != nil && b.Price != nil && math.Max(*a.Price, *b.Price) > 0 {
		den += cfg.PriceWeight
		num += cfg.PriceWeight * PriceProximity(a.Price, b.Price)
	}

	if a.OwnerID != "" && b.OwnerID != "" {
		den += cfg.OwnerWeight
		if a.OwnerID == b.OwnerID {
			num += cfg.OwnerWeight
		}
	}

	if den == 0 {
		return 0, nil
	}
	return num / den, nil
}

// CategoryIndex groups catalog positions by normalized category so candidate
// pairs can be generated without a full pairwise scan.
type CategoryIndex struct {
	products      []recommend.Product
	buckets       map[string][]int
	categories    []string
	uncategorized []int
}

// NewCategoryIndex builds the index. Products are referenced, not copied.
func NewCategoryIndex(products []recommend.Product) *CategoryIndex {
	idx := &CategoryIndex{
		products: products,
		buckets:  make(map[string][]int),
	}
	for i := range products {
		c := normalizeCategory(products[i].Category)
		if c == "" {
			idx.uncategorized = append(idx.uncategorized, i)
			continue
		}
		if _, ok := idx.buckets[c]; !ok {
			idx.categories = append(idx.categories, c)
		}
		idx.buckets[c] = append(idx.buckets[c], i)
	}
	sort.Strings(idx.categories)
	return idx
}

// BucketCount returns the number of non-empty categories.
func (idx *CategoryIndex) BucketCount() int {
	return len(idx.categories)
}

// ForEachCandidate calls fn for every pair that could pass a threshold of at
// least the cross-category bound: pairs within the same category, and every
// pair involving an uncategorized product. Each unordered pair is visited once.
// Iteration stops at the first error from fn or when ctx is cancelled.
func (idx *CategoryIndex) ForEachCandidate(ctx context.Context, fn func(a, b *recommend.Product) error) error {
	visit := func(i, j int) error {
		return fn(&idx.products[i], &idx.products[j])
	}

	for _, c := range idx.categories {
		members := idx.buckets[c]
		for x := 0; x < len(members); x++ {
			if ContextCancelled(ctx) {
				return ctx.Err()
			}
			for y := x + 1; y < len(members); y++ {
				if err := visit(members[x], members[y]); err != nil {
					return err
				}
			}
		}
	}

	// Uncategorized products are compared against everything else once.
	isUncat := make(map[int]struct{}, len(idx.uncategorized))
	for _, u := range idx.uncategorized {
		isUncat[u] = struct{}{}
	}
	for _, u := range idx.uncategorized {
		if ContextCancelled(ctx) {
			return ctx.Err()
		}
		for j := range idx.products {
			if j == u {
				continue
			}
			if _, other := isUncat[j]; other && j < u {
				continue
			}
			if err := visit(u, j); err != nil {
				return err
			}
		}
	}
	return nil
}

// SimilarityResult summarizes a similarity pass.
type SimilarityResult struct {
	Pairs     []ScoredPair
	Compared  int
	Qualified int
	Errors    int
}

// FindSimilarPairs scores candidate pairs from the category index and
// returns those above the threshold, ordered by A then B. Pairs that fail to
// score are passed to onError and skipped. When cfg.MaxPerProduct > 0 the
// result is reduced to pairs in the top-N of either endpoint.
func FindSimilarPairs(ctx context.Context, products []recommend.Product, cfg SimilarityConfig, onError func(Pair, error)) (SimilarityResult, error) {
	var res SimilarityResult
	if err := cfg.Validate(); err != nil {
		return res, err
	}

	idx := NewCategoryIndex(products)
	if cfg.Threshold < cfg.crossCategoryBound() {
		// Cross-category pairs could qualify; the bucket index is not sufficient.
		idx = &CategoryIndex{products: products, buckets: map[string][]int{}}
		for i := range products {
			idx.uncategorized = append(idx.uncategorized, i)
		}
	}

	err := idx.ForEachCandidate(ctx, func(a, b *recommend.Product) error {
		res.Compared++
		if a.ID == b.ID {
			return nil
		}
		score, err := SimilarityScore(a, b, cfg)
		if err != nil {
			res.Errors++
			if onError != nil {
				onError(NewPair(a.ID, b.ID), err)
			}
			return nil
		}
		if score > cfg.Threshold {
			res.Pairs = append(res.Pairs, ScoredPair{Pair: NewPair(a.ID, b.ID), Score: score})
		}
		return nil
	})
	if err != nil {
		return res, err
	}

	res.Qualified = len(res.Pairs)
	if cfg.MaxPerProduct > 0 {
		res.Pairs = capPerProduct(res.Pairs, cfg.MaxPerProduct)
	}
	sort.Slice(res.Pairs, func(i, j int) bool {
		if res.Pairs[i].A != res.Pairs[j].A {
			return res.Pairs[i].A < res.Pairs[j].A
		}
		return res.Pairs[i].B < res.Pairs[j].B
	})
	return res, nil
}

// capPerProduct keeps a pair if it ranks within the top n of either endpoint
// (score desc, then the other endpoint's id asc).
func capPerProduct(pairs []ScoredPair, n int) []ScoredPair {
	byProduct := make(map[string][]int)
	for i, p := range pairs {
		byProduct[p.A] = append(byProduct[p.A], i)
		byProduct[p.B] = append(byProduct[p.B], i)
	}

	keep := make([]bool, len(pairs))
	for id, list := range byProduct {
		other := func(i int) string {
			if pairs[i].A == id {
				return pairs[i].B
			}
			return pairs[i].A
		}
		sort.Slice(list, func(x, y int) bool {
			px, py := pairs[list[x]], pairs[list[y]]
			if px.Score != py.Score {
				return px.Score > py.Score
			}
			return other(list[x]) < other(list[y])
		})
		for k := 0; k < len(list) && k < n; k++ {
			keep[list[k]] = true
		}
	}

	out := pairs[:0:0]
	for i, p := range pairs {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}
