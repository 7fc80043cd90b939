// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package algorithms

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/tomtom215/affinity/internal/recommend"
)

func price(v float64) *float64 { return &v }

func TestPriceProximity(t *testing.T) {
	tests := []struct {
		name   string
		p1, p2 *float64
		want   float64
	}{
		{name: "equal prices", p1: price(10), p2: price(10), want: 1},
		{name: "10 vs 12", p1: price(10), p2: price(12), want: 1 - 2.0/12},
		{name: "order independent", p1: price(12), p2: price(10), want: 1 - 2.0/12},
		{name: "nil first", p1: nil, p2: price(10), want: 0},
		{name: "nil second", p1: price(10), p2: nil, want: 0},
		{name: "both zero", p1: price(0), p2: price(0), want: 0},
		{name: "one zero", p1: price(0), p2: price(5), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PriceProximity(tt.p1, tt.p2)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("PriceProximity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSimilarityScore(t *testing.T) {
	cfg := DefaultSimilarityConfig()

	tests := []struct {
		name string
		a, b recommend.Product
		want float64
	}{
		{
			name: "same category close price",
			a:    recommend.Product{ID: "A", Category: "Rau", Price: price(10)},
			b:    recommend.Product{ID: "B", Category: "Rau", Price: price(12)},
			want: (0.6 + 0.3*(1-2.0/12)) / 0.9,
		},
		{
			name: "different category far price",
			a:    recommend.Product{ID: "A", Category: "Rau", Price: price(10)},
			b:    recommend.Product{ID: "C", Category: "Thiết bị", Price: price(500)},
			want: (0.3 * (1 - 490.0/500)) / 0.9,
		},
		{
			name: "all factors match",
			a:    recommend.Product{ID: "A", Category: "x", Price: price(5), OwnerID: "o"},
			b:    recommend.Product{ID: "B", Category: "X ", Price: price(5), OwnerID: "o"},
			want: 1,
		},
		{
			name: "only owner contributes",
			a:    recommend.Product{ID: "A", OwnerID: "o1"},
			b:    recommend.Product{ID: "B", OwnerID: "o1"},
			want: 1,
		},
		{
			name: "no contributing factor",
			a:    recommend.Product{ID: "A"},
			b:    recommend.Product{ID: "B", Category: "x"},
			want: 0,
		},
		{
			name: "zero prices do not contribute",
			a:    recommend.Product{ID: "A", Category: "x", Price: price(0)},
			b:    recommend.Product{ID: "B", Category: "x", Price: price(0)},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SimilarityScore(&tt.a, &tt.b, cfg)
			if err != nil {
				t.Fatalf("SimilarityScore() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("SimilarityScore() = %v, want %v", got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("SimilarityScore() = %v, want in [0,1]", got)
			}

			rev, err := SimilarityScore(&tt.b, &tt.a, cfg)
			if err != nil {
				t.Fatalf("SimilarityScore() reversed error = %v", err)
			}
			if rev != got {
				t.Errorf("SimilarityScore not symmetric: %v vs %v", got, rev)
			}
		})
	}
}

func TestSimilarityScoreInvalidPrice(t *testing.T) {
	a := recommend.Product{ID: "A", Price: price(math.NaN())}
	b := recommend.Product{ID: "B", Price: price(10)}
	if _, err := SimilarityScore(&a, &b, DefaultSimilarityConfig()); err == nil {
		t.Error("SimilarityScore() with NaN price should return error")
	}

	neg := recommend.Product{ID: "N", Price: price(-1)}
	if _, err := SimilarityScore(&b, &neg, DefaultSimilarityConfig()); err == nil {
		t.Error("SimilarityScore() with negative price should return error")
	}
}

func TestFindSimilarPairsThresholdScenario(t *testing.T) {
	products := []recommend.Product{
		{ID: "A", Category: "Rau", Price: price(10)},
		{ID: "B", Category: "Rau", Price: price(12)},
		{ID: "C", Category: "Thiết bị", Price: price(500)},
	}

	res, err := FindSimilarPairs(context.Background(), products, DefaultSimilarityConfig(), nil)
	if err != nil {
		t.Fatalf("FindSimilarPairs() error = %v", err)
	}
	if len(res.Pairs) != 1 {
		t.Fatalf("len(Pairs) = %d, want 1: %+v", len(res.Pairs), res.Pairs)
	}
	if res.Pairs[0].Pair != (Pair{A: "A", B: "B"}) {
		t.Errorf("Pairs[0] = %+v, want A-B", res.Pairs[0].Pair)
	}
	if res.Pairs[0].Score <= 0.5 {
		t.Errorf("A-B score = %v, want > 0.5", res.Pairs[0].Score)
	}
	// A and C are in different buckets and never compared.
	if res.Compared != 1 {
		t.Errorf("Compared = %d, want 1", res.Compared)
	}
}

func TestFindSimilarPairsUncategorized(t *testing.T) {
	products := []recommend.Product{
		{ID: "A", Category: "food", Price: price(10), OwnerID: "o"},
		{ID: "U1", Price: price(10), OwnerID: "o"},
		{ID: "U2", Price: price(11)},
		{ID: "B", Category: "tools", Price: price(100)},
	}

	res, err := FindSimilarPairs(context.Background(), products, DefaultSimilarityConfig(), nil)
	if err != nil {
		t.Fatalf("FindSimilarPairs() error = %v", err)
	}
	// U1 is compared with A, U2, B; U2 with A and B. A-B are in different buckets.
	if res.Compared != 5 {
		t.Errorf("Compared = %d, want 5", res.Compared)
	}

	found := make(map[Pair]float64)
	for _, p := range res.Pairs {
		found[p.Pair] = p.Score
	}
	if _, ok := found[NewPair("A", "U1")]; !ok {
		t.Error("expected A-U1 pair (same price and owner)")
	}
	if _, ok := found[NewPair("U1", "U2")]; !ok {
		t.Error("expected U1-U2 pair (close prices)")
	}
	if _, ok := found[NewPair("B", "U1")]; ok {
		t.Error("did not expect B-U1 pair (price 10 vs 100)")
	}
}

func TestFindSimilarPairsIsolatesErrors(t *testing.T) {
	products := []recommend.Product{
		{ID: "A", Category: "c", Price: price(10)},
		{ID: "B", Category: "c", Price: price(11)},
		{ID: "BAD", Category: "c", Price: price(math.Inf(1))},
	}

	var failed []Pair
	res, err := FindSimilarPairs(context.Background(), products, DefaultSimilarityConfig(), func(p Pair, _ error) {
		failed = append(failed, p)
	})
	if err != nil {
		t.Fatalf("FindSimilarPairs() error = %v", err)
	}
	if res.Errors != 2 || len(failed) != 2 {
		t.Errorf("Errors = %d, callbacks = %d, want 2 and 2", res.Errors, len(failed))
	}
	if len(res.Pairs) != 1 || res.Pairs[0].Pair != NewPair("A", "B") {
		t.Errorf("Pairs = %+v, want only A-B", res.Pairs)
	}
}

func TestFindSimilarPairsCancelled(t *testing.T) {
	products := []recommend.Product{
		{ID: "A", Category: "c"},
		{ID: "B", Category: "c"},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := FindSimilarPairs(ctx, products, DefaultSimilarityConfig(), nil); err == nil {
		t.Error("FindSimilarPairs() with cancelled context should return error")
	}
}

func TestFindSimilarPairsMaxPerProduct(t *testing.T) {
	// Hub H has identical attributes to every spoke; spokes also match each other.
	products := []recommend.Product{{ID: "H", Category: "c", Price: price(10)}}
	for i := 0; i < 5; i++ {
		products = append(products, recommend.Product{
			ID: fmt.Sprintf("S%d", i), Category: "c", Price: price(10 + float64(i)),
		})
	}

	cfg := DefaultSimilarityConfig()
	cfg.MaxPerProduct = 2

	res, err := FindSimilarPairs(context.Background(), products, cfg, nil)
	if err != nil {
		t.Fatalf("FindSimilarPairs() error = %v", err)
	}
	if res.Qualified != 15 {
		t.Errorf("Qualified = %d, want 15", res.Qualified)
	}
	if len(res.Pairs) >= res.Qualified {
		t.Errorf("len(Pairs) = %d, want fewer than %d after cap", len(res.Pairs), res.Qualified)
	}

	degree := make(map[string]int)
	for _, p := range res.Pairs {
		degree[p.A]++
		degree[p.B]++
	}
	for id, d := range degree {
		if d < 1 {
			t.Errorf("product %s lost all edges", id)
		}
	}
}

func TestSimilarityConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SimilarityConfig)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*SimilarityConfig) {}},
		{name: "negative weight", mutate: func(c *SimilarityConfig) { c.PriceWeight = -1 }, wantErr: true},
		{name: "all zero weights", mutate: func(c *SimilarityConfig) {
			c.CategoryWeight, c.PriceWeight, c.OwnerWeight = 0, 0, 0
		}, wantErr: true},
		{name: "threshold one", mutate: func(c *SimilarityConfig) { c.Threshold = 1 }, wantErr: true},
		{name: "negative cap", mutate: func(c *SimilarityConfig) { c.MaxPerProduct = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSimilarityConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
