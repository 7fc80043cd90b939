// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package graph_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/affinity/internal/recommend"
	"github.com/tomtom215/affinity/internal/recommend/graph"
	"github.com/tomtom215/affinity/internal/recommend/recommendtest"
)

func price(v float64) *float64 { return &v }

func newBuilder(t *testing.T, store *recommendtest.MemStore) *graph.Builder {
	t.Helper()
	return newBuilderWithCatalog(t, store, store)
}

func newBuilderWithCatalog(t *testing.T, catalog recommend.Catalog, store *recommendtest.MemStore) *graph.Builder {
	t.Helper()
	b, err := graph.NewBuilder(graph.DefaultConfig(), catalog, store, store, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}
	return b
}

func purchase(store *recommendtest.MemStore, user string, products ...string) {
	for _, p := range products {
		store.SetInteraction(recommend.Interaction{
			UserID: user, ProductID: p, Type: recommend.InteractionPurchase,
			Count: 1, Score: 5, LastUpdated: time.Now(),
		})
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestBuilderSimilarityThreshold(t *testing.T) {
	store := recommendtest.NewMemStore()
	store.PutProducts(
		recommend.Product{ID: "A", Category: "Rau", Price: price(10)},
		recommend.Product{ID: "B", Category: "Rau", Price: price(12)},
		recommend.Product{ID: "C", Category: "Thiết bị", Price: price(500)},
	)

	stats, err := newBuilder(t, store).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	ab, ok := store.Edge("A", "B", recommend.RelationshipSimilar)
	if !ok {
		t.Fatal("expected SIMILAR edge A->B")
	}
	ba, ok := store.Edge("B", "A", recommend.RelationshipSimilar)
	if !ok {
		t.Fatal("expected SIMILAR edge B->A")
	}
	if ab.Strength <= 0.5 || ab.Strength > 1 || ab.Strength != ba.Strength {
		t.Errorf("A<->B strengths = %v / %v, want equal and in (0.5, 1]", ab.Strength, ba.Strength)
	}
	for _, other := range []string{"A", "B"} {
		if _, ok := store.Edge(other, "C", recommend.RelationshipSimilar); ok {
			t.Errorf("unexpected SIMILAR edge %s->C", other)
		}
	}
	if stats.SimilarPairs != 1 || stats.EdgesWritten != 2 || stats.Products != 3 {
		t.Errorf("stats = %+v, want 1 similar pair, 2 edges, 3 products", stats)
	}
}

func TestBuilderKeepsEveryQualifyingPairInLargeCategory(t *testing.T) {
	const n = 52
	store := recommendtest.NewMemStore()
	for i := 0; i < n; i++ {
		store.PutProducts(recommend.Product{ID: fmt.Sprintf("p%02d", i), Category: "Rau", Price: price(10)})
	}

	stats, err := newBuilder(t, store).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	const wantPairs = n * (n - 1) / 2
	if stats.SimilarPairs != wantPairs {
		t.Errorf("SimilarPairs = %d, want %d", stats.SimilarPairs, wantPairs)
	}
	if got := len(store.Edges(recommend.RelationshipSimilar)); got != 2*wantPairs {
		t.Errorf("SIMILAR edges = %d, want %d", got, 2*wantPairs)
	}
	for _, dir := range [][2]string{{"p50", "p51"}, {"p51", "p50"}} {
		if _, ok := store.Edge(dir[0], dir[1], recommend.RelationshipSimilar); !ok {
			t.Errorf("missing SIMILAR edge %s->%s", dir[0], dir[1])
		}
	}
}

func TestBuilderCoOccurrenceSymmetric(t *testing.T) {
	store := recommendtest.NewMemStore()
	store.PutProducts(recommend.Product{ID: "P1"}, recommend.Product{ID: "P2"}, recommend.Product{ID: "P3"})

	const k = 4
	for i := 0; i < k; i++ {
		purchase(store, fmt.Sprintf("u%d", i), "P1", "P2")
	}
	purchase(store, "solo", "P3")

	if _, err := newBuilder(t, store).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, dir := range [][2]string{{"P1", "P2"}, {"P2", "P1"}} {
		e, ok := store.Edge(dir[0], dir[1], recommend.RelationshipBoughtTogether)
		if !ok {
			t.Fatalf("missing BOUGHT_TOGETHER %s->%s", dir[0], dir[1])
		}
		if e.OccurrenceCount != k {
			t.Errorf("%s->%s OccurrenceCount = %d, want %d", dir[0], dir[1], e.OccurrenceCount, k)
		}
		if !approx(e.Strength, 0.4) {
			t.Errorf("%s->%s Strength = %v, want 0.4", dir[0], dir[1], e.Strength)
		}
	}
	if got := store.Edges(recommend.RelationshipBoughtTogether); len(got) != 2 {
		t.Errorf("BOUGHT_TOGETHER edges = %d, want 2", len(got))
	}
}

func TestBuilderCoOccurrenceSaturates(t *testing.T) {
	store := recommendtest.NewMemStore()
	for i := 0; i < 25; i++ {
		user := fmt.Sprintf("u%d", i)
		purchase(store, user, "P1", "P2")
		store.SetInteraction(recommend.Interaction{
			UserID: user, ProductID: "P1", Type: recommend.InteractionView, Count: 1, Score: 1, LastUpdated: time.Now(),
		})
		store.SetInteraction(recommend.Interaction{
			UserID: user, ProductID: "P2", Type: recommend.InteractionView, Count: 1, Score: 1, LastUpdated: time.Now(),
		})
	}

	if _, err := newBuilder(t, store).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, rt := range []recommend.RelationshipType{recommend.RelationshipBoughtTogether, recommend.RelationshipViewedTogether} {
		e, ok := store.Edge("P1", "P2", rt)
		if !ok {
			t.Fatalf("missing %s edge", rt)
		}
		if e.Strength != 1 {
			t.Errorf("%s Strength = %v, want 1", rt, e.Strength)
		}
	}
}

func TestBuilderBlendsOnRerun(t *testing.T) {
	store := recommendtest.NewMemStore()
	for i := 0; i < 3; i++ {
		purchase(store, fmt.Sprintf("u%d", i), "P1", "P2")
	}
	b := newBuilder(t, store)

	if _, err := b.Run(context.Background()); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	first, _ := store.Edge("P1", "P2", recommend.RelationshipBoughtTogether)
	if !approx(first.Strength, 0.3) {
		t.Fatalf("first Strength = %v, want 0.3", first.Strength)
	}

	purchase(store, "u3", "P1", "P2")
	purchase(store, "u4", "P1", "P2")
	if _, err := b.Run(context.Background()); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	// 0.7*0.3 + 0.3*0.5
	for _, dir := range [][2]string{{"P1", "P2"}, {"P2", "P1"}} {
		e, _ := store.Edge(dir[0], dir[1], recommend.RelationshipBoughtTogether)
		if !approx(e.Strength, 0.36) {
			t.Errorf("%s->%s Strength = %v, want 0.36", dir[0], dir[1], e.Strength)
		}
		if e.OccurrenceCount != 5 {
			t.Errorf("%s->%s OccurrenceCount = %d, want 5", dir[0], dir[1], e.OccurrenceCount)
		}
	}
}

func TestBuilderIsolatesPairErrors(t *testing.T) {
	store := recommendtest.NewMemStore()
	purchase(store, "u1", "P1", "P2", "BAD")
	store.FailEdge = func(e recommend.Edge) error {
		if e.SourceID == "BAD" || e.TargetID == "BAD" {
			return errors.New("write rejected")
		}
		return nil
	}

	stats, err := newBuilder(t, store).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v, want nil when only pairs fail", err)
	}
	if stats.Errors != 2 {
		t.Errorf("stats.Errors = %d, want 2", stats.Errors)
	}
	if _, ok := store.Edge("P1", "P2", recommend.RelationshipBoughtTogether); !ok {
		t.Error("healthy pair P1-P2 was not written")
	}
	if got := store.Edges(recommend.RelationshipBoughtTogether); len(got) != 2 {
		t.Errorf("BOUGHT_TOGETHER edges = %d, want 2", len(got))
	}
}

func TestBuilderPassesAreIndependent(t *testing.T) {
	store := recommendtest.NewMemStore()
	purchase(store, "u1", "P1", "P2")
	store.FailCatalog = errors.New("catalog down")

	b := newBuilder(t, store)
	hookRan := false
	b.OnComplete(func(context.Context, graph.BuildStats) error {
		hookRan = true
		return nil
	})

	_, err := b.Run(context.Background())
	if err == nil {
		t.Fatal("Run() should report the failed similarity pass")
	}
	if _, ok := store.Edge("P1", "P2", recommend.RelationshipBoughtTogether); !ok {
		t.Error("co-occurrence pass should run despite the similarity failure")
	}
	if hookRan {
		t.Error("hooks must not run after a failed build")
	}
	if b.Running() {
		t.Error("Running() = true after Run returned")
	}
}

func TestBuilderRunsHooksOnSuccess(t *testing.T) {
	store := recommendtest.NewMemStore()
	purchase(store, "u1", "P1", "P2")
	b := newBuilder(t, store)

	var order []string
	b.OnComplete(func(_ context.Context, s graph.BuildStats) error {
		order = append(order, "first")
		if s.BoughtTogetherPairs != 1 {
			t.Errorf("hook stats BoughtTogetherPairs = %d, want 1", s.BoughtTogetherPairs)
		}
		return errors.New("ignored")
	})
	b.OnComplete(func(context.Context, graph.BuildStats) error {
		order = append(order, "second")
		return nil
	})

	if _, err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v, hook errors must not fail the build", err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("hook order = %v, want [first second]", order)
	}
	if last, ok := b.LastStats(); !ok || last.EdgesWritten != 2 {
		t.Errorf("LastStats() = %+v, %v", last, ok)
	}
}

func TestBuilderCancelled(t *testing.T) {
	store := recommendtest.NewMemStore()
	store.PutProducts(
		recommend.Product{ID: "A", Category: "x", Price: price(1)},
		recommend.Product{ID: "B", Category: "x", Price: price(1)},
	)
	purchase(store, "u1", "A", "B")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newBuilder(t, store).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

// blockingCatalog holds the similarity pass open until release is closed.
type blockingCatalog struct {
	*recommendtest.MemStore
	entered chan struct{}
	release chan struct{}
}

func (c *blockingCatalog) AllProducts(ctx context.Context) ([]recommend.Product, error) {
	close(c.entered)
	<-c.release
	return c.MemStore.AllProducts(ctx)
}

func TestBuilderRejectsConcurrentRun(t *testing.T) {
	store := recommendtest.NewMemStore()
	catalog := &blockingCatalog{
		MemStore: store,
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	b := newBuilderWithCatalog(t, catalog, store)

	done := make(chan error, 1)
	go func() {
		_, err := b.Run(context.Background())
		done <- err
	}()
	<-catalog.entered

	if !b.Running() {
		t.Error("Running() = false during a build")
	}
	if _, err := b.Run(context.Background()); !errors.Is(err, recommend.ErrBuildInProgress) {
		t.Errorf("concurrent Run() error = %v, want ErrBuildInProgress", err)
	}

	close(catalog.release)
	if err := <-done; err != nil {
		t.Errorf("first Run() error = %v", err)
	}
	if b.Running() {
		t.Error("Running() = true after build finished")
	}
}

func TestNewBuilderValidation(t *testing.T) {
	store := recommendtest.NewMemStore()
	cfg := graph.DefaultConfig()
	cfg.PurchaseNormalizer = 0
	if _, err := graph.NewBuilder(cfg, store, store, store, zerolog.Nop()); err == nil {
		t.Error("NewBuilder() with zero normalizer should fail")
	}
	if _, err := graph.NewBuilder(graph.DefaultConfig(), nil, store, store, zerolog.Nop()); err == nil {
		t.Error("NewBuilder() with nil catalog should fail")
	}
}
