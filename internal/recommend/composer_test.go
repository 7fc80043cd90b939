// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package recommend_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/affinity/internal/cache"
	"github.com/tomtom215/affinity/internal/recommend"
	"github.com/tomtom215/affinity/internal/recommend/recommendtest"
)

var fixedNow = time.Date(2026, time.December, 10, 12, 0, 0, 0, time.UTC)

func newComposer(t *testing.T, store *recommendtest.MemStore, c cache.Cacher) *recommend.Composer {
	t.Helper()
	recorder := recommend.NewRecorder(store, zerolog.Nop())
	composer, err := recommend.NewComposer(recommend.DefaultConfig(), recommend.ComposerDeps{
		Catalog:      store,
		Interactions: store,
		Graph:        store,
		Recorder:     recorder,
		Cache:        c,
		Now:          func() time.Time { return fixedNow },
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewComposer() error = %v", err)
	}
	return composer
}

func ids(recs []recommend.Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Product.ID
	}
	return out
}

func seedCatalog(store *recommendtest.MemStore) {
	store.PutProducts(
		recommend.Product{ID: "p1", PurchaseCount: 3},
		recommend.Product{ID: "p2", PurchaseCount: 10},
		recommend.Product{ID: "p3", PurchaseCount: 10},
		recommend.Product{ID: "p4", PurchaseCount: 1},
		recommend.Product{ID: "p5", PurchaseCount: 0},
	)
}

func symmetric(store *recommendtest.MemStore, a, b string, rt recommend.RelationshipType, s float64) {
	store.SetEdge(recommend.Edge{SourceID: a, TargetID: b, Type: rt, Strength: s})
	store.SetEdge(recommend.Edge{SourceID: b, TargetID: a, Type: rt, Strength: s})
}

func TestPersonalizedRecommendations(t *testing.T) {
	ctx := context.Background()
	store := recommendtest.NewMemStore()
	seedCatalog(store)

	// u1 bought p1 and viewed p2.
	store.SetInteraction(recommend.Interaction{UserID: "u1", ProductID: "p1", Type: recommend.InteractionPurchase, Count: 1, Score: 5, LastUpdated: fixedNow})
	store.SetInteraction(recommend.Interaction{UserID: "u1", ProductID: "p2", Type: recommend.InteractionView, Count: 1, Score: 1, LastUpdated: fixedNow})

	symmetric(store, "p1", "p3", recommend.RelationshipSimilar, 0.6)
	symmetric(store, "p1", "p4", recommend.RelationshipBoughtTogether, 0.3)
	symmetric(store, "p2", "p4", recommend.RelationshipSimilar, 0.4)
	// Already interacted, must be excluded.
	symmetric(store, "p1", "p2", recommend.RelationshipBoughtTogether, 0.9)
	// VIEWED_TOGETHER is not a personalized signal.
	symmetric(store, "p1", "p5", recommend.RelationshipViewedTogether, 1.0)
	// Unknown to the catalog, must be dropped.
	symmetric(store, "p1", "ghost", recommend.RelationshipSimilar, 1.0)

	composer := newComposer(t, store, nil)
	page, err := composer.PersonalizedRecommendations(ctx, "u1", recommend.PageRequest{PageSize: 10})
	if err != nil {
		t.Fatalf("PersonalizedRecommendations() error = %v", err)
	}

	// p4: 0.3 + 0.4 = 0.7, p3: 0.6
	want := []string{"p4", "p3"}
	if got := ids(page.Items); !reflect.DeepEqual(got, want) {
		t.Errorf("PersonalizedRecommendations() = %v, want %v", got, want)
	}
	if page.TotalCount != 2 {
		t.Errorf("TotalCount = %d, want 2", page.TotalCount)
	}
}

func TestPersonalizedTieBreakByProductID(t *testing.T) {
	ctx := context.Background()
	store := recommendtest.NewMemStore()
	seedCatalog(store)

	store.SetInteraction(recommend.Interaction{UserID: "u1", ProductID: "p1", Type: recommend.InteractionView, Count: 1, Score: 1, LastUpdated: fixedNow})
	symmetric(store, "p1", "p5", recommend.RelationshipSimilar, 0.8)
	symmetric(store, "p1", "p3", recommend.RelationshipSimilar, 0.8)
	symmetric(store, "p1", "p4", recommend.RelationshipSimilar, 0.8)

	composer := newComposer(t, store, nil)
	first, err := composer.PersonalizedRecommendations(ctx, "u1", recommend.PageRequest{PageNumber: 0, PageSize: 2})
	if err != nil {
		t.Fatalf("PersonalizedRecommendations() error = %v", err)
	}
	second, err := composer.PersonalizedRecommendations(ctx, "u1", recommend.PageRequest{PageNumber: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("PersonalizedRecommendations() error = %v", err)
	}

	if got := ids(first.Items); !reflect.DeepEqual(got, []string{"p3", "p4"}) {
		t.Errorf("page 0 = %v, want [p3 p4]", got)
	}
	if got := ids(second.Items); !reflect.DeepEqual(got, []string{"p5"}) {
		t.Errorf("page 1 = %v, want [p5]", got)
	}
	if first.TotalCount != 3 || second.TotalCount != 3 {
		t.Errorf("TotalCount = %d/%d, want 3", first.TotalCount, second.TotalCount)
	}
}

func TestPersonalizedFallbackEqualsTrending(t *testing.T) {
	ctx := context.Background()
	store := recommendtest.NewMemStore()
	seedCatalog(store)

	// Other users generate trending data.
	store.SetInteraction(recommend.Interaction{UserID: "u2", ProductID: "p4", Type: recommend.InteractionPurchase, Count: 2, Score: 10, LastUpdated: fixedNow})
	store.SetInteraction(recommend.Interaction{UserID: "u3", ProductID: "p1", Type: recommend.InteractionView, Count: 3, Score: 3, LastUpdated: fixedNow})

	composer := newComposer(t, store, nil)
	page := recommend.PageRequest{PageNumber: 0, PageSize: 10}

	personalized, err := composer.PersonalizedRecommendations(ctx, "new-user", page)
	if err != nil {
		t.Fatalf("PersonalizedRecommendations() error = %v", err)
	}
	trending, err := composer.TrendingProducts(ctx, page)
	if err != nil {
		t.Fatalf("TrendingProducts() error = %v", err)
	}

	if !reflect.DeepEqual(personalized, trending) {
		t.Errorf("personalized for new user = %+v, want trending %+v", personalized, trending)
	}
	if got := ids(trending.Items); !reflect.DeepEqual(got, []string{"p4", "p1"}) {
		t.Errorf("TrendingProducts() = %v, want [p4 p1]", got)
	}
}

func TestPersonalizedFallbackWhenNoGraphCandidates(t *testing.T) {
	ctx := context.Background()
	store := recommendtest.NewMemStore()
	seedCatalog(store)
	store.SetInteraction(recommend.Interaction{UserID: "u1", ProductID: "p1", Type: recommend.InteractionView, Count: 1, Score: 1, LastUpdated: fixedNow})

	composer := newComposer(t, store, nil)
	page, err := composer.PersonalizedRecommendations(ctx, "u1", recommend.PageRequest{})
	if err != nil {
		t.Fatalf("PersonalizedRecommendations() error = %v", err)
	}
	// Trending from u1's own view: p1 only.
	if got := ids(page.Items); !reflect.DeepEqual(got, []string{"p1"}) {
		t.Errorf("fallback = %v, want [p1]", got)
	}
}

func TestTrendingFallsBackToCatalogPopularity(t *testing.T) {
	ctx := context.Background()
	store := recommendtest.NewMemStore()
	seedCatalog(store)

	// Interaction outside the 7-day window does not count.
	store.SetInteraction(recommend.Interaction{UserID: "u1", ProductID: "p5", Type: recommend.InteractionPurchase, Count: 9, Score: 45, LastUpdated: fixedNow.AddDate(0, 0, -30)})

	composer := newComposer(t, store, nil)
	page, err := composer.TrendingProducts(ctx, recommend.PageRequest{PageSize: 3})
	if err != nil {
		t.Fatalf("TrendingProducts() error = %v", err)
	}

	want := []string{"p2", "p3", "p1"}
	if got := ids(page.Items); !reflect.DeepEqual(got, want) {
		t.Errorf("TrendingProducts() = %v, want %v", got, want)
	}
	if page.TotalCount != 5 {
		t.Errorf("TotalCount = %d, want 5", page.TotalCount)
	}
}

func TestSimilarProducts(t *testing.T) {
	ctx := context.Background()
	store := recommendtest.NewMemStore()
	seedCatalog(store)
	symmetric(store, "p1", "p2", recommend.RelationshipSimilar, 0.6)
	symmetric(store, "p1", "p3", recommend.RelationshipSimilar, 0.9)
	symmetric(store, "p1", "p4", recommend.RelationshipBoughtTogether, 1.0)

	composer := newComposer(t, store, nil)

	page, err := composer.SimilarProducts(ctx, "p1", recommend.PageRequest{})
	if err != nil {
		t.Fatalf("SimilarProducts() error = %v", err)
	}
	if got := ids(page.Items); !reflect.DeepEqual(got, []string{"p3", "p2"}) {
		t.Errorf("SimilarProducts(p1) = %v, want [p3 p2]", got)
	}
	if page.Items[0].Score != 0.9 {
		t.Errorf("Score = %v, want 0.9", page.Items[0].Score)
	}

	unknown, err := composer.SimilarProducts(ctx, "does-not-exist", recommend.PageRequest{})
	if err != nil {
		t.Fatalf("SimilarProducts(unknown) error = %v", err)
	}
	if unknown.TotalCount != 0 || len(unknown.Items) != 0 {
		t.Errorf("SimilarProducts(unknown) = %+v, want empty page", unknown)
	}
}

func TestFrequentlyBoughtTogether(t *testing.T) {
	ctx := context.Background()
	store := recommendtest.NewMemStore()
	seedCatalog(store)
	symmetric(store, "p1", "p2", recommend.RelationshipBoughtTogether, 0.2)
	symmetric(store, "p1", "p3", recommend.RelationshipBoughtTogether, 0.5)
	symmetric(store, "p1", "p4", recommend.RelationshipBoughtTogether, 0.5)

	composer := newComposer(t, store, nil)

	got, err := composer.FrequentlyBoughtTogether(ctx, "p1", 2)
	if err != nil {
		t.Fatalf("FrequentlyBoughtTogether() error = %v", err)
	}
	if !reflect.DeepEqual(ids(got), []string{"p3", "p4"}) {
		t.Errorf("FrequentlyBoughtTogether(p1, 2) = %v, want [p3 p4]", ids(got))
	}

	none, err := composer.FrequentlyBoughtTogether(ctx, "p5", 5)
	if err != nil {
		t.Fatalf("FrequentlyBoughtTogether(p5) error = %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("FrequentlyBoughtTogether(p5) = %v, want empty non-nil list", none)
	}
}

func TestSeasonalProducts(t *testing.T) {
	ctx := context.Background()
	store := recommendtest.NewMemStore()
	store.PutProducts(
		recommend.Product{ID: "heater", SeasonalMonths: recommend.MonthRange(time.November, time.February), PurchaseCount: 4},
		recommend.Product{ID: "scarf", SeasonalMonths: recommend.Winter.Months(), PurchaseCount: 9},
		recommend.Product{ID: "seeds", SeasonalMonths: recommend.MonthRange(time.January, time.April), PurchaseCount: 7},
		recommend.Product{ID: "fan", SeasonalMonths: recommend.Summer.Months(), PurchaseCount: 20},
		recommend.Product{ID: "salt", PurchaseCount: 100},
	)
	composer := newComposer(t, store, nil)

	now, err := composer.SeasonalProducts(ctx, recommend.PageRequest{})
	if err != nil {
		t.Fatalf("SeasonalProducts() error = %v", err)
	}
	if got := ids(now.Items); !reflect.DeepEqual(got, []string{"scarf", "heater"}) {
		t.Errorf("SeasonalProducts() in December = %v, want [scarf heater]", got)
	}

	upcoming, err := composer.UpcomingSeasonalProducts(ctx, recommend.PageRequest{}, 31*24*time.Hour)
	if err != nil {
		t.Fatalf("UpcomingSeasonalProducts() error = %v", err)
	}
	if got := ids(upcoming.Items); !reflect.DeepEqual(got, []string{"seeds"}) {
		t.Errorf("UpcomingSeasonalProducts() = %v, want [seeds]", got)
	}
}

func TestRecordProductViewIsIdempotentIdentity(t *testing.T) {
	ctx := context.Background()
	store := recommendtest.NewMemStore()
	composer := newComposer(t, store, nil)

	const n = 4
	for i := 0; i < n; i++ {
		if err := composer.RecordProductView(ctx, "u1", "p1"); err != nil {
			t.Fatalf("RecordProductView() error = %v", err)
		}
	}

	in, ok := store.Interaction("u1", "p1", recommend.InteractionView)
	if !ok {
		t.Fatal("expected a VIEW interaction row")
	}
	if in.Count != n || in.Score != n {
		t.Errorf("interaction = count %d score %v, want %d and %d", in.Count, in.Score, n, n)
	}
}

func TestComposerCachesAndInvalidates(t *testing.T) {
	ctx := context.Background()
	store := recommendtest.NewMemStore()
	seedCatalog(store)
	symmetric(store, "p1", "p2", recommend.RelationshipSimilar, 0.6)

	c := cache.NewMemory(time.Minute)
	defer c.Close()
	composer := newComposer(t, store, c)

	first, err := composer.SimilarProducts(ctx, "p1", recommend.PageRequest{})
	if err != nil {
		t.Fatalf("SimilarProducts() error = %v", err)
	}

	// A new edge is invisible until the cache is invalidated.
	symmetric(store, "p1", "p3", recommend.RelationshipSimilar, 0.9)
	cachedPage, _ := composer.SimilarProducts(ctx, "p1", recommend.PageRequest{})
	if !reflect.DeepEqual(ids(cachedPage.Items), ids(first.Items)) {
		t.Errorf("cached result = %v, want %v", ids(cachedPage.Items), ids(first.Items))
	}

	if err := composer.InvalidateCache(ctx); err != nil {
		t.Fatalf("InvalidateCache() error = %v", err)
	}
	fresh, _ := composer.SimilarProducts(ctx, "p1", recommend.PageRequest{})
	if got := ids(fresh.Items); !reflect.DeepEqual(got, []string{"p3", "p2"}) {
		t.Errorf("after invalidation = %v, want [p3 p2]", got)
	}
}

func TestRecorderValidation(t *testing.T) {
	ctx := context.Background()
	recorder := recommend.NewRecorder(recommendtest.NewMemStore(), zerolog.Nop())

	tests := []struct {
		name    string
		user    string
		product string
		typ     recommend.InteractionType
	}{
		{name: "empty user", user: "", product: "p1", typ: recommend.InteractionView},
		{name: "blank product", user: "u1", product: "  ", typ: recommend.InteractionView},
		{name: "unknown type", user: "u1", product: "p1", typ: recommend.InteractionType(42)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := recorder.RecordInteraction(ctx, tt.user, tt.product, tt.typ)
			if !errors.Is(err, recommend.ErrInvalidInteraction) {
				t.Errorf("RecordInteraction() error = %v, want ErrInvalidInteraction", err)
			}
		})
	}
}

func TestRecorderScoresByWeight(t *testing.T) {
	ctx := context.Background()
	store := recommendtest.NewMemStore()
	recorder := recommend.NewRecorder(store, zerolog.Nop())

	for i := 0; i < 3; i++ {
		if err := recorder.RecordInteraction(ctx, "u1", "p1", recommend.InteractionPurchase); err != nil {
			t.Fatalf("RecordInteraction() error = %v", err)
		}
	}
	if err := recorder.RecordInteraction(ctx, "u1", "p1", recommend.InteractionCart); err != nil {
		t.Fatalf("RecordInteraction() error = %v", err)
	}

	purchase, _ := store.Interaction("u1", "p1", recommend.InteractionPurchase)
	if purchase.Count != 3 || purchase.Score != 15 {
		t.Errorf("purchase = count %d score %v, want 3 and 15", purchase.Count, purchase.Score)
	}
	cart, _ := store.Interaction("u1", "p1", recommend.InteractionCart)
	if cart.Count != 1 || cart.Score != 2 {
		t.Errorf("cart = count %d score %v, want 1 and 2", cart.Count, cart.Score)
	}
}

func TestNewComposerRequiresDeps(t *testing.T) {
	if _, err := recommend.NewComposer(recommend.DefaultConfig(), recommend.ComposerDeps{}, zerolog.Nop()); err == nil {
		t.Error("NewComposer() with no deps should fail")
	}
	cfg := recommend.DefaultConfig()
	cfg.SeedCount = 0
	store := recommendtest.NewMemStore()
	_, err := recommend.NewComposer(cfg, recommend.ComposerDeps{
		Catalog: store, Interactions: store, Graph: store, Recorder: recommend.NewRecorder(store, zerolog.Nop()),
	}, zerolog.Nop())
	if err == nil {
		t.Error("NewComposer() with invalid config should fail")
	}
}
