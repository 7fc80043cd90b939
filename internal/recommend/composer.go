// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/affinity/internal/cache"
	"github.com/tomtom215/affinity/internal/metrics"
)

// View names used for cache keys and metrics.
const (
	ViewPersonalized     = "personalized"
	ViewSimilar          = "similar"
	ViewBoughtTogether   = "bought_together"
	ViewTrending         = "trending"
	ViewSeasonal         = "seasonal"
	ViewUpcomingSeasonal = "upcoming_seasonal"
)

// InteractionRecorder records a single interaction.
type InteractionRecorder interface {
	RecordInteraction(ctx context.Context, userID, productID string, t InteractionType) error
}

// Composer produces ranked, paginated recommendation views from the product
// graph, the catalog and interaction aggregates. Unknown users and products
// yield empty results, never errors. It is safe for concurrent use.
type Composer struct {
	cfg          Config
	catalog      Catalog
	interactions InteractionStore
	graph        GraphStore
	recorder     InteractionRecorder
	cache        cache.Cacher
	logger       zerolog.Logger
	now          func() time.Time
}

// ComposerDeps groups the collaborators of a Composer.
type ComposerDeps struct {
	Catalog      Catalog
	Interactions InteractionStore
	Graph        GraphStore
	Recorder     InteractionRecorder

	// Cache may be nil, in which case results are not cached.
	Cache cache.Cacher

	// Now defaults to time.Now.
	Now func() time.Time
}

// NewComposer creates a Composer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewComposer(cfg Config, deps ComposerDeps, logger zerolog.Logger) (*Composer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recommend config: %w", err)
	}
	if deps.Catalog == nil || deps.Interactions == nil || deps.Graph == nil || deps.Recorder == nil {
		return nil, fmt.Errorf("composer requires catalog, interaction store, graph store and recorder")
	}
	c := deps.Cache
	if c == nil {
		c = cache.Noop{}
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Composer{
		cfg:          cfg,
		catalog:      deps.Catalog,
		interactions: deps.Interactions,
		graph:        deps.Graph,
		recorder:     deps.Recorder,
		cache:        c,
		logger:       logger.With().Str("component", "recommend").Logger(),
		now:          now,
	}, nil
}

// InvalidateCache drops every cached view. Called after each graph build.
func (c *Composer) InvalidateCache(ctx context.Context) error {
	return c.cache.Clear(ctx)
}

// RecordProductView records a VIEW interaction for a product detail view.
func (c *Composer) RecordProductView(ctx context.Context, userID, productID string) error {
	return c.recorder.RecordInteraction(ctx, userID, productID, InteractionView)
}

// PersonalizedRecommendations ranks the SIMILAR and BOUGHT_TOGETHER neighbors
// of the user's top interacted products, excluding everything the user has
// already interacted with. Users without usable graph data get trending.
func (c *Composer) PersonalizedRecommendations(ctx context.Context, userID string, page PageRequest) (Page[Recommendation], error) {
	page = page.Normalize()
	userID = strings.TrimSpace(userID)
	key := cache.GenerateKey(ViewPersonalized, struct {
		UserID string      `json:"user_id"`
		Page   PageRequest `json:"page"`
	}{userID, page})

	return cached(ctx, c, ViewPersonalized, key, func() (Page[Recommendation], error) {
		return c.personalized(ctx, userID, page)
	})
}

func (c *Composer) personalized(ctx context.Context, userID string, page PageRequest) (Page[Recommendation], error) {
	if userID == "" {
		return c.fallbackToTrending(ctx, page, "empty user id")
	}

	seeds, err := c.interactions.TopUserProducts(ctx, userID, c.cfg.SeedCount)
	if err != nil {
		return Page[Recommendation]{}, fmt.Errorf("load seed products: %w", err)
	}
	if len(seeds) == 0 {
		return c.fallbackToTrending(ctx, page, "no interactions")
	}

	relTypes := []RelationshipType{RelationshipSimilar, RelationshipBoughtTogether}
	neighbors := make([][]Edge, len(seeds)*len(relTypes))
	var interacted []string

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.FetchConcurrency)
	g.Go(func() error {
		ids, err := c.interactions.UserProductIDs(gctx, userID)
		if err != nil {
			return fmt.Errorf("load user history: %w", err)
		}
		interacted = ids
		return nil
	})
	for i, seed := range seeds {
		for j, rt := range relTypes {
			slot := i*len(relTypes) + j
			g.Go(func() error {
				edges, err := c.graph.Neighbors(gctx, seed, rt)
				if err != nil {
					return fmt.Errorf("load %s neighbors of %s: %w", rt, seed, err)
				}
				neighbors[slot] = edges
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return Page[Recommendation]{}, err
	}

	exclude := make(map[string]struct{}, len(interacted)+len(seeds))
	for _, id := range interacted {
		exclude[id] = struct{}{}
	}
	for _, id := range seeds {
		exclude[id] = struct{}{}
	}

	// Slots are visited in seed order so the float sums are deterministic.
	weights := make(map[string]float64)
	for _, edges := range neighbors {
		for _, e := range edges {
			if _, skip := exclude[e.TargetID]; skip {
				continue
			}
			weights[e.TargetID] += e.Strength
		}
	}
	if len(weights) == 0 {
		return c.fallbackToTrending(ctx, page, "no graph candidates")
	}

	ranked := make([]ScoredID, 0, len(weights))
	for id, w := range weights {
		ranked = append(ranked, ScoredID{ProductID: id, Score: w})
	}
	sortScored(ranked)

	recs, err := c.materialize(ctx, ranked)
	if err != nil {
		return Page[Recommendation]{}, err
	}
	if len(recs) == 0 {
		return c.fallbackToTrending(ctx, page, "candidates missing from catalog")
	}

	metrics.RecordRecommendation(ViewPersonalized, "graph")
	return Paginate(recs, page), nil
}

func (c *Composer) fallbackToTrending(ctx context.Context, page PageRequest, reason string) (Page[Recommendation], error) {
	c.logger.Debug().Str("reason", reason).Msg("personalized recommendations falling back to trending")
	metrics.RecordRecommendation(ViewPersonalized, "fallback")
	return c.trending(ctx, page)
}

// SimilarProducts returns the SIMILAR neighbors of productID by strength.
func (c *Composer) SimilarProducts(ctx context.Context, productID string, page PageRequest) (Page[Recommendation], error) {
	page = page.Normalize()
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return EmptyPage[Recommendation](), nil
	}
	key := cache.GenerateKey(ViewSimilar, struct {
		ProductID string      `json:"product_id"`
		Page      PageRequest `json:"page"`
	}{productID, page})

	return cached(ctx, c, ViewSimilar, key, func() (Page[Recommendation], error) {
		edges, err := c.graph.NeighborsPage(ctx, productID, RelationshipSimilar, page)
		if err != nil {
			return Page[Recommendation]{}, fmt.Errorf("load similar products: %w", err)
		}
		recs, err := c.materialize(ctx, edgesToScored(edges.Items))
		if err != nil {
			return Page[Recommendation]{}, err
		}
		metrics.RecordRecommendation(ViewSimilar, "graph")
		return Page[Recommendation]{Items: recs, TotalCount: edges.TotalCount}, nil
	})
}

// FrequentlyBoughtTogether returns up to limit BOUGHT_TOGETHER neighbors.
func (c *Composer) FrequentlyBoughtTogether(ctx context.Context, productID string, limit int) ([]Recommendation, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return []Recommendation{}, nil
	}
	if limit <= 0 {
		limit = c.cfg.DefaultFBTLimit
	}
	if limit > c.cfg.MaxFBTLimit {
		limit = c.cfg.MaxFBTLimit
	}
	key := cache.GenerateKey(ViewBoughtTogether, struct {
		ProductID string `json:"product_id"`
		Limit     int    `json:"limit"`
	}{productID, limit})

	return cached(ctx, c, ViewBoughtTogether, key, func() ([]Recommendation, error) {
		edges, err := c.graph.Neighbors(ctx, productID, RelationshipBoughtTogether)
		if err != nil {
			return nil, fmt.Errorf("load bought-together products: %w", err)
		}
		recs, err := c.materialize(ctx, edgesToScored(edges))
		if err != nil {
			return nil, err
		}
		if len(recs) > limit {
			recs = recs[:limit]
		}
		metrics.RecordRecommendation(ViewBoughtTogether, "graph")
		return recs, nil
	})
}

// TrendingProducts ranks products by summed interaction score within the
// trending window, falling back to catalog purchase counts when there is no
// recent interaction data.
func (c *Composer) TrendingProducts(ctx context.Context, page PageRequest) (Page[Recommendation], error) {
	page = page.Normalize()
	key := cache.GenerateKey(ViewTrending, page)
	return cached(ctx, c, ViewTrending, key, func() (Page[Recommendation], error) {
		return c.trending(ctx, page)
	})
}

func (c *Composer) trending(ctx context.Context, page PageRequest) (Page[Recommendation], error) {
	since := c.now().Add(-c.cfg.TrendingWindow).UTC()
	scored, err := c.interactions.TrendingProducts(ctx, since, page)
	if err != nil {
		return Page[Recommendation]{}, fmt.Errorf("load trending products: %w", err)
	}

	if scored.TotalCount == 0 {
		products, err := c.catalog.AllProducts(ctx)
		if err != nil {
			return Page[Recommendation]{}, fmt.Errorf("load catalog: %w", err)
		}
		sortByPopularity(products)
		metrics.RecordRecommendation(ViewTrending, "fallback")
		return Paginate(popularityRecs(products), page), nil
	}

	recs, err := c.materialize(ctx, scored.Items)
	if err != nil {
		return Page[Recommendation]{}, err
	}
	metrics.RecordRecommendation(ViewTrending, "interactions")
	return Page[Recommendation]{Items: recs, TotalCount: scored.TotalCount}, nil
}

// SeasonalProducts returns products in season now, most purchased first.
func (c *Composer) SeasonalProducts(ctx context.Context, page PageRequest) (Page[Recommendation], error) {
	page = page.Normalize()
	now := c.now()
	key := cache.GenerateKey(ViewSeasonal, struct {
		Month int         `json:"month"`
		Page  PageRequest `json:"page"`
	}{int(now.Month()), page})

	return cached(ctx, c, ViewSeasonal, key, func() (Page[Recommendation], error) {
		products, err := c.catalog.AllProducts(ctx)
		if err != nil {
			return Page[Recommendation]{}, fmt.Errorf("load catalog: %w", err)
		}
		inSeason := FilterInSeason(products, now)
		sortByPopularity(inSeason)
		metrics.RecordRecommendation(ViewSeasonal, "catalog")
		return Paginate(popularityRecs(inSeason), page), nil
	})
}

// UpcomingSeasonalProducts returns products in season at now+lookahead but
// not now. A non-positive lookahead uses the configured default.
func (c *Composer) UpcomingSeasonalProducts(ctx context.Context, page PageRequest, lookahead time.Duration) (Page[Recommendation], error) {
	page = page.Normalize()
	if lookahead <= 0 {
		lookahead = c.cfg.DefaultLookahead
	}
	now := c.now()
	key := cache.GenerateKey(ViewUpcomingSeasonal, struct {
		Month int         `json:"month"`
		Later int         `json:"later"`
		Page  PageRequest `json:"page"`
	}{int(now.Month()), int(now.Add(lookahead).Month()), page})

	return cached(ctx, c, ViewUpcomingSeasonal, key, func() (Page[Recommendation], error) {
		products, err := c.catalog.AllProducts(ctx)
		if err != nil {
			return Page[Recommendation]{}, fmt.Errorf("load catalog: %w", err)
		}
		upcoming := UpcomingInSeason(products, now, lookahead)
		sortByPopularity(upcoming)
		metrics.RecordRecommendation(ViewUpcomingSeasonal, "catalog")
		return Paginate(popularityRecs(upcoming), page), nil
	})
}

// materialize resolves ranked ids against the catalog, preserving order and
// dropping ids the catalog does not know.
func (c *Composer) materialize(ctx context.Context, ranked []ScoredID) ([]Recommendation, error) {
	if len(ranked) == 0 {
		return []Recommendation{}, nil
	}
	ids := make([]string, len(ranked))
	for i, s := range ranked {
		ids[i] = s.ProductID
	}
	products, err := c.catalog.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	out := make([]Recommendation, 0, len(ranked))
	for _, s := range ranked {
		p, ok := products[s.ProductID]
		if !ok {
			continue
		}
		out = append(out, Recommendation{Product: p, Score: s.Score})
	}
	return out, nil
}

// cached serves fn's result through the composer cache. Cache failures never
// fail the request.
func cached[T any](ctx context.Context, c *Composer, view, key string, fn func() (T, error)) (T, error) {
	if data, ok := c.cache.Get(ctx, key); ok {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			metrics.RecordCacheLookup(view, true)
			metrics.RecordRecommendation(view, "cache")
			return v, nil
		}
		c.logger.Warn().Str("view", view).Msg("discarding undecodable cache entry")
	}
	metrics.RecordCacheLookup(view, false)

	v, err := fn()
	if err != nil {
		return v, err
	}
	if data, err := json.Marshal(v); err == nil {
		if err := c.cache.Set(ctx, key, data); err != nil {
			c.logger.Warn().Err(err).Str("view", view).Msg("cache set failed")
		}
	}
	return v, nil
}

func sortScored(s []ScoredID) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Score != s[j].Score {
			return s[i].Score > s[j].Score
		}
		return s[i].ProductID < s[j].ProductID
	})
}

func edgesToScored(edges []Edge) []ScoredID {
	out := make([]ScoredID, len(edges))
	for i, e := range edges {
		out[i] = ScoredID{ProductID: e.TargetID, Score: e.Strength}
	}
	return out
}

func popularityRecs(products []Product) []Recommendation {
	out := make([]Recommendation, len(products))
	for i := range products {
		out[i] = Recommendation{Product: products[i], Score: float64(products[i].PurchaseCount)}
	}
	return out
}
