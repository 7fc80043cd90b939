// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package api

import (
	"context"
	"time"

	"github.com/tomtom215/affinity/internal/config"
	"github.com/tomtom215/affinity/internal/events"
	"github.com/tomtom215/affinity/internal/recommend"
	"github.com/tomtom215/affinity/internal/recommend/graph"
)

// Version is reported by the readiness probe.
var Version = "dev"

// Recommender serves the read views and product-view recording.
// *recommend.Composer implements it.
type Recommender interface {
	PersonalizedRecommendations(ctx context.Context, userID string, page recommend.PageRequest) (recommend.Page[recommend.Recommendation], error)
	SimilarProducts(ctx context.Context, productID string, page recommend.PageRequest) (recommend.Page[recommend.Recommendation], error)
	FrequentlyBoughtTogether(ctx context.Context, productID string, limit int) ([]recommend.Recommendation, error)
	TrendingProducts(ctx context.Context, page recommend.PageRequest) (recommend.Page[recommend.Recommendation], error)
	SeasonalProducts(ctx context.Context, page recommend.PageRequest) (recommend.Page[recommend.Recommendation], error)
	UpcomingSeasonalProducts(ctx context.Context, page recommend.PageRequest, lookahead time.Duration) (recommend.Page[recommend.Recommendation], error)
	RecordProductView(ctx context.Context, userID, productID string) error
}

// InteractionRecorder records interactions synchronously.
// *recommend.Recorder implements it.
type InteractionRecorder interface {
	RecordInteractionAt(ctx context.Context, userID, productID string, t recommend.InteractionType, at time.Time) error
}

// EventPublisher publishes interactions for asynchronous recording.
// *events.Publisher implements it.
type EventPublisher interface {
	PublishInteraction(ctx context.Context, ev *events.InteractionEvent) error
}

// GraphBuilder runs relationship graph builds. *graph.Builder implements it.
type GraphBuilder interface {
	Run(ctx context.Context) (graph.BuildStats, error)
	Running() bool
}

// Pinger reports database reachability. *database.DB implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HandlerDeps groups the collaborators of a Handler. Publisher may be nil,
// in which case interactions are always recorded synchronously.
type HandlerDeps struct {
	Recommender Recommender
	Recorder    InteractionRecorder
	Publisher   EventPublisher
	Builder     GraphBuilder
	DB          Pinger
	Config      *config.Config
}

// Handler contains the dependencies of the API endpoints.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_helpers.go: response writing, parameter parsing, error mapping
//   - handlers_health.go: liveness and readiness probes
//   - handlers_interactions.go: interaction and product-view recording
//   - handlers_recommend.go: recommendation views
//   - handlers_admin.go: graph build trigger
type Handler struct {
	recommender Recommender
	recorder    InteractionRecorder
	publisher   EventPublisher
	builder     GraphBuilder
	db          Pinger
	config      *config.Config
	startTime   time.Time
	now         func() time.Time
}

// NewHandler creates the API handler.
func NewHandler(deps HandlerDeps) *Handler {
	cfg := deps.Config
	if cfg == nil {
		cfg = &config.Config{}
	}
	return &Handler{
		recommender: deps.Recommender,
		recorder:    deps.Recorder,
		publisher:   deps.Publisher,
		builder:     deps.Builder,
		db:          deps.DB,
		config:      cfg,
		startTime:   time.Now(),
		now:         time.Now,
	}
}

// asyncInteractions reports whether interactions go through the event bus.
func (h *Handler) asyncInteractions() bool {
	return h.publisher != nil && h.config.Events.Enabled && h.config.Events.AsyncInteractions
}
