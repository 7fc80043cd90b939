// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/affinity/internal/models"
	"github.com/tomtom215/affinity/internal/recommend"
)

type pageView func(ctx context.Context, page recommend.PageRequest) (recommend.Page[recommend.Recommendation], error)

// servePage runs a paginated view and writes the result.
func (h *Handler) servePage(w http.ResponseWriter, r *http.Request, view pageView) {
	start := time.Now()
	q, apiErr := parseListQuery(r)
	if apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}
	req := pageRequest(q)

	page, err := view(r.Context(), req)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondPage(w, r, req, page, start)
}

// UserRecommendations handles GET /api/v1/users/{id}/recommendations.
func (h *Handler) UserRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	h.servePage(w, r, func(ctx context.Context, page recommend.PageRequest) (recommend.Page[recommend.Recommendation], error) {
		return h.recommender.PersonalizedRecommendations(ctx, userID, page)
	})
}

// SimilarProducts handles GET /api/v1/products/{id}/similar.
func (h *Handler) SimilarProducts(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")
	h.servePage(w, r, func(ctx context.Context, page recommend.PageRequest) (recommend.Page[recommend.Recommendation], error) {
		return h.recommender.SimilarProducts(ctx, productID, page)
	})
}

// TrendingProducts handles GET /api/v1/products/trending.
func (h *Handler) TrendingProducts(w http.ResponseWriter, r *http.Request) {
	h.servePage(w, r, h.recommender.TrendingProducts)
}

// SeasonalProducts handles GET /api/v1/products/seasonal.
func (h *Handler) SeasonalProducts(w http.ResponseWriter, r *http.Request) {
	h.servePage(w, r, h.recommender.SeasonalProducts)
}

// UpcomingSeasonalProducts handles GET /api/v1/products/seasonal/upcoming.
// lookahead_days defaults to the configured lookahead when absent or 0.
func (h *Handler) UpcomingSeasonalProducts(w http.ResponseWriter, r *http.Request) {
	days, err := intQuery(r, "lookahead_days", 0)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}
	q := models.UpcomingQuery{LookaheadDays: days}
	if apiErr := validateRequest(&q); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}
	lookahead := time.Duration(days) * 24 * time.Hour

	h.servePage(w, r, func(ctx context.Context, page recommend.PageRequest) (recommend.Page[recommend.Recommendation], error) {
		return h.recommender.UpcomingSeasonalProducts(ctx, page, lookahead)
	})
}

// BoughtTogether handles GET /api/v1/products/{id}/bought-together?limit=N.
func (h *Handler) BoughtTogether(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	limit, err := intQuery(r, "limit", 0)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}
	q := models.BoughtTogetherQuery{Limit: limit}
	if apiErr := validateRequest(&q); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}

	recs, err := h.recommender.FrequentlyBoughtTogether(r.Context(), chi.URLParam(r, "id"), q.Limit)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, recs, start)
}
