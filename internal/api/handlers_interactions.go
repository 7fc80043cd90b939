// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/affinity/internal/events"
	"github.com/tomtom215/affinity/internal/logging"
	"github.com/tomtom215/affinity/internal/models"
	"github.com/tomtom215/affinity/internal/recommend"
)

// HeaderUserID identifies the viewing user on product-view requests.
const HeaderUserID = "X-User-ID"

// RecordInteraction handles POST /api/v1/interactions.
//
// In synchronous mode the interaction is upserted before responding (200).
// With asynchronous interactions enabled it is published to the event bus
// and acknowledged with 202 and the event id.
func (h *Handler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.InteractionRequest
	if err := h.decodeJSONBody(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}

	itype, err := recommend.ParseInteractionType(req.Type)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	userID := strings.TrimSpace(req.UserID)
	productID := strings.TrimSpace(req.ProductID)
	at := h.now()
	if req.OccurredAt != nil && !req.OccurredAt.IsZero() {
		at = *req.OccurredAt
	}

	accepted := models.InteractionAccepted{
		UserID:    userID,
		ProductID: productID,
		Type:      itype.String(),
	}

	if h.asyncInteractions() {
		ev := events.NewInteractionEvent(userID, productID, itype, at)
		if err := h.publisher.PublishInteraction(r.Context(), ev); err != nil {
			respondDomainError(w, r, err)
			return
		}
		accepted.EventID = ev.EventID
		accepted.Queued = true
		respondSuccess(w, r, http.StatusAccepted, accepted, start)
		return
	}

	if err := h.recorder.RecordInteractionAt(r.Context(), userID, productID, itype, at); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, accepted, start)
}

// RecordProductView handles POST /api/v1/products/{id}/views. The viewing
// user comes from the X-User-ID header.
func (h *Handler) RecordProductView(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	productID := strings.TrimSpace(chi.URLParam(r, "id"))
	userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if userID == "" {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, HeaderUserID+" header is required", nil)
		return
	}

	if err := h.recommender.RecordProductView(r.Context(), userID, productID); err != nil {
		respondDomainError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Debug().
		Str("user_id", sanitizeLogValue(userID)).
		Str("product_id", sanitizeLogValue(productID)).
		Msg("Product view recorded")

	respondSuccess(w, r, http.StatusOK, models.InteractionAccepted{
		UserID:    userID,
		ProductID: productID,
		Type:      recommend.InteractionView.String(),
	}, start)
}
