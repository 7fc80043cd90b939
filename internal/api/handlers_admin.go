// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/affinity/internal/logging"
	"github.com/tomtom215/affinity/internal/models"
	"github.com/tomtom215/affinity/internal/recommend"
)

const defaultBuildTimeout = 30 * time.Minute

// TriggerGraphBuild handles POST /api/v1/admin/graph/build. The build runs
// to completion before responding and is not cancelled if the client goes
// away. A build already in progress yields 409.
func (h *Handler) TriggerGraphBuild(w http.ResponseWriter, r *http.Request) {
	if h.builder.Running() {
		respondDomainError(w, r, recommend.ErrBuildInProgress)
		return
	}

	timeout := h.config.Recommend.BuildTimeout
	if timeout <= 0 {
		timeout = defaultBuildTimeout
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), timeout)
	defer cancel()

	logging.Ctx(r.Context()).Info().Msg("Manual graph build requested")
	stats, err := h.builder.Run(ctx)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, &models.APIResponse{
		Status: models.StatusSuccess,
		Data: models.GraphBuildResult{
			StartedAt:           stats.StartedAt,
			FinishedAt:          stats.FinishedAt,
			DurationMS:          stats.Duration.Milliseconds(),
			Products:            stats.Products,
			SimilarPairs:        stats.SimilarPairs,
			BoughtTogetherPairs: stats.BoughtTogetherPairs,
			ViewedTogetherPairs: stats.ViewedTogetherPairs,
			EdgesWritten:        stats.EdgesWritten,
			PairErrors:          stats.Errors,
		},
		Metadata: models.Metadata{QueryTimeMS: stats.Duration.Milliseconds()},
	})
}
