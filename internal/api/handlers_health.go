// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/affinity/internal/models"
)

const readinessPingTimeout = 2 * time.Second

// HealthLive handles liveness probes. It succeeds while the process serves
// requests, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, &models.APIResponse{
		Status: models.StatusSuccess,
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": time.Since(h.startTime).Seconds(),
		},
	})
}

// HealthReady handles readiness probes. It returns 503 until the database
// answers a ping.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessPingTimeout)
	defer cancel()

	dbConnected := h.db != nil && h.db.Ping(ctx) == nil

	health := models.HealthStatus{
		Status:            "ready",
		Version:           Version,
		DatabaseConnected: dbConnected,
		GraphBuildRunning: h.builder != nil && h.builder.Running(),
		Uptime:            time.Since(h.startTime).Seconds(),
	}

	statusCode := http.StatusOK
	status := models.StatusSuccess
	if !dbConnected {
		statusCode = http.StatusServiceUnavailable
		health.Status = "not_ready"
		status = models.StatusError
	}

	respondJSON(w, r, statusCode, &models.APIResponse{
		Status: status,
		Data:   health,
	})
}
