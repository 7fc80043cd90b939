// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package models

import (
	"time"
)

// InteractionRequest is the body of POST /api/v1/interactions.
//
// Example:
//
//	{"user_id": "u-17", "product_id": "sku-42", "type": "PURCHASE"}
type InteractionRequest struct {
	UserID    string `json:"user_id" validate:"required,identifier"`
	ProductID string `json:"product_id" validate:"required,identifier"`
	Type      string `json:"type" validate:"required,interaction_type"`

	// OccurredAt is optional; the server clock is used when absent.
	OccurredAt *time.Time `json:"occurred_at,omitempty"`
}

// InteractionAccepted is returned for a recorded or queued interaction.
type InteractionAccepted struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	Type      string `json:"type"`

	// EventID is set when the interaction was published to the event bus.
	EventID string `json:"event_id,omitempty"`
	Queued  bool   `json:"queued"`
}

// ListQuery holds the query parameters shared by the list views. Page is
// bounded so that page*page_size cannot overflow.
type ListQuery struct {
	Page     int `validate:"gte=0,lte=1000000"`
	PageSize int `validate:"gte=0"`
}

// BoughtTogetherQuery holds the bought-together query parameters.
type BoughtTogetherQuery struct {
	Limit int `validate:"gte=0"`
}

// UpcomingQuery holds the upcoming seasonal query parameters.
type UpcomingQuery struct {
	ListQuery
	LookaheadDays int `validate:"gte=0,lte=366"`
}

// GraphBuildResult reports a completed graph build.
type GraphBuildResult struct {
	StartedAt           time.Time `json:"started_at"`
	FinishedAt          time.Time `json:"finished_at"`
	DurationMS          int64     `json:"duration_ms"`
	Products            int       `json:"products"`
	SimilarPairs        int       `json:"similar_pairs"`
	BoughtTogetherPairs int       `json:"bought_together_pairs"`
	ViewedTogetherPairs int       `json:"viewed_together_pairs"`
	EdgesWritten        int       `json:"edges_written"`
	PairErrors          int       `json:"pair_errors"`
}

// HealthStatus is returned by the readiness probe.
type HealthStatus struct {
	Status            string  `json:"status"`
	Version           string  `json:"version"`
	DatabaseConnected bool    `json:"database_connected"`
	GraphBuildRunning bool    `json:"graph_build_running"`
	Uptime            float64 `json:"uptime_seconds"`
}
