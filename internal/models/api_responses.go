// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package models

import (
	"time"
)

// Response status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// APIResponse is the envelope of every HTTP response.
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"items": [...], "total_count": 42},
//	  "metadata": {
//	    "timestamp": "2026-05-01T12:00:00Z",
//	    "query_time_ms": 4,
//	    "request_id": "7f0c..."
//	  }
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "data": null,
//	  "error": {"code": "VALIDATION_ERROR", "message": "type is required"},
//	  "metadata": {"timestamp": "2026-05-01T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries per-response observability fields.
type Metadata struct {
	Timestamp   time.Time       `json:"timestamp"`
	QueryTimeMS int64           `json:"query_time_ms,omitempty"`
	RequestID   string          `json:"request_id,omitempty"`
	Pagination  *PaginationInfo `json:"pagination,omitempty"`
}

// PaginationInfo describes the page served for list views.
type PaginationInfo struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalCount int  `json:"total_count"`
	HasMore    bool `json:"has_more"`
}

// NewPaginationInfo derives pagination metadata for a served page.
func NewPaginationInfo(page, pageSize, total int) *PaginationInfo {
	return &PaginationInfo{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		HasMore:    (page+1)*pageSize < total,
	}
}

// APIError is the error body of a failed request.
//
// Codes:
//   - VALIDATION_ERROR: malformed or invalid input (400)
//   - BUILD_IN_PROGRESS: a graph build is already running (409)
//   - SERVICE_UNAVAILABLE: a dependency is down (503)
//   - INTERNAL_ERROR: anything else (500)
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
