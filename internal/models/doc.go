// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

/*
Package models defines the HTTP request and response structures.

Domain types (products, interactions, edges, recommendations) live in
internal/recommend; this package only holds the API envelope and the
request shapes that are validated with go-playground/validator tags.

Response Envelope:

	{
	  "status": "success" | "error",
	  "data": ...,
	  "metadata": {"timestamp": ..., "query_time_ms": ..., "request_id": ...},
	  "error": {"code": ..., "message": ..., "details": {...}}
	}
*/
package models
