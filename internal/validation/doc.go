// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared process-wide. Field names in error
// messages use the struct's json tag, so they match what API clients send.
//
// # Custom Tags
//
//   - identifier: non-blank after trimming, at most 256 characters, no
//     control characters (user and product ids)
//   - interaction_type: one of VIEW, CART, WISHLIST, REVIEW, PURCHASE
//     (case-insensitive)
//
// # Usage
//
//	var req models.InteractionRequest
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
package validation
