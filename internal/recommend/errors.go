// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package recommend

import "errors"

var (
	// ErrInvalidInteraction is returned for empty ids or unknown interaction types.
	ErrInvalidInteraction = errors.New("invalid interaction")

	// ErrUnknownRelationship is returned when a relationship type name does not parse.
	ErrUnknownRelationship = errors.New("unknown relationship type")

	// ErrBuildInProgress is returned when a graph build is requested while one is running.
	ErrBuildInProgress = errors.New("graph build already in progress")
)
