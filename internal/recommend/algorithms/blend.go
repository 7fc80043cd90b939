// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package algorithms

import "math"

// Edge strength blending applied when an existing edge is re-upserted:
//
//	new = BlendRetain*old + BlendIncoming*incoming
//
// Both inputs are in [0, 1] so the result is too, and repeated runs on
// unchanged data converge to the incoming value.
const (
	BlendRetain   = 0.7
	BlendIncoming = 0.3
)

// BlendStrength applies the edge blending rule and clamps to [0, 1].
func BlendStrength(old, incoming float64) float64 {
	return Clamp01(BlendRetain*old + BlendIncoming*incoming)
}

// Clamp01 bounds v to [0, 1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
