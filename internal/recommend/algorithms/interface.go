// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package algorithms

import "context"

// Pair is an unordered product pair with A < B.
type Pair struct {
	A string
	B string
}

// NewPair orders a and b so that equal inputs in either order produce the same Pair.
func NewPair(a, b string) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// ScoredPair is a pair with a symmetric score.
type ScoredPair struct {
	Pair
	Score float64
}

// CountedPair is a pair with a co-occurrence count.
type CountedPair struct {
	Pair
	Count int64
}

// ContextCancelled checks if the context has been cancelled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
