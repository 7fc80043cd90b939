// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package database

import (
	"hash/fnv"
	"strings"

	"github.com/tomtom215/affinity/internal/recommend"
)

// rowLockStripes is the number of row mutexes. Distinct keys may share a
// stripe; equal keys always do.
const rowLockStripes = 256

func lockStripe(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % rowLockStripes)
}

// acquireRowLock locks the stripe for key and returns its unlock function.
func (db *DB) acquireRowLock(key string) func() {
	mu := &db.rowLocks[lockStripe(key)]
	mu.Lock()
	return mu.Unlock
}

func interactionKey(userID, productID string, t recommend.InteractionType) string {
	return strings.Join([]string{"i", userID, productID, t.String()}, "\x00")
}

// edgeKey is direction independent so both halves of a pair share one lock.
func edgeKey(a, b string, t recommend.RelationshipType) string {
	if b < a {
		a, b = b, a
	}
	return strings.Join([]string{"e", a, b, t.String()}, "\x00")
}
