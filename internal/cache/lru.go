// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package cache

import (
	"container/list"
	"sync"
	"time"
)

type seenKey struct {
	key       string
	expiresAt time.Time
}

// LRUCache is a bounded, TTL-aware set of recently seen keys. It backs event
// deduplication: IsDuplicate reports whether an event id was already handled
// within the TTL and records it otherwise.
//
// The least recently seen key is evicted when the capacity is exceeded.
type LRUCache struct {
	mu sync.Mutex

	capacity int
	ttl      time.Duration

	// order holds *seenKey values, most recently seen at the front.
	order *list.List
	index map[string]*list.Element

	hits   int64
	misses int64
}

// NewLRUCache creates a key set holding at most capacity keys for ttl each.
// Non-positive arguments fall back to 10000 keys and 5 minutes.
func NewLRUCache(capacity int, ttl time.Duration) *LRUCache {
	if capacity <= 0 {
		capacity = 10000
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &LRUCache{
		capacity: capacity,
		ttl:      ttl,
		order:    list.New(),
		index:    make(map[string]*list.Element, capacity),
	}
}

// IsDuplicate reports whether key was seen within the TTL. A key that was
// not seen (or has expired) is recorded and false is returned.
func (c *LRUCache) IsDuplicate(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if el, ok := c.index[key]; ok {
		sk := el.Value.(*seenKey)
		if !now.After(sk.expiresAt) {
			c.order.MoveToFront(el)
			c.hits++
			return true
		}
		// Expired: re-record with a fresh deadline.
		sk.expiresAt = now.Add(c.ttl)
		c.order.MoveToFront(el)
		c.misses++
		return false
	}

	c.index[key] = c.order.PushFront(&seenKey{key: key, expiresAt: now.Add(c.ttl)})
	for c.order.Len() > c.capacity {
		c.remove(c.order.Back())
	}
	c.misses++
	return false
}

// Forget removes a key so a later delivery is processed again. Handlers call it
// when processing fails after the key was recorded.
func (c *LRUCache) Forget(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if ok {
		c.remove(el)
	}
	return ok
}

// Len returns the number of tracked keys.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// CleanupExpired removes expired keys and returns how many were removed.
func (c *LRUCache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if now.After(el.Value.(*seenKey).expiresAt) {
			c.remove(el)
			removed++
		}
		el = prev
	}
	return removed
}

// Stats returns hit/miss statistics.
func (c *LRUCache) Stats() (hits, misses int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, c.order.Len()
}

// remove must be called with mu held.
func (c *LRUCache) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.index, el.Value.(*seenKey).key)
}
