// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package cache

import (
	"context"
	"fmt"
	"time"
)

// Cacher is the process-wide result cache used by the recommendation read path.
// Values are opaque byte slices (JSON-encoded by callers) so that the same
// contract holds for the in-memory and Redis backends.
type Cacher interface {
	// Get returns the value and true on a hit. Backend errors are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value with the backend's default TTL.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a value.
	Delete(ctx context.Context, key string) error

	// Clear drops every entry owned by this cache.
	Clear(ctx context.Context) error

	// Close releases background resources. The cache must not be used afterwards.
	Close() error
}

// Backend selects the cache implementation.
type Backend string

const (
	// BackendMemory is the in-process TTL cache (default).
	BackendMemory Backend = "memory"

	// BackendRedis shares cached results across replicas.
	BackendRedis Backend = "redis"

	// BackendNone disables caching.
	BackendNone Backend = "none"
)

// CacheConfig holds configuration for creating a cache.
type CacheConfig struct {
	Backend Backend
	TTL     time.Duration

	// Redis settings, used only with BackendRedis.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
}

// NewCacher creates a cache for the configured backend. BackendNone returns
// a no-op cache so callers never need nil checks.
func NewCacher(cfg CacheConfig) (Cacher, error) {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}

	switch cfg.Backend {
	case BackendMemory, "":
		return &memoryCacher{c: New(cfg.TTL)}, nil
	case BackendRedis:
		return NewRedisCache(RedisConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			TTL:       cfg.TTL,
			KeyPrefix: cfg.KeyPrefix,
		})
	case BackendNone:
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// NewMemory returns an in-memory Cacher with the given TTL.
func NewMemory(ttl time.Duration) Cacher {
	return &memoryCacher{c: New(ttl)}
}

type memoryCacher struct {
	c *Cache
}

func (m *memoryCacher) Get(_ context.Context, key string) ([]byte, bool) {
	return m.c.Get(key)
}

func (m *memoryCacher) Set(_ context.Context, key string, value []byte) error {
	m.c.Set(key, value)
	return nil
}

func (m *memoryCacher) Delete(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

func (m *memoryCacher) Clear(_ context.Context) error {
	m.c.Clear()
	return nil
}

func (m *memoryCacher) Close() error {
	return m.c.Close()
}

// Noop is a Cacher that never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (Noop) Set(context.Context, string, []byte) error { return nil }
func (Noop) Delete(context.Context, string) error { return nil }
func (Noop) Clear(context.Context) error { return nil }
func (Noop) Close() error { return nil }

var (
	_ Cacher = (*memoryCacher)(nil)
	_ Cacher = (*RedisCache)(nil)
	_ Cacher = Noop{}
)
