// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package events

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/tomtom215/affinity/internal/cache"
	"github.com/tomtom215/affinity/internal/config"
)

// RouterConfig holds configuration for the Watermill router.
type RouterConfig struct {
	CloseTimeout time.Duration

	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64

	// ThrottlePerSecond limits handled messages per second; 0 disables it.
	ThrottlePerSecond int64

	PoisonQueueTopic string

	DeduplicationTTL      time.Duration
	DeduplicationCapacity int
}

// DefaultRouterConfig returns production defaults.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:          30 * time.Second,
		RetryMaxRetries:       3,
		RetryInitialInterval:  100 * time.Millisecond,
		RetryMaxInterval:      10 * time.Second,
		RetryMultiplier:       2.0,
		PoisonQueueTopic:      "affinity.poison",
		DeduplicationTTL:      10 * time.Minute,
		DeduplicationCapacity: 10000,
	}
}

// RouterConfigFrom maps the events section of the service configuration.
func RouterConfigFrom(cfg *config.EventsConfig) RouterConfig {
	rc := DefaultRouterConfig()
	rc.RetryMaxRetries = cfg.RetryCount
	if cfg.RetryInitialInterval > 0 {
		rc.RetryInitialInterval = cfg.RetryInitialInterval
	}
	rc.ThrottlePerSecond = cfg.ThrottlePerSecond
	rc.PoisonQueueTopic = cfg.PoisonQueueTopic
	if cfg.DeduplicationTTL > 0 {
		rc.DeduplicationTTL = cfg.DeduplicationTTL
	}
	if cfg.DeduplicationCapacity > 0 {
		rc.DeduplicationCapacity = cfg.DeduplicationCapacity
	}
	if cfg.CloseTimeout > 0 {
		rc.CloseTimeout = cfg.CloseTimeout
	}
	return rc
}

// Deduplicator implements middleware.ExpiringKeyRepository over an LRU with TTL.
type Deduplicator struct {
	cache *cache.LRUCache
}

// NewDeduplicator creates a deduplicator holding at most capacity keys for ttl.
func NewDeduplicator(capacity int, ttl time.Duration) *Deduplicator {
	return &Deduplicator{cache: cache.NewLRUCache(capacity, ttl)}
}

// IsDuplicate reports whether key was seen within the TTL and records it.
func (d *Deduplicator) IsDuplicate(_ context.Context, key string) (bool, error) {
	return d.cache.IsDuplicate(key), nil
}

// Router wraps the Watermill router with the middleware chain used by every
// handler. From outermost to innermost:
//
//  1. PoisonQueue: messages still failing after retries are moved aside
//  2. Deduplicator: drops redelivered event ids
//  3. Retry: exponential backoff for transient failures
//  4. Throttle (optional)
//  5. PoisonQueue for PermanentError: never retried
//  6. Recoverer: handler panics become errors
type Router struct {
	router  *message.Router
	config  RouterConfig
	logger  watermill.LoggerAdapter
	dedup   *Deduplicator
	running atomic.Bool
}

// NewRouter creates a router. poisonPublisher may be nil, in which case
// failed messages are nacked instead of moved to the poison queue.
func NewRouter(cfg RouterConfig, poisonPublisher message.Publisher, logger watermill.LoggerAdapter) (*Router, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	wmRouter, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	r := &Router{
		router: wmRouter,
		config: cfg,
		logger: logger,
		dedup:  NewDeduplicator(cfg.DeduplicationCapacity, cfg.DeduplicationTTL),
	}

	usePoison := poisonPublisher != nil && cfg.PoisonQueueTopic != ""
	if usePoison {
		poison, err := middleware.PoisonQueue(poisonPublisher, cfg.PoisonQueueTopic)
		if err != nil {
			return nil, fmt.Errorf("create poison queue middleware: %w", err)
		}
		wmRouter.AddMiddleware(poison)
	}

	dedup := middleware.Deduplicator{
		KeyFactory: func(msg *message.Message) (string, error) {
			return eventKey(msg), nil
		},
		Repository: r.dedup,
	}
	wmRouter.AddMiddleware(dedup.Middleware)

	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      cfg.RetryMultiplier,
		Logger:          logger,
	}
	wmRouter.AddMiddleware(retry.Middleware)

	if cfg.ThrottlePerSecond > 0 {
		wmRouter.AddMiddleware(middleware.NewThrottle(cfg.ThrottlePerSecond, time.Second).Middleware)
	}

	if usePoison {
		permanent, err := middleware.PoisonQueueWithFilter(poisonPublisher, cfg.PoisonQueueTopic, IsPermanentError)
		if err != nil {
			return nil, fmt.Errorf("create permanent error middleware: %w", err)
		}
		wmRouter.AddMiddleware(permanent)
	}

	wmRouter.AddMiddleware(middleware.Recoverer)

	return r, nil
}

// AddConsumerHandler registers a handler that publishes nothing.
func (r *Router) AddConsumerHandler(name, topic string, subscriber message.Subscriber, handler message.NoPublishHandlerFunc) *message.Handler {
	return r.router.AddConsumerHandler(name, topic, subscriber, handler)
}

// Run starts the router and blocks until ctx is cancelled or Close is called.
func (r *Router) Run(ctx context.Context) error {
	r.running.Store(true)
	defer r.running.Store(false)
	return r.router.Run(ctx)
}

// Running returns a channel closed once all handlers are subscribed.
func (r *Router) Running() <-chan struct{} {
	return r.router.Running()
}

// IsRunning reports whether Run is active.
func (r *Router) IsRunning() bool {
	return r.running.Load()
}

// Close stops the router, waiting up to CloseTimeout for in-flight messages.
func (r *Router) Close() error {
	return r.router.Close()
}
