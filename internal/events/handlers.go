// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package events

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/affinity/internal/metrics"
	"github.com/tomtom215/affinity/internal/recommend"
)

// InteractionRecorder is satisfied by *recommend.Recorder.
type InteractionRecorder interface {
	RecordInteractionAt(ctx context.Context, userID, productID string, t recommend.InteractionType, at time.Time) error
}

// ProductWriter is satisfied by *database.DB.
type ProductWriter interface {
	UpsertProducts(ctx context.Context, products []recommend.Product) error
}

// HandlerStats counts handler outcomes.
type HandlerStats struct {
	Received  int64
	Processed int64
	Rejected  int64
	Failed    int64
}

type handlerCounters struct {
	received  atomic.Int64
	processed atomic.Int64
	rejected  atomic.Int64
	failed    atomic.Int64
}

func (c *handlerCounters) snapshot() HandlerStats {
	return HandlerStats{
		Received:  c.received.Load(),
		Processed: c.processed.Load(),
		Rejected:  c.rejected.Load(),
		Failed:    c.failed.Load(),
	}
}

// InteractionHandler records interaction events.
//
// Malformed or invalid events return a PermanentError; store failures return
// the error as-is so the router retries them.
type InteractionHandler struct {
	recorder InteractionRecorder
	topic    string
	logger   zerolog.Logger
	counters handlerCounters
}

// NewInteractionHandler creates a handler for events on topic.
func NewInteractionHandler(recorder InteractionRecorder, topic string, logger zerolog.Logger) *InteractionHandler {
	return &InteractionHandler{
		recorder: recorder,
		topic:    topic,
		logger:   logger.With().Str("component", "interaction-handler").Logger(),
	}
}

// Handle implements message.NoPublishHandlerFunc.
func (h *InteractionHandler) Handle(msg *message.Message) error {
	h.counters.received.Add(1)

	var ev InteractionEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return h.reject(msg, NewPermanentError("invalid interaction payload", err))
	}
	if err := ev.Validate(); err != nil {
		return h.reject(msg, NewPermanentError("invalid interaction event", err))
	}

	err := h.recorder.RecordInteractionAt(msg.Context(), ev.UserID, ev.ProductID, ev.Type, ev.OccurredAt)
	if errors.Is(err, recommend.ErrInvalidInteraction) {
		return h.reject(msg, NewPermanentError("interaction rejected", err))
	}
	if err != nil {
		h.counters.failed.Add(1)
		metrics.RecordEventProcessed(h.topic, "error")
		h.logger.Warn().Err(err).Str("event_id", ev.EventID).Msg("interaction event failed")
		return err
	}

	h.counters.processed.Add(1)
	metrics.RecordEventProcessed(h.topic, "ok")
	return nil
}

func (h *InteractionHandler) reject(msg *message.Message, err error) error {
	h.counters.rejected.Add(1)
	metrics.RecordEventProcessed(h.topic, "rejected")
	h.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("interaction event rejected")
	return err
}

// Stats returns a snapshot of handler counters.
func (h *InteractionHandler) Stats() HandlerStats {
	return h.counters.snapshot()
}

// ProductHandler upserts catalog products carried by product events.
type ProductHandler struct {
	store    ProductWriter
	topic    string
	logger   zerolog.Logger
	counters handlerCounters

	// onUpsert runs after a successful upsert; failures are logged only.
	onUpsert func(ctx context.Context) error
}

// NewProductHandler creates a handler for events on topic. onUpsert may be nil.
func NewProductHandler(store ProductWriter, topic string, onUpsert func(ctx context.Context) error, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		store:    store,
		topic:    topic,
		onUpsert: onUpsert,
		logger:   logger.With().Str("component", "product-handler").Logger(),
	}
}

// Handle implements message.NoPublishHandlerFunc.
func (h *ProductHandler) Handle(msg *message.Message) error {
	h.counters.received.Add(1)

	var ev ProductEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return h.reject(msg, NewPermanentError("invalid product payload", err))
	}
	if err := ev.Validate(); err != nil {
		return h.reject(msg, NewPermanentError("invalid product event", err))
	}

	ctx := msg.Context()
	if err := h.store.UpsertProducts(ctx, ev.Products); err != nil {
		h.counters.failed.Add(1)
		metrics.RecordEventProcessed(h.topic, "error")
		return err
	}
	if h.onUpsert != nil {
		if err := h.onUpsert(ctx); err != nil {
			h.logger.Warn().Err(err).Msg("post-upsert hook failed")
		}
	}

	h.counters.processed.Add(1)
	metrics.RecordEventProcessed(h.topic, "ok")
	h.logger.Debug().Str("event_id", ev.EventID).Int("products", len(ev.Products)).Msg("products upserted")
	return nil
}

func (h *ProductHandler) reject(msg *message.Message, err error) error {
	h.counters.rejected.Add(1)
	metrics.RecordEventProcessed(h.topic, "rejected")
	h.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("product event rejected")
	return err
}

// Stats returns a snapshot of handler counters.
func (h *ProductHandler) Stats() HandlerStats {
	return h.counters.snapshot()
}
