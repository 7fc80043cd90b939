// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/affinity/internal/metrics"
)

// Publisher publishes domain events onto the configured topics.
type Publisher struct {
	publisher         message.Publisher
	interactionsTopic string
	productsTopic     string

	mu     sync.RWMutex
	closed bool
}

// NewPublisher wraps pub.
func NewPublisher(pub message.Publisher, interactionsTopic, productsTopic string) *Publisher {
	return &Publisher{
		publisher:         pub,
		interactionsTopic: interactionsTopic,
		productsTopic:     productsTopic,
	}
}

// PublishInteraction validates and publishes ev.
func (p *Publisher) PublishInteraction(ctx context.Context, ev *InteractionEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	msg, err := newMessage(ev.EventID, EventTypeInteraction, ev)
	if err != nil {
		return err
	}
	return p.publish(ctx, p.interactionsTopic, msg)
}

// PublishProducts validates and publishes ev.
func (p *Publisher) PublishProducts(ctx context.Context, ev *ProductEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	msg, err := newMessage(ev.EventID, EventTypeProductUpserted, ev)
	if err != nil {
		return err
	}
	return p.publish(ctx, p.productsTopic, msg)
}

func (p *Publisher) publish(ctx context.Context, topic string, msg *message.Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return fmt.Errorf("publisher is closed")
	}
	msg.SetContext(ctx)
	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	metrics.RecordEventPublished(topic)
	return nil
}

// Close marks the publisher closed. The underlying transport is owned and
// closed by the caller.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
