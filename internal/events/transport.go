// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package events

import (
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/affinity/internal/config"
)

// Transport bundles the publisher and subscriber of one message bus.
type Transport struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	Name       string
}

// Close closes the subscriber then the publisher. For the in-memory transport
// both are the same pub/sub and the second close is a no-op.
func (t *Transport) Close() error {
	var errs []error
	if t.Subscriber != nil {
		errs = append(errs, t.Subscriber.Close())
	}
	if t.Publisher != nil {
		if s, ok := t.Subscriber.(message.Publisher); !ok || s != t.Publisher {
			errs = append(errs, t.Publisher.Close())
		}
	}
	return errors.Join(errs...)
}

// NewTransport creates the transport named by cfg.Transport.
func NewTransport(cfg *config.EventsConfig, logger watermill.LoggerAdapter) (*Transport, error) {
	switch cfg.Transport {
	case "", "memory":
		return NewMemoryTransport(logger), nil
	case "nats":
		return newNATSTransport(cfg, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, cfg.Transport)
	}
}

// NewMemoryTransport creates an in-process gochannel transport. Messages are
// not persisted; each subscriber must ack before the next is delivered.
func NewMemoryTransport(logger watermill.LoggerAdapter) *Transport {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	ps := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, logger)
	return &Transport{Publisher: ps, Subscriber: ps, Name: "memory"}
}
