// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package main

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/affinity/internal/config"
	"github.com/tomtom215/affinity/internal/database"
	"github.com/tomtom215/affinity/internal/events"
	"github.com/tomtom215/affinity/internal/logging"
)

// EventComponents holds the event bus pieces owned by main.
type EventComponents struct {
	Transport   *events.Transport
	Router      *events.Router
	Publisher   *events.Publisher
	Interaction *events.InteractionHandler
	Product     *events.ProductHandler
}

// Close stops the router then releases the transport.
func (e *EventComponents) Close() error {
	var errs []error
	if e.Router != nil && e.Router.IsRunning() {
		errs = append(errs, e.Router.Close())
	}
	if e.Publisher != nil {
		errs = append(errs, e.Publisher.Close())
	}
	if e.Transport != nil {
		errs = append(errs, e.Transport.Close())
	}
	return errors.Join(errs...)
}

// initEvents builds the watermill transport, router and handlers. It returns
// nil when the event bus is disabled.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initEvents(cfg *config.Config, db *database.DB, rc *RecommendComponents, logger zerolog.Logger) (*EventComponents, error) {
	if !cfg.Events.Enabled {
		logger.Info().Msg("Event bus disabled (EVENTS_ENABLED=false)")
		return nil, nil
	}

	wmLogger := logging.NewWatermillLogger(logger.With().Str("component", "watermill").Logger())

	transport, err := events.NewTransport(&cfg.Events, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("event transport: %w", err)
	}

	router, err := events.NewRouter(events.RouterConfigFrom(&cfg.Events), transport.Publisher, wmLogger)
	if err != nil {
		_ = transport.Close()
		return nil, fmt.Errorf("event router: %w", err)
	}

	interactions := events.NewInteractionHandler(rc.Recorder, cfg.Events.InteractionsTopic, logger)
	products := events.NewProductHandler(db, cfg.Events.ProductsTopic, rc.Composer.InvalidateCache, logger)

	router.AddConsumerHandler("interactions", cfg.Events.InteractionsTopic, transport.Subscriber, interactions.Handle)
	router.AddConsumerHandler("products", cfg.Events.ProductsTopic, transport.Subscriber, products.Handle)

	logger.Info().
		Str("transport", transport.Name).
		Str("interactions_topic", cfg.Events.InteractionsTopic).
		Str("products_topic", cfg.Events.ProductsTopic).
		Bool("async_interactions", cfg.Events.AsyncInteractions).
		Msg("Event bus initialized")

	return &EventComponents{
		Transport:   transport,
		Router:      router,
		Publisher:   events.NewPublisher(transport.Publisher, cfg.Events.InteractionsTopic, cfg.Events.ProductsTopic),
		Interaction: interactions,
		Product:     products,
	}, nil
}
