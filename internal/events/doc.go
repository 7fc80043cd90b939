// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

/*
Package events carries interaction and catalog events over a Watermill bus.

Two topics are used (names configurable):

  - affinity.interactions: InteractionEvent, recorded through recommend.Recorder
  - affinity.products: ProductEvent, upserted into the catalog table

The default transport is an in-process gochannel pub/sub. Binaries built with
-tags nats use NATS JetStream through watermill-nats instead.

# Delivery

Router applies the same middleware to every handler: redelivered event ids
are dropped by an LRU deduplicator, transient failures are retried with
exponential backoff, and malformed events (PermanentError) go straight to the
poison queue without retries.

# Usage

	tr, err := events.NewTransport(&cfg.Events, logging.NewWatermillLogger(logger))
	router, err := events.NewRouter(events.RouterConfigFrom(&cfg.Events), tr.Publisher, wmLogger)
	h := events.NewInteractionHandler(recorder, cfg.Events.InteractionsTopic, logger)
	router.AddConsumerHandler("interactions", cfg.Events.InteractionsTopic, tr.Subscriber, h.Handle)
	go router.Run(ctx)
*/
package events
