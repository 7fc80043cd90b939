// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/affinity/internal/metrics"
)

// Recorder persists user-product interactions. It is safe for concurrent use;
// atomicity of the per-key increment is delegated to the InteractionStore.
type Recorder struct {
	store  InteractionStore
	logger zerolog.Logger
	now    func() time.Time
}

// NewRecorder creates a Recorder over store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRecorder(store InteractionStore, logger zerolog.Logger) *Recorder {
	return &Recorder{
		store:  store,
		logger: logger.With().Str("component", "interaction-recorder").Logger(),
		now:    time.Now,
	}
}

// RecordInteraction creates or increments the (userID, productID, t) counter.
// Store errors are returned unchanged in the chain; the caller decides on retry.
func (r *Recorder) RecordInteraction(ctx context.Context, userID, productID string, t InteractionType) error {
	return r.RecordInteractionAt(ctx, userID, productID, t, r.now())
}

// RecordInteractionAt is RecordInteraction with an explicit occurrence time,
// used when replaying events. A zero at means now.
func (r *Recorder) RecordInteractionAt(ctx context.Context, userID, productID string, t InteractionType, at time.Time) error {
	if at.IsZero() {
		at = r.now()
	}
	userID = strings.TrimSpace(userID)
	productID = strings.TrimSpace(productID)
	if userID == "" || productID == "" {
		return fmt.Errorf("%w: user id and product id are required", ErrInvalidInteraction)
	}
	if !t.Valid() {
		return fmt.Errorf("%w: unknown interaction type %d", ErrInvalidInteraction, int(t))
	}

	if err := r.store.UpsertInteraction(ctx, userID, productID, t, at.UTC()); err != nil {
		return fmt.Errorf("record %s interaction: %w", t, err)
	}

	metrics.RecordInteraction(t.String())
	r.logger.Debug().
		Str("user_id", userID).
		Str("product_id", productID).
		Stringer("type", t).
		Msg("interaction recorded")
	return nil
}
