// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// MessageRouter is a watermill router wrapper. Run blocks until ctx is
// cancelled or Close is called.
type MessageRouter interface {
	Run(ctx context.Context) error
	Close() error
}

// EventRouterService runs the event router. A watermill router cannot be
// started twice, so an unexpected exit is reported with ErrDoNotRestart.
type EventRouterService struct {
	router MessageRouter
	logger zerolog.Logger
}

// NewEventRouterService wraps router.
func NewEventRouterService(router MessageRouter, logger zerolog.Logger) *EventRouterService {
	return &EventRouterService{
		router: router,
		logger: logger.With().Str("service", "event-router").Logger(),
	}
}

// Serve implements suture.Service.
func (s *EventRouterService) Serve(ctx context.Context) error {
	s.logger.Info().Msg("Event router starting")
	err := s.router.Run(ctx)
	if ctx.Err() != nil {
		s.logger.Info().Msg("Event router stopped")
		return ctx.Err()
	}
	if err == nil {
		err = errors.New("router exited")
	}
	s.logger.Error().Err(err).Msg("Event router exited unexpectedly")
	if cerr := s.router.Close(); cerr != nil {
		s.logger.Warn().Err(cerr).Msg("Event router close failed")
	}
	return fmt.Errorf("%w: %w", suture.ErrDoNotRestart, err)
}

// String implements fmt.Stringer for supervisor logs.
func (s *EventRouterService) String() string {
	return "event-router"
}
