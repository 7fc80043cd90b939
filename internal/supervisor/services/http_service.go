// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// HTTPServer is the subset of *http.Server the service drives.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
	Close() error
}

// HTTPServerService runs the API server under supervision. On shutdown it
// drains in-flight requests for up to drainTimeout, then drops whatever
// connections remain.
type HTTPServerService struct {
	server       HTTPServer
	drainTimeout time.Duration
	logger       zerolog.Logger
}

// NewHTTPServerService wraps server.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHTTPServerService(server HTTPServer, drainTimeout time.Duration, logger zerolog.Logger) *HTTPServerService {
	return &HTTPServerService{
		server:       server,
		drainTimeout: drainTimeout,
		logger:       logger.With().Str("service", "http-server").Logger(),
	}
}

// Serve implements suture.Service.
func (s *HTTPServerService) Serve(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		err := s.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		done <- err
	}()
	s.logger.Info().Msg("HTTP server listening")

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		// Stopped by someone else; nothing left to drain.
		return nil
	case <-ctx.Done():
	}

	// ctx is already cancelled; the drain needs its own deadline.
	drainCtx, cancel := context.WithTimeout(context.Background(), s.drainTimeout)
	defer cancel()
	if err := s.server.Shutdown(drainCtx); err != nil {
		s.logger.Warn().Err(err).Dur("drain_timeout", s.drainTimeout).Msg("HTTP drain incomplete, closing connections")
		if cerr := s.server.Close(); cerr != nil {
			return fmt.Errorf("http close: %w", cerr)
		}
	}
	<-done
	s.logger.Info().Msg("HTTP server stopped")
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logs.
func (s *HTTPServerService) String() string {
	return "http-server"
}
