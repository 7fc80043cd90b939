// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Job is one unit of periodic work.
type Job func(ctx context.Context) error

// PeriodicConfig controls a PeriodicService.
type PeriodicConfig struct {
	Name      string
	Interval  time.Duration
	Timeout   time.Duration
	OnStartup bool

	// Quiet errors are logged at debug instead of error.
	Quiet []error
}

// PeriodicService runs a job on a ticker. Job errors are logged and do not
// stop the service; suture only restarts it on panic.
type PeriodicService struct {
	job    Job
	cfg    PeriodicConfig
	logger zerolog.Logger
}

// NewPeriodicService creates the service. A zero Interval disables the
// ticker, leaving only the startup run.
func NewPeriodicService(job Job, cfg PeriodicConfig, logger zerolog.Logger) *PeriodicService {
	return &PeriodicService{
		job:    job,
		cfg:    cfg,
		logger: logger.With().Str("service", cfg.Name).Logger(),
	}
}

// Serve implements suture.Service.
func (s *PeriodicService) Serve(ctx context.Context) error {
	s.logger.Info().
		Dur("interval", s.cfg.Interval).
		Bool("on_startup", s.cfg.OnStartup).
		Msg("Periodic service started")

	if s.cfg.OnStartup {
		s.runOnce(ctx)
	}

	if s.cfg.Interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Periodic service stopping")
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *PeriodicService) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	runCtx := ctx
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	err := s.job(runCtx)
	switch {
	case err == nil:
		s.logger.Debug().Dur("duration", time.Since(start)).Msg("Periodic run completed")
	case ctx.Err() != nil:
		// Shutdown interrupted the run.
	case s.quiet(err):
		s.logger.Debug().Err(err).Msg("Periodic run skipped")
	default:
		s.logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("Periodic run failed")
	}
}

func (s *PeriodicService) quiet(err error) bool {
	for _, q := range s.cfg.Quiet {
		if errors.Is(err, q) {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer for supervisor logs.
func (s *PeriodicService) String() string {
	return s.cfg.Name
}
