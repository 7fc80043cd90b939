// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tomtom215/affinity/internal/logging"
)

const (
	maxWriteAttempts = 3
	writeTimeout     = 30 * time.Second
)

// closeQuietly closes c and logs a failure instead of returning it.
func closeQuietly(c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.Debug().Err(err).Msg("close failed")
	}
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isTransactionConflict reports a DuckDB optimistic concurrency conflict.
// These are transient and safe to retry.
func isTransactionConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Transaction conflict") ||
		strings.Contains(msg, "Conflict on update") ||
		strings.Contains(msg, "cannot update a table that has been altered")
}

// isInternalError reports a DuckDB internal error. Retrying will not help.
func isInternalError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "INTERNAL Error")
}

// withRetry runs fn up to maxWriteAttempts times, backing off 1ms, 2ms, 4ms
// between transaction conflicts. Other errors are returned immediately.
func withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Millisecond
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s: %w", op, ctx.Err())
			case <-time.After(backoff):
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if isInternalError(lastErr) {
			logging.Error().Err(lastErr).Str("op", op).Msg("DuckDB internal error")
			return fmt.Errorf("%s: %w", op, lastErr)
		}
		if !isTransactionConflict(lastErr) {
			return fmt.Errorf("%s: %w", op, lastErr)
		}
		logging.Debug().Err(lastErr).Str("op", op).Int("attempt", attempt+1).Msg("Transaction conflict, retrying")
	}
	return fmt.Errorf("%s failed after %d attempts: %w", op, maxWriteAttempts, lastErr)
}
