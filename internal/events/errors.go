// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package events

import "errors"

// ErrNATSNotEnabled is returned when the nats transport is requested from a
// binary built without the nats tag.
var ErrNATSNotEnabled = errors.New("NATS transport not enabled (build with -tags nats)")

// ErrUnknownTransport is returned for an unsupported transport name.
var ErrUnknownTransport = errors.New("unknown event transport")

// PermanentError marks a message that must not be retried (malformed payload,
// failed validation). The router sends it straight to the poison queue.
type PermanentError struct {
	Message string
	Cause   error
}

// NewPermanentError creates a new permanent error.
func NewPermanentError(message string, cause error) *PermanentError {
	return &PermanentError{Message: message, Cause: cause}
}

func (e *PermanentError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *PermanentError) Unwrap() error {
	return e.Cause
}

// IsPermanentError reports whether err is or wraps a *PermanentError.
func IsPermanentError(err error) bool {
	var permErr *PermanentError
	return errors.As(err, &permErr)
}
