// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

// Package logging provides the service-wide zerolog logger.
//
// A global logger is configured once from main with Init and used through the
// package-level helpers or handed to components as a zerolog.Logger value.
// Request and correlation ids travel in the context:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("addr", addr).Msg("http server listening")
//	logging.Ctx(ctx).Warn().Err(err).Msg("cache set failed")
//
// Two adapters route third-party logs through the same logger:
// SlogHandler for the suture supervisor (via sutureslog) and WatermillLogger
// for the event router.
//
// Environment variables LOG_LEVEL, LOG_FORMAT and LOG_CALLER are read by the
// config package and passed to Init.
package logging
