// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

// Package services holds the suture.Service implementations run by the
// supervisor tree: the HTTP server, the periodic graph build and catalog
// sync jobs, and the event router.
package services
