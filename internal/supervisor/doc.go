// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

/*
Package supervisor provides suture-based process supervision.

Tree layout:

	affinity (root)
	├── data-layer
	│   ├── graph-build   (services.GraphBuildService)
	│   └── catalog-sync  (services.CatalogSyncService, when enabled)
	├── messaging-layer
	│   └── event-router  (services.EventRouterService, when enabled)
	└── api-layer
	    └── http-server   (services.HTTPServerService)

Supervisor events (restarts, backoff, panics) are logged through
thejerf/sutureslog with a slog handler backed by zerolog.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewGraphBuildService(builder, cfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, logger))
	err = tree.Serve(ctx)
*/
package supervisor
