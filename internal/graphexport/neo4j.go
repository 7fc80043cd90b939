// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package graphexport

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/tomtom215/affinity/internal/config"
)

// Runner executes a Cypher query and returns the buffered result.
type Runner interface {
	Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error)
}

// Neo4jRunner runs queries through the official driver.
type Neo4jRunner struct {
	driver neo4j.DriverWithContext
	dbName string
}

// NewNeo4jRunner creates a driver for cfg. No connection is made until the
// first query or Verify.
func NewNeo4jRunner(cfg *config.GraphExportConfig) (*Neo4jRunner, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("could not create Neo4j driver: %w", err)
	}
	return &Neo4jRunner{driver: driver, dbName: cfg.Database}, nil
}

// Verify checks connectivity.
func (r *Neo4jRunner) Verify(ctx context.Context) error {
	return r.driver.VerifyConnectivity(ctx)
}

// Run implements Runner.
func (r *Neo4jRunner) Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	opts := []neo4j.ExecuteQueryConfigurationOption{}
	if r.dbName != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(r.dbName))
	}
	result, err := neo4j.ExecuteQuery(ctx, r.driver, query, params, neo4j.EagerResultTransformer, opts...)
	if err != nil {
		return nil, fmt.Errorf("error executing neo4j query: %w", err)
	}
	return result, nil
}

// Close closes the driver.
func (r *Neo4jRunner) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}
