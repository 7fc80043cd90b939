// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package graphexport

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/affinity/internal/recommend"
	"github.com/tomtom215/affinity/internal/recommend/graph"
)

const constraintQuery = `CREATE CONSTRAINT product_id IF NOT EXISTS FOR (p:Product) REQUIRE p.id IS UNIQUE`

// EdgeScanner is satisfied by *database.DB.
type EdgeScanner interface {
	ScanEdges(ctx context.Context, t recommend.RelationshipType, fn func(recommend.Edge) error) error
}

// ExportStats summarizes one export.
type ExportStats struct {
	Edges    map[string]int
	Batches  int
	Duration time.Duration
}

// Exporter mirrors the relationship graph into Neo4j. Each export stamps
// every written relationship with the export time and then removes
// relationships of the same type carrying an older stamp.
type Exporter struct {
	runner    Runner
	edges     EdgeScanner
	batchSize int
	timeout   time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewExporter creates an exporter. batchSize bounds the rows per UNWIND query.
func NewExporter(runner Runner, edges EdgeScanner, batchSize int, timeout time.Duration, logger zerolog.Logger) *Exporter {
	if batchSize < 1 {
		batchSize = 500
	}
	return &Exporter{
		runner:    runner,
		edges:     edges,
		batchSize: batchSize,
		timeout:   timeout,
		logger:    logger.With().Str("component", "graph-export").Logger(),
		now:       time.Now,
	}
}

// EnsureSchema creates the Product id uniqueness constraint.
func (e *Exporter) EnsureSchema(ctx context.Context) error {
	if _, err := e.runner.Run(ctx, constraintQuery, nil); err != nil {
		return fmt.Errorf("create product constraint: %w", err)
	}
	return nil
}

// Hook adapts Export to a graph builder completion hook.
func (e *Exporter) Hook() graph.Hook {
	return func(ctx context.Context, _ graph.BuildStats) error {
		_, err := e.Export(ctx)
		return err
	}
}

// Export writes every edge of every relationship type.
func (e *Exporter) Export(ctx context.Context) (ExportStats, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := e.now()
	stamp := start.UTC().UnixMilli()
	stats := ExportStats{Edges: make(map[string]int)}

	for _, rt := range recommend.RelationshipTypes() {
		n, batches, err := e.exportType(ctx, rt, stamp)
		stats.Batches += batches
		if err != nil {
			return stats, fmt.Errorf("export %s: %w", rt, err)
		}
		stats.Edges[rt.String()] = n

		if _, err := e.runner.Run(ctx, pruneQuery(rt), map[string]any{"stamp": stamp}); err != nil {
			return stats, fmt.Errorf("prune %s: %w", rt, err)
		}
	}

	stats.Duration = e.now().Sub(start)
	e.logger.Info().
		Interface("edges", stats.Edges).
		Int("batches", stats.Batches).
		Dur("duration", stats.Duration).
		Msg("Relationship graph exported")
	return stats, nil
}

func (e *Exporter) exportType(ctx context.Context, rt recommend.RelationshipType, stamp int64) (int, int, error) {
	query := mergeQuery(rt)
	rows := make([]map[string]any, 0, e.batchSize)
	total, batches := 0, 0

	flush := func() error {
		if len(rows) == 0 {
			return nil
		}
		if _, err := e.runner.Run(ctx, query, map[string]any{"rows": rows, "stamp": stamp}); err != nil {
			return err
		}
		total += len(rows)
		batches++
		rows = make([]map[string]any, 0, e.batchSize)
		return nil
	}

	err := e.edges.ScanEdges(ctx, rt, func(edge recommend.Edge) error {
		rows = append(rows, map[string]any{
			"source":   edge.SourceID,
			"target":   edge.TargetID,
			"strength": edge.Strength,
			"count":    edge.OccurrenceCount,
		})
		if len(rows) >= e.batchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return total, batches, err
	}
	if err := flush(); err != nil {
		return total, batches, err
	}
	return total, batches, nil
}

// Cypher cannot parameterize relationship types; rt is a closed enum.
func mergeQuery(rt recommend.RelationshipType) string {
	return `UNWIND $rows AS row
MERGE (a:Product {id: row.source})
MERGE (b:Product {id: row.target})
MERGE (a)-[r:` + rt.String() + `]->(b)
SET r.strength = row.strength, r.occurrences = row.count, r.exported_at = $stamp`
}

func pruneQuery(rt recommend.RelationshipType) string {
	return `MATCH ()-[r:` + rt.String() + `]->() WHERE r.exported_at < $stamp DELETE r`
}
