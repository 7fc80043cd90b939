// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/affinity/internal/metrics"
	"github.com/tomtom215/affinity/internal/recommend"
	"github.com/tomtom215/affinity/internal/recommend/algorithms"
)

const edgeColumns = `source_product_id, target_product_id, relationship_type, strength_score, occurrence_count`

// UpsertEdgePair writes e and its reverse in one transaction. An existing row
// keeps a share of its old strength (see algorithms.BlendStrength) and takes
// the new occurrence count.
func (db *DB) UpsertEdgePair(ctx context.Context, e recommend.Edge) error {
	if e.SourceID == "" || e.TargetID == "" || e.SourceID == e.TargetID {
		return fmt.Errorf("invalid edge %q -> %q", e.SourceID, e.TargetID)
	}
	unlock := db.acquireRowLock(edgeKey(e.SourceID, e.TargetID, e.Type))
	defer unlock()

	start := time.Now()
	err := withRetry(ctx, "upsert edge pair", func(ctx context.Context) error {
		tx, err := db.conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		for _, edge := range []recommend.Edge{e, e.Reverse()} {
			if err := upsertEdge(ctx, tx, edge); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	metrics.RecordDBQuery("upsert_pair", "product_relationships", time.Since(start), err)
	return err
}

func upsertEdge(ctx context.Context, tx *sql.Tx, e recommend.Edge) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO product_relationships (`+edgeColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (source_product_id, target_product_id, relationship_type) DO UPDATE SET
			strength_score = LEAST(1.0, GREATEST(0.0, ? * strength_score + ? * EXCLUDED.strength_score)),
			occurrence_count = EXCLUDED.occurrence_count,
			updated_at = EXCLUDED.updated_at`,
		e.SourceID, e.TargetID, e.Type.String(), algorithms.Clamp01(e.Strength), e.OccurrenceCount, time.Now().UTC(),
		algorithms.BlendRetain, algorithms.BlendIncoming)
	if err != nil {
		return fmt.Errorf("failed to upsert edge %s -> %s: %w", e.SourceID, e.TargetID, err)
	}
	return nil
}

// Neighbors returns the outgoing edges of productID with type t, strongest first.
func (db *DB) Neighbors(ctx context.Context, productID string, t recommend.RelationshipType) ([]recommend.Edge, error) {
	start := time.Now()
	edges, err := db.queryEdges(ctx, `
		SELECT `+edgeColumns+`
		FROM product_relationships
		WHERE source_product_id = ? AND relationship_type = ?
		ORDER BY strength_score DESC, target_product_id`, productID, t.String())
	metrics.RecordDBQuery("neighbors", "product_relationships", time.Since(start), err)
	return edges, err
}

// NeighborsPage pages through the outgoing edges of productID whose targets
// are still in the catalog.
func (db *DB) NeighborsPage(ctx context.Context, productID string, t recommend.RelationshipType, page recommend.PageRequest) (recommend.Page[recommend.Edge], error) {
	const from = `
		FROM product_relationships r
		JOIN products p ON p.id = r.target_product_id
		WHERE r.source_product_id = ? AND r.relationship_type = ?`

	start := time.Now()
	var total int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*)`+from, productID, t.String()).Scan(&total)
	if err != nil {
		metrics.RecordDBQuery("neighbors_page", "product_relationships", time.Since(start), err)
		return recommend.Page[recommend.Edge]{}, fmt.Errorf("failed to count neighbors: %w", err)
	}
	if total == 0 {
		return recommend.EmptyPage[recommend.Edge](), nil
	}

	edges, err := db.queryEdges(ctx, `
		SELECT r.source_product_id, r.target_product_id, r.relationship_type, r.strength_score, r.occurrence_count`+from+`
		ORDER BY r.strength_score DESC, r.target_product_id
		LIMIT ? OFFSET ?`, productID, t.String(), page.Limit(), page.Offset())
	metrics.RecordDBQuery("neighbors_page", "product_relationships", time.Since(start), err)
	if err != nil {
		return recommend.Page[recommend.Edge]{}, err
	}
	return recommend.Page[recommend.Edge]{Items: edges, TotalCount: total}, nil
}

// ScanEdges calls fn for every edge of type t in (source, target) order.
func (db *DB) ScanEdges(ctx context.Context, t recommend.RelationshipType, fn func(recommend.Edge) error) error {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+edgeColumns+`
		FROM product_relationships
		WHERE relationship_type = ?
		ORDER BY source_product_id, target_product_id`, t.String())
	if err != nil {
		return fmt.Errorf("failed to scan edges: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating edges: %w", err)
	}
	return nil
}

// EdgeCount returns the number of stored edges of type t.
func (db *DB) EdgeCount(ctx context.Context, t recommend.RelationshipType) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM product_relationships WHERE relationship_type = ?`, t.String()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count edges: %w", err)
	}
	return n, nil
}

func (db *DB) queryEdges(ctx context.Context, query string, args ...any) ([]recommend.Edge, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer closeQuietly(rows)

	edges := make([]recommend.Edge, 0)
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating edges: %w", err)
	}
	return edges, nil
}

func scanEdge(rows *sql.Rows) (recommend.Edge, error) {
	var (
		e   recommend.Edge
		rel string
	)
	if err := rows.Scan(&e.SourceID, &e.TargetID, &rel, &e.Strength, &e.OccurrenceCount); err != nil {
		return recommend.Edge{}, fmt.Errorf("failed to scan edge: %w", err)
	}
	t, err := recommend.ParseRelationshipType(rel)
	if err != nil {
		return recommend.Edge{}, fmt.Errorf("edge %s->%s: %w", e.SourceID, e.TargetID, err)
	}
	e.Type = t
	return e, nil
}
