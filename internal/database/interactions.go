// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/affinity/internal/metrics"
	"github.com/tomtom215/affinity/internal/recommend"
)

// UpsertInteraction records one occurrence of t for (userID, productID).
//
// The first occurrence inserts a row with count 1; later ones increment the
// count in the same statement and recompute score = weight * count, so
// concurrent callers never lose an increment. Writers of the same key are
// additionally serialized in-process to avoid DuckDB conflict churn.
func (db *DB) UpsertInteraction(ctx context.Context, userID, productID string, t recommend.InteractionType, at time.Time) error {
	if !t.Valid() {
		return fmt.Errorf("%w: type %d", recommend.ErrInvalidInteraction, int(t))
	}
	unlock := db.acquireRowLock(interactionKey(userID, productID, t))
	defer unlock()

	start := time.Now()
	weight := t.Weight()
	err := withRetry(ctx, "upsert interaction", func(ctx context.Context) error {
		_, err := db.conn.ExecContext(ctx, `
			INSERT INTO user_product_interactions
				(user_id, product_id, interaction_type, interaction_count, interaction_score, last_updated)
			VALUES (?, ?, ?, 1, ?, ?)
			ON CONFLICT (user_id, product_id, interaction_type) DO UPDATE SET
				interaction_count = interaction_count + 1,
				interaction_score = (interaction_count + 1) * ?,
				last_updated = EXCLUDED.last_updated`,
			userID, productID, t.String(), weight, at.UTC(), weight)
		return err
	})
	metrics.RecordDBQuery("upsert", "user_product_interactions", time.Since(start), err)
	return err
}

// Interaction returns the stored counter row, or false when none exists.
func (db *DB) Interaction(ctx context.Context, userID, productID string, t recommend.InteractionType) (recommend.Interaction, bool, error) {
	in := recommend.Interaction{UserID: userID, ProductID: productID, Type: t}
	err := db.conn.QueryRowContext(ctx, `
		SELECT interaction_count, interaction_score, last_updated
		FROM user_product_interactions
		WHERE user_id = ? AND product_id = ? AND interaction_type = ?`,
		userID, productID, t.String()).Scan(&in.Count, &in.Score, &in.LastUpdated)
	if isNoRows(err) {
		return recommend.Interaction{}, false, nil
	}
	if err != nil {
		return recommend.Interaction{}, false, fmt.Errorf("failed to query interaction: %w", err)
	}
	return in, true, nil
}

// TopUserProducts returns the user's k highest scoring products across all
// interaction types.
func (db *DB) TopUserProducts(ctx context.Context, userID string, k int) ([]string, error) {
	if k <= 0 {
		return []string{}, nil
	}
	start := time.Now()
	ids, err := db.queryIDs(ctx, `
		SELECT product_id
		FROM user_product_interactions
		WHERE user_id = ?
		GROUP BY product_id
		ORDER BY SUM(interaction_score) DESC, product_id
		LIMIT ?`, userID, k)
	metrics.RecordDBQuery("top_user_products", "user_product_interactions", time.Since(start), err)
	return ids, err
}

// UserProductIDs returns every product the user has interacted with.
func (db *DB) UserProductIDs(ctx context.Context, userID string) ([]string, error) {
	start := time.Now()
	ids, err := db.queryIDs(ctx, `
		SELECT DISTINCT product_id
		FROM user_product_interactions
		WHERE user_id = ?
		ORDER BY product_id`, userID)
	metrics.RecordDBQuery("user_products", "user_product_interactions", time.Since(start), err)
	return ids, err
}

// TrendingProducts ranks catalog products by the summed score of interactions
// updated at or after since.
func (db *DB) TrendingProducts(ctx context.Context, since time.Time, page recommend.PageRequest) (recommend.Page[recommend.ScoredID], error) {
	start := time.Now()
	result, err := db.trendingProducts(ctx, since.UTC(), page)
	metrics.RecordDBQuery("trending", "user_product_interactions", time.Since(start), err)
	return result, err
}

func (db *DB) trendingProducts(ctx context.Context, since time.Time, page recommend.PageRequest) (recommend.Page[recommend.ScoredID], error) {
	const recent = `
		FROM user_product_interactions i
		JOIN products p ON p.id = i.product_id
		WHERE i.last_updated >= ?`

	var total int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(DISTINCT i.product_id)`+recent, since).Scan(&total); err != nil {
		return recommend.Page[recommend.ScoredID]{}, fmt.Errorf("failed to count trending products: %w", err)
	}
	if total == 0 {
		return recommend.EmptyPage[recommend.ScoredID](), nil
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT i.product_id, SUM(i.interaction_score) AS score`+recent+`
		GROUP BY i.product_id
		ORDER BY score DESC, i.product_id
		LIMIT ? OFFSET ?`, since, page.Limit(), page.Offset())
	if err != nil {
		return recommend.Page[recommend.ScoredID]{}, fmt.Errorf("failed to query trending products: %w", err)
	}
	defer closeQuietly(rows)

	items := make([]recommend.ScoredID, 0, page.Limit())
	for rows.Next() {
		var s recommend.ScoredID
		if err := rows.Scan(&s.ProductID, &s.Score); err != nil {
			return recommend.Page[recommend.ScoredID]{}, fmt.Errorf("failed to scan trending row: %w", err)
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return recommend.Page[recommend.ScoredID]{}, fmt.Errorf("error iterating trending rows: %w", err)
	}
	return recommend.Page[recommend.ScoredID]{Items: items, TotalCount: total}, nil
}

// ScanUserProducts streams, per user, the distinct products the user
// interacted with under t. Users arrive in id order.
func (db *DB) ScanUserProducts(ctx context.Context, t recommend.InteractionType, fn func(userID string, productIDs []string) error) error {
	start := time.Now()
	err := db.scanUserProducts(ctx, t, fn)
	metrics.RecordDBQuery("scan_user_products", "user_product_interactions", time.Since(start), err)
	return err
}

func (db *DB) scanUserProducts(ctx context.Context, t recommend.InteractionType, fn func(string, []string) error) error {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT user_id, product_id
		FROM user_product_interactions
		WHERE interaction_type = ?
		GROUP BY user_id, product_id
		ORDER BY user_id, product_id`, t.String())
	if err != nil {
		return fmt.Errorf("failed to scan user products: %w", err)
	}
	defer closeQuietly(rows)

	var (
		current  string
		products []string
	)
	for rows.Next() {
		var userID, productID string
		if err := rows.Scan(&userID, &productID); err != nil {
			return fmt.Errorf("failed to scan user product row: %w", err)
		}
		if userID != current && len(products) > 0 {
			if err := fn(current, products); err != nil {
				return err
			}
			products = nil
		}
		current = userID
		products = append(products, productID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating user products: %w", err)
	}
	if len(products) > 0 {
		return fn(current, products)
	}
	return nil
}

func (db *DB) queryIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query product ids: %w", err)
	}
	defer closeQuietly(rows)

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan product id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product ids: %w", err)
	}
	return ids, nil
}
