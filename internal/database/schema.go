// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package database

import (
	"context"
	"fmt"
	"time"
)

func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

func (db *DB) createTables(ctx context.Context) error {
	queries := []string{
		// seasonal_months is a bitmask: bit m set for calendar month m.
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT,
			category TEXT,
			price DOUBLE,
			owner_id TEXT,
			seasonal_months INTEGER NOT NULL DEFAULT 0,
			purchase_count BIGINT NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS user_product_interactions (
			user_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			interaction_type TEXT NOT NULL,
			interaction_count BIGINT NOT NULL,
			interaction_score DOUBLE NOT NULL,
			last_updated TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, product_id, interaction_type)
		)`,
		`CREATE TABLE IF NOT EXISTS product_relationships (
			source_product_id TEXT NOT NULL,
			target_product_id TEXT NOT NULL,
			relationship_type TEXT NOT NULL,
			strength_score DOUBLE NOT NULL,
			occurrence_count BIGINT NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (source_product_id, target_product_id, relationship_type)
		)`,
	}
	for _, q := range queries {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to execute schema query: %w", err)
		}
	}
	return nil
}

func (db *DB) createIndexes(ctx context.Context) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_interactions_user ON user_product_interactions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_updated ON user_product_interactions(last_updated)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_type ON user_product_interactions(interaction_type, user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_relationships_source ON product_relationships(source_product_id, relationship_type)`,
		`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)`,
	}
	for _, q := range indexes {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
