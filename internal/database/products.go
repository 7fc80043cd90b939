// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/affinity/internal/metrics"
	"github.com/tomtom215/affinity/internal/recommend"
)

const productColumns = `id, name, category, price, owner_id, seasonal_months, purchase_count`

// UpsertProducts inserts or replaces catalog rows in a single transaction.
func (db *DB) UpsertProducts(ctx context.Context, products []recommend.Product) error {
	if len(products) == 0 {
		return nil
	}
	start := time.Now()
	err := withRetry(ctx, "upsert products", func(ctx context.Context) error {
		tx, err := db.conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after commit

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO products (`+productColumns+`, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				category = EXCLUDED.category,
				price = EXCLUDED.price,
				owner_id = EXCLUDED.owner_id,
				seasonal_months = EXCLUDED.seasonal_months,
				purchase_count = EXCLUDED.purchase_count,
				updated_at = EXCLUDED.updated_at`)
		if err != nil {
			return fmt.Errorf("failed to prepare product upsert: %w", err)
		}
		defer closeQuietly(stmt)

		now := time.Now().UTC()
		for i := range products {
			p := &products[i]
			if p.ID == "" {
				return fmt.Errorf("product at index %d has empty id", i)
			}
			if _, err := stmt.ExecContext(ctx,
				p.ID, nullString(p.Name), nullString(p.Category), nullFloat(p.Price),
				nullString(p.OwnerID), int64(p.SeasonalMonths), p.PurchaseCount, now,
			); err != nil {
				return fmt.Errorf("failed to upsert product %s: %w", p.ID, err)
			}
		}
		return tx.Commit()
	})
	metrics.RecordDBQuery("upsert", "products", time.Since(start), err)
	return err
}

// AllProducts returns the full catalog ordered by id.
func (db *DB) AllProducts(ctx context.Context) ([]recommend.Product, error) {
	start := time.Now()
	products, err := db.queryProducts(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	metrics.RecordDBQuery("select", "products", time.Since(start), err)
	return products, err
}

// ProductsByIDs returns the known products among ids keyed by id.
func (db *DB) ProductsByIDs(ctx context.Context, ids []string) (map[string]recommend.Product, error) {
	out := make(map[string]recommend.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	start := time.Now()
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	products, err := db.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE id IN (`+placeholders+`)`, args...)
	metrics.RecordDBQuery("select_by_ids", "products", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// ProductCount returns the number of catalog rows.
func (db *DB) ProductCount(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

func (db *DB) queryProducts(ctx context.Context, query string, args ...any) ([]recommend.Product, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer closeQuietly(rows)

	products := make([]recommend.Product, 0)
	for rows.Next() {
		var p recommend.Product
		var name, category, owner sql.NullString
		var price sql.NullFloat64
		var months int64
		if err := rows.Scan(&p.ID, &name, &category, &price, &owner, &months, &p.PurchaseCount); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		p.Name = name.String
		p.Category = category.String
		p.OwnerID = owner.String
		p.SeasonalMonths = recommend.MonthSet(months)
		if price.Valid {
			v := price.Float64
			p.Price = &v
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
