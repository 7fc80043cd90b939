// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package database

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/affinity/internal/recommend"
)

func TestUpsertProducts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	winter := recommend.NewMonthSet(time.December, time.January, time.February)
	seedProducts(t, db,
		recommend.Product{ID: "p1", Name: "Scarf", Category: "apparel", Price: price(19.5), OwnerID: "s1", SeasonalMonths: winter, PurchaseCount: 7},
		recommend.Product{ID: "p2", Name: "Mug"},
	)

	all, err := db.AllProducts(ctx)
	if err != nil {
		t.Fatalf("AllProducts() error = %v", err)
	}
	if len(all) != 2 || all[0].ID != "p1" || all[1].ID != "p2" {
		t.Fatalf("AllProducts() = %+v, want p1, p2", all)
	}
	p1 := all[0]
	if p1.Price == nil || *p1.Price != 19.5 {
		t.Errorf("p1.Price = %v, want 19.5", p1.Price)
	}
	if p1.SeasonalMonths != winter {
		t.Errorf("p1.SeasonalMonths = %v, want %v", p1.SeasonalMonths, winter)
	}
	if p1.Category != "apparel" || p1.OwnerID != "s1" || p1.PurchaseCount != 7 {
		t.Errorf("p1 = %+v", p1)
	}
	if all[1].Price != nil || all[1].Category != "" {
		t.Errorf("p2 = %+v, want nil price and empty category", all[1])
	}

	// Upsert replaces existing rows.
	seedProducts(t, db, recommend.Product{ID: "p2", Name: "Mug", Category: "kitchen", PurchaseCount: 3})
	got, err := db.ProductsByIDs(ctx, []string{"p2", "missing"})
	if err != nil {
		t.Fatalf("ProductsByIDs() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ProductsByIDs() returned %d products, want 1", len(got))
	}
	if got["p2"].Category != "kitchen" || got["p2"].PurchaseCount != 3 {
		t.Errorf("p2 after update = %+v", got["p2"])
	}

	n, err := db.ProductCount(ctx)
	if err != nil || n != 2 {
		t.Errorf("ProductCount() = %d, %v, want 2", n, err)
	}
}

func TestUpsertProductsRejectsEmptyID(t *testing.T) {
	db := setupTestDB(t)
	err := db.UpsertProducts(context.Background(), []recommend.Product{{ID: "ok"}, {ID: ""}})
	if err == nil {
		t.Fatal("UpsertProducts() error = nil, want error for empty id")
	}
	// The batch is one transaction, so nothing is written.
	n, err := db.ProductCount(context.Background())
	if err != nil || n != 0 {
		t.Errorf("ProductCount() = %d, %v, want 0", n, err)
	}
}

func TestProductsByIDsEmpty(t *testing.T) {
	db := setupTestDB(t)
	got, err := db.ProductsByIDs(context.Background(), nil)
	if err != nil || len(got) != 0 {
		t.Errorf("ProductsByIDs(nil) = %v, %v, want empty map", got, err)
	}
}
