// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package database

import (
	"context"
	"math"
	"testing"

	"github.com/tomtom215/affinity/internal/recommend"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func edgeBetween(t *testing.T, db *DB, source, target string, rt recommend.RelationshipType) recommend.Edge {
	t.Helper()
	edges, err := db.Neighbors(context.Background(), source, rt)
	if err != nil {
		t.Fatalf("Neighbors(%s) error = %v", source, err)
	}
	for _, e := range edges {
		if e.TargetID == target {
			return e
		}
	}
	t.Fatalf("edge %s -> %s (%s) not found", source, target, rt)
	return recommend.Edge{}
}

func TestUpsertEdgePairSymmetricAndBlended(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	rt := recommend.RelationshipBoughtTogether

	if err := db.UpsertEdgePair(ctx, recommend.Edge{SourceID: "a", TargetID: "b", Type: rt, Strength: 0.5, OccurrenceCount: 5}); err != nil {
		t.Fatalf("UpsertEdgePair() error = %v", err)
	}
	ab, ba := edgeBetween(t, db, "a", "b", rt), edgeBetween(t, db, "b", "a", rt)
	if !approx(ab.Strength, 0.5) || !approx(ba.Strength, 0.5) {
		t.Errorf("strengths after insert = %v / %v, want 0.5", ab.Strength, ba.Strength)
	}

	// Reverse direction written second still blends both rows identically.
	if err := db.UpsertEdgePair(ctx, recommend.Edge{SourceID: "b", TargetID: "a", Type: rt, Strength: 1.0, OccurrenceCount: 10}); err != nil {
		t.Fatalf("UpsertEdgePair() error = %v", err)
	}
	ab, ba = edgeBetween(t, db, "a", "b", rt), edgeBetween(t, db, "b", "a", rt)
	if !approx(ab.Strength, 0.65) || !approx(ba.Strength, 0.65) {
		t.Errorf("strengths after blend = %v / %v, want 0.65", ab.Strength, ba.Strength)
	}
	if ab.OccurrenceCount != 10 || ba.OccurrenceCount != 10 {
		t.Errorf("occurrence counts = %d / %d, want replaced with 10", ab.OccurrenceCount, ba.OccurrenceCount)
	}

	n, err := db.EdgeCount(ctx, rt)
	if err != nil || n != 2 {
		t.Errorf("EdgeCount() = %d, %v, want 2", n, err)
	}
	n, err = db.EdgeCount(ctx, recommend.RelationshipSimilar)
	if err != nil || n != 0 {
		t.Errorf("EdgeCount(SIMILAR) = %d, %v, want 0", n, err)
	}
}

func TestUpsertEdgePairClampsStrength(t *testing.T) {
	db := setupTestDB(t)
	err := db.UpsertEdgePair(context.Background(), recommend.Edge{SourceID: "a", TargetID: "b", Type: recommend.RelationshipSimilar, Strength: 3})
	if err != nil {
		t.Fatalf("UpsertEdgePair() error = %v", err)
	}
	if e := edgeBetween(t, db, "a", "b", recommend.RelationshipSimilar); e.Strength != 1 {
		t.Errorf("Strength = %v, want 1", e.Strength)
	}
}

func TestUpsertEdgePairRejectsInvalid(t *testing.T) {
	db := setupTestDB(t)
	tests := []recommend.Edge{
		{SourceID: "a", TargetID: "a", Type: recommend.RelationshipSimilar},
		{SourceID: "", TargetID: "b", Type: recommend.RelationshipSimilar},
	}
	for _, e := range tests {
		if err := db.UpsertEdgePair(context.Background(), e); err == nil {
			t.Errorf("UpsertEdgePair(%+v) error = nil, want error", e)
		}
	}
}

func TestNeighborsPage(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	rt := recommend.RelationshipSimilar
	seedProducts(t, db, recommend.Product{ID: "a"}, recommend.Product{ID: "b"}, recommend.Product{ID: "c"}, recommend.Product{ID: "d"})

	for _, e := range []recommend.Edge{
		{SourceID: "a", TargetID: "b", Type: rt, Strength: 0.6},
		{SourceID: "a", TargetID: "c", Type: rt, Strength: 0.9},
		{SourceID: "a", TargetID: "d", Type: rt, Strength: 0.6},
		{SourceID: "a", TargetID: "removed", Type: rt, Strength: 1.0},
	} {
		if err := db.UpsertEdgePair(ctx, e); err != nil {
			t.Fatalf("UpsertEdgePair() error = %v", err)
		}
	}

	all, err := db.Neighbors(ctx, "a", rt)
	if err != nil || len(all) != 4 || all[0].TargetID != "removed" {
		t.Errorf("Neighbors() = %+v, %v, want 4 edges led by removed", all, err)
	}

	page, err := db.NeighborsPage(ctx, "a", rt, recommend.PageRequest{PageSize: 2})
	if err != nil {
		t.Fatalf("NeighborsPage() error = %v", err)
	}
	if page.TotalCount != 3 {
		t.Errorf("TotalCount = %d, want 3", page.TotalCount)
	}
	want := []string{"c", "b"}
	if len(page.Items) != 2 || page.Items[0].TargetID != want[0] || page.Items[1].TargetID != want[1] {
		t.Errorf("page 0 = %+v, want targets %v", page.Items, want)
	}

	page, err = db.NeighborsPage(ctx, "a", rt, recommend.PageRequest{PageNumber: 1, PageSize: 2})
	if err != nil || len(page.Items) != 1 || page.Items[0].TargetID != "d" {
		t.Errorf("page 1 = %+v, %v, want [d]", page.Items, err)
	}

	page, err = db.NeighborsPage(ctx, "zzz", rt, recommend.PageRequest{})
	if err != nil || page.TotalCount != 0 || page.Items == nil {
		t.Errorf("NeighborsPage(unknown) = %+v, %v, want empty non-nil page", page, err)
	}
}

func TestScanEdges(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	if err := db.UpsertEdgePair(ctx, recommend.Edge{SourceID: "x", TargetID: "y", Type: recommend.RelationshipViewedTogether, Strength: 0.2, OccurrenceCount: 4}); err != nil {
		t.Fatalf("UpsertEdgePair() error = %v", err)
	}
	var got []recommend.Edge
	err := db.ScanEdges(ctx, recommend.RelationshipViewedTogether, func(e recommend.Edge) error {
		got = append(got, e)
		return nil
	})
	if err != nil {
		t.Fatalf("ScanEdges() error = %v", err)
	}
	if len(got) != 2 || got[0].SourceID != "x" || got[1].SourceID != "y" {
		t.Errorf("ScanEdges() = %+v, want x->y then y->x", got)
	}
	if got[0].Type != recommend.RelationshipViewedTogether || got[0].OccurrenceCount != 4 {
		t.Errorf("edge = %+v", got[0])
	}
}
