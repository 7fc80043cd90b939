// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package recommend

import (
	"errors"
	"testing"

	"github.com/goccy/go-json"
)

func TestInteractionTypeWeight(t *testing.T) {
	tests := []struct {
		typ  InteractionType
		name string
		want float64
	}{
		{InteractionView, "VIEW", 1},
		{InteractionCart, "CART", 2},
		{InteractionWishlist, "WISHLIST", 3},
		{InteractionReview, "REVIEW", 4},
		{InteractionPurchase, "PURCHASE", 5},
		{InteractionType(0), "UNKNOWN", 0},
		{InteractionType(99), "UNKNOWN", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.Weight(); got != tt.want {
				t.Errorf("Weight() = %v, want %v", got, tt.want)
			}
			if got := tt.typ.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
		})
	}
}

func TestParseInteractionType(t *testing.T) {
	for _, typ := range InteractionTypes() {
		got, err := ParseInteractionType(typ.String())
		if err != nil {
			t.Fatalf("ParseInteractionType(%q) error = %v", typ, err)
		}
		if got != typ {
			t.Errorf("ParseInteractionType(%q) = %v, want %v", typ, got, typ)
		}
	}

	if got, err := ParseInteractionType(" purchase "); err != nil || got != InteractionPurchase {
		t.Errorf("ParseInteractionType(\" purchase \") = %v, %v", got, err)
	}

	_, err := ParseInteractionType("LIKE")
	if !errors.Is(err, ErrInvalidInteraction) {
		t.Errorf("ParseInteractionType(LIKE) error = %v, want ErrInvalidInteraction", err)
	}
}

func TestInteractionTypeJSON(t *testing.T) {
	var v struct {
		Type InteractionType `json:"type"`
	}
	if err := json.Unmarshal([]byte(`{"type":"cart"}`), &v); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if v.Type != InteractionCart {
		t.Errorf("Type = %v, want CART", v.Type)
	}
	if err := json.Unmarshal([]byte(`{"type":"poke"}`), &v); err == nil {
		t.Error("Unmarshal() with unknown type should fail")
	}
}

func TestParseRelationshipType(t *testing.T) {
	for _, rt := range RelationshipTypes() {
		got, err := ParseRelationshipType(rt.String())
		if err != nil || got != rt {
			t.Errorf("ParseRelationshipType(%q) = %v, %v", rt, got, err)
		}
	}
	if _, err := ParseRelationshipType("RELATED"); !errors.Is(err, ErrUnknownRelationship) {
		t.Errorf("ParseRelationshipType(RELATED) error = %v, want ErrUnknownRelationship", err)
	}
}

func TestEdgeReverse(t *testing.T) {
	e := Edge{SourceID: "a", TargetID: "b", Type: RelationshipSimilar, Strength: 0.7, OccurrenceCount: 3}
	r := e.Reverse()
	if r.SourceID != "b" || r.TargetID != "a" || r.Strength != e.Strength || r.OccurrenceCount != e.OccurrenceCount {
		t.Errorf("Reverse() = %+v", r)
	}
}
