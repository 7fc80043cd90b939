// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package recommend

import (
	"fmt"
	"strings"
	"time"
)

// InteractionType classifies a user action on a product.
type InteractionType int

const (
	// InteractionView is a product detail view.
	InteractionView InteractionType = iota + 1
	// InteractionCart is an add-to-cart.
	InteractionCart
	// InteractionWishlist is an add-to-wishlist.
	InteractionWishlist
	// InteractionReview is a submitted review.
	InteractionReview
	// InteractionPurchase is a completed purchase.
	InteractionPurchase
)

// InteractionTypes lists every interaction type in weight order.
func InteractionTypes() []InteractionType {
	return []InteractionType{
		InteractionView, InteractionCart, InteractionWishlist, InteractionReview, InteractionPurchase,
	}
}

// String returns the canonical persisted name of the interaction type.
func (t InteractionType) String() string {
	switch t {
	case InteractionView:
		return "VIEW"
	case InteractionCart:
		return "CART"
	case InteractionWishlist:
		return "WISHLIST"
	case InteractionReview:
		return "REVIEW"
	case InteractionPurchase:
		return "PURCHASE"
	default:
		return "UNKNOWN"
	}
}

// Weight returns the per-occurrence score of the interaction type.
func (t InteractionType) Weight() float64 {
	switch t {
	case InteractionView:
		return 1
	case InteractionCart:
		return 2
	case InteractionWishlist:
		return 3
	case InteractionReview:
		return 4
	case InteractionPurchase:
		return 5
	default:
		return 0
	}
}

// Valid reports whether t is one of the defined interaction types.
func (t InteractionType) Valid() bool {
	return t >= InteractionView && t <= InteractionPurchase
}

// ParseInteractionType parses a case-insensitive interaction type name.
func ParseInteractionType(s string) (InteractionType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "VIEW":
		return InteractionView, nil
	case "CART":
		return InteractionCart, nil
	case "WISHLIST":
		return InteractionWishlist, nil
	case "REVIEW":
		return InteractionReview, nil
	case "PURCHASE":
		return InteractionPurchase, nil
	default:
		return 0, fmt.Errorf("%w: unknown interaction type %q", ErrInvalidInteraction, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t InteractionType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid interaction type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *InteractionType) UnmarshalText(b []byte) error {
	v, err := ParseInteractionType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// RelationshipType classifies an edge in the product graph.
type RelationshipType int

const (
	// RelationshipSimilar links products with similar content attributes.
	RelationshipSimilar RelationshipType = iota + 1
	// RelationshipBoughtTogether links products purchased by the same users.
	RelationshipBoughtTogether
	// RelationshipViewedTogether links products viewed by the same users.
	RelationshipViewedTogether
)

// RelationshipTypes lists every relationship type.
func RelationshipTypes() []RelationshipType {
	return []RelationshipType{RelationshipSimilar, RelationshipBoughtTogether, RelationshipViewedTogether}
}

// String returns the canonical persisted name of the relationship type.
func (r RelationshipType) String() string {
	switch r {
	case RelationshipSimilar:
		return "SIMILAR"
	case RelationshipBoughtTogether:
		return "BOUGHT_TOGETHER"
	case RelationshipViewedTogether:
		return "VIEWED_TOGETHER"
	default:
		return "UNKNOWN"
	}
}

// ParseRelationshipType parses a case-insensitive relationship type name.
func ParseRelationshipType(s string) (RelationshipType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SIMILAR":
		return RelationshipSimilar, nil
	case "BOUGHT_TOGETHER":
		return RelationshipBoughtTogether, nil
	case "VIEWED_TOGETHER":
		return RelationshipViewedTogether, nil
	default:
		return 0, fmt.Errorf("%w %q", ErrUnknownRelationship, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r RelationshipType) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *RelationshipType) UnmarshalText(b []byte) error {
	v, err := ParseRelationshipType(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Product is the catalog view of a product. It is owned by the catalog
// collaborator and read-only to the engine.
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Category string `json:"category,omitempty"`

	// Price is nil when the catalog has no price for the product.
	Price *float64 `json:"price,omitempty"`

	OwnerID string `json:"owner_id,omitempty"`

	// SeasonalMonths is empty when the product has no seasonal window.
	SeasonalMonths MonthSet `json:"seasonal_months,omitempty"`

	// PurchaseCount is the catalog's own popularity counter.
	PurchaseCount int64 `json:"purchase_count"`
}

// Interaction is the aggregate counter for one (user, product, type) key.
type Interaction struct {
	UserID      string          `json:"user_id"`
	ProductID   string          `json:"product_id"`
	Type        InteractionType `json:"type"`
	Count       int64           `json:"count"`
	Score       float64         `json:"score"`
	LastUpdated time.Time       `json:"last_updated"`
}

// Edge is one directed row of the product relationship graph.
type Edge struct {
	SourceID        string           `json:"source_id"`
	TargetID        string           `json:"target_id"`
	Type            RelationshipType `json:"type"`
	Strength        float64          `json:"strength"`
	OccurrenceCount int64            `json:"occurrence_count"`
}

// Reverse returns the edge with source and target swapped.
func (e Edge) Reverse() Edge {
	e.SourceID, e.TargetID = e.TargetID, e.SourceID
	return e
}

// ScoredID is a product id with a ranking score.
type ScoredID struct {
	ProductID string
	Score     float64
}

// Recommendation is a ranked, materialized product.
type Recommendation struct {
	Product Product `json:"product"`
	Score   float64 `json:"score"`
}
