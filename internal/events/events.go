// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package events

import (
	"fmt"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/affinity/internal/recommend"
)

// Message metadata keys.
const (
	MetadataEventID   = "event_id"
	MetadataEventType = "event_type"
)

// Event type names carried in MetadataEventType.
const (
	EventTypeInteraction     = "interaction.recorded"
	EventTypeProductUpserted = "product.upserted"
)

// InteractionEvent reports one user-product interaction.
type InteractionEvent struct {
	EventID    string                    `json:"event_id"`
	UserID     string                    `json:"user_id"`
	ProductID  string                    `json:"product_id"`
	Type       recommend.InteractionType `json:"type"`
	OccurredAt time.Time                 `json:"occurred_at"`
}

// NewInteractionEvent creates an event with a fresh id.
func NewInteractionEvent(userID, productID string, t recommend.InteractionType, at time.Time) *InteractionEvent {
	return &InteractionEvent{
		EventID:    uuid.NewString(),
		UserID:     userID,
		ProductID:  productID,
		Type:       t,
		OccurredAt: at.UTC(),
	}
}

// Validate checks required fields.
func (e *InteractionEvent) Validate() error {
	switch {
	case strings.TrimSpace(e.EventID) == "":
		return &ValidationError{Field: "event_id", Message: "required"}
	case strings.TrimSpace(e.UserID) == "":
		return &ValidationError{Field: "user_id", Message: "required"}
	case strings.TrimSpace(e.ProductID) == "":
		return &ValidationError{Field: "product_id", Message: "required"}
	case !e.Type.Valid():
		return &ValidationError{Field: "type", Message: "unknown interaction type"}
	}
	return nil
}

// ProductEvent carries catalog products to upsert.
type ProductEvent struct {
	EventID    string              `json:"event_id"`
	Products   []recommend.Product `json:"products"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// NewProductEvent creates an event with a fresh id.
func NewProductEvent(products []recommend.Product) *ProductEvent {
	return &ProductEvent{
		EventID:    uuid.NewString(),
		Products:   products,
		OccurredAt: time.Now().UTC(),
	}
}

// Validate checks required fields.
func (e *ProductEvent) Validate() error {
	if strings.TrimSpace(e.EventID) == "" {
		return &ValidationError{Field: "event_id", Message: "required"}
	}
	if len(e.Products) == 0 {
		return &ValidationError{Field: "products", Message: "at least one product required"}
	}
	for i, p := range e.Products {
		if strings.TrimSpace(p.ID) == "" {
			return &ValidationError{Field: fmt.Sprintf("products[%d].id", i), Message: "required"}
		}
	}
	return nil
}

// ValidationError describes an invalid event field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// newMessage serializes v into a watermill message whose UUID is the event id.
func newMessage(eventID, eventType string, v any) (*message.Message, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("serialize %s event: %w", eventType, err)
	}
	msg := message.NewMessage(eventID, data)
	msg.Metadata.Set(MetadataEventID, eventID)
	msg.Metadata.Set(MetadataEventType, eventType)
	return msg, nil
}

// eventKey returns the deduplication key of msg.
func eventKey(msg *message.Message) string {
	if id := msg.Metadata.Get(MetadataEventID); id != "" {
		return id
	}
	return msg.UUID
}
