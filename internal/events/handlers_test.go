// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/affinity/internal/recommend"
)

type recorded struct {
	user, product string
	t             recommend.InteractionType
	at            time.Time
}

type fakeRecorder struct {
	mu       sync.Mutex
	calls    []recorded
	failures int
	err      error
}

func (f *fakeRecorder) RecordInteractionAt(_ context.Context, userID, productID string, t recommend.InteractionType, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.failures > 0 {
		f.failures--
		return errors.New("transaction conflict")
	}
	f.calls = append(f.calls, recorded{userID, productID, t, at})
	return nil
}

func (f *fakeRecorder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func mustMessage(t *testing.T, v any) *message.Message {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	return message.NewMessage("msg-1", data)
}

func TestInteractionHandler(t *testing.T) {
	at := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		msg           func(t *testing.T) *message.Message
		recorderErr   error
		wantErr       bool
		wantPermanent bool
		wantCalls     int
	}{
		{
			name: "valid",
			msg: func(t *testing.T) *message.Message {
				return mustMessage(t, NewInteractionEvent("u1", "p1", recommend.InteractionPurchase, at))
			},
			wantCalls: 1,
		},
		{
			name: "type as string",
			msg: func(*testing.T) *message.Message {
				return message.NewMessage("m", []byte(`{"event_id":"e1","user_id":"u1","product_id":"p1","type":"wishlist"}`))
			},
			wantCalls: 1,
		},
		{
			name: "malformed json",
			msg: func(*testing.T) *message.Message {
				return message.NewMessage("m", []byte(`{"event_id":`))
			},
			wantErr:       true,
			wantPermanent: true,
		},
		{
			name: "unknown type",
			msg: func(*testing.T) *message.Message {
				return message.NewMessage("m", []byte(`{"event_id":"e1","user_id":"u1","product_id":"p1","type":"LIKE"}`))
			},
			wantErr:       true,
			wantPermanent: true,
		},
		{
			name: "missing user",
			msg: func(t *testing.T) *message.Message {
				return mustMessage(t, NewInteractionEvent("", "p1", recommend.InteractionView, at))
			},
			wantErr:       true,
			wantPermanent: true,
		},
		{
			name: "recorder rejects",
			msg: func(t *testing.T) *message.Message {
				return mustMessage(t, NewInteractionEvent("u1", "p1", recommend.InteractionView, at))
			},
			recorderErr:   fmt.Errorf("wrap: %w", recommend.ErrInvalidInteraction),
			wantErr:       true,
			wantPermanent: true,
		},
		{
			name: "store failure is retryable",
			msg: func(t *testing.T) *message.Message {
				return mustMessage(t, NewInteractionEvent("u1", "p1", recommend.InteractionView, at))
			},
			recorderErr: errors.New("database is locked"),
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecorder{err: tt.recorderErr}
			h := NewInteractionHandler(rec, "affinity.interactions", zerolog.Nop())

			err := h.Handle(tt.msg(t))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Handle() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := IsPermanentError(err); got != tt.wantPermanent {
				t.Errorf("IsPermanentError(%v) = %v, want %v", err, got, tt.wantPermanent)
			}
			if rec.count() != tt.wantCalls {
				t.Errorf("recorded = %d, want %d", rec.count(), tt.wantCalls)
			}
			if h.Stats().Received != 1 {
				t.Errorf("Stats().Received = %d, want 1", h.Stats().Received)
			}
		})
	}
}

func TestInteractionHandlerPassesOccurredAt(t *testing.T) {
	at := time.Date(2026, 1, 5, 8, 30, 0, 0, time.UTC)
	rec := &fakeRecorder{}
	h := NewInteractionHandler(rec, "t", zerolog.Nop())
	if err := h.Handle(mustMessage(t, NewInteractionEvent("u1", "p1", recommend.InteractionCart, at))); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	got := rec.calls[0]
	if got.user != "u1" || got.product != "p1" || got.t != recommend.InteractionCart || !got.at.Equal(at) {
		t.Errorf("recorded %+v", got)
	}
	if s := h.Stats(); s.Processed != 1 || s.Rejected != 0 {
		t.Errorf("Stats() = %+v", s)
	}
}

type fakeProducts struct {
	products []recommend.Product
	err      error
}

func (f *fakeProducts) UpsertProducts(_ context.Context, products []recommend.Product) error {
	if f.err != nil {
		return f.err
	}
	f.products = append(f.products, products...)
	return nil
}

func TestProductHandler(t *testing.T) {
	store := &fakeProducts{}
	hooks := 0
	h := NewProductHandler(store, "affinity.products", func(context.Context) error {
		hooks++
		return nil
	}, zerolog.Nop())

	ev := NewProductEvent([]recommend.Product{{ID: "p1", Category: "garden"}, {ID: "p2"}})
	if err := h.Handle(mustMessage(t, ev)); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(store.products) != 2 || store.products[0].Category != "garden" {
		t.Errorf("stored = %+v", store.products)
	}
	if hooks != 1 {
		t.Errorf("hooks = %d, want 1", hooks)
	}

	empty := NewProductEvent(nil)
	if err := h.Handle(mustMessage(t, empty)); !IsPermanentError(err) {
		t.Errorf("Handle(empty) error = %v, want permanent", err)
	}

	missingID := NewProductEvent([]recommend.Product{{Name: "no id"}})
	if err := h.Handle(mustMessage(t, missingID)); !IsPermanentError(err) {
		t.Errorf("Handle(missing id) error = %v, want permanent", err)
	}

	store.err = errors.New("disk full")
	if err := h.Handle(mustMessage(t, ev)); err == nil || IsPermanentError(err) {
		t.Errorf("Handle() error = %v, want retryable", err)
	}
	if hooks != 1 {
		t.Errorf("hook ran after failed upsert")
	}

	if s := h.Stats(); s.Received != 4 || s.Processed != 1 || s.Rejected != 2 || s.Failed != 1 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestPermanentError(t *testing.T) {
	cause := errors.New("bad")
	err := fmt.Errorf("outer: %w", NewPermanentError("invalid", cause))
	if !IsPermanentError(err) {
		t.Error("IsPermanentError() = false for wrapped permanent error")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(cause) = false")
	}
	if IsPermanentError(cause) {
		t.Error("IsPermanentError() = true for plain error")
	}
	if got := NewPermanentError("only message", nil).Error(); got != "only message" {
		t.Errorf("Error() = %q", got)
	}
}

func TestEventKey(t *testing.T) {
	msg := message.NewMessage("uuid-1", nil)
	if got := eventKey(msg); got != "uuid-1" {
		t.Errorf("eventKey() = %q, want uuid fallback", got)
	}
	msg.Metadata.Set(MetadataEventID, "evt-1")
	if got := eventKey(msg); got != "evt-1" {
		t.Errorf("eventKey() = %q, want evt-1", got)
	}
}
