// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package catalog

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/affinity/internal/recommend"
)

type memWriter struct {
	products []recommend.Product
	err      error
}

func (m *memWriter) UpsertProducts(_ context.Context, products []recommend.Product) error {
	if m.err != nil {
		return m.err
	}
	m.products = append(m.products, products...)
	return nil
}

func TestSyncerSync(t *testing.T) {
	srv, _ := catalogServer(t, 3)
	store := &memWriter{}
	hookCalls := 0
	s := NewSyncer(newTestClient(srv.URL), store, 2, 10, zerolog.Nop(),
		WithOnSynced(func(context.Context) error {
			hookCalls++
			return errors.New("ignored")
		}))

	n, err := s.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if n != 6 {
		t.Errorf("Sync() = %d, want 6", n)
	}
	ids := make([]string, 0, len(store.products))
	for _, p := range store.products {
		ids = append(ids, p.ID)
	}
	sort.Strings(ids)
	want := []string{"p0", "p1", "p2", "p3", "p4", "p5"}
	for i := range want {
		if i >= len(ids) || ids[i] != want[i] {
			t.Fatalf("stored ids = %v, want %v", ids, want)
		}
	}
	if hookCalls != 1 {
		t.Errorf("onSynced calls = %d, want 1", hookCalls)
	}
}

func TestSyncerStoreError(t *testing.T) {
	srv, _ := catalogServer(t, 1)
	storeErr := errors.New("disk full")
	hookCalls := 0
	s := NewSyncer(newTestClient(srv.URL), &memWriter{err: storeErr}, 1, 10, zerolog.Nop(),
		WithOnSynced(func(context.Context) error {
			hookCalls++
			return nil
		}))

	_, err := s.Sync(context.Background())
	if !errors.Is(err, storeErr) {
		t.Errorf("Sync() error = %v, want %v", err, storeErr)
	}
	if hookCalls != 0 {
		t.Errorf("onSynced calls = %d, want 0", hookCalls)
	}
}
