// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDBQuery(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("upsert", "interactions"))

	RecordDBQuery("upsert", "interactions", 5*time.Millisecond, nil)
	RecordDBQuery("upsert", "interactions", 5*time.Millisecond, errors.New("boom"))

	after := testutil.ToFloat64(DBQueryErrors.WithLabelValues("upsert", "interactions"))
	if after-before != 1 {
		t.Errorf("DBQueryErrors delta = %v, want 1", after-before)
	}
}

func TestRecordInteraction(t *testing.T) {
	c := InteractionsRecorded.WithLabelValues("PURCHASE")
	before := testutil.ToFloat64(c)

	RecordInteraction("PURCHASE")
	RecordInteraction("PURCHASE")

	if got := testutil.ToFloat64(c) - before; got != 2 {
		t.Errorf("InteractionsRecorded delta = %v, want 2", got)
	}
}

func TestRecordGraphBuild(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status string
	}{
		{name: "success", err: nil, status: "success"},
		{name: "failure", err: errors.New("scan failed"), status: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := GraphBuildsTotal.WithLabelValues(tt.status)
			before := testutil.ToFloat64(c)

			RecordGraphBuild(time.Second, 2, tt.err)

			if got := testutil.ToFloat64(c) - before; got != 1 {
				t.Errorf("GraphBuildsTotal{%s} delta = %v, want 1", tt.status, got)
			}
		})
	}

	if testutil.ToFloat64(GraphLastSuccess) == 0 {
		t.Error("Expected GraphLastSuccess to be set after a successful build")
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hits := CacheHits.WithLabelValues("similar")
	misses := CacheMisses.WithLabelValues("similar")
	h0, m0 := testutil.ToFloat64(hits), testutil.ToFloat64(misses)

	RecordCacheLookup("similar", true)
	RecordCacheLookup("similar", false)
	RecordCacheLookup("similar", false)

	if got := testutil.ToFloat64(hits) - h0; got != 1 {
		t.Errorf("hits delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(misses) - m0; got != 2 {
		t.Errorf("misses delta = %v, want 2", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	TrackActiveRequest(true)
	TrackActiveRequest(false)

	if got := testutil.ToFloat64(APIActiveRequests) - before; got != 1 {
		t.Errorf("APIActiveRequests delta = %v, want 1", got)
	}
	TrackActiveRequest(false)
}

func TestRecordCatalogSync(t *testing.T) {
	p0 := testutil.ToFloat64(CatalogSyncProducts)
	e0 := testutil.ToFloat64(CatalogSyncErrors)

	RecordCatalogSync(42, nil)
	RecordCatalogSync(0, errors.New("catalog down"))

	if got := testutil.ToFloat64(CatalogSyncProducts) - p0; got != 42 {
		t.Errorf("CatalogSyncProducts delta = %v, want 42", got)
	}
	if got := testutil.ToFloat64(CatalogSyncErrors) - e0; got != 1 {
		t.Errorf("CatalogSyncErrors delta = %v, want 1", got)
	}
}

func TestMetricGathering(t *testing.T) {
	RecordAPIRequest("GET", "/api/v1/products/trending", "200", 10*time.Millisecond)

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Fatalf("GatherAndLint() error = %v", err)
	}
	for _, p := range problems {
		t.Errorf("metric lint problem: %s: %s", p.Metric, p.Text)
	}
}
