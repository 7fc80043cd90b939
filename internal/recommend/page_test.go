// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package recommend

import (
	"math"
	"testing"
)

func TestPageRequestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   PageRequest
		want PageRequest
	}{
		{name: "zero value", in: PageRequest{}, want: PageRequest{PageNumber: 0, PageSize: DefaultPageSize}},
		{name: "negative page", in: PageRequest{PageNumber: -3, PageSize: 5}, want: PageRequest{PageNumber: 0, PageSize: 5}},
		{name: "too large", in: PageRequest{PageNumber: 1, PageSize: 1000}, want: PageRequest{PageNumber: 1, PageSize: MaxPageSize}},
		{name: "valid", in: PageRequest{PageNumber: 2, PageSize: 10}, want: PageRequest{PageNumber: 2, PageSize: 10}},
		{name: "huge page", in: PageRequest{PageNumber: math.MaxInt, PageSize: 10}, want: PageRequest{PageNumber: MaxPageNumber, PageSize: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Normalize(); got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPageRequestOffsetDoesNotOverflow(t *testing.T) {
	req := PageRequest{PageNumber: math.MaxInt, PageSize: math.MaxInt}
	if off := req.Offset(); off < 0 || off > math.MaxInt-req.Limit() {
		t.Errorf("Offset() = %d, want non-negative with room for Limit() = %d", off, req.Limit())
	}
}

func TestPaginate(t *testing.T) {
	all := []int{1, 2, 3, 4, 5}

	tests := []struct {
		name string
		req  PageRequest
		want []int
	}{
		{name: "first page", req: PageRequest{PageNumber: 0, PageSize: 2}, want: []int{1, 2}},
		{name: "last partial page", req: PageRequest{PageNumber: 2, PageSize: 2}, want: []int{5}},
		{name: "past the end", req: PageRequest{PageNumber: 5, PageSize: 2}, want: []int{}},
		{name: "default size", req: PageRequest{}, want: []int{1, 2, 3, 4, 5}},
		{name: "overflowing page number", req: PageRequest{PageNumber: math.MaxInt/20 + 1}, want: []int{}},
		{name: "max int page number", req: PageRequest{PageNumber: math.MaxInt, PageSize: MaxPageSize}, want: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paginate(all, tt.req)
			if got.TotalCount != len(all) {
				t.Errorf("TotalCount = %d, want %d", got.TotalCount, len(all))
			}
			if len(got.Items) != len(tt.want) {
				t.Fatalf("Items = %v, want %v", got.Items, tt.want)
			}
			for i := range got.Items {
				if got.Items[i] != tt.want[i] {
					t.Errorf("Items = %v, want %v", got.Items, tt.want)
					break
				}
			}
		})
	}
}

func TestEmptyPage(t *testing.T) {
	p := EmptyPage[string]()
	if p.TotalCount != 0 || p.Items == nil || len(p.Items) != 0 {
		t.Errorf("EmptyPage() = %+v, want non-nil empty items and zero total", p)
	}
}
