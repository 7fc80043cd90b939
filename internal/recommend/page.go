// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package recommend

import "math"

const (
	// DefaultPageSize is used when a request does not specify a size.
	DefaultPageSize = 20
	// MaxPageSize caps the page size of every list operation.
	MaxPageSize = 100
	// MaxPageNumber keeps PageNumber*PageSize+PageSize within int.
	MaxPageNumber = math.MaxInt/MaxPageSize - 1
)

// PageRequest selects a zero-based page of a result list.
type PageRequest struct {
	PageNumber int `json:"page" validate:"gte=0"`
	PageSize   int `json:"page_size" validate:"gte=0,lte=100"`
}

// Page is one page of a ranked result list.
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"total_count"`
}

// Normalize clamps the request to valid bounds.
func (p PageRequest) Normalize() PageRequest {
	if p.PageNumber < 0 {
		p.PageNumber = 0
	}
	if p.PageNumber > MaxPageNumber {
		p.PageNumber = MaxPageNumber
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the index of the first item of the page.
func (p PageRequest) Offset() int {
	n := p.Normalize()
	return n.PageNumber * n.PageSize
}

// Limit returns the normalized page size.
func (p PageRequest) Limit() int {
	return p.Normalize().PageSize
}

// Paginate slices an already ordered list.
func Paginate[T any](all []T, req PageRequest) Page[T] {
	offset, limit := req.Offset(), req.Limit()
	if offset < 0 || offset >= len(all) {
		return Page[T]{Items: []T{}, TotalCount: len(all)}
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	items := make([]T, end-offset)
	copy(items, all[offset:end])
	return Page[T]{Items: items, TotalCount: len(all)}
}

// EmptyPage returns a page with no items and zero total.
func EmptyPage[T any]() Page[T] {
	return Page[T]{Items: []T{}, TotalCount: 0}
}
