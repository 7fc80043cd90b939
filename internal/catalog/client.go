// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/affinity/internal/config"
	"github.com/tomtom215/affinity/internal/recommend"
)

// ErrCatalogUnavailable is returned when the upstream catalog cannot be read,
// either because it failed or because the circuit breaker is open.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// maxResponseBytes caps a single page response body.
const maxResponseBytes = 32 << 20

// PageResponse is one page of GET {base}/products?page=N.
type PageResponse struct {
	Products   []recommend.Product `json:"products"`
	Page       int                 `json:"page"`
	TotalPages int                 `json:"total_pages"`
}

// Fetcher reads catalog pages. *Client and *BreakerClient implement it.
type Fetcher interface {
	FetchPage(ctx context.Context, page int) (*PageResponse, error)
}

// Client talks to the upstream catalog service over HTTP.
type Client struct {
	baseURL        string
	client         *http.Client
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewClient creates a catalog client from cfg.
func NewClient(cfg *config.CatalogConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/"),
		client:         &http.Client{Timeout: timeout},
		maxRetries:     3,
		retryBaseDelay: time.Second,
	}
}

// FetchPage reads one catalog page. Pages are numbered from 0.
func (c *Client) FetchPage(ctx context.Context, page int) (*PageResponse, error) {
	reqURL := c.baseURL + "/products?" + url.Values{"page": {strconv.Itoa(page)}}.Encode()

	resp, err := c.doRequestWithRateLimit(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512)) //nolint:errcheck // best effort for the error message
		return nil, fmt.Errorf("catalog returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out PageResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode catalog page %d: %w", page, err)
	}
	for i := range out.Products {
		if err := validateProduct(&out.Products[i]); err != nil {
			return nil, fmt.Errorf("catalog page %d: %w", page, err)
		}
	}
	return &out, nil
}

// doRequestWithRateLimit performs a GET, backing off exponentially on HTTP 429
// and honoring Retry-After when it is given in seconds.
func (c *Client) doRequestWithRateLimit(ctx context.Context, reqURL string) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}
		_ = resp.Body.Close()

		if attempt == c.maxRetries {
			return nil, fmt.Errorf("rate limit exceeded after %d retries (HTTP 429)", c.maxRetries)
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if s := resp.Header.Get("Retry-After"); s != "" {
			if secs, err := strconv.Atoi(s); err == nil && secs >= 0 {
				delay = time.Duration(secs) * time.Second
			}
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

func validateProduct(p *recommend.Product) error {
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		return fmt.Errorf("product with empty id")
	}
	if p.Price != nil && (*p.Price < 0 || math.IsNaN(*p.Price) || math.IsInf(*p.Price, 0)) {
		return fmt.Errorf("product %s has invalid price %v", p.ID, *p.Price)
	}
	if p.PurchaseCount < 0 {
		return fmt.Errorf("product %s has negative purchase count", p.ID)
	}
	return nil
}

// FetchAll reads page 0 to learn the page count, then fetches the remaining
// pages concurrently. At most maxPages pages are read.
func FetchAll(ctx context.Context, f Fetcher, concurrency, maxPages int) ([]recommend.Product, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	first, err := f.FetchPage(ctx, 0)
	if err != nil {
		return nil, err
	}

	total := first.TotalPages
	if total > maxPages {
		total = maxPages
	}
	if total <= 1 {
		return dedupe(first.Products), nil
	}

	pages := make([][]recommend.Product, total)
	pages[0] = first.Products

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := 1; i < total; i++ {
		g.Go(func() error {
			resp, err := f.FetchPage(gctx, i)
			if err != nil {
				return fmt.Errorf("page %d: %w", i, err)
			}
			pages[i] = resp.Products
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []recommend.Product
	for _, p := range pages {
		all = append(all, p...)
	}
	return dedupe(all), nil
}

// dedupe keeps the last occurrence of each product id.
func dedupe(products []recommend.Product) []recommend.Product {
	index := make(map[string]int, len(products))
	out := make([]recommend.Product, 0, len(products))
	for _, p := range products {
		if i, ok := index[p.ID]; ok {
			out[i] = p
			continue
		}
		index[p.ID] = len(out)
		out = append(out, p)
	}
	return out
}
