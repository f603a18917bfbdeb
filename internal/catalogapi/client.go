// Package catalogapi is the HTTP client for the remote product catalog.
//
// Response decoding is tolerant: a body that is valid JSON but has the wrong
// shape degrades to an empty result. Only transport errors, non-2xx statuses
// and bodies that are not JSON at all are reported as errors.
package catalogapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/roach88/shelf/internal/catalog"
	"github.com/roach88/shelf/internal/queryurl"
)

// DefaultUserAgent is sent when Config.UserAgent is empty.
const DefaultUserAgent = "shelf/0.1"

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 8 << 20

// Config configures a Client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second; 0 means unlimited
	RateBurst int
	UserAgent string
	Logger    *slog.Logger
}

// Client fetches products and categories.
// Safe for concurrent use.
type Client struct {
	composer  *queryurl.Composer
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
	logger    *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a Client from cfg.
func New(cfg Config, opts ...Option) *Client {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	base := cfg.BaseURL
	if base == "" {
		base = queryurl.DefaultBaseURL
	}

	c := &Client{
		composer:  queryurl.NewComposer(base),
		http:      &http.Client{Timeout: cfg.Timeout},
		limiter:   rate.NewLimiter(limit, burst),
		userAgent: ua,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Composer returns the composer bound to the client's base URL.
func (c *Client) Composer() *queryurl.Composer {
	return c.composer
}

// Products fetches one page of products for target.
func (c *Client) Products(ctx context.Context, target queryurl.Target) ([]catalog.Product, error) {
	body, err := c.get(ctx, target.URL)
	if err != nil {
		return nil, err
	}
	return DecodeProducts(body)
}

// Categories fetches the category name list (without the "all" sentinel).
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	body, err := c.get(ctx, c.composer.CategoryListURL())
	if err != nil {
		return nil, err
	}
	return DecodeCategories(body)
}

// Product fetches a single product by id.
func (c *Client) Product(ctx context.Context, id int64) (catalog.Product, error) {
	body, err := c.get(ctx, c.composer.ProductURL(id))
	if err != nil {
		return catalog.Product{}, err
	}
	return DecodeProduct(body)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	c.logger.Debug("catalog response",
		"url", url,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, URL: url}
	}
	return body, nil
}

// DecodeProducts extracts the product collection from a list response.
//
// body must be valid JSON. A non-object body, a missing or non-array
// "products" field, and elements that are not product objects all degrade
// to fewer (possibly zero) products rather than an error.
func DecodeProducts(body []byte) ([]catalog.Product, error) {
	if !json.Valid(body) {
		return nil, fmt.Errorf("decode products: %w", ErrInvalidJSON)
	}

	products := []catalog.Product{}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return products, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(envelope["products"], &elems); err != nil {
		return products, nil
	}

	for _, raw := range elems {
		if p, ok := decodeProductObject(raw); ok {
			products = append(products, p)
		}
	}
	return products, nil
}

// DecodeCategories extracts category names from a category-list response.
// Non-string entries and duplicates are dropped; a non-array body yields
// an empty list.
func DecodeCategories(body []byte) ([]string, error) {
	if !json.Valid(body) {
		return nil, fmt.Errorf("decode categories: %w", ErrInvalidJSON)
	}

	names := []string{}

	var elems []json.RawMessage
	if err := json.Unmarshal(body, &elems); err != nil {
		return names, nil
	}

	seen := make(map[string]bool, len(elems))
	for _, raw := range elems {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil || name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names, nil
}

// DecodeProduct decodes a single-product response.
func DecodeProduct(body []byte) (catalog.Product, error) {
	if !json.Valid(body) {
		return catalog.Product{}, fmt.Errorf("decode product: %w", ErrInvalidJSON)
	}
	p, ok := decodeProductObject(body)
	if !ok {
		return catalog.Product{}, fmt.Errorf("decode product: %w", ErrNotProduct)
	}
	return p, nil
}

func decodeProductObject(raw json.RawMessage) (catalog.Product, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return catalog.Product{}, false
	}
	var p catalog.Product
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return catalog.Product{}, false
	}
	if p.ID == 0 {
		return catalog.Product{}, false
	}
	return p, true
}
