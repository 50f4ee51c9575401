// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gateway is the HTTP client for the storefront backend: live
// product search, personalized recommendations, and single-product lookup.
// Every failure is returned as a *TransportError or *UpstreamError.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/pdiddy/storefront/internal/httputil"
	"github.com/pdiddy/storefront/pkg/types"
)

const (
	searchPath    = "/search"
	recommendPath = "/recommend"

	apiKeyHeader    = "X-API-Key"
	requestIDHeader = "X-Request-ID"

	// maxErrorBody limits how much of an error response is kept for diagnostics.
	maxErrorBody = 512
)

// Client calls the search and recommendation endpoints.
type Client struct {
	http      *http.Client
	baseURL   string
	apiKey    string
	userID    string
	userAgent string
	count     int
	retries   int
	limiter   *rate.Limiter
	log       zerolog.Logger
}

// New builds a Client from cfg. When httpClient is nil a client with
// cfg.Timeout is created.
func New(cfg types.GatewayConfig, httpClient *http.Client, log zerolog.Logger) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid gateway base URL %q", cfg.BaseURL)
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	c := &Client{
		http:      httpClient,
		baseURL:   base,
		apiKey:    cfg.APIKey,
		userID:    cfg.UserID,
		userAgent: cfg.UserAgent,
		count:     cfg.RecommendationCount,
		retries:   cfg.RecommendRetries,
		log:       log,
	}
	if c.userID == "" {
		c.userID = "user0"
	}
	if c.count <= 0 {
		c.count = 10
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c, nil
}

// UserID returns the shopper the client requests recommendations for.
func (c *Client) UserID() string { return c.userID }

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Products []types.Product `json:"products"`
}

// Search returns the products matching query. An empty query returns the
// full catalog.
func (c *Client) Search(ctx context.Context, query string) ([]types.Product, error) {
	var out searchResponse
	if err := c.post(ctx, "search", searchPath, searchRequest{Query: query}, false, 0, &out); err != nil {
		return nil, err
	}
	if out.Products == nil {
		return []types.Product{}, nil
	}
	return out.Products, nil
}

type recommendRequest struct {
	UserID      string `json:"user_id"`
	Count       int    `json:"count"`
	SearchQuery string `json:"search_query"`
}

type recommendResponse struct {
	Recommendations []types.Recommendation `json:"recommendations"`
	UserID          string                 `json:"user_id"`
}

// Recommend returns ranked item ids for query, in the order the backend
// ranked them.
func (c *Client) Recommend(ctx context.Context, query string) ([]types.Recommendation, error) {
	req := recommendRequest{UserID: c.userID, Count: c.count, SearchQuery: query}

	var out recommendResponse
	if err := c.post(ctx, "recommend", recommendPath, req, true, c.retries, &out); err != nil {
		return nil, err
	}
	if out.UserID != "" && out.UserID != c.userID {
		c.log.Warn().Str("requested", c.userID).Str("returned", out.UserID).Msg("recommendation user mismatch")
	}
	if out.Recommendations == nil {
		return []types.Recommendation{}, nil
	}
	return out.Recommendations, nil
}

// FindByID resolves a single product by searching for its id and keeping the
// exact match. It returns nil, nil when the backend has no such product.
func (c *Client) FindByID(ctx context.Context, id string) (*types.Product, error) {
	if id == "" {
		return nil, nil
	}
	products, err := c.Search(ctx, id)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			p := products[i]
			return &p, nil
		}
	}
	return nil, nil
}

// post sends body as JSON to path and decodes a 2xx response into out.
func (c *Client) post(ctx context.Context, op, path string, body any, auth bool, retries int, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &TransportError{Op: op, Err: err}
		}
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: encoding request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%s: creating request: %w", op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(requestIDHeader, requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if auth && c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	log := c.log.With().Str("op", op).Str("request_id", requestID).Logger()
	start := time.Now()

	resp, err := httputil.DoWithRetry(ctx, c.http, req, retries, log)
	if err != nil {
		log.Debug().Err(err).Dur("elapsed", time.Since(start)).Msg("gateway request failed")
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Debug().Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("gateway returned error status")
		return &UpstreamError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	log.Debug().Dur("elapsed", time.Since(start)).Msg("gateway request completed")
	return nil
}
