// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/storefront/internal/httputil"
	"github.com/pdiddy/storefront/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

const sampleSearchJSON = `{
  "products": [
    {"id": "item2", "name": "Smart Fitness Watch", "price": 199.95, "category": "Wearables",
     "tags": ["fitness", "smartwatch"], "imageUrls": ["https://img.example/watch.png"]},
    {"id": "item7", "name": "Running Shoe", "price": 89.5, "category": "Apparel"}
  ]
}`

const sampleRecommendJSON = `{
  "recommendations": [
    {"item_id": "item2", "score": 0.91},
    {"item_id": "item99", "score": 0.42},
    {"item_id": "item0", "score": 0.77}
  ],
  "user_id": "user0"
}`

func testConfig(baseURL string) types.GatewayConfig {
	cfg := types.DefaultConfig().Gateway
	cfg.BaseURL = baseURL
	cfg.APIKey = "testkey123"
	cfg.UserAgent = "test/0.1"
	return cfg
}

func newTestClient(t *testing.T, ts *httptest.Server) *Client {
	t.Helper()
	c, err := New(testConfig(ts.URL), ts.Client(), zerolog.Nop())
	require.NoError(t, err)
	return c
}

func jsonServer(t *testing.T, status int, body string, inspect func(r *http.Request, payload map[string]any)) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if inspect != nil {
			inspect(r, payload)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	for _, base := range []string{"", "not a url", "/relative"} {
		cfg := testConfig(base)
		_, err := New(cfg, nil, zerolog.Nop())
		assert.Error(t, err, "base %q", base)
	}
}

func TestSearch(t *testing.T) {
	var gotPath, gotQuery, gotKey, gotReqID string
	ts := jsonServer(t, http.StatusOK, sampleSearchJSON, func(r *http.Request, p map[string]any) {
		gotPath = r.URL.Path
		gotQuery, _ = p["query"].(string)
		gotKey = r.Header.Get(apiKeyHeader)
		gotReqID = r.Header.Get(requestIDHeader)
	})

	products, err := newTestClient(t, ts).Search(context.Background(), "watch")
	require.NoError(t, err)

	assert.Equal(t, "/search", gotPath)
	assert.Equal(t, "watch", gotQuery)
	assert.Empty(t, gotKey, "search does not send the API key")
	assert.NotEmpty(t, gotReqID)

	require.Len(t, products, 2)
	assert.Equal(t, "Smart Fitness Watch", products[0].Name)
	assert.Equal(t, []string{"https://img.example/watch.png"}, products[0].ImageURLs)
	assert.Nil(t, products[1].Tags, "gateway does not default fields")
}

func TestSearchEmptyResult(t *testing.T) {
	ts := jsonServer(t, http.StatusOK, `{"products": []}`, nil)

	products, err := newTestClient(t, ts).Search(context.Background(), "zzz")
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestSearchNullProducts(t *testing.T) {
	ts := jsonServer(t, http.StatusOK, `{"products": null}`, nil)

	products, err := newTestClient(t, ts).Search(context.Background(), "zzz")
	require.NoError(t, err)
	assert.Equal(t, []types.Product{}, products)
}

func TestRecommend(t *testing.T) {
	var payload map[string]any
	var gotKey string
	ts := jsonServer(t, http.StatusOK, sampleRecommendJSON, func(r *http.Request, p map[string]any) {
		payload = p
		gotKey = r.Header.Get(apiKeyHeader)
	})

	recs, err := newTestClient(t, ts).Recommend(context.Background(), "fitness")
	require.NoError(t, err)

	assert.Equal(t, "testkey123", gotKey)
	assert.Equal(t, "user0", payload["user_id"])
	assert.Equal(t, float64(10), payload["count"])
	assert.Equal(t, "fitness", payload["search_query"])

	// Order is the backend's order, not re-sorted by score.
	require.Len(t, recs, 3)
	assert.Equal(t, "item2", recs[0].ItemID)
	assert.Equal(t, "item99", recs[1].ItemID)
	assert.Equal(t, "item0", recs[2].ItemID)
	assert.InDelta(t, 0.91, recs[0].Score, 1e-9)
}

func TestRecommendRetriesOnceOnServerError(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, sampleRecommendJSON)
	}))
	defer ts.Close()

	recs, err := newTestClient(t, ts).Recommend(context.Background(), "fitness")
	require.NoError(t, err)
	assert.Len(t, recs, 3)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// droppingClient fails the first round trip with a connection error.
func droppingClient(ts *httptest.Server, attempts *int32) *http.Client {
	next := ts.Client().Transport
	return &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if atomic.AddInt32(attempts, 1) == 1 {
			if r.Body != nil {
				r.Body.Close()
			}
			return nil, errors.New("connection reset by peer")
		}
		return next.RoundTrip(r)
	})}
}

func TestRecommendRetriesOnceOnTransportError(t *testing.T) {
	var gotQuery any
	ts := jsonServer(t, http.StatusOK, sampleRecommendJSON, func(_ *http.Request, payload map[string]any) {
		gotQuery = payload["search_query"]
	})

	var attempts int32
	c, err := New(testConfig(ts.URL), droppingClient(ts, &attempts), zerolog.Nop())
	require.NoError(t, err)

	recs, err := c.Recommend(context.Background(), "fitness")
	require.NoError(t, err)
	assert.Len(t, recs, 3)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
	assert.Equal(t, "fitness", gotQuery)
}

func TestSearchDoesNotRetryTransportError(t *testing.T) {
	ts := jsonServer(t, http.StatusOK, `[]`, nil)

	var attempts int32
	c, err := New(testConfig(ts.URL), droppingClient(ts, &attempts), zerolog.Nop())
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "shoe")
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestSearchDoesNotRetry(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	_, err := newTestClient(t, ts).Search(context.Background(), "shoe")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestUpstreamErrorStatus(t *testing.T) {
	ts := jsonServer(t, http.StatusForbidden, `{"detail":"Could not validate credentials"}`, nil)

	_, err := newTestClient(t, ts).Recommend(context.Background(), "fitness")
	require.Error(t, err)

	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusForbidden, ue.StatusCode)
	assert.Contains(t, ue.Body, "Could not validate credentials")
	assert.False(t, IsRetryable(err))
}

func TestUpstreamErrorMalformed(t *testing.T) {
	ts := jsonServer(t, http.StatusOK, `{"products": [`, nil)

	_, err := newTestClient(t, ts).Search(context.Background(), "shoe")
	require.Error(t, err)

	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Zero(t, ue.StatusCode)
	assert.Contains(t, err.Error(), "malformed")
	assert.True(t, IsRetryable(err))
}

func TestTransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := newTestClient(t, ts)
	ts.Close()

	_, err := c.Search(context.Background(), "shoe")
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "search", te.Op)
	assert.True(t, IsRetryable(err))
}

func TestTransportErrorOnCancel(t *testing.T) {
	ts := jsonServer(t, http.StatusOK, sampleSearchJSON, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(t, ts).Search(ctx, "shoe")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFindByID(t *testing.T) {
	ts := jsonServer(t, http.StatusOK, sampleSearchJSON, nil)
	c := newTestClient(t, ts)

	p, err := c.FindByID(context.Background(), "item7")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Running Shoe", p.Name)

	p, err = c.FindByID(context.Background(), "item99")
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = c.FindByID(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestRateLimitedClient(t *testing.T) {
	ts := jsonServer(t, http.StatusOK, sampleSearchJSON, nil)
	cfg := testConfig(ts.URL)
	cfg.RequestsPerSecond = 1000
	c, err := New(cfg, ts.Client(), zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, c.limiter)

	for i := 0; i < 3; i++ {
		_, err := c.Search(context.Background(), "watch")
		require.NoError(t, err)
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&UpstreamError{Op: "search", StatusCode: http.StatusTooManyRequests}))
	assert.True(t, IsRetryable(&UpstreamError{Op: "search", StatusCode: http.StatusBadGateway}))
	assert.False(t, IsRetryable(&UpstreamError{Op: "search", StatusCode: http.StatusNotFound}))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", &TransportError{Op: "search", Err: errors.New("dial")})))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.False(t, IsRetryable(nil))
}
