// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reporter sends product interaction events to the backend.
// Delivery is best effort: a send is attempted once, in the background, and
// its failure is logged but never returned to the caller.
package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pdiddy/storefront/pkg/types"
)

const (
	interactionsPath = "/interactions"
	requestIDHeader  = "X-Request-ID"
)

// Stats counts delivery outcomes since construction.
type Stats struct {
	Sent    int64
	Failed  int64
	Dropped int64
}

// Reporter is safe for concurrent use.
type Reporter struct {
	http      *http.Client
	endpoint  string
	userAgent string
	timeout   time.Duration
	disabled  bool
	now       func() time.Time
	log       zerolog.Logger

	mu       sync.Mutex
	inflight int
	idle     chan struct{} // closed while inflight is zero

	sent    atomic.Int64
	failed  atomic.Int64
	dropped atomic.Int64
}

type wireEvent struct {
	UserID    string `json:"user_id"`
	ItemID    string `json:"item_id"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

// New builds a Reporter that posts to baseURL/interactions. When
// httpClient is nil a client with cfg.Timeout is created.
func New(baseURL string, cfg types.ReporterConfig, httpClient *http.Client, log zerolog.Logger) (*Reporter, error) {
	base := strings.TrimRight(baseURL, "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid reporter base URL %q", baseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Reporter{
		http:      httpClient,
		endpoint:  base + interactionsPath,
		userAgent: cfg.UserAgent,
		timeout:   timeout,
		disabled:  cfg.Disabled,
		now:       time.Now,
		log:       log,
	}, nil
}

// Report records an interaction and sends it in the background. It returns
// immediately with the event that was created.
func (r *Reporter) Report(userID, itemID string, kind types.InteractionKind) types.InteractionEvent {
	ev := types.InteractionEvent{
		ID:        uuid.NewString(),
		UserID:    userID,
		ItemID:    itemID,
		Kind:      kind,
		Timestamp: r.now(),
	}

	if r.disabled {
		r.dropped.Add(1)
		r.log.Debug().Str("event_id", ev.ID).Msg("telemetry disabled, event dropped")
		return ev
	}

	r.begin()
	go func() {
		defer r.end()
		// Detached from any caller context: the send outlives the screen
		// or command that triggered it.
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		r.send(ctx, ev)
	}()
	return ev
}

// Wait blocks until no send is in flight or ctx is done. Report may be
// called concurrently; sends it starts while Wait is blocked extend the wait.
func (r *Reporter) Wait(ctx context.Context) error {
	r.mu.Lock()
	if r.inflight == 0 {
		r.mu.Unlock()
		return nil
	}
	idle := r.idle
	r.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Reporter) begin() {
	r.mu.Lock()
	if r.inflight == 0 {
		r.idle = make(chan struct{})
	}
	r.inflight++
	r.mu.Unlock()
}

func (r *Reporter) end() {
	r.mu.Lock()
	r.inflight--
	if r.inflight == 0 {
		close(r.idle)
	}
	r.mu.Unlock()
}

// Stats returns delivery counters.
func (r *Reporter) Stats() Stats {
	return Stats{
		Sent:    r.sent.Load(),
		Failed:  r.failed.Load(),
		Dropped: r.dropped.Load(),
	}
}

func (r *Reporter) send(ctx context.Context, ev types.InteractionEvent) {
	log := r.log.With().
		Str("event_id", ev.ID).
		Str("item_id", ev.ItemID).
		Str("type", string(ev.Kind)).
		Logger()

	if err := r.post(ctx, ev); err != nil {
		r.failed.Add(1)
		log.Warn().Err(err).Msg("interaction not delivered")
		return
	}
	r.sent.Add(1)
	log.Debug().Msg("interaction delivered")
}

func (r *Reporter) post(ctx context.Context, ev types.InteractionEvent) error {
	body, err := json.Marshal(wireEvent{
		UserID:    ev.UserID,
		ItemID:    ev.ItemID,
		Type:      string(ev.Kind),
		Timestamp: ev.Timestamp.Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(requestIDHeader, ev.ID)
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("sending event: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("backend returned HTTP %d", resp.StatusCode)
	}
	return nil
}
