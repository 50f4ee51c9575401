// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package controller decides whether a single search input drives live
// search or recommendations, issues the matching cache fetch for each
// input event, and keeps the view state for the latest event only.
package controller

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/storefront/internal/gateway"
	"github.com/pdiddy/storefront/internal/querycache"
	"github.com/pdiddy/storefront/pkg/types"
)

// Cache is the subset of the query cache the controller uses.
type Cache interface {
	Get(ctx context.Context, mode types.Mode, q types.Query) (querycache.Entry, error)
}

// Projector turns cached payloads into display products.
type Projector interface {
	Project(ctx context.Context, mode types.Mode, payload types.Payload) []types.DisplayProduct
}

// View is a snapshot of what the screen should show.
type View struct {
	Mode           types.Mode
	Query          string
	SubmittedQuery string
	Loading        bool
	Err            error
	Retryable      bool
	Products       []types.DisplayProduct
}

// ticket identifies one issued fetch. A result is applied only while its
// ticket is the active one.
type ticket struct {
	key    querycache.Key
	query  types.Query
	token  uint64
	cancel chan struct{}
}

// Controller is safe for concurrent use.
type Controller struct {
	cache    Cache
	proj     Projector
	debounce time.Duration
	log      zerolog.Logger

	mu        sync.Mutex
	mode      types.Mode
	query     types.Query
	submitted types.Query
	active    *ticket
	last      *ticket
	tokens    uint64
	loading   bool
	err       error
	products  []types.DisplayProduct
}

// New creates a controller. A non-empty initialQuery starts it in
// Recommendation mode with that query latched; Start issues its fetch.
func New(cache Cache, proj Projector, cfg types.ControllerConfig, log zerolog.Logger, initialQuery string) *Controller {
	c := &Controller{
		cache:    cache,
		proj:     proj,
		debounce: cfg.Debounce,
		log:      log,
		mode:     types.ModeSearch,
		products: []types.DisplayProduct{},
	}
	if q := types.NewQuery(initialQuery); !q.IsEmpty() {
		c.mode = types.ModeRecommendation
		c.query = q
		c.submitted = q
	}
	return c
}

// Start issues the initial recommendation fetch when the controller was
// created with a query.
func (c *Controller) Start(ctx context.Context) *Pending {
	c.mu.Lock()
	mode, q := c.mode, c.submitted
	c.mu.Unlock()

	if mode != types.ModeRecommendation {
		return skipped(querycache.Key{Mode: types.ModeSearch})
	}
	return c.issue(ctx, types.ModeRecommendation, q, 0)
}

// Keystroke handles the search text changing to text. Typing always
// selects Search mode. Empty text clears results without fetching.
func (c *Controller) Keystroke(ctx context.Context, text string) *Pending {
	q := types.NewQuery(text)

	c.mu.Lock()
	c.mode = types.ModeSearch
	c.query = q
	if q.IsEmpty() {
		c.resetLocked()
		c.mu.Unlock()
		c.log.Debug().Msg("search cleared")
		return skipped(querycache.NewKey(types.ModeSearch, q))
	}
	c.mu.Unlock()

	return c.issue(ctx, types.ModeSearch, q, c.debounce)
}

// Submit handles an explicit submit of text. Non-empty text switches to
// Recommendation mode and fetches recommendations for it.
func (c *Controller) Submit(ctx context.Context, text string) *Pending {
	q := types.NewQuery(text)

	c.mu.Lock()
	c.query = q
	if q.IsEmpty() {
		c.mode = types.ModeSearch
		c.resetLocked()
		c.mu.Unlock()
		return skipped(querycache.NewKey(types.ModeSearch, q))
	}
	c.mode = types.ModeRecommendation
	c.submitted = q
	c.mu.Unlock()

	c.log.Debug().Str("query", q.Normalized).Msg("recommendation query submitted")
	return c.issue(ctx, types.ModeRecommendation, q, 0)
}

// Retry re-issues the most recent fetch for the same key. Other cache
// entries are left alone.
func (c *Controller) Retry(ctx context.Context) *Pending {
	c.mu.Lock()
	last := c.last
	c.mu.Unlock()

	if last == nil {
		return skipped(querycache.Key{Mode: types.ModeSearch})
	}
	return c.issue(ctx, last.key.Mode, last.query, 0)
}

// Mode returns the current mode.
func (c *Controller) Mode() types.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// View returns a snapshot of the display state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		Mode:           c.mode,
		Query:          c.query.Raw,
		SubmittedQuery: strings.TrimSpace(c.submitted.Raw),
		Loading:        c.loading,
		Err:            c.err,
		Products:       append([]types.DisplayProduct(nil), c.products...),
	}
	if v.Products == nil {
		v.Products = []types.DisplayProduct{}
	}
	if c.err != nil {
		v.Retryable = gateway.IsRetryable(c.err)
	}
	return v
}

// resetLocked cancels the active fetch and clears results and the
// recommendation query. c.mu must be held.
func (c *Controller) resetLocked() {
	c.cancelLocked()
	c.submitted = types.Query{}
	c.last = nil
	c.loading = false
	c.err = nil
	c.products = []types.DisplayProduct{}
}

func (c *Controller) cancelLocked() {
	if c.active != nil {
		close(c.active.cancel)
		c.active = nil
	}
}

// issue supersedes the active ticket with a new one and starts its fetch.
func (c *Controller) issue(ctx context.Context, mode types.Mode, q types.Query, delay time.Duration) *Pending {
	c.mu.Lock()
	c.cancelLocked()
	c.tokens++
	t := &ticket{
		key:    querycache.NewKey(mode, q),
		query:  q,
		token:  c.tokens,
		cancel: make(chan struct{}),
	}
	c.active = t
	c.last = t
	c.loading = true
	c.err = nil
	c.mu.Unlock()

	p := newPending(t.key)
	go c.run(ctx, t, delay, p)
	return p
}

func (c *Controller) run(ctx context.Context, t *ticket, delay time.Duration, p *Pending) {
	log := c.log.With().Str("key", t.key.String()).Uint64("token", t.token).Logger()

	// Stop waiting once the ticket is superseded. The cache keeps the
	// underlying fetch running.
	ctx, stop := context.WithCancel(ctx)
	defer stop()
	go func() {
		select {
		case <-t.cancel:
			stop()
		case <-ctx.Done():
		}
	}()

	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			c.settle(t, p, log, nil, ctx.Err())
			return
		}
	}

	entry, err := c.cache.Get(ctx, t.key.Mode, t.query)
	var products []types.DisplayProduct
	if err == nil && c.isActive(t) {
		products = c.proj.Project(ctx, t.key.Mode, entry.Payload)
	}
	c.settle(t, p, log, products, err)
}

func (c *Controller) isActive(t *ticket) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.matches(t)
}

// matches compares by key and token, never by arrival order. c.mu must be
// held.
func (c *Controller) matches(t *ticket) bool {
	return c.active != nil && c.active.key == t.key && c.active.token == t.token
}

func (c *Controller) settle(t *ticket, p *Pending, log zerolog.Logger, products []types.DisplayProduct, err error) {
	c.mu.Lock()
	if !c.matches(t) {
		c.mu.Unlock()
		log.Debug().Msg("result discarded")
		p.finish(OutcomeDiscarded, nil)
		return
	}

	c.active = nil
	c.loading = false
	if err != nil {
		c.err = err
		c.products = []types.DisplayProduct{}
		c.mu.Unlock()
		log.Warn().Err(err).Msg("fetch failed")
		p.finish(OutcomeFailed, err)
		return
	}

	c.err = nil
	c.products = products
	c.mu.Unlock()
	log.Debug().Int("products", len(products)).Msg("result applied")
	p.finish(OutcomeApplied, nil)
}
