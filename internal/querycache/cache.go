// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package querycache memoizes gateway fetches keyed by (mode, normalized
// query). At most one fetch per key is in flight; every caller that asks for
// a key while its fetch is running receives that fetch's result.
package querycache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/pdiddy/storefront/pkg/types"
)

// State is the lifecycle position of a cache entry.
type State int

const (
	StatePending State = iota
	StateFresh
	StateStale
	StateError
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateFresh:
		return "fresh"
	case StateStale:
		return "stale"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Key identifies a cached result.
type Key struct {
	Mode types.Mode
	Text string
}

// NewKey builds the key for a query in the given mode.
func NewKey(mode types.Mode, q types.Query) Key {
	return Key{Mode: mode, Text: q.Normalized}
}

func (k Key) String() string {
	return k.Mode.String() + ":" + k.Text
}

// Entry is a snapshot of one cached fetch. Entries are replaced, never
// modified; callers must treat Payload slices as read-only.
type Entry struct {
	Key       Key
	Payload   types.Payload
	FetchedAt time.Time
	State     State
	Err       error
}

// Fetcher performs the network calls behind the cache.
type Fetcher interface {
	Search(ctx context.Context, query string) ([]types.Product, error)
	Recommend(ctx context.Context, query string) ([]types.Recommendation, error)
}

// Stats counts cache activity since construction.
type Stats struct {
	Fetches int64
	Hits    int64
	Entries int
}

// Option customizes a Cache.
type Option func(*Cache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// Cache is safe for concurrent use.
type Cache struct {
	fetcher Fetcher
	cfg     types.CacheConfig
	now     func() time.Time
	log     zerolog.Logger

	// ctx bounds shared fetches. A caller giving up does not cancel a fetch
	// other callers may be waiting on.
	ctx    context.Context
	cancel context.CancelFunc

	group singleflight.Group

	mu       sync.Mutex
	entries  *lru.Cache[Key, Entry]
	inflight map[Key]struct{}

	fetches atomic.Int64
	hits    atomic.Int64
}

const defaultMaxEntries = 512

// New creates a cache over f.
func New(f Fetcher, cfg types.CacheConfig, log zerolog.Logger, opts ...Option) (*Cache, error) {
	if f == nil {
		return nil, fmt.Errorf("query cache requires a fetcher")
	}
	size := cfg.MaxEntries
	if size <= 0 {
		size = defaultMaxEntries
	}
	entries, err := lru.New[Key, Entry](size)
	if err != nil {
		return nil, fmt.Errorf("creating entry table: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Cache{
		fetcher:  f,
		cfg:      cfg,
		now:      time.Now,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
		entries:  entries,
		inflight: make(map[Key]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close aborts in-flight fetches. The cache must not be used afterwards.
func (c *Cache) Close() {
	c.cancel()
}

// TTL returns how long an entry for key stays fresh.
func (c *Cache) TTL(key Key) time.Duration {
	switch {
	case key.Mode == types.ModeRecommendation:
		return c.cfg.RecommendationTTL
	case key.Text == "":
		return c.cfg.CatalogTTL
	default:
		return c.cfg.SearchTTL
	}
}

// Get returns the entry for (mode, q), fetching it when missing, stale, or
// errored. The returned error is the fetch error (also in Entry.Err) or
// ctx.Err() if the caller stopped waiting.
func (c *Cache) Get(ctx context.Context, mode types.Mode, q types.Query) (Entry, error) {
	key := NewKey(mode, q)

	if e, ok := c.fresh(key); ok {
		c.hits.Add(1)
		return e, nil
	}

	ch := c.group.DoChan(key.String(), func() (any, error) {
		return c.fetch(key), nil
	})

	select {
	case res := <-ch:
		e := res.Val.(Entry)
		return e, e.Err
	case <-ctx.Done():
		return Entry{Key: key, State: StatePending}, ctx.Err()
	}
}

// Peek returns the current entry for (mode, q) without fetching. The state
// is Pending while a fetch for the key is in flight.
func (c *Cache) Peek(mode types.Mode, q types.Query) (Entry, bool) {
	key := NewKey(mode, q)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries.Peek(key)
	_, pending := c.inflight[key]
	switch {
	case pending && !ok:
		return Entry{Key: key, State: StatePending}, true
	case !ok:
		return Entry{}, false
	}
	e.State = c.stateOf(e, c.now())
	if pending {
		e.State = StatePending
	}
	return e, true
}

// Invalidate drops the entry for (mode, q). Other keys and any fetch already
// in flight are unaffected.
func (c *Cache) Invalidate(mode types.Mode, q types.Query) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Remove(NewKey(mode, q))
}

// Stats returns activity counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Fetches: c.fetches.Load(),
		Hits:    c.hits.Load(),
		Entries: c.entries.Len(),
	}
}

// fresh returns the entry for key if it can be served without a fetch.
func (c *Cache) fresh(key Key) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries.Get(key)
	if !ok || c.stateOf(e, c.now()) != StateFresh {
		return Entry{}, false
	}
	e.State = StateFresh
	return e, true
}

// stateOf derives the state of a stored entry at time now.
func (c *Cache) stateOf(e Entry, now time.Time) State {
	if e.State == StateError {
		return StateError
	}
	if now.Sub(e.FetchedAt) > c.TTL(e.Key) {
		return StateStale
	}
	return StateFresh
}

// fetch runs inside the singleflight group, so at most one call per key is
// active at a time.
func (c *Cache) fetch(key Key) Entry {
	// A flight that finished between the caller's freshness check and
	// joining the group may already have stored a fresh entry.
	if e, ok := c.fresh(key); ok {
		c.hits.Add(1)
		return e
	}

	c.mu.Lock()
	c.inflight[key] = struct{}{}
	c.mu.Unlock()

	c.fetches.Add(1)
	log := c.log.With().Str("key", key.String()).Logger()
	log.Debug().Msg("fetch started")

	payload, err := c.load(c.ctx, key)
	now := c.now()

	e := Entry{Key: key, FetchedAt: now, State: StateFresh, Payload: payload}
	if err != nil {
		e = Entry{Key: key, FetchedAt: now, State: StateError, Err: err}
		log.Warn().Err(err).Msg("fetch failed")
	} else {
		log.Debug().Int("items", payload.Len()).Msg("fetch completed")
	}

	c.mu.Lock()
	delete(c.inflight, key)
	c.entries.Add(key, e)
	c.sweepLocked(now)
	c.mu.Unlock()

	return e
}

func (c *Cache) load(ctx context.Context, key Key) (types.Payload, error) {
	if key.Mode == types.ModeRecommendation {
		recs, err := c.fetcher.Recommend(ctx, key.Text)
		return types.Payload{Recommendations: recs}, err
	}
	products, err := c.fetcher.Search(ctx, key.Text)
	return types.Payload{Products: products}, err
}

// sweepLocked discards entries older than MaxAge. c.mu must be held.
func (c *Cache) sweepLocked(now time.Time) {
	if c.cfg.MaxAge <= 0 {
		return
	}
	for _, k := range c.entries.Keys() {
		e, ok := c.entries.Peek(k)
		if ok && now.Sub(e.FetchedAt) > c.cfg.MaxAge {
			c.entries.Remove(k)
			c.log.Debug().Str("key", k.String()).Msg("entry expired")
		}
	}
}
