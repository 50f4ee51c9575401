// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package projector turns raw gateway payloads into display products.
// Search payloads pass through with field defaulting; recommendation
// payloads are resolved to product detail through a Lookup, with a degraded
// fallback for ids that cannot be resolved. Input order is always kept.
package projector

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/storefront/pkg/types"
)

// maxConcurrentLookups limits parallel product-detail lookups per projection.
const maxConcurrentLookups = 8

// Lookup resolves a product id to detail. It returns nil, nil for unknown ids.
type Lookup interface {
	FindByID(ctx context.Context, id string) (*types.Product, error)
}

// Chain tries each lookup in order and returns the first hit. Errors from
// one lookup do not stop the next; if nothing matches, the last error is
// returned.
type Chain []Lookup

// FindByID implements Lookup.
func (c Chain) FindByID(ctx context.Context, id string) (*types.Product, error) {
	var lastErr error
	for _, l := range c {
		if l == nil {
			continue
		}
		p, err := l.FindByID(ctx, id)
		if err != nil {
			lastErr = err
			continue
		}
		if p != nil {
			return p, nil
		}
	}
	return nil, lastErr
}

// MapLookup resolves ids from an in-memory table.
type MapLookup map[string]types.Product

// FindByID implements Lookup.
func (m MapLookup) FindByID(_ context.Context, id string) (*types.Product, error) {
	p, ok := m[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// Projector is stateless apart from its configuration; it is safe for
// concurrent use.
type Projector struct {
	lookup Lookup
	cfg    types.ProjectionConfig
	log    zerolog.Logger
}

// New returns a Projector. A nil lookup makes every recommendation a fallback.
func New(lookup Lookup, cfg types.ProjectionConfig, log zerolog.Logger) *Projector {
	if cfg.FallbackCategory == "" {
		cfg.FallbackCategory = "Recommended"
	}
	return &Projector{lookup: lookup, cfg: cfg, log: log}
}

// Project maps payload to display products for mode. It never fails: an
// empty payload yields an empty slice and unresolvable recommendations yield
// fallback products.
func (p *Projector) Project(ctx context.Context, mode types.Mode, payload types.Payload) []types.DisplayProduct {
	if mode == types.ModeRecommendation {
		return p.projectRecommendations(ctx, payload.Recommendations)
	}
	return ProjectProducts(payload.Products)
}

// ProjectProducts converts search results, replacing missing lists with
// empty ones.
func ProjectProducts(products []types.Product) []types.DisplayProduct {
	out := make([]types.DisplayProduct, len(products))
	for i, prod := range products {
		out[i] = types.DisplayProduct{
			ID:        prod.ID,
			Name:      prod.Name,
			Price:     prod.Price,
			Category:  prod.Category,
			Tags:      copyOrEmpty(prod.Tags),
			ImageURLs: copyOrEmpty(prod.ImageURLs),
		}
	}
	return out
}

func (p *Projector) projectRecommendations(ctx context.Context, recs []types.Recommendation) []types.DisplayProduct {
	out := make([]types.DisplayProduct, len(recs))

	var g errgroup.Group
	g.SetLimit(maxConcurrentLookups)
	for i, rec := range recs {
		i, rec := i, rec
		g.Go(func() error {
			out[i] = p.resolve(ctx, rec)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (p *Projector) resolve(ctx context.Context, rec types.Recommendation) types.DisplayProduct {
	if p.lookup == nil {
		return p.Fallback(rec)
	}

	prod, err := p.lookup.FindByID(ctx, rec.ItemID)
	if err != nil {
		p.log.Warn().Err(err).Str("item_id", rec.ItemID).Msg("product lookup failed, using fallback")
		return p.Fallback(rec)
	}
	if prod == nil {
		p.log.Debug().Str("item_id", rec.ItemID).Msg("unknown recommended item, using fallback")
		return p.Fallback(rec)
	}

	score := rec.Score
	images := copyOrEmpty(prod.ImageURLs)
	if len(images) == 0 && p.cfg.PlaceholderImage != "" {
		images = []string{p.placeholder(prod.Name)}
	}
	return types.DisplayProduct{
		ID:          rec.ItemID,
		Name:        prod.Name,
		Price:       prod.Price,
		Category:    prod.Category,
		Tags:        append(copyOrEmpty(prod.Tags), ScoreTag(score)),
		ImageURLs:   images,
		Score:       &score,
		Explanation: rec.Explanation,
	}
}

// Fallback builds the degraded product for an unresolvable recommendation:
// the id doubles as the name and the price is derived from the score.
func (p *Projector) Fallback(rec types.Recommendation) types.DisplayProduct {
	score := rec.Score
	return types.DisplayProduct{
		ID:          rec.ItemID,
		Name:        rec.ItemID,
		Price:       score * p.cfg.FallbackPriceMultiplier,
		Category:    p.cfg.FallbackCategory,
		Tags:        []string{ScoreTag(score)},
		ImageURLs:   []string{},
		Score:       &score,
		Explanation: rec.Explanation,
	}
}

// ScoreTag formats a recommendation score as a display tag.
func ScoreTag(score float64) string {
	return fmt.Sprintf("Score: %.3f", score)
}

func (p *Projector) placeholder(name string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
	return fmt.Sprintf(p.cfg.PlaceholderImage, escaped)
}

func copyOrEmpty(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
