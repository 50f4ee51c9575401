// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/pdiddy/storefront/internal/catalog"
	"github.com/pdiddy/storefront/internal/controller"
	"github.com/pdiddy/storefront/internal/gateway"
	"github.com/pdiddy/storefront/internal/logging"
	"github.com/pdiddy/storefront/internal/projector"
	"github.com/pdiddy/storefront/internal/querycache"
	"github.com/pdiddy/storefront/internal/reporter"
	"github.com/pdiddy/storefront/pkg/types"
)

// drainTimeout bounds how long shutdown waits for telemetry sends.
const drainTimeout = 3 * time.Second

// app holds the components a command needs, built once from configuration.
type app struct {
	cfg       types.Config
	log       zerolog.Logger
	gateway   *gateway.Client
	cache     *querycache.Cache
	catalog   *catalog.Store
	projector *projector.Projector
	reporter  *reporter.Reporter
}

// newApp wires every component from the loaded configuration. The catalog
// is optional: if it cannot be opened, recommendations resolve through the
// gateway only.
func newApp(cfg types.Config, log zerolog.Logger) (*app, error) {
	gw, err := gateway.New(cfg.Gateway, nil, logging.Component(log, "gateway"))
	if err != nil {
		return nil, err
	}

	cache, err := querycache.New(gw, cfg.Cache, logging.Component(log, "querycache"))
	if err != nil {
		return nil, err
	}

	rep, err := reporter.New(cfg.Gateway.BaseURL, cfg.Reporter, nil, logging.Component(log, "reporter"))
	if err != nil {
		cache.Close()
		return nil, err
	}

	a := &app{cfg: cfg, log: log, gateway: gw, cache: cache, reporter: rep}

	var chain projector.Chain
	store, err := catalog.NewStore(cfg.Catalog)
	if err != nil {
		log.Warn().Err(err).Msg("local catalog unavailable")
	} else {
		a.catalog = store
		chain = append(chain, store)
	}
	if cfg.Projection.RemoteLookup {
		chain = append(chain, gw)
	}
	a.projector = projector.New(chain, cfg.Projection, logging.Component(log, "projector"))

	return a, nil
}

// appFromViper loads configuration from the global viper instance and the
// secrets loaded at startup.
func appFromViper() (*app, error) {
	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, logger)
}

func (a *app) newController(initialQuery string) *controller.Controller {
	return controller.New(a.cache, a.projector, a.cfg.Controller, logging.Component(a.log, "controller"), initialQuery)
}

// Close waits briefly for telemetry in flight, then releases resources.
func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := a.reporter.Wait(ctx); err != nil {
		a.log.Warn().Err(err).Msg("telemetry still in flight at shutdown")
	}
	stats := a.reporter.Stats()
	if stats.Failed > 0 {
		a.log.Warn().Int64("failed", stats.Failed).Int64("sent", stats.Sent).Msg("some interactions were not delivered")
	}

	cs := a.cache.Stats()
	a.log.Debug().Int64("fetches", cs.Fetches).Int64("hits", cs.Hits).Int("entries", cs.Entries).Msg("query cache stats")
	a.cache.Close()
	if a.catalog != nil {
		a.catalog.Close()
	}
}
