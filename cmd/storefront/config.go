// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/pdiddy/storefront/internal/secrets"
	"github.com/pdiddy/storefront/pkg/types"
)

// registerDefaults makes every key known to v so that environment variables
// override keys missing from the config file.
func registerDefaults(v *viper.Viper, d types.Config) {
	defaults := map[string]any{
		"gateway.base_url":             d.Gateway.BaseURL,
		"gateway.api_key":              d.Gateway.APIKey,
		"gateway.user_id":              d.Gateway.UserID,
		"gateway.recommendation_count": d.Gateway.RecommendationCount,
		"gateway.recommend_retries":    d.Gateway.RecommendRetries,
		"gateway.requests_per_second":  d.Gateway.RequestsPerSecond,
		"gateway.timeout":              d.Gateway.Timeout,
		"gateway.user_agent":           d.Gateway.UserAgent,

		"cache.catalog_ttl":        d.Cache.CatalogTTL,
		"cache.search_ttl":         d.Cache.SearchTTL,
		"cache.recommendation_ttl": d.Cache.RecommendationTTL,
		"cache.max_age":            d.Cache.MaxAge,
		"cache.max_entries":        d.Cache.MaxEntries,

		"controller.debounce": d.Controller.Debounce,

		"projection.fallback_price_multiplier": d.Projection.FallbackPriceMultiplier,
		"projection.fallback_category":         d.Projection.FallbackCategory,
		"projection.placeholder_image":         d.Projection.PlaceholderImage,
		"projection.remote_lookup":             d.Projection.RemoteLookup,

		"reporter.disabled":   d.Reporter.Disabled,
		"reporter.timeout":    d.Reporter.Timeout,
		"reporter.user_agent": d.Reporter.UserAgent,

		"catalog.data_dir": d.Catalog.DataDir,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// loadConfig resolves the full configuration from defaults, the config
// file, STOREFRONT_* environment variables and the secrets directory.
func loadConfig(v *viper.Viper, s secrets.Secrets) (types.Config, error) {
	cfg := types.DefaultConfig()
	registerDefaults(v, cfg)

	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	cfg.Gateway.APIKey = s.Get(secrets.APIKey, cfg.Gateway.APIKey)

	if cfg.Cache.SearchTTL < 0 || cfg.Cache.CatalogTTL < 0 || cfg.Cache.RecommendationTTL < 0 {
		return types.Config{}, fmt.Errorf("cache TTLs must not be negative")
	}
	if cfg.Controller.Debounce < 0 {
		return types.Config{}, fmt.Errorf("controller.debounce must not be negative")
	}
	return cfg, nil
}
