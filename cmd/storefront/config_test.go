// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/storefront/internal/secrets"
	"github.com/pdiddy/storefront/pkg/types"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(newTestViper(), secrets.Secrets{})
	require.NoError(t, err)
	assert.Equal(t, types.DefaultConfig(), cfg)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	doc := `gateway:
  base_url: http://10.22.134.152:8000
  user_id: user7
  timeout: 3s
cache:
  search_ttl: 500ms
controller:
  debounce: 200ms
projection:
  fallback_price_multiplier: 0
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	v := newTestViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := loadConfig(v, secrets.Secrets{})
	require.NoError(t, err)
	assert.Equal(t, "http://10.22.134.152:8000", cfg.Gateway.BaseURL)
	assert.Equal(t, "user7", cfg.Gateway.UserID)
	assert.Equal(t, 3*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, "storefront/0.1", cfg.Gateway.UserAgent)
	assert.Equal(t, 500*time.Millisecond, cfg.Cache.SearchTTL)
	assert.Equal(t, 5*time.Minute, cfg.Cache.CatalogTTL)
	assert.Equal(t, 200*time.Millisecond, cfg.Controller.Debounce)
	assert.Zero(t, cfg.Projection.FallbackPriceMultiplier)
	assert.Equal(t, "Recommended", cfg.Projection.FallbackCategory)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("STOREFRONT_GATEWAY_BASE_URL", "http://backend:9000")
	t.Setenv("STOREFRONT_CACHE_RECOMMENDATION_TTL", "2m")

	cfg, err := loadConfig(newTestViper(), secrets.Secrets{})
	require.NoError(t, err)
	assert.Equal(t, "http://backend:9000", cfg.Gateway.BaseURL)
	assert.Equal(t, 2*time.Minute, cfg.Cache.RecommendationTTL)
}

func TestLoadConfigAPIKeyFromSecrets(t *testing.T) {
	cfg, err := loadConfig(newTestViper(), secrets.Secrets{secrets.APIKey: "from-file"})
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Gateway.APIKey)

	t.Setenv("STOREFRONT_GATEWAY_API_KEY", "from-env")
	cfg, err = loadConfig(newTestViper(), secrets.Secrets{secrets.APIKey: "from-file"})
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Gateway.APIKey)
}

func TestLoadConfigRejectsNegativeDebounce(t *testing.T) {
	v := newTestViper()
	v.Set("controller.debounce", "-1s")
	_, err := loadConfig(v, secrets.Secrets{})
	assert.Error(t, err)
}
