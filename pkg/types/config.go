package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "storefront/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// GatewayConfig holds settings for the remote search and recommendation API.
type GatewayConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the API root, e.g. "http://10.22.134.152:8000".
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// APIKey is sent as X-API-Key on recommendation requests.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// UserID identifies the shopper for recommendations and telemetry (default "user0").
	UserID string `json:"user_id" yaml:"user_id" mapstructure:"user_id"`

	// RecommendationCount is the number of recommendations requested (default 10).
	RecommendationCount int `json:"recommendation_count" yaml:"recommendation_count" mapstructure:"recommendation_count"`

	// RecommendRetries is the number of retries for a failed recommendation
	// request (default 1). Search requests are never retried.
	RecommendRetries int `json:"recommend_retries" yaml:"recommend_retries" mapstructure:"recommend_retries"`

	// RequestsPerSecond throttles outgoing gateway calls. Zero disables throttling.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// CacheConfig holds time-to-live and bound settings for the query cache.
type CacheConfig struct {
	// CatalogTTL applies to the full-catalog fetch (search with an empty query).
	CatalogTTL time.Duration `json:"catalog_ttl" yaml:"catalog_ttl" mapstructure:"catalog_ttl"`

	// SearchTTL applies to live search results.
	SearchTTL time.Duration `json:"search_ttl" yaml:"search_ttl" mapstructure:"search_ttl"`

	// RecommendationTTL applies to recommendation results.
	RecommendationTTL time.Duration `json:"recommendation_ttl" yaml:"recommendation_ttl" mapstructure:"recommendation_ttl"`

	// MaxAge is the age after which an entry is discarded outright.
	MaxAge time.Duration `json:"max_age" yaml:"max_age" mapstructure:"max_age"`

	// MaxEntries bounds the number of cached keys (least recently used evicted first).
	MaxEntries int `json:"max_entries" yaml:"max_entries" mapstructure:"max_entries"`
}

// ControllerConfig holds settings for the search/recommendation mode controller.
type ControllerConfig struct {
	// Debounce delays keystroke fetches. Zero fetches on every keystroke.
	Debounce time.Duration `json:"debounce" yaml:"debounce" mapstructure:"debounce"`
}

// ProjectionConfig holds the fallback policy for unresolvable recommendations.
type ProjectionConfig struct {
	// FallbackPriceMultiplier derives a placeholder price from the score (default 100).
	FallbackPriceMultiplier float64 `json:"fallback_price_multiplier" yaml:"fallback_price_multiplier" mapstructure:"fallback_price_multiplier"`

	// FallbackCategory labels unresolved items (default "Recommended").
	FallbackCategory string `json:"fallback_category" yaml:"fallback_category" mapstructure:"fallback_category"`

	// PlaceholderImage is a format string taking the escaped product name,
	// used for resolved items without images. Empty disables placeholders.
	PlaceholderImage string `json:"placeholder_image" yaml:"placeholder_image" mapstructure:"placeholder_image"`

	// RemoteLookup enables the gateway product-detail query after a local catalog miss.
	RemoteLookup bool `json:"remote_lookup" yaml:"remote_lookup" mapstructure:"remote_lookup"`
}

// ReporterConfig holds settings for interaction telemetry.
type ReporterConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Disabled turns telemetry off entirely.
	Disabled bool `json:"disabled" yaml:"disabled" mapstructure:"disabled"`
}

// CatalogConfig holds settings for the local product catalog.
type CatalogConfig struct {
	// DataDir is the directory holding the catalog database.
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
}

// Config groups all component configurations.
type Config struct {
	Gateway    GatewayConfig    `json:"gateway" yaml:"gateway" mapstructure:"gateway"`
	Cache      CacheConfig      `json:"cache" yaml:"cache" mapstructure:"cache"`
	Controller ControllerConfig `json:"controller" yaml:"controller" mapstructure:"controller"`
	Projection ProjectionConfig `json:"projection" yaml:"projection" mapstructure:"projection"`
	Reporter   ReporterConfig   `json:"reporter" yaml:"reporter" mapstructure:"reporter"`
	Catalog    CatalogConfig    `json:"catalog" yaml:"catalog" mapstructure:"catalog"`
}

// DefaultConfig returns the configuration used when no file or environment
// override is present.
func DefaultConfig() Config {
	return Config{
		Gateway: GatewayConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   10 * time.Second,
				UserAgent: "storefront/0.1",
			},
			BaseURL:             "http://localhost:8000",
			UserID:              "user0",
			RecommendationCount: 10,
			RecommendRetries:    1,
		},
		Cache: CacheConfig{
			CatalogTTL:        5 * time.Minute,
			SearchTTL:         time.Second,
			RecommendationTTL: 60 * time.Second,
			MaxAge:            30 * time.Minute,
			MaxEntries:        512,
		},
		Projection: ProjectionConfig{
			FallbackPriceMultiplier: 100,
			FallbackCategory:        "Recommended",
			PlaceholderImage:        "https://via.placeholder.com/150/0000FF/808080?Text=%s",
			RemoteLookup:            true,
		},
		Reporter: ReporterConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   5 * time.Second,
				UserAgent: "storefront/0.1",
			},
		},
		Catalog: CatalogConfig{
			DataDir: "data",
		},
	}
}
