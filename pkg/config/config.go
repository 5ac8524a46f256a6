// Package config loads search-server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sternrassler/bizsearch/pkg/cache"
	"github.com/Sternrassler/bizsearch/pkg/enrich"
	"github.com/Sternrassler/bizsearch/pkg/logging"
	"github.com/Sternrassler/bizsearch/pkg/pagination"
	"github.com/Sternrassler/bizsearch/pkg/provider"
	"github.com/Sternrassler/bizsearch/pkg/record"
	"github.com/Sternrassler/bizsearch/pkg/region"
	"github.com/Sternrassler/bizsearch/pkg/search"
	"github.com/caarlos0/env/v11"
)

// Config holds all configuration for the search server.
type Config struct {
	// HTTP Server
	HTTPPort        int           `env:"BIZSEARCH_HTTP_PORT" envDefault:"8080"`
	RequestTimeout  time.Duration `env:"BIZSEARCH_REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"BIZSEARCH_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	Environment     string        `env:"BIZSEARCH_ENVIRONMENT" envDefault:"development"`

	// Logging
	LogLevel  string `env:"BIZSEARCH_LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"BIZSEARCH_LOG_PRETTY" envDefault:"false"`

	// Redis backs the quota gate. Empty disables metering.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	QuotaDefault  int    `env:"BIZSEARCH_QUOTA_DEFAULT" envDefault:"100"`

	// Provider credentials. A provider without credentials is not configured.
	KakaoAPIKey        string `env:"KAKAO_API_KEY"`
	NaverClientID      string `env:"NAVER_CLIENT_ID"`
	NaverClientSecret  string `env:"NAVER_CLIENT_SECRET"`
	GooglePlacesAPIKey string `env:"GOOGLE_PLACES_API_KEY"`
	GoogleLanguage     string `env:"GOOGLE_PLACES_LANGUAGE" envDefault:"en"`

	// Provider transport
	ProviderTimeout       time.Duration `env:"BIZSEARCH_PROVIDER_TIMEOUT" envDefault:"5s"`
	ProviderRetryAttempts int           `env:"BIZSEARCH_PROVIDER_RETRY_ATTEMPTS" envDefault:"2"`

	// Pagination
	KakaoMaxPages    int           `env:"BIZSEARCH_KAKAO_MAX_PAGES" envDefault:"3"`
	NaverMaxPages    int           `env:"BIZSEARCH_NAVER_MAX_PAGES" envDefault:"5"`
	GoogleMaxPages   int           `env:"BIZSEARCH_GOOGLE_MAX_PAGES" envDefault:"3"`
	PageDelay        time.Duration `env:"BIZSEARCH_PAGE_DELAY" envDefault:"200ms"`
	GoogleTokenDelay time.Duration `env:"BIZSEARCH_GOOGLE_TOKEN_DELAY" envDefault:"2s"`

	// Enrichment
	EnrichLimit int           `env:"BIZSEARCH_ENRICH_LIMIT" envDefault:"10"`
	EnrichDelay time.Duration `env:"BIZSEARCH_ENRICH_DELAY" envDefault:"100ms"`

	// Cache. Zero TTL keeps entries for the process lifetime.
	CacheTTL        time.Duration `env:"BIZSEARCH_CACHE_TTL" envDefault:"0s"`
	CacheMaxEntries int           `env:"BIZSEARCH_CACHE_MAX_ENTRIES" envDefault:"1000"`

	// Result paging
	DefaultPageSize int `env:"BIZSEARCH_DEFAULT_PAGE_SIZE" envDefault:"10"`
	MaxPageSize     int `env:"BIZSEARCH_MAX_PAGE_SIZE" envDefault:"100"`

	// DefaultProviderSet answers the geo fallback for hints that match no
	// curated city.
	DefaultProviderSet string `env:"BIZSEARCH_DEFAULT_PROVIDER_SET" envDefault:"domestic"`
}

// Load parses the process environment into Config and validates it.
func Load() (*Config, error) {
	return load(env.Options{})
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	return load(env.Options{Environment: environ})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.KakaoAPIKey = strings.TrimSpace(cfg.KakaoAPIKey)
	cfg.NaverClientID = strings.TrimSpace(cfg.NaverClientID)
	cfg.NaverClientSecret = strings.TrimSpace(cfg.NaverClientSecret)
	cfg.GooglePlacesAPIKey = strings.TrimSpace(cfg.GooglePlacesAPIKey)
	cfg.RedisAddr = strings.TrimSpace(cfg.RedisAddr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects inconsistent values.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("BIZSEARCH_HTTP_PORT %d out of range", c.HTTPPort))
	}
	switch logging.LogLevel(strings.ToLower(c.LogLevel)) {
	case logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, logging.LevelError, logging.LevelDisabled:
	default:
		errs = append(errs, fmt.Errorf("BIZSEARCH_LOG_LEVEL %q is not a log level", c.LogLevel))
	}
	if !c.HasKakao() && !c.HasNaver() && !c.HasGoogle() {
		errs = append(errs, errors.New("no provider configured: set KAKAO_API_KEY, NAVER_CLIENT_ID/NAVER_CLIENT_SECRET or GOOGLE_PLACES_API_KEY"))
	}
	if (c.NaverClientID == "") != (c.NaverClientSecret == "") {
		errs = append(errs, errors.New("NAVER_CLIENT_ID and NAVER_CLIENT_SECRET must be set together"))
	}
	if c.QuotaDefault < 0 {
		errs = append(errs, errors.New("BIZSEARCH_QUOTA_DEFAULT must not be negative"))
	}
	if c.ProviderRetryAttempts < 1 {
		errs = append(errs, errors.New("BIZSEARCH_PROVIDER_RETRY_ATTEMPTS must be at least 1"))
	}
	if c.KakaoMaxPages < 1 || c.NaverMaxPages < 1 || c.GoogleMaxPages < 1 {
		errs = append(errs, errors.New("provider max pages must be at least 1"))
	}
	if c.EnrichLimit < 0 {
		errs = append(errs, errors.New("BIZSEARCH_ENRICH_LIMIT must not be negative"))
	}
	if c.CacheMaxEntries < 0 {
		errs = append(errs, errors.New("BIZSEARCH_CACHE_MAX_ENTRIES must not be negative"))
	}
	if c.DefaultPageSize < 1 {
		errs = append(errs, errors.New("BIZSEARCH_DEFAULT_PAGE_SIZE must be at least 1"))
	}
	if c.MaxPageSize < c.DefaultPageSize {
		errs = append(errs, errors.New("BIZSEARCH_MAX_PAGE_SIZE must not be below the default page size"))
	}
	for name, d := range map[string]time.Duration{
		"BIZSEARCH_REQUEST_TIMEOUT":    c.RequestTimeout,
		"BIZSEARCH_SHUTDOWN_TIMEOUT":   c.ShutdownTimeout,
		"BIZSEARCH_PROVIDER_TIMEOUT":   c.ProviderTimeout,
		"BIZSEARCH_PAGE_DELAY":         c.PageDelay,
		"BIZSEARCH_GOOGLE_TOKEN_DELAY": c.GoogleTokenDelay,
		"BIZSEARCH_ENRICH_DELAY":       c.EnrichDelay,
		"BIZSEARCH_CACHE_TTL":          c.CacheTTL,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", name))
		}
	}
	id, err := region.ParseSetID(c.DefaultProviderSet)
	if err != nil {
		errs = append(errs, fmt.Errorf("BIZSEARCH_DEFAULT_PROVIDER_SET: %w", err))
	} else if id == "" {
		errs = append(errs, errors.New("BIZSEARCH_DEFAULT_PROVIDER_SET must not be empty"))
	}

	return errors.Join(errs...)
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// HasKakao reports whether Kakao credentials are set.
func (c *Config) HasKakao() bool { return c.KakaoAPIKey != "" }

// HasNaver reports whether Naver credentials are set.
func (c *Config) HasNaver() bool { return c.NaverClientID != "" && c.NaverClientSecret != "" }

// HasGoogle reports whether a Google Places key is set.
func (c *Config) HasGoogle() bool { return c.GooglePlacesAPIKey != "" }

// Logging returns the logger configuration.
func (c *Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(strings.ToLower(c.LogLevel))
	cfg.Pretty = c.LogPretty
	return cfg
}

// ProviderHTTP returns the transport settings shared by every provider.
func (c *Config) ProviderHTTP() provider.HTTPConfig {
	retry := provider.DefaultRetryConfig()
	retry.MaxAttempts = c.ProviderRetryAttempts
	return provider.HTTPConfig{
		Timeout: c.ProviderTimeout,
		Retry:   retry,
	}
}

// CacheOptions returns the superset cache bounds.
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{TTL: c.CacheTTL, MaxEntries: c.CacheMaxEntries}
}

// GeoDefault returns the provider set used when a hint matches no rule.
func (c *Config) GeoDefault() region.StaticGeoDefault {
	id, _ := region.ParseSetID(c.DefaultProviderSet)
	return region.StaticGeoDefault{Set: id}
}

// Search returns the orchestration settings.
func (c *Config) Search() search.Config {
	return search.Config{
		DefaultPageSize: c.DefaultPageSize,
		MaxPageSize:     c.MaxPageSize,
		Pagination: map[record.Source]pagination.Config{
			record.SourceKakao:  {MaxPages: c.KakaoMaxPages, Delay: c.PageDelay},
			record.SourceNaver:  {MaxPages: c.NaverMaxPages, Delay: c.PageDelay},
			record.SourceGoogle: {MaxPages: c.GoogleMaxPages, Delay: c.PageDelay, TokenDelay: c.GoogleTokenDelay},
		},
		DefaultPagination: pagination.DefaultConfig(),
		Enrich:            enrich.Config{Limit: c.EnrichLimit, Delay: c.EnrichDelay},
	}
}
