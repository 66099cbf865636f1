// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package config loads Marquee's configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for every setting
//  2. Config File: Optional YAML file (config.yaml, or CONFIG_PATH)
//  3. Environment Variables: Override any mapped setting
//
// The only required settings are the two artifact paths. The TMDB API key is
// optional: without it recommendations still work and every poster falls back
// to the placeholder image.
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load configuration")
//	}
//	model, err := catalog.LoadModel(ctx, cfg.Data.CatalogPath, cfg.Data.MatrixPath)
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/poster"
	"github.com/tomtom215/marquee/internal/recommend"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Data      DataConfig      `koanf:"data"`
	TMDB      TMDBConfig      `koanf:"tmdb"`
	Poster    PosterConfig    `koanf:"poster"`
	Recommend RecommendConfig `koanf:"recommend"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// DataConfig locates the two startup artifacts. Supported formats are
// chosen by extension: .csv, .json and .parquet.
type DataConfig struct {
	CatalogPath string `koanf:"catalog_path" validate:"notblank"`
	MatrixPath  string `koanf:"matrix_path" validate:"notblank"`
}

// TMDBConfig configures the poster metadata service.
type TMDBConfig struct {
	// APIKey is optional. There is no built-in fallback key.
	APIKey       string        `koanf:"api_key"`
	BaseURL      string        `koanf:"base_url" validate:"httpurl"`
	ImageBaseURL string        `koanf:"image_base_url" validate:"httpurl"`
	Timeout      time.Duration `koanf:"timeout" validate:"gt=0"`
	MaxRetries   int           `koanf:"max_retries" validate:"min=0,max=10"`

	// RequestsPerSecond bounds outbound calls; 0 disables the limiter.
	RequestsPerSecond float64         `koanf:"requests_per_second" validate:"gte=0"`
	Burst             int             `koanf:"burst" validate:"min=0"`
	Breaker           BreakerSettings `koanf:"breaker"`
}

// BreakerSettings configures the circuit breaker around TMDB.
type BreakerSettings struct {
	MaxRequests  uint32        `koanf:"max_requests" validate:"min=1"`
	Interval     time.Duration `koanf:"interval" validate:"gt=0"`
	Timeout      time.Duration `koanf:"timeout" validate:"gt=0"`
	MinRequests  uint32        `koanf:"min_requests" validate:"min=1"`
	FailureRatio float64       `koanf:"failure_ratio" validate:"gt=0,lte=1"`
}

// PosterConfig configures poster caching.
type PosterConfig struct {
	CacheSize   int           `koanf:"cache_size" validate:"min=1"`
	TTL         time.Duration `koanf:"ttl" validate:"gt=0"`
	NegativeTTL time.Duration `koanf:"negative_ttl" validate:"gt=0"`

	// StorePath enables the persistent BadgerDB tier when non-empty.
	StorePath      string        `koanf:"store_path"`
	GCInterval     time.Duration `koanf:"gc_interval" validate:"gt=0"`
	GCDiscardRatio float64       `koanf:"gc_discard_ratio" validate:"gt=0,lt=1"`
}

// RecommendConfig configures the recommendation engine.
type RecommendConfig struct {
	DefaultK       int    `koanf:"default_k" validate:"min=1"`
	MaxK           int    `koanf:"max_k" validate:"min=1,max=500"`
	PlaceholderURL string `koanf:"placeholder_url" validate:"httpurl"`
}

// SecurityConfig holds CORS and rate limit settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level" validate:"oneof=trace debug info warn warning error"`

	// Format is json or console.
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`

	// File mirrors logs to a rotated file when set.
	File           string `koanf:"file"`
	FileMaxSizeMB  int    `koanf:"file_max_size_mb" validate:"min=1"`
	FileMaxBackups int    `koanf:"file_max_backups" validate:"min=0"`
	FileMaxAgeDays int    `koanf:"file_max_age_days" validate:"min=0"`
	FileCompress   bool   `koanf:"file_compress"`
}

// ToLogging converts to the logging package's configuration.
func (l LoggingConfig) ToLogging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = l.Level
	cfg.Format = l.Format
	cfg.Caller = l.Caller
	cfg.File = logging.FileConfig{
		Path:       l.File,
		MaxSizeMB:  l.FileMaxSizeMB,
		MaxBackups: l.FileMaxBackups,
		MaxAgeDays: l.FileMaxAgeDays,
		Compress:   l.FileCompress,
	}
	return cfg
}

// ClientConfig converts to the TMDB client configuration.
func (t TMDBConfig) ClientConfig() poster.ClientConfig {
	return poster.ClientConfig{
		BaseURL:           t.BaseURL,
		APIKey:            t.APIKey,
		Timeout:           t.Timeout,
		MaxRetries:        t.MaxRetries,
		RequestsPerSecond: t.RequestsPerSecond,
		Burst:             t.Burst,
	}
}

// BreakerConfig converts to the poster circuit breaker configuration.
func (t TMDBConfig) BreakerConfig() poster.BreakerConfig {
	cfg := poster.DefaultBreakerConfig()
	cfg.MaxRequests = t.Breaker.MaxRequests
	cfg.Interval = t.Breaker.Interval
	cfg.Timeout = t.Breaker.Timeout
	cfg.MinRequests = t.Breaker.MinRequests
	cfg.FailureRatio = t.Breaker.FailureRatio
	return cfg
}

// ResolverConfig converts to the poster resolver configuration.
func (c *Config) ResolverConfig() poster.ResolverConfig {
	return poster.ResolverConfig{
		ImageBaseURL: c.TMDB.ImageBaseURL,
		CacheSize:    c.Poster.CacheSize,
		TTL:          c.Poster.TTL,
		NegativeTTL:  c.Poster.NegativeTTL,
	}
}

// ToRecommend converts to the recommendation engine configuration.
func (r RecommendConfig) ToRecommend() *recommend.Config {
	return &recommend.Config{
		DefaultK:       r.DefaultK,
		MaxK:           r.MaxK,
		PlaceholderURL: r.PlaceholderURL,
	}
}

// String summarizes the configuration for startup logs with secrets masked.
func (c *Config) String() string {
	return fmt.Sprintf("addr=%s catalog=%s matrix=%s tmdb_key=%s poster_store=%q",
		c.Server.Addr(), c.Data.CatalogPath, c.Data.MatrixPath,
		logging.MaskSecret(c.TMDB.APIKey), c.Poster.StorePath)
}
