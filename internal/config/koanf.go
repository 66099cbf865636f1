// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/marquee/internal/poster"
	"github.com/tomtom215/marquee/internal/recommend"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/marquee/config.yaml",
	"/etc/marquee/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with every default applied.
func defaultConfig() *Config {
	breaker := poster.DefaultBreakerConfig()
	resolver := poster.DefaultResolverConfig()
	engine := recommend.DefaultConfig()

	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8501,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Data: DataConfig{
			CatalogPath: "data/movies.csv",
			MatrixPath:  "data/similarity.csv",
		},
		TMDB: TMDBConfig{
			APIKey:            "",
			BaseURL:           poster.DefaultAPIBaseURL,
			ImageBaseURL:      resolver.ImageBaseURL,
			Timeout:           10 * time.Second,
			MaxRetries:        0,
			RequestsPerSecond: 20,
			Burst:             5,
			Breaker: BreakerSettings{
				MaxRequests:  breaker.MaxRequests,
				Interval:     breaker.Interval,
				Timeout:      breaker.Timeout,
				MinRequests:  breaker.MinRequests,
				FailureRatio: breaker.FailureRatio,
			},
		},
		Poster: PosterConfig{
			CacheSize:      resolver.CacheSize,
			TTL:            resolver.TTL,
			NegativeTTL:    resolver.NegativeTTL,
			StorePath:      "",
			GCInterval:     10 * time.Minute,
			GCDiscardRatio: 0.5,
		},
		Recommend: RecommendConfig{
			DefaultK:       engine.DefaultK,
			MaxK:           engine.MaxK,
			PlaceholderURL: engine.PlaceholderURL,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:          "info",
			Format:         "json",
			Caller:         false,
			File:           "",
			FileMaxSizeMB:  100,
			FileMaxBackups: 3,
			FileMaxAgeDays: 28,
			FileCompress:   true,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources.
//
// Precedence (lowest to highest):
//  1. Defaults
//  2. Config file (optional)
//  3. Environment variables
func Load() (*Config, error) {
	return load(ConfigFile())
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	// TMDB_API_KEY -> tmdb.api_key
	// SIMILARITY_PATH -> data.matrix_path
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// normalize trims values that commonly arrive with stray whitespace.
func (c *Config) normalize() {
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	c.Data.CatalogPath = strings.TrimSpace(c.Data.CatalogPath)
	c.Data.MatrixPath = strings.TrimSpace(c.Data.MatrixPath)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
}

// ConfigFile returns the config file that Load would read, or "" if none exists.
// CONFIG_PATH takes priority over DefaultConfigPaths.
func ConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while YAML may already provide a list.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	// Artifacts
	"catalog_path":    "data.catalog_path",
	"similarity_path": "data.matrix_path",
	"matrix_path":     "data.matrix_path",

	// TMDB
	"tmdb_api_key":               "tmdb.api_key",
	"tmdb_base_url":              "tmdb.base_url",
	"tmdb_image_base_url":        "tmdb.image_base_url",
	"tmdb_timeout":               "tmdb.timeout",
	"tmdb_max_retries":           "tmdb.max_retries",
	"tmdb_requests_per_second":   "tmdb.requests_per_second",
	"tmdb_burst":                 "tmdb.burst",
	"tmdb_breaker_timeout":       "tmdb.breaker.timeout",
	"tmdb_breaker_failure_ratio": "tmdb.breaker.failure_ratio",

	// Poster cache
	"poster_cache_size":      "poster.cache_size",
	"poster_cache_ttl":       "poster.ttl",
	"poster_negative_ttl":    "poster.negative_ttl",
	"poster_store_path":      "poster.store_path",
	"poster_gc_interval":     "poster.gc_interval",
	"poster_placeholder_url": "recommend.placeholder_url",

	// Recommendations
	"recommend_default_k": "recommend.default_k",
	"recommend_max_k":     "recommend.max_k",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Logging
	"log_level":        "logging.level",
	"log_format":       "logging.format",
	"log_caller":       "logging.caller",
	"log_file":         "logging.file",
	"log_file_max_mb":  "logging.file_max_size_mb",
	"log_file_backups": "logging.file_max_backups",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" and are skipped, so unrelated environment
// variables never leak into configuration.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// WatchConfigFile invokes callback whenever the file at path changes.
// The returned stop function ends the watch.
// The caller is responsible for synchronizing access to reloaded values.
func WatchConfigFile(path string, callback func()) (stop func() error, err error) {
	provider := file.Provider(path)

	err = provider.Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
	if err != nil {
		return nil, err
	}
	return provider.Unwatch, nil
}
