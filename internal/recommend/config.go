// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"errors"
	"fmt"

	"github.com/tomtom215/marquee/internal/catalog"
)

// DefaultPlaceholderURL is shown for any movie without a resolvable poster.
const DefaultPlaceholderURL = "https://via.placeholder.com/500x750?text=No+Poster"

// Config configures the recommendation engine.
type Config struct {
	// DefaultK is used when a request does not specify K.
	DefaultK int `json:"default_k"`

	// MaxK caps K for a single request.
	MaxK int `json:"max_k"`

	// PlaceholderURL substitutes for absent posters.
	PlaceholderURL string `json:"placeholder_url"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultK:       catalog.DefaultK,
		MaxK:           50,
		PlaceholderURL: DefaultPlaceholderURL,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.DefaultK <= 0 {
		return errors.New("default_k must be positive")
	}
	if c.MaxK < c.DefaultK {
		return fmt.Errorf("max_k (%d) must be >= default_k (%d)", c.MaxK, c.DefaultK)
	}
	if c.PlaceholderURL == "" {
		return errors.New("placeholder_url is required")
	}
	return nil
}

// clampK resolves the effective k for a request.
func (c *Config) clampK(k int) int {
	if k <= 0 {
		return c.DefaultK
	}
	if k > c.MaxK {
		return c.MaxK
	}
	return k
}
