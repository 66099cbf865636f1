// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"fmt"

	"github.com/tomtom215/marquee/internal/validation"
)

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if c.Recommend.DefaultK > c.Recommend.MaxK {
		return fmt.Errorf("recommend.default_k (%d) must not exceed recommend.max_k (%d)",
			c.Recommend.DefaultK, c.Recommend.MaxK)
	}
	if c.Poster.NegativeTTL > c.Poster.TTL {
		return fmt.Errorf("poster.negative_ttl (%s) must not exceed poster.ttl (%s)",
			c.Poster.NegativeTTL, c.Poster.TTL)
	}
	if c.Data.CatalogPath == c.Data.MatrixPath {
		return fmt.Errorf("data.catalog_path and data.matrix_path must differ")
	}

	return nil
}
