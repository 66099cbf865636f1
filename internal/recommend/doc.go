// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package recommend binds the similarity lookup to poster resolution.
//
// An Engine takes a title, asks the catalog.Model for the top-k neighbors and
// then resolves a poster for each neighbor one after another. Every
// recoverable problem becomes a Warning on the Response instead of an error:
//
//   - LOOKUP_NOT_FOUND: the title is not in the catalog; no items.
//   - MALFORMED_ROW: the similarity row is unusable; no items.
//   - CONFIG_MISSING: no TMDB API key; every poster is the placeholder.
//   - POSTER_FETCH_FAILED: one poster failed; that item gets the placeholder.
//
// A poster failure never drops an item or aborts the remaining lookups.
//
// # Usage
//
//	engine, err := recommend.NewEngine(model, resolver, recommend.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//	resp := engine.Recommend(ctx, recommend.Request{Title: "Avatar"})
//	if resp.Empty() {
//	    // show resp.Warnings
//	}
//
// # Thread Safety
//
// Engine is safe for concurrent use. The model is immutable and the poster
// resolver synchronizes its own cache.
package recommend
