// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package catalog holds the movie catalog and the precomputed similarity
// matrix, and ranks nearest neighbors for a movie.
//
// # Data Model
//
// A Catalog is an ordered list of movies. Entry i of the catalog corresponds
// to row i (and column i) of the similarity Matrix. Titles are expected to be
// unique but this is not enforced: lookups by title use the first match.
//
// Both artifacts are produced elsewhere and are never modified here. A Model
// bundles them after an explicit load step and is immutable afterwards, so it
// can be shared freely between goroutines.
//
// # Ranking
//
//	model, err := catalog.LoadModel(ctx, "movies.csv", "similarity.csv")
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load artifacts")
//	}
//
//	result, err := model.Recommend("Avatar", catalog.DefaultK)
//	for _, rec := range result.Items {
//	    fmt.Println(rec.Rank, rec.Title, rec.Score)
//	}
//
// Recommend never returns the queried movie itself. Scores are ranked in
// descending order with a stable sort, so equal scores keep ascending catalog
// order. NaN scores rank last.
//
// # Artifact Formats
//
// LoadModel selects a decoder from the file extension:
//
//   - .csv: catalog with a header (movie_id/id/movieId, title); matrix as
//     N rows of N numbers without header
//   - .json: catalog as an array of objects; matrix as an array of arrays
//   - .parquet: read through DuckDB (catalog: movie_id, title; matrix:
//     row, scores DOUBLE[])
package catalog
