// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates the requested title is not in the catalog.
	ErrNotFound = errors.New("movie not found in catalog")

	// ErrMalformedRow indicates a similarity row whose length does not match
	// the catalog size.
	ErrMalformedRow = errors.New("malformed similarity row")

	// ErrStartupDataMissing indicates the catalog or matrix artifact could not
	// be loaded. The process cannot serve requests without them.
	ErrStartupDataMissing = errors.New("startup data missing")

	// ErrDimensionMismatch indicates the matrix and catalog sizes disagree.
	ErrDimensionMismatch = errors.New("similarity matrix does not match catalog size")
)

// Movie is a single catalog entry.
type Movie struct {
	// ID is the external metadata identifier (TMDB movie id).
	ID int `json:"movie_id"`

	// Title is the display title.
	Title string `json:"title"`
}

// Catalog is the ordered list of known movies. It is read-only after
// construction.
type Catalog struct {
	movies []Movie
	byName map[string]int
}

// NewCatalog builds a catalog from movies. The slice is copied.
// When a title occurs more than once the first occurrence is indexed.
func NewCatalog(movies []Movie) *Catalog {
	c := &Catalog{
		movies: make([]Movie, len(movies)),
		byName: make(map[string]int, len(movies)),
	}
	copy(c.movies, movies)
	for i, m := range c.movies {
		if _, exists := c.byName[m.Title]; !exists {
			c.byName[m.Title] = i
		}
	}
	return c
}

// Len returns the number of movies.
func (c *Catalog) Len() int {
	return len(c.movies)
}

// At returns the movie at index i.
func (c *Catalog) At(i int) (Movie, bool) {
	if i < 0 || i >= len(c.movies) {
		return Movie{}, false
	}
	return c.movies[i], true
}

// IndexOf returns the catalog index of the first movie with the exact title.
func (c *Catalog) IndexOf(title string) (int, bool) {
	i, ok := c.byName[title]
	return i, ok
}

// IndexOfID returns the catalog index of the first movie with the given id.
func (c *Catalog) IndexOfID(id int) (int, bool) {
	for i, m := range c.movies {
		if m.ID == id {
			return i, true
		}
	}
	return 0, false
}

// Titles returns all titles in catalog order.
func (c *Catalog) Titles() []string {
	titles := make([]string, len(c.movies))
	for i, m := range c.movies {
		titles[i] = m.Title
	}
	return titles
}

// Movies returns a copy of all movies in catalog order.
func (c *Catalog) Movies() []Movie {
	out := make([]Movie, len(c.movies))
	copy(out, c.movies)
	return out
}

// Search returns up to limit movies whose title contains query
// (case-insensitive), in catalog order. An empty query matches everything.
func (c *Catalog) Search(query string, limit int) []Movie {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Movie, 0)
	for _, m := range c.movies {
		if limit > 0 && len(out) >= limit {
			break
		}
		if q == "" || strings.Contains(strings.ToLower(m.Title), q) {
			out = append(out, m)
		}
	}
	return out
}

// Matrix is a square matrix of pairwise similarity scores. Entry [i][j] is
// the similarity between catalog entries i and j; higher is more similar.
type Matrix [][]float64

// Size returns the number of rows.
func (m Matrix) Size() int {
	return len(m)
}

// clone deep-copies the matrix so callers cannot mutate a loaded model.
func (m Matrix) clone() Matrix {
	out := make(Matrix, len(m))
	for i, row := range m {
		out[i] = make([]float64, len(row))
		copy(out[i], row)
	}
	return out
}

// Model is the immutable pair of catalog and similarity matrix.
type Model struct {
	catalog *Catalog
	matrix  Matrix
}

// NewModel binds a catalog to its similarity matrix. The row count must equal
// the catalog size; individual row lengths are checked at lookup time (or up
// front by Validate). The matrix is copied.
func NewModel(cat *Catalog, matrix Matrix) (*Model, error) {
	if cat == nil {
		return nil, errors.New("catalog is nil")
	}
	if matrix.Size() != cat.Len() {
		return nil, fmt.Errorf("%w: %d rows for %d movies", ErrDimensionMismatch, matrix.Size(), cat.Len())
	}
	return &Model{
		catalog: cat,
		matrix:  matrix.clone(),
	}, nil
}

// Validate checks that every row has exactly one score per catalog entry.
func (m *Model) Validate() error {
	n := m.catalog.Len()
	for i, row := range m.matrix {
		if len(row) != n {
			return fmt.Errorf("%w: row %d has %d columns, want %d", ErrMalformedRow, i, len(row), n)
		}
	}
	return nil
}

// Catalog returns the model's catalog.
func (m *Model) Catalog() *Catalog {
	return m.catalog
}

// Size returns the number of movies in the model.
func (m *Model) Size() int {
	return m.catalog.Len()
}
