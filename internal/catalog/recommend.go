// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package catalog

import (
	"fmt"
	"math"
	"sort"
)

// DefaultK is the number of recommendations returned when k is not positive.
const DefaultK = 5

// Recommendation is a single ranked neighbor.
type Recommendation struct {
	// Rank is the 1-based position in the result.
	Rank int `json:"rank"`

	// Index is the catalog index of the recommended movie.
	Index int `json:"index"`

	// MovieID is the external identifier of the recommended movie.
	MovieID int `json:"movie_id"`

	// Title is the recommended movie's title.
	Title string `json:"title"`

	// Score is the similarity to the queried movie.
	Score float64 `json:"score"`
}

// Result holds the ranked neighbors of one movie.
type Result struct {
	// Query is the title that was looked up.
	Query string `json:"query"`

	// QueryIndex is the catalog index of the query, or -1 when not found.
	QueryIndex int `json:"query_index"`

	// Items are ordered by descending similarity.
	Items []Recommendation `json:"items"`
}

// Empty reports whether the result has no recommendations.
func (r *Result) Empty() bool {
	return len(r.Items) == 0
}

// Titles returns the recommended titles in rank order.
func (r *Result) Titles() []string {
	titles := make([]string, len(r.Items))
	for i, item := range r.Items {
		titles[i] = item.Title
	}
	return titles
}

// IDs returns the recommended movie ids in rank order, aligned with Titles.
func (r *Result) IDs() []int {
	ids := make([]int, len(r.Items))
	for i, item := range r.Items {
		ids[i] = item.MovieID
	}
	return ids
}

// scoredIndex pairs a column index with its similarity score.
type scoredIndex struct {
	index int
	score float64
}

// Recommend returns the k movies most similar to title. A non-positive k
// means DefaultK.
//
// On failure the returned Result is empty (never nil) and the error wraps
// ErrNotFound or ErrMalformedRow.
func (m *Model) Recommend(title string, k int) (*Result, error) {
	idx, ok := m.catalog.IndexOf(title)
	if !ok {
		return &Result{Query: title, QueryIndex: -1, Items: []Recommendation{}},
			fmt.Errorf("%w: %q", ErrNotFound, title)
	}

	result, err := m.Neighbors(idx, k)
	result.Query = title
	return result, err
}

// Neighbors returns the k movies most similar to the movie at catalog index
// idx. The movie itself is never part of the result.
func (m *Model) Neighbors(idx, k int) (*Result, error) {
	if k <= 0 {
		k = DefaultK
	}

	movie, ok := m.catalog.At(idx)
	if !ok {
		return &Result{QueryIndex: -1, Items: []Recommendation{}},
			fmt.Errorf("%w: index %d", ErrNotFound, idx)
	}

	empty := &Result{Query: movie.Title, QueryIndex: idx, Items: []Recommendation{}}

	row := m.matrix[idx]
	if len(row) != m.catalog.Len() {
		return empty, fmt.Errorf("%w: row %d has %d columns, want %d", ErrMalformedRow, idx, len(row), m.catalog.Len())
	}

	ranked := make([]scoredIndex, 0, len(row))
	for j, score := range row {
		if j == idx {
			continue
		}
		ranked = append(ranked, scoredIndex{index: j, score: score})
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return higher(ranked[a].score, ranked[b].score)
	})

	if k > len(ranked) {
		k = len(ranked)
	}

	items := make([]Recommendation, 0, k)
	for rank, s := range ranked[:k] {
		neighbor, _ := m.catalog.At(s.index)
		items = append(items, Recommendation{
			Rank:    rank + 1,
			Index:   s.index,
			MovieID: neighbor.ID,
			Title:   neighbor.Title,
			Score:   s.score,
		})
	}

	return &Result{Query: movie.Title, QueryIndex: idx, Items: items}, nil
}

// higher orders scores descending with NaN last.
func higher(a, b float64) bool {
	switch {
	case math.IsNaN(a):
		return false
	case math.IsNaN(b):
		return true
	default:
		return a > b
	}
}
