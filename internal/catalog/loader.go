// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package catalog

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver
	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/logging"
)

// Supported artifact formats, selected by file extension.
const (
	FormatCSV     = "csv"
	FormatJSON    = "json"
	FormatParquet = "parquet"
)

// LoadModel loads the catalog and similarity matrix artifacts and binds them
// into a validated Model. Every failure wraps ErrStartupDataMissing.
func LoadModel(ctx context.Context, catalogPath, matrixPath string) (*Model, error) {
	movies, err := LoadMovies(ctx, catalogPath)
	if err != nil {
		return nil, err
	}

	matrix, err := LoadMatrix(ctx, matrixPath)
	if err != nil {
		return nil, err
	}

	model, err := NewModel(NewCatalog(movies), matrix)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStartupDataMissing, err)
	}
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStartupDataMissing, err)
	}

	logging.Info().
		Str("catalog", catalogPath).
		Str("matrix", matrixPath).
		Int("movies", model.Size()).
		Msg("Loaded similarity model")

	return model, nil
}

// LoadMovies reads a catalog artifact.
func LoadMovies(ctx context.Context, path string) ([]Movie, error) {
	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}

	var movies []Movie
	switch format {
	case FormatCSV:
		movies, err = readMoviesCSV(path)
	case FormatJSON:
		movies, err = readMoviesJSON(path)
	case FormatParquet:
		movies, err = readMoviesParquet(ctx, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: catalog %s: %w", ErrStartupDataMissing, path, err)
	}
	if len(movies) == 0 {
		return nil, fmt.Errorf("%w: catalog %s is empty", ErrStartupDataMissing, path)
	}
	return movies, nil
}

// LoadMatrix reads a similarity matrix artifact.
func LoadMatrix(ctx context.Context, path string) (Matrix, error) {
	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}

	var matrix Matrix
	switch format {
	case FormatCSV:
		matrix, err = readMatrixCSV(path)
	case FormatJSON:
		matrix, err = readMatrixJSON(path)
	case FormatParquet:
		matrix, err = readMatrixParquet(ctx, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: matrix %s: %w", ErrStartupDataMissing, path, err)
	}
	return matrix, nil
}

func formatOf(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: path not configured", ErrStartupDataMissing)
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %w", ErrStartupDataMissing, err)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case FormatCSV, FormatJSON, FormatParquet:
		return ext, nil
	default:
		return "", fmt.Errorf("%w: unsupported artifact format %q for %s", ErrStartupDataMissing, ext, path)
	}
}

// ----------------------------------------------------------------------------
// CSV
// ----------------------------------------------------------------------------

var (
	idColumns    = []string{"movie_id", "id", "movieid"}
	titleColumns = []string{"title"}
)

func columnIndex(header []string, names []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, name := range names {
			if h == name {
				return i
			}
		}
	}
	return -1
}

func readMoviesCSV(path string) ([]Movie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	// Strip a UTF-8 BOM written by spreadsheet exports.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	idCol := columnIndex(header, idColumns)
	titleCol := columnIndex(header, titleColumns)
	if idCol < 0 || titleCol < 0 {
		return nil, fmt.Errorf("header must contain movie_id and title columns, got %v", header)
	}

	var movies []Movie
	for line := 2; ; line++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if idCol >= len(record) || titleCol >= len(record) {
			return nil, fmt.Errorf("line %d: expected at least %d fields, got %d", line, max(idCol, titleCol)+1, len(record))
		}
		id, err := parseID(record[idCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		movies = append(movies, Movie{ID: id, Title: record[titleCol]})
	}
	return movies, nil
}

// parseID accepts integral ids written as floats ("19995.0"), which is how
// dataframe exports commonly serialize them.
func parseID(s string) (int, error) {
	s = strings.TrimSpace(s)
	if id, err := strconv.Atoi(s); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("invalid movie id %q", s)
	}
	return int(f), nil
}

func readMatrixCSV(path string) (Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	var matrix Matrix
	for line := 1; ; line++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %d: %w", line, j+1, err)
			}
			row[j] = v
		}
		matrix = append(matrix, row)
	}
	return matrix, nil
}

// ----------------------------------------------------------------------------
// JSON
// ----------------------------------------------------------------------------

// movieRecord accepts both "movie_id" and "id" keys.
type movieRecord struct {
	MovieID *int   `json:"movie_id"`
	ID      *int   `json:"id"`
	Title   string `json:"title"`
}

func readMoviesJSON(path string) ([]Movie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []movieRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	movies := make([]Movie, 0, len(records))
	for i, rec := range records {
		var id int
		switch {
		case rec.MovieID != nil:
			id = *rec.MovieID
		case rec.ID != nil:
			id = *rec.ID
		default:
			return nil, fmt.Errorf("entry %d: missing movie_id", i)
		}
		movies = append(movies, Movie{ID: id, Title: rec.Title})
	}
	return movies, nil
}

func readMatrixJSON(path string) (Matrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var matrix Matrix
	if err := json.Unmarshal(data, &matrix); err != nil {
		return nil, fmt.Errorf("decode matrix: %w", err)
	}
	return matrix, nil
}

// ----------------------------------------------------------------------------
// Parquet (DuckDB)
// ----------------------------------------------------------------------------

func openDuckDB() (*sql.DB, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return db, nil
}

// sqlString quotes s as a SQL string literal.
func sqlString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func readMoviesParquet(ctx context.Context, path string) ([]Movie, error) {
	db, err := openDuckDB()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	query := fmt.Sprintf(
		"SELECT CAST(movie_id AS BIGINT), CAST(title AS VARCHAR) FROM read_parquet(%s)",
		sqlString(path))

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()

	var movies []Movie
	for rows.Next() {
		var (
			id    int64
			title sql.NullString
		)
		if err := rows.Scan(&id, &title); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		movies = append(movies, Movie{ID: int(id), Title: title.String})
	}
	return movies, rows.Err()
}

// readMatrixParquet expects one record per matrix row: an integer "row"
// column and a "scores" DOUBLE[] list. The list is flattened in SQL so the
// scan only deals with scalars.
func readMatrixParquet(ctx context.Context, path string) (Matrix, error) {
	db, err := openDuckDB()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var n int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM read_parquet(%s)", sqlString(path))
	if err := db.QueryRowContext(ctx, countQuery).Scan(&n); err != nil {
		return nil, fmt.Errorf("count matrix rows: %w", err)
	}

	matrix := make(Matrix, n)
	for i := range matrix {
		matrix[i] = []float64{}
	}

	query := fmt.Sprintf(`
		SELECT r, i - 1, CAST(s AS DOUBLE)
		FROM (
			SELECT CAST("row" AS BIGINT) AS r,
			       unnest(range(1, len(scores) + 1)) AS i,
			       unnest(scores) AS s
			FROM read_parquet(%s)
		)
		ORDER BY r, i`, sqlString(path))

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query matrix: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r, c  int64
			score sql.NullFloat64
		)
		if err := rows.Scan(&r, &c, &score); err != nil {
			return nil, fmt.Errorf("scan matrix cell: %w", err)
		}
		if r < 0 || int(r) >= n {
			return nil, fmt.Errorf("row index %d out of range [0,%d)", r, n)
		}
		if int(c) != len(matrix[r]) {
			return nil, fmt.Errorf("row %d: non-contiguous column %d", r, c)
		}
		if !score.Valid {
			return nil, fmt.Errorf("row %d column %d: null score", r, c)
		}
		matrix[r] = append(matrix[r], score.Float64)
	}
	return matrix, rows.Err()
}
