// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package poster

import "testing"

func TestBuildURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		path   string
		want   string
		ok     bool
	}{
		{"leading slash", DefaultImageBaseURL, "/abc.jpg", "https://image.tmdb.org/t/p/w500/abc.jpg", true},
		{"no leading slash", DefaultImageBaseURL, "abc.jpg", "https://image.tmdb.org/t/p/w500/abc.jpg", true},
		{"prefix trailing slash", "https://image.tmdb.org/t/p/w500/", "/abc.jpg", "https://image.tmdb.org/t/p/w500/abc.jpg", true},
		{"empty prefix uses default", "", "/abc.jpg", "https://image.tmdb.org/t/p/w500/abc.jpg", true},
		{"custom size", "https://image.tmdb.org/t/p/original", "/x.png", "https://image.tmdb.org/t/p/original/x.png", true},
		{"empty path", DefaultImageBaseURL, "", "", false},
		{"whitespace path", DefaultImageBaseURL, "  ", "", false},
		{"slash only", DefaultImageBaseURL, "/", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := BuildURL(tt.prefix, tt.path)
			if got != tt.want || ok != tt.ok {
				t.Errorf("BuildURL(%q, %q) = %q, %v; want %q, %v", tt.prefix, tt.path, got, ok, tt.want, tt.ok)
			}
		})
	}
}
