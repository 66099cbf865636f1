// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/recommend"
)

//go:embed templates/index.html.tmpl
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl"))

// indexPage is the data rendered by index.html.tmpl.
type indexPage struct {
	Nonce          string
	Titles         []string
	Selected       string
	Submitted      bool
	Response       *recommend.Response
	Messages       []string
	NoResults      string
	PostersEnabled bool
}

// Index renders the recommendation page. With ?title= it also renders the
// result grid for that title; an empty result shows the no-results notice.
//
// GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	titles := h.engine.Titles()
	page := indexPage{
		Nonce:          NonceFromContext(r.Context()),
		Titles:         titles,
		NoResults:      recommend.NoResultsMessage,
		PostersEnabled: h.engine.PostersConfigured(),
	}
	if len(titles) > 0 {
		page.Selected = titles[0]
	}

	if title := r.URL.Query().Get("title"); title != "" {
		page.Selected = title
		page.Submitted = true
		page.Response = h.engine.Recommend(r.Context(), recommend.Request{Title: title})
		page.Messages = warningMessages(page.Response.Warnings)
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, page); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to render index page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// warningMessages returns distinct warning messages in first-seen order.
func warningMessages(warnings []recommend.Warning) []string {
	seen := make(map[string]struct{}, len(warnings))
	messages := make([]string, 0, len(warnings))
	for _, w := range warnings {
		if _, dup := seen[w.Message]; dup {
			continue
		}
		seen[w.Message] = struct{}{}
		messages = append(messages, w.Message)
	}
	return messages
}
