// Package handlers implements the HTTP surface of the content service:
// content CRUD, engagement toggles, feeds, search, subscriptions, and
// channel stats.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/clipstream/internal/platform/api"
	"github.com/example/clipstream/services/content/internal/query"
)

// decodeJSON reads a capped request body into dst. A missing or
// malformed body is a caller error, never an internal one.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(dst); err != nil {
		return api.InvalidArgument("invalid JSON body")
	}
	return nil
}

// pageParams extracts pagination and sort parameters. Absent values get
// defaults; values that are present but unparsable are rejected rather
// than silently defaulted.
func pageParams(r *http.Request) (page, limit int, sortBy, sortDir string, err error) {
	page, limit = 1, query.DefaultPageSize
	q := r.URL.Query()

	if raw := q.Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, "", "", api.InvalidArgument("page must be an integer")
		}
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, "", "", api.InvalidArgument("limit must be an integer")
		}
	}
	sortBy = strings.TrimSpace(q.Get("sortBy"))
	sortDir = strings.TrimSpace(q.Get("sortDirection"))
	return page, limit, sortBy, sortDir, nil
}

func writePage(w http.ResponseWriter, p query.Page) {
	api.OK(w, http.StatusOK, api.PageData{
		Items:      p.Items,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages,
	}, "")
}
