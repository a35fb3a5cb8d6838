package handlers

import (
	"net/http"

	"github.com/example/clipstream/internal/platform/api"
	"github.com/example/clipstream/internal/platform/auth"
	"github.com/example/clipstream/services/content/internal/query"
	"github.com/example/clipstream/services/content/internal/store"
)

// Feed handles GET /v1/feed: published videos from the viewer's
// subscribed channels, newest first. A viewer with no subscriptions gets
// an empty page.
func Feed(p *query.Pipeline, f *query.FeedSelector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewerID, ok := auth.ViewerFromContext(r.Context())
		if !ok {
			api.WriteError(w, api.Unauthorized("authentication required"))
			return
		}
		page, limit, sortBy, sortDir, err := pageParams(r)
		if err != nil {
			api.WriteError(w, err)
			return
		}

		owners, err := f.CandidateOwners(r.Context(), viewerID)
		if err != nil {
			api.WriteError(w, err)
			return
		}

		result, err := p.Fetch(r.Context(), query.FetchSpec{
			Kind:     store.KindVideo,
			OwnerIn:  owners,
			SortBy:   sortBy,
			SortDir:  sortDir,
			Page:     page,
			Limit:    limit,
			ViewerID: viewerID,
		})
		if err != nil {
			api.WriteError(w, err)
			return
		}
		writePage(w, result)
	}
}
