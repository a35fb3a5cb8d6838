package handlers

import (
	"net/http"

	"github.com/example/clipstream/internal/platform/api"
	"github.com/example/clipstream/internal/platform/auth"
	"github.com/example/clipstream/services/content/internal/query"
	"github.com/example/clipstream/services/content/internal/store"
)

// LikedVideos handles GET /v1/likes/videos: the viewer's liked videos.
// Videos that have since been deleted or unpublished drop out of the
// listing without error.
func LikedVideos(es store.EngagementStore, p *query.Pipeline) http.HandlerFunc {
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

		ids, err := es.LikedVideoIDs(r.Context(), viewerID)
		if err != nil {
			api.WriteError(w, api.Internal(err))
			return
		}

		result, err := p.Fetch(r.Context(), query.FetchSpec{
			Kind:     store.KindVideo,
			IDs:      ids,
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
