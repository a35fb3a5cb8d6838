package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/clipstream/internal/platform/analytics"
	"github.com/example/clipstream/internal/platform/api"
	"github.com/example/clipstream/internal/platform/auth"
	"github.com/example/clipstream/services/content/internal/query"
	"github.com/example/clipstream/services/content/internal/store"
)

type createVideoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoFile   string `json:"videoFile"`
	Thumbnail   string `json:"thumbnail"`
	Published   bool   `json:"published"`
}

// ListVideos handles GET /v1/videos. Supports free-text search (q),
// owner filtering (ownerId), sorting, and pagination. Works for
// anonymous viewers.
func ListVideos(p *query.Pipeline, events *analytics.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, limit, sortBy, sortDir, err := pageParams(r)
		if err != nil {
			api.WriteError(w, err)
			return
		}
		viewerID, _ := auth.ViewerFromContext(r.Context())
		q := strings.TrimSpace(r.URL.Query().Get("q"))

		result, err := p.Fetch(r.Context(), query.FetchSpec{
			Kind:     store.KindVideo,
			Query:    q,
			OwnerID:  strings.TrimSpace(r.URL.Query().Get("ownerId")),
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

		if q != "" {
			events.Publish(analytics.SubjectSearchPerformed, "search_performed", viewerID, map[string]any{
				"query":       q,
				"total_items": result.TotalItems,
			})
		}
		writePage(w, result)
	}
}

// CreateVideo handles POST /v1/videos.
func CreateVideo(vs store.VideoStore, events *analytics.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewerID, ok := auth.ViewerFromContext(r.Context())
		if !ok {
			api.WriteError(w, api.Unauthorized("authentication required"))
			return
		}

		var req createVideoRequest
		if err := decodeJSON(w, r, &req); err != nil {
			api.WriteError(w, err)
			return
		}
		if strings.TrimSpace(req.Title) == "" {
			api.WriteError(w, api.InvalidArgument("title must not be empty"))
			return
		}

		created, err := vs.CreateVideo(r.Context(), store.Video{
			OwnerID:     viewerID,
			Title:       strings.TrimSpace(req.Title),
			Description: req.Description,
			VideoFile:   req.VideoFile,
			Thumbnail:   req.Thumbnail,
			Published:   req.Published,
		})
		if err != nil {
			api.WriteError(w, api.Internal(err))
			return
		}

		if created.Published {
			events.Publish(analytics.SubjectVideoPublished, "video_published", viewerID, map[string]any{
				"video_id": created.ID,
			})
		}
		api.OK(w, http.StatusCreated, created, "video created")
	}
}

// GetVideo handles GET /v1/videos/{video_id}. Unpublished videos are
// visible only to their owner; everyone else gets a 404 so existence is
// not leaked. Each successful fetch counts as a view.
func GetVideo(vs store.VideoStore, p *query.Pipeline, events *analytics.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "video_id"))
		if id == "" {
			api.WriteError(w, api.InvalidArgument("video_id is required"))
			return
		}
		viewerID, _ := auth.ViewerFromContext(r.Context())

		v, err := vs.GetVideo(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.WriteError(w, api.NotFound("video not found"))
				return
			}
			api.WriteError(w, api.Internal(err))
			return
		}
		if !v.Published && v.OwnerID != viewerID {
			api.WriteError(w, api.NotFound("video not found"))
			return
		}

		if err := vs.IncrementViews(r.Context(), id); err == nil {
			v.Views++
			events.Publish(analytics.SubjectVideoViewed, "video_viewed", viewerID, map[string]any{
				"video_id": id,
			})
		}

		item, err := p.ProjectVideo(r.Context(), v, viewerID)
		if err != nil {
			api.WriteError(w, err)
			return
		}
		api.OK(w, http.StatusOK, item, "")
	}
}

// DeleteVideo handles DELETE /v1/videos/{video_id}. Removes the video,
// its comments, and all engagement referencing either.
func DeleteVideo(vs store.VideoStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewerID, ok := auth.ViewerFromContext(r.Context())
		if !ok {
			api.WriteError(w, api.Unauthorized("authentication required"))
			return
		}
		id := strings.TrimSpace(chi.URLParam(r, "video_id"))
		if id == "" {
			api.WriteError(w, api.InvalidArgument("video_id is required"))
			return
		}

		switch err := vs.DeleteVideo(r.Context(), id, viewerID); {
		case err == nil:
			api.OK(w, http.StatusOK, nil, "video deleted")
		case errors.Is(err, store.ErrNotFound):
			api.WriteError(w, api.NotFound("video not found"))
		case errors.Is(err, store.ErrForbidden):
			api.WriteError(w, api.Forbidden("only the owner can delete a video"))
		default:
			api.WriteError(w, api.Internal(err))
		}
	}
}
