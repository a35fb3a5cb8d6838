package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/clipstream/internal/platform/api"
	"github.com/example/clipstream/internal/platform/auth"
	"github.com/example/clipstream/services/content/internal/query"
	"github.com/example/clipstream/services/content/internal/store"
)

type createCommentRequest struct {
	Body string `json:"body"`
}

// ListComments handles GET /v1/videos/{video_id}/comments.
func ListComments(p *query.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videoID := strings.TrimSpace(chi.URLParam(r, "video_id"))
		if videoID == "" {
			api.WriteError(w, api.InvalidArgument("video_id is required"))
			return
		}
		page, limit, sortBy, sortDir, err := pageParams(r)
		if err != nil {
			api.WriteError(w, err)
			return
		}
		viewerID, _ := auth.ViewerFromContext(r.Context())

		result, err := p.Fetch(r.Context(), query.FetchSpec{
			Kind:     store.KindComment,
			VideoID:  videoID,
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

// CreateComment handles POST /v1/videos/{video_id}/comments.
func CreateComment(cs store.CommentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewerID, ok := auth.ViewerFromContext(r.Context())
		if !ok {
			api.WriteError(w, api.Unauthorized("authentication required"))
			return
		}
		videoID := strings.TrimSpace(chi.URLParam(r, "video_id"))
		if videoID == "" {
			api.WriteError(w, api.InvalidArgument("video_id is required"))
			return
		}

		var req createCommentRequest
		if err := decodeJSON(w, r, &req); err != nil {
			api.WriteError(w, err)
			return
		}
		if strings.TrimSpace(req.Body) == "" {
			api.WriteError(w, api.InvalidArgument("body must not be empty"))
			return
		}

		created, err := cs.CreateComment(r.Context(), store.Comment{
			OwnerID: viewerID,
			VideoID: videoID,
			Body:    req.Body,
		})
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.WriteError(w, api.NotFound("video not found"))
				return
			}
			api.WriteError(w, api.Internal(err))
			return
		}
		api.OK(w, http.StatusCreated, created, "comment created")
	}
}

// DeleteComment handles DELETE /v1/comments/{comment_id}.
func DeleteComment(cs store.CommentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewerID, ok := auth.ViewerFromContext(r.Context())
		if !ok {
			api.WriteError(w, api.Unauthorized("authentication required"))
			return
		}
		id := strings.TrimSpace(chi.URLParam(r, "comment_id"))
		if id == "" {
			api.WriteError(w, api.InvalidArgument("comment_id is required"))
			return
		}

		switch err := cs.DeleteComment(r.Context(), id, viewerID); {
		case err == nil:
			api.OK(w, http.StatusOK, nil, "comment deleted")
		case errors.Is(err, store.ErrNotFound):
			api.WriteError(w, api.NotFound("comment not found"))
		case errors.Is(err, store.ErrForbidden):
			api.WriteError(w, api.Forbidden("only the owner can delete a comment"))
		default:
			api.WriteError(w, api.Internal(err))
		}
	}
}
