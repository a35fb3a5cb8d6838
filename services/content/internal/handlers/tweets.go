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

type createTweetRequest struct {
	Body string `json:"body"`
}

// ListTweets handles GET /v1/tweets. Optional ownerId filter; anonymous
// viewers allowed.
func ListTweets(p *query.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, limit, sortBy, sortDir, err := pageParams(r)
		if err != nil {
			api.WriteError(w, err)
			return
		}
		viewerID, _ := auth.ViewerFromContext(r.Context())

		result, err := p.Fetch(r.Context(), query.FetchSpec{
			Kind:     store.KindTweet,
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
		writePage(w, result)
	}
}

// CreateTweet handles POST /v1/tweets.
func CreateTweet(ts store.TweetStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewerID, ok := auth.ViewerFromContext(r.Context())
		if !ok {
			api.WriteError(w, api.Unauthorized("authentication required"))
			return
		}

		var req createTweetRequest
		if err := decodeJSON(w, r, &req); err != nil {
			api.WriteError(w, err)
			return
		}
		if strings.TrimSpace(req.Body) == "" {
			api.WriteError(w, api.InvalidArgument("body must not be empty"))
			return
		}

		created, err := ts.CreateTweet(r.Context(), store.Tweet{
			OwnerID: viewerID,
			Body:    req.Body,
		})
		if err != nil {
			api.WriteError(w, api.Internal(err))
			return
		}
		api.OK(w, http.StatusCreated, created, "tweet created")
	}
}

// DeleteTweet handles DELETE /v1/tweets/{tweet_id}. Engagement on the
// tweet goes with it.
func DeleteTweet(ts store.TweetStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewerID, ok := auth.ViewerFromContext(r.Context())
		if !ok {
			api.WriteError(w, api.Unauthorized("authentication required"))
			return
		}
		id := strings.TrimSpace(chi.URLParam(r, "tweet_id"))
		if id == "" {
			api.WriteError(w, api.InvalidArgument("tweet_id is required"))
			return
		}

		switch err := ts.DeleteTweet(r.Context(), id, viewerID); {
		case err == nil:
			api.OK(w, http.StatusOK, nil, "tweet deleted")
		case errors.Is(err, store.ErrNotFound):
			api.WriteError(w, api.NotFound("tweet not found"))
		case errors.Is(err, store.ErrForbidden):
			api.WriteError(w, api.Forbidden("only the owner can delete a tweet"))
		default:
			api.WriteError(w, api.Internal(err))
		}
	}
}
