package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/clipstream/internal/platform/api"
	"github.com/example/clipstream/internal/platform/auth"
	"github.com/example/clipstream/services/content/internal/engagement"
	"github.com/example/clipstream/services/content/internal/store"
)

type toggleRequest struct {
	State string `json:"state"`
}

// ToggleEngagement handles POST /v1/engagement/{target_kind}/{target_id}
// with body {"state": "like"} or {"state": "dislike"}. Sending the
// viewer's current state clears it.
func ToggleEngagement(e *engagement.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewerID, ok := auth.ViewerFromContext(r.Context())
		if !ok {
			api.WriteError(w, api.Unauthorized("authentication required"))
			return
		}

		kind, err := store.ParseKind(strings.TrimSpace(chi.URLParam(r, "target_kind")))
		if err != nil {
			api.WriteError(w, api.InvalidArgument("target_kind must be video, tweet, or comment"))
			return
		}
		targetID := strings.TrimSpace(chi.URLParam(r, "target_id"))

		var req toggleRequest
		if err := decodeJSON(w, r, &req); err != nil {
			api.WriteError(w, err)
			return
		}

		var desired store.State
		switch req.State {
		case "like":
			desired = store.StateLiked
		case "dislike":
			desired = store.StateDisliked
		default:
			api.WriteError(w, api.InvalidArgument("state must be like or dislike"))
			return
		}

		result, err := e.ApplyReaction(r.Context(), viewerID, store.Target{Kind: kind, ID: targetID}, desired)
		if err != nil {
			api.WriteError(w, err)
			return
		}
		api.OK(w, http.StatusOK, result, "")
	}
}
