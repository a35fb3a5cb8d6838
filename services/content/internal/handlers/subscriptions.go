package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/clipstream/internal/platform/analytics"
	"github.com/example/clipstream/internal/platform/api"
	"github.com/example/clipstream/internal/platform/auth"
	"github.com/example/clipstream/services/content/internal/store"
)

type subscriptionStatus struct {
	ChannelID  string `json:"channelId"`
	Subscribed bool   `json:"subscribed"`
}

// ToggleSubscription handles POST /v1/subscriptions/{channel_id}. The
// same endpoint subscribes and unsubscribes; the response reports the
// resulting state.
func ToggleSubscription(ss store.SubscriptionStore, events *analytics.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewerID, ok := auth.ViewerFromContext(r.Context())
		if !ok {
			api.WriteError(w, api.Unauthorized("authentication required"))
			return
		}
		channelID := strings.TrimSpace(chi.URLParam(r, "channel_id"))
		if channelID == "" {
			api.WriteError(w, api.InvalidArgument("channel_id is required"))
			return
		}
		if channelID == viewerID {
			api.WriteError(w, api.InvalidArgument("cannot subscribe to your own channel"))
			return
		}

		subscribed, err := ss.ToggleSubscription(r.Context(), viewerID, channelID)
		if err != nil {
			api.WriteError(w, api.Internal(err))
			return
		}

		events.Publish(analytics.SubjectSubscriptionToggled, "subscription_toggled", viewerID, map[string]any{
			"channel_id": channelID,
			"subscribed": subscribed,
		})
		api.OK(w, http.StatusOK, subscriptionStatus{ChannelID: channelID, Subscribed: subscribed}, "")
	}
}

// CheckSubscription handles GET /v1/subscriptions/{channel_id}.
func CheckSubscription(ss store.SubscriptionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewerID, ok := auth.ViewerFromContext(r.Context())
		if !ok {
			api.WriteError(w, api.Unauthorized("authentication required"))
			return
		}
		channelID := strings.TrimSpace(chi.URLParam(r, "channel_id"))
		if channelID == "" {
			api.WriteError(w, api.InvalidArgument("channel_id is required"))
			return
		}

		subscribed, err := ss.IsSubscribed(r.Context(), viewerID, channelID)
		if err != nil {
			api.WriteError(w, api.Internal(err))
			return
		}
		api.OK(w, http.StatusOK, subscriptionStatus{ChannelID: channelID, Subscribed: subscribed}, "")
	}
}
