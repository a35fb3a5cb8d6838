package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/clipstream/internal/platform/api"
	"github.com/example/clipstream/services/content/internal/store"
)

type channelStats struct {
	ChannelID        string `json:"channelId"`
	TotalVideos      int    `json:"totalVideos"`
	TotalSubscribers int    `json:"totalSubscribers"`
	TotalViews       int64  `json:"totalViews"`
	TotalLikes       int    `json:"totalLikes"`
}

// ChannelStats handles GET /v1/channels/{channel_id}/stats: the channel
// dashboard aggregates. Likes are summed over the channel's videos from
// the engagement records at read time.
func ChannelStats(vs store.VideoStore, ss store.SubscriptionStore, es store.EngagementStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		channelID := strings.TrimSpace(chi.URLParam(r, "channel_id"))
		if channelID == "" {
			api.WriteError(w, api.InvalidArgument("channel_id is required"))
			return
		}
		ctx := r.Context()

		totalVideos, err := vs.CountVideosByOwner(ctx, channelID)
		if err != nil {
			api.WriteError(w, api.Internal(err))
			return
		}
		totalViews, err := vs.SumViewsByOwner(ctx, channelID)
		if err != nil {
			api.WriteError(w, api.Internal(err))
			return
		}
		totalSubs, err := ss.CountSubscribers(ctx, channelID)
		if err != nil {
			api.WriteError(w, api.Internal(err))
			return
		}

		vids, err := vs.ListVideos(ctx, store.VideoFilter{OwnerID: channelID})
		if err != nil {
			api.WriteError(w, api.Internal(err))
			return
		}
		targets := make([]store.Target, len(vids))
		for i, v := range vids {
			targets[i] = store.Target{Kind: store.KindVideo, ID: v.ID}
		}
		counts, err := es.CountsFor(ctx, targets)
		if err != nil {
			api.WriteError(w, api.Internal(err))
			return
		}
		totalLikes := 0
		for _, c := range counts {
			totalLikes += c.Likes
		}

		api.OK(w, http.StatusOK, channelStats{
			ChannelID:        channelID,
			TotalVideos:      totalVideos,
			TotalSubscribers: totalSubs,
			TotalViews:       totalViews,
			TotalLikes:       totalLikes,
		}, "")
	}
}
