package handlers

import (
	"github.com/go-chi/chi/v5"

	"github.com/example/clipstream/internal/platform/analytics"
	"github.com/example/clipstream/internal/platform/auth"
	"github.com/example/clipstream/services/content/internal/engagement"
	"github.com/example/clipstream/services/content/internal/query"
	"github.com/example/clipstream/services/content/internal/store"
)

// Deps bundles everything the route table needs.
type Deps struct {
	Videos     store.VideoStore
	Tweets     store.TweetStore
	Comments   store.CommentStore
	Engagement store.EngagementStore
	Subs       store.SubscriptionStore
	Profiles   store.ProfileStore
	Analytics  *analytics.Publisher
}

// Register mounts the content routes. Reads are public with optional
// viewer context; writes and personalized reads require a verified
// viewer.
func Register(r chi.Router, verifier auth.JWTVerifier, d Deps) {
	pipeline := &query.Pipeline{
		Videos:     d.Videos,
		Tweets:     d.Tweets,
		Comments:   d.Comments,
		Engagement: d.Engagement,
		Profiles:   d.Profiles,
	}
	engine := &engagement.Engine{
		Videos:     d.Videos,
		Tweets:     d.Tweets,
		Comments:   d.Comments,
		Engagement: d.Engagement,
		Analytics:  d.Analytics,
	}
	feed := &query.FeedSelector{Subs: d.Subs}

	r.Group(func(r chi.Router) {
		r.Use(auth.OptionalUser(verifier))
		r.Get("/v1/videos", ListVideos(pipeline, d.Analytics))
		r.Get("/v1/videos/{video_id}", GetVideo(d.Videos, pipeline, d.Analytics))
		r.Get("/v1/videos/{video_id}/comments", ListComments(pipeline))
		r.Get("/v1/tweets", ListTweets(pipeline))
		r.Get("/v1/channels/{channel_id}/stats", ChannelStats(d.Videos, d.Subs, d.Engagement))
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser(verifier))
		r.Post("/v1/videos", CreateVideo(d.Videos, d.Analytics))
		r.Delete("/v1/videos/{video_id}", DeleteVideo(d.Videos))
		r.Post("/v1/videos/{video_id}/comments", CreateComment(d.Comments))
		r.Delete("/v1/comments/{comment_id}", DeleteComment(d.Comments))
		r.Post("/v1/tweets", CreateTweet(d.Tweets))
		r.Delete("/v1/tweets/{tweet_id}", DeleteTweet(d.Tweets))
		r.Post("/v1/engagement/{target_kind}/{target_id}", ToggleEngagement(engine))
		r.Get("/v1/feed", Feed(pipeline, feed))
		r.Get("/v1/likes/videos", LikedVideos(d.Engagement, pipeline))
		r.Post("/v1/subscriptions/{channel_id}", ToggleSubscription(d.Subs, d.Analytics))
		r.Get("/v1/subscriptions/{channel_id}", CheckSubscription(d.Subs))
	})
}
