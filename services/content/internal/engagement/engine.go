// Package engagement applies the reaction state machine on top of the
// engagement store and derives the aggregates callers see.
package engagement

import (
	"context"
	"errors"

	"github.com/example/clipstream/internal/platform/analytics"
	"github.com/example/clipstream/internal/platform/api"
	"github.com/example/clipstream/services/content/internal/store"
)

// Result is the viewer-visible outcome of a reaction: the viewer's
// resulting state plus counts derived from the stored records at read
// time (never cached).
type Result struct {
	State        store.State `json:"state"`
	LikeCount    int         `json:"likeCount"`
	DislikeCount int         `json:"dislikeCount"`
}

type Engine struct {
	Videos     store.VideoStore
	Tweets     store.TweetStore
	Comments   store.CommentStore
	Engagement store.EngagementStore
	Analytics  *analytics.Publisher
}

// ApplyReaction toggles the viewer's reaction on a target. Calling with
// the current state un-reacts; the opposite state flips; no prior record
// creates one. Structural preconditions are checked before any store
// write.
func (e *Engine) ApplyReaction(ctx context.Context, viewerID string, target store.Target, desired store.State) (Result, error) {
	if viewerID == "" {
		return Result{}, api.Unauthorized("viewer identity required")
	}
	if desired != store.StateLiked && desired != store.StateDisliked {
		return Result{}, api.InvalidArgument("state must be like or dislike")
	}
	if target.ID == "" {
		return Result{}, api.InvalidArgument("targetId is required")
	}

	if err := e.targetExists(ctx, target); err != nil {
		return Result{}, err
	}

	state, err := e.Engagement.Toggle(ctx, viewerID, target, desired)
	if err != nil {
		return Result{}, api.Internal(err)
	}

	counts, err := e.Engagement.Counts(ctx, target)
	if err != nil {
		return Result{}, api.Internal(err)
	}

	e.Analytics.Publish(analytics.SubjectEngagementToggled, "engagement_toggled", viewerID, map[string]any{
		"target_kind": string(target.Kind),
		"target_id":   target.ID,
		"state":       string(state),
	})

	return Result{State: state, LikeCount: counts.Likes, DislikeCount: counts.Dislikes}, nil
}

func (e *Engine) targetExists(ctx context.Context, target store.Target) error {
	var err error
	switch target.Kind {
	case store.KindVideo:
		_, err = e.Videos.GetVideo(ctx, target.ID)
	case store.KindTweet:
		_, err = e.Tweets.GetTweet(ctx, target.ID)
	case store.KindComment:
		_, err = e.Comments.GetComment(ctx, target.ID)
	default:
		return api.InvalidArgument("unknown target kind")
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return api.NotFound("target does not exist")
		}
		return api.Internal(err)
	}
	return nil
}
