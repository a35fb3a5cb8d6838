package query

import (
	"context"

	"github.com/example/clipstream/internal/platform/api"
	"github.com/example/clipstream/services/content/internal/store"
)

// FeedSelector picks the candidate owner set for a viewer's home feed
// from their subscription edges.
type FeedSelector struct {
	Subs store.SubscriptionStore
}

// CandidateOwners returns the channels the viewer subscribes to. A
// viewer with no subscriptions gets an empty, non-nil set so the feed
// pipeline produces an empty page rather than an unrestricted listing.
func (f *FeedSelector) CandidateOwners(ctx context.Context, viewerID string) ([]string, error) {
	if viewerID == "" {
		return nil, api.Unauthorized("viewer identity required")
	}
	channels, err := f.Subs.Channels(ctx, viewerID)
	if err != nil {
		return nil, api.Internal(err)
	}
	if channels == nil {
		channels = []string{}
	}
	return channels, nil
}
