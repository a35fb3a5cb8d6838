// Package store defines the persistence contracts for clipstream content,
// engagement, subscriptions, and owner profiles, with Postgres and
// in-memory implementations.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors shared by all implementations.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("not owned by user")
)

// Kind tags an engagement target. A reaction applies to exactly one of
// these; representing the target as {kind, id} keeps exhaustiveness
// checkable instead of three parallel optional foreign keys.
type Kind string

const (
	KindVideo   Kind = "video"
	KindTweet   Kind = "tweet"
	KindComment Kind = "comment"
)

// ParseKind validates a wire-level kind string.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindVideo, KindTweet, KindComment:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown target kind %q", s)
}

// Target identifies one content item as an engagement target.
type Target struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

// State classifies one viewer's relationship to one target. Neutral is
// the absence of a stored record, never a row.
type State string

const (
	StateNeutral  State = "neutral"
	StateLiked    State = "liked"
	StateDisliked State = "disliked"
)

// Counts are the engagement aggregates for one target, derived at read
// time from the stored records.
type Counts struct {
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

type Video struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	VideoFile   string    `json:"video_file,omitempty"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	Views       int64     `json:"views"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"created_at"`
}

type Tweet struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type Comment struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	VideoID   string    `json:"video_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile is the owner summary joined into read projections. Never the
// full account record.
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar,omitempty"`
}

// VideoFilter restricts a video listing. Nil OwnerIn means unrestricted;
// a non-nil empty OwnerIn matches nothing (an empty feed candidate set).
// The same convention applies to IDs.
type VideoFilter struct {
	OwnerID       string
	OwnerIn       []string
	IDs           []string
	PublishedOnly bool
}

type VideoStore interface {
	CreateVideo(ctx context.Context, v Video) (Video, error)
	GetVideo(ctx context.Context, id string) (Video, error)
	ListVideos(ctx context.Context, f VideoFilter) ([]Video, error)
	IncrementViews(ctx context.Context, id string) error
	CountVideosByOwner(ctx context.Context, ownerID string) (int, error)
	SumViewsByOwner(ctx context.Context, ownerID string) (int64, error)
	// DeleteVideo removes the video, its comments, and every engagement
	// record referencing either, as one logical operation.
	DeleteVideo(ctx context.Context, id, ownerID string) error
}

type TweetStore interface {
	CreateTweet(ctx context.Context, t Tweet) (Tweet, error)
	GetTweet(ctx context.Context, id string) (Tweet, error)
	ListTweets(ctx context.Context, ownerID string) ([]Tweet, error)
	// DeleteTweet also removes engagement records targeting the tweet.
	DeleteTweet(ctx context.Context, id, ownerID string) error
}

type CommentStore interface {
	CreateComment(ctx context.Context, c Comment) (Comment, error)
	GetComment(ctx context.Context, id string) (Comment, error)
	ListComments(ctx context.Context, videoID string) ([]Comment, error)
	CountComments(ctx context.Context, videoIDs []string) (map[string]int, error)
	// DeleteComment also removes engagement records targeting the comment.
	DeleteComment(ctx context.Context, id, ownerID string) error
}

// EngagementStore owns the lifetime of engagement records. At most one
// record exists per (viewer, target) at any time; implementations must
// hold that under concurrent Toggle calls.
type EngagementStore interface {
	// Toggle applies the reaction state machine for one viewer/target:
	// no record -> create with desired; same state -> delete (neutral);
	// opposite state -> flip. Returns the resulting state.
	Toggle(ctx context.Context, viewerID string, t Target, desired State) (State, error)
	Counts(ctx context.Context, t Target) (Counts, error)
	CountsFor(ctx context.Context, ts []Target) (map[Target]Counts, error)
	ViewerStates(ctx context.Context, viewerID string, ts []Target) (map[Target]State, error)
	// LikedVideoIDs returns video ids the viewer has liked, most recent
	// reaction first.
	LikedVideoIDs(ctx context.Context, viewerID string) ([]string, error)
	DeleteForTargets(ctx context.Context, ts []Target) error
}

type SubscriptionStore interface {
	// ToggleSubscription creates or removes the (subscriber, channel)
	// edge and reports whether the edge exists afterwards.
	ToggleSubscription(ctx context.Context, subscriberID, channelID string) (bool, error)
	IsSubscribed(ctx context.Context, subscriberID, channelID string) (bool, error)
	Channels(ctx context.Context, subscriberID string) ([]string, error)
	CountSubscribers(ctx context.Context, channelID string) (int, error)
}

type ProfileStore interface {
	UpsertProfile(ctx context.Context, p Profile) error
	Profiles(ctx context.Context, ids []string) (map[string]Profile, error)
}
