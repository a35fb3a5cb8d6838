package query

import (
	"context"
	"sort"
	"time"

	"github.com/example/clipstream/internal/platform/api"
	"github.com/example/clipstream/services/content/internal/store"
)

// Sort fields accepted by the pipeline.
const (
	SortCreatedAt = "createdAt"
	SortTitle     = "title"
	SortViews     = "views"
)

const (
	DefaultPageSize = 10
	maxPageSize     = 100
)

// FetchSpec describes one read request. Zero Query means no relevance
// stage; empty ViewerID means an anonymous read. OwnerIn and IDs follow
// the store convention: nil is unrestricted, non-nil empty matches
// nothing.
type FetchSpec struct {
	Kind     store.Kind
	Query    string
	OwnerID  string
	OwnerIn  []string
	VideoID  string // parent video for comment listings
	IDs      []string
	SortBy   string
	SortDir  string // "asc" or "desc"; default desc
	Page     int
	Limit    int
	ViewerID string
}

// OwnerSummary is the projection of a content owner: never the full
// profile.
type OwnerSummary struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
}

// ItemView is the read-side projection of one content item fused with
// engagement aggregates and viewer context. It is computed per request,
// never stored.
type ItemView struct {
	Kind         store.Kind   `json:"kind"`
	ID           string       `json:"id"`
	Owner        OwnerSummary `json:"owner"`
	Title        string       `json:"title,omitempty"`
	Description  string       `json:"description,omitempty"`
	Body         string       `json:"body,omitempty"`
	VideoID      string       `json:"videoId,omitempty"`
	Views        int64        `json:"views,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	LikeCount    int          `json:"likeCount"`
	DislikeCount int          `json:"dislikeCount"`
	ViewerState  store.State  `json:"viewerState"`
	IsOwner      bool         `json:"isOwner"`
	CommentCount *int         `json:"commentCount,omitempty"`
}

// Page is a single page of aggregated views plus totals computed from
// the filtered, unpaginated candidate set.
type Page struct {
	Items      []ItemView `json:"items"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalItems int        `json:"totalItems"`
	TotalPages int        `json:"totalPages"`
}

// Pipeline is the single read path for feeds, search, and listings.
type Pipeline struct {
	Videos     store.VideoStore
	Tweets     store.TweetStore
	Comments   store.CommentStore
	Engagement store.EngagementStore
	Profiles   store.ProfileStore
}

// candidate is the kind-neutral row flowing through the stages.
type candidate struct {
	kind      store.Kind
	id        string
	ownerID   string
	title     string
	secondary string
	body      string
	videoID   string
	views     int64
	createdAt time.Time
	score     int
}

// Fetch runs the staged read: candidate filter, relevance augmentation,
// sort, pagination, then join & projection of the returned page. Totals
// always reflect the pre-pagination set. Context is checked between
// stages so a cancelled request stops before the next store call.
func (p *Pipeline) Fetch(ctx context.Context, spec FetchSpec) (Page, error) {
	if spec.Page < 1 {
		return Page{}, api.InvalidArgument("page must be >= 1")
	}
	if spec.Limit < 1 {
		return Page{}, api.InvalidArgument("limit must be >= 1")
	}
	if spec.Limit > maxPageSize {
		spec.Limit = maxPageSize
	}
	sortBy, sortDesc, err := resolveSort(spec)
	if err != nil {
		return Page{}, err
	}

	cands, err := p.candidates(ctx, spec)
	if err != nil {
		return Page{}, err
	}
	if err := ctx.Err(); err != nil {
		return Page{}, api.Internal(err)
	}

	if terms := NormalizeQuery(spec.Query); len(terms) > 0 {
		scored := cands[:0]
		for _, c := range cands {
			c.score = Score(c.title, c.secondary, terms)
			// Exclusion of zero-score items is pipeline policy: a search
			// result that matches no term is noise, not a ranking input.
			if c.score > 0 {
				scored = append(scored, c)
			}
		}
		cands = scored
		sortCandidates(cands, true, sortBy, sortDesc)
	} else {
		sortCandidates(cands, false, sortBy, sortDesc)
	}

	totalItems := len(cands)
	totalPages := (totalItems + spec.Limit - 1) / spec.Limit

	offset := (spec.Page - 1) * spec.Limit
	var pageCands []candidate
	if offset < totalItems {
		end := offset + spec.Limit
		if end > totalItems {
			end = totalItems
		}
		pageCands = cands[offset:end]
	}
	if err := ctx.Err(); err != nil {
		return Page{}, api.Internal(err)
	}

	items, err := p.project(ctx, pageCands, spec.ViewerID)
	if err != nil {
		return Page{}, err
	}

	return Page{
		Items:      items,
		Page:       spec.Page,
		Limit:      spec.Limit,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}

// ProjectVideo runs the join & projection stage for a single video, used
// by detail views.
func (p *Pipeline) ProjectVideo(ctx context.Context, v store.Video, viewerID string) (ItemView, error) {
	items, err := p.project(ctx, []candidate{videoCandidate(v)}, viewerID)
	if err != nil {
		return ItemView{}, err
	}
	return items[0], nil
}

func resolveSort(spec FetchSpec) (string, bool, error) {
	sortBy := spec.SortBy
	if sortBy == "" {
		sortBy = SortCreatedAt
	}
	switch sortBy {
	case SortCreatedAt:
	case SortTitle, SortViews:
		if spec.Kind != store.KindVideo {
			return "", false, api.InvalidArgument("sortBy not supported for this collection")
		}
	default:
		return "", false, api.InvalidArgument("unknown sortBy field")
	}

	switch spec.SortDir {
	case "", "desc":
		return sortBy, true, nil
	case "asc":
		return sortBy, false, nil
	}
	return "", false, api.InvalidArgument("sortDirection must be asc or desc")
}

func (p *Pipeline) candidates(ctx context.Context, spec FetchSpec) ([]candidate, error) {
	switch spec.Kind {
	case store.KindVideo:
		vids, err := p.Videos.ListVideos(ctx, store.VideoFilter{
			OwnerID:       spec.OwnerID,
			OwnerIn:       spec.OwnerIn,
			IDs:           spec.IDs,
			PublishedOnly: true,
		})
		if err != nil {
			return nil, api.Internal(err)
		}
		out := make([]candidate, len(vids))
		for i, v := range vids {
			out[i] = videoCandidate(v)
		}
		return out, nil

	case store.KindTweet:
		tweets, err := p.Tweets.ListTweets(ctx, spec.OwnerID)
		if err != nil {
			return nil, api.Internal(err)
		}
		out := make([]candidate, len(tweets))
		for i, t := range tweets {
			out[i] = candidate{
				kind: store.KindTweet, id: t.ID, ownerID: t.OwnerID,
				title: t.Body, body: t.Body, createdAt: t.CreatedAt,
			}
		}
		return out, nil

	case store.KindComment:
		if spec.VideoID == "" {
			return nil, api.InvalidArgument("videoId is required for comment listings")
		}
		comments, err := p.Comments.ListComments(ctx, spec.VideoID)
		if err != nil {
			return nil, api.Internal(err)
		}
		out := make([]candidate, len(comments))
		for i, c := range comments {
			out[i] = candidate{
				kind: store.KindComment, id: c.ID, ownerID: c.OwnerID,
				title: c.Body, body: c.Body, videoID: c.VideoID, createdAt: c.CreatedAt,
			}
		}
		return out, nil
	}
	return nil, api.InvalidArgument("unknown collection kind")
}

func videoCandidate(v store.Video) candidate {
	return candidate{
		kind: store.KindVideo, id: v.ID, ownerID: v.OwnerID,
		title: v.Title, secondary: v.Description,
		views: v.Views, createdAt: v.CreatedAt,
	}
}

// sortCandidates orders the candidate set. With a query, relevance
// (descending) leads and the requested field breaks ties; otherwise the
// requested field leads. The id is the final tie-break so ordering is
// deterministic across runs.
func sortCandidates(cands []candidate, scored bool, sortBy string, desc bool) {
	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if scored && a.score != b.score {
			return a.score > b.score
		}
		if c := compareField(a, b, sortBy); c != 0 {
			if desc {
				return c > 0
			}
			return c < 0
		}
		return a.id > b.id
	})
}

func compareField(a, b candidate, sortBy string) int {
	switch sortBy {
	case SortTitle:
		switch {
		case a.title < b.title:
			return -1
		case a.title > b.title:
			return 1
		}
		return 0
	case SortViews:
		switch {
		case a.views < b.views:
			return -1
		case a.views > b.views:
			return 1
		}
		return 0
	default: // SortCreatedAt
		switch {
		case a.createdAt.Before(b.createdAt):
			return -1
		case a.createdAt.After(b.createdAt):
			return 1
		}
		return 0
	}
}

// project joins owner summaries, engagement counts, and viewer-relative
// flags onto the page items. Anonymous viewers get Neutral/false without
// touching viewer state at all.
func (p *Pipeline) project(ctx context.Context, cands []candidate, viewerID string) ([]ItemView, error) {
	items := make([]ItemView, 0, len(cands))
	if len(cands) == 0 {
		return items, nil
	}

	targets := make([]store.Target, len(cands))
	ownerIDs := make([]string, 0, len(cands))
	ownerSeen := make(map[string]struct{})
	videoIDs := []string{}
	for i, c := range cands {
		targets[i] = store.Target{Kind: c.kind, ID: c.id}
		if _, ok := ownerSeen[c.ownerID]; !ok {
			ownerSeen[c.ownerID] = struct{}{}
			ownerIDs = append(ownerIDs, c.ownerID)
		}
		if c.kind == store.KindVideo {
			videoIDs = append(videoIDs, c.id)
		}
	}

	counts, err := p.Engagement.CountsFor(ctx, targets)
	if err != nil {
		return nil, api.Internal(err)
	}

	states := map[store.Target]store.State{}
	if viewerID != "" {
		states, err = p.Engagement.ViewerStates(ctx, viewerID, targets)
		if err != nil {
			return nil, api.Internal(err)
		}
	}

	commentCounts := map[string]int{}
	if len(videoIDs) > 0 {
		commentCounts, err = p.Comments.CountComments(ctx, videoIDs)
		if err != nil {
			return nil, api.Internal(err)
		}
	}

	profiles, err := p.Profiles.Profiles(ctx, ownerIDs)
	if err != nil {
		return nil, api.Internal(err)
	}

	for i, c := range cands {
		owner := OwnerSummary{ID: c.ownerID}
		if prof, ok := profiles[c.ownerID]; ok {
			owner.DisplayName = prof.DisplayName
			owner.Avatar = prof.Avatar
		}

		state := store.StateNeutral
		if st, ok := states[targets[i]]; ok {
			state = st
		}

		view := ItemView{
			Kind:         c.kind,
			ID:           c.id,
			Owner:        owner,
			CreatedAt:    c.createdAt,
			LikeCount:    counts[targets[i]].Likes,
			DislikeCount: counts[targets[i]].Dislikes,
			ViewerState:  state,
			IsOwner:      viewerID != "" && viewerID == c.ownerID,
		}
		switch c.kind {
		case store.KindVideo:
			view.Title = c.title
			view.Description = c.secondary
			view.Views = c.views
			n := commentCounts[c.id]
			view.CommentCount = &n
		case store.KindTweet:
			view.Body = c.body
		case store.KindComment:
			view.Body = c.body
			view.VideoID = c.videoID
		}
		items = append(items, view)
	}
	return items, nil
}
