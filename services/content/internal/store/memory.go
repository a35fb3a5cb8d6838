package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore is a development and test backend implementing every
// store interface behind a single mutex. Holding one lock across a
// cascade keeps deletion atomic, mirroring the Postgres transaction.
type InMemoryStore struct {
	mu        sync.RWMutex
	videos    map[string]Video
	tweets    map[string]Tweet
	comments  map[string]Comment
	reactions map[Target]map[string]reaction  // target -> viewer -> reaction
	subs      map[string]map[string]time.Time // subscriber -> channel -> since
	profiles  map[string]Profile
	now       func() time.Time
}

type reaction struct {
	state State
	at    time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		videos:    make(map[string]Video),
		tweets:    make(map[string]Tweet),
		comments:  make(map[string]Comment),
		reactions: make(map[Target]map[string]reaction),
		subs:      make(map[string]map[string]time.Time),
		profiles:  make(map[string]Profile),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ── Videos ─────────────────────────────────────────────────────────────────

func (s *InMemoryStore) CreateVideo(_ context.Context, v Video) (Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.ID = uuid.NewString()
	v.CreatedAt = s.now()
	v.Views = 0
	s.videos[v.ID] = v
	return v, nil
}

func (s *InMemoryStore) GetVideo(_ context.Context, id string) (Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.videos[id]
	if !ok {
		return Video{}, ErrNotFound
	}
	return v, nil
}

func (s *InMemoryStore) ListVideos(_ context.Context, f VideoFilter) ([]Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ownerSet map[string]struct{}
	if f.OwnerIn != nil {
		ownerSet = make(map[string]struct{}, len(f.OwnerIn))
		for _, o := range f.OwnerIn {
			ownerSet[o] = struct{}{}
		}
	}
	var idSet map[string]struct{}
	if f.IDs != nil {
		idSet = make(map[string]struct{}, len(f.IDs))
		for _, id := range f.IDs {
			idSet[id] = struct{}{}
		}
	}

	out := []Video{}
	for _, v := range s.videos {
		if f.PublishedOnly && !v.Published {
			continue
		}
		if f.OwnerID != "" && v.OwnerID != f.OwnerID {
			continue
		}
		if ownerSet != nil {
			if _, ok := ownerSet[v.OwnerID]; !ok {
				continue
			}
		}
		if idSet != nil {
			if _, ok := idSet[v.ID]; !ok {
				continue
			}
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *InMemoryStore) IncrementViews(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok {
		return ErrNotFound
	}
	v.Views++
	s.videos[id] = v
	return nil
}

func (s *InMemoryStore) CountVideosByOwner(_ context.Context, ownerID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, v := range s.videos {
		if v.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (s *InMemoryStore) SumViewsByOwner(_ context.Context, ownerID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, v := range s.videos {
		if v.OwnerID == ownerID {
			total += v.Views
		}
	}
	return total, nil
}

func (s *InMemoryStore) DeleteVideo(_ context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.videos[id]
	if !ok {
		return ErrNotFound
	}
	if v.OwnerID != ownerID {
		return ErrForbidden
	}

	delete(s.reactions, Target{Kind: KindVideo, ID: id})
	for cid, c := range s.comments {
		if c.VideoID == id {
			delete(s.reactions, Target{Kind: KindComment, ID: cid})
			delete(s.comments, cid)
		}
	}
	delete(s.videos, id)
	return nil
}

// ── Tweets ─────────────────────────────────────────────────────────────────

func (s *InMemoryStore) CreateTweet(_ context.Context, t Tweet) (Tweet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = uuid.NewString()
	t.CreatedAt = s.now()
	s.tweets[t.ID] = t
	return t, nil
}

func (s *InMemoryStore) GetTweet(_ context.Context, id string) (Tweet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tweets[id]
	if !ok {
		return Tweet{}, ErrNotFound
	}
	return t, nil
}

func (s *InMemoryStore) ListTweets(_ context.Context, ownerID string) ([]Tweet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Tweet{}
	for _, t := range s.tweets {
		if ownerID != "" && t.OwnerID != ownerID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *InMemoryStore) DeleteTweet(_ context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tweets[id]
	if !ok {
		return ErrNotFound
	}
	if t.OwnerID != ownerID {
		return ErrForbidden
	}
	delete(s.reactions, Target{Kind: KindTweet, ID: id})
	delete(s.tweets, id)
	return nil
}

// ── Comments ───────────────────────────────────────────────────────────────

func (s *InMemoryStore) CreateComment(_ context.Context, c Comment) (Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[c.VideoID]; !ok {
		return Comment{}, ErrNotFound
	}
	c.ID = uuid.NewString()
	c.CreatedAt = s.now()
	s.comments[c.ID] = c
	return c, nil
}

func (s *InMemoryStore) GetComment(_ context.Context, id string) (Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.comments[id]
	if !ok {
		return Comment{}, ErrNotFound
	}
	return c, nil
}

func (s *InMemoryStore) ListComments(_ context.Context, videoID string) ([]Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Comment{}
	for _, c := range s.comments {
		if c.VideoID == videoID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *InMemoryStore) CountComments(_ context.Context, videoIDs []string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	want := make(map[string]struct{}, len(videoIDs))
	for _, id := range videoIDs {
		want[id] = struct{}{}
	}
	out := make(map[string]int, len(videoIDs))
	for _, c := range s.comments {
		if _, ok := want[c.VideoID]; ok {
			out[c.VideoID]++
		}
	}
	return out, nil
}

func (s *InMemoryStore) DeleteComment(_ context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return ErrNotFound
	}
	if c.OwnerID != ownerID {
		return ErrForbidden
	}
	delete(s.reactions, Target{Kind: KindComment, ID: id})
	delete(s.comments, id)
	return nil
}

// ── Engagement ─────────────────────────────────────────────────────────────

func (s *InMemoryStore) Toggle(_ context.Context, viewerID string, t Target, desired State) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byViewer := s.reactions[t]
	if byViewer == nil {
		byViewer = make(map[string]reaction)
		s.reactions[t] = byViewer
	}

	cur, ok := byViewer[viewerID]
	switch {
	case !ok:
		byViewer[viewerID] = reaction{state: desired, at: s.now()}
		return desired, nil
	case cur.state == desired:
		delete(byViewer, viewerID)
		return StateNeutral, nil
	default:
		byViewer[viewerID] = reaction{state: desired, at: s.now()}
		return desired, nil
	}
}

func (s *InMemoryStore) Counts(_ context.Context, t Target) (Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countsLocked(t), nil
}

func (s *InMemoryStore) countsLocked(t Target) Counts {
	var c Counts
	for _, r := range s.reactions[t] {
		switch r.state {
		case StateLiked:
			c.Likes++
		case StateDisliked:
			c.Dislikes++
		}
	}
	return c
}

func (s *InMemoryStore) CountsFor(_ context.Context, ts []Target) (map[Target]Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[Target]Counts, len(ts))
	for _, t := range ts {
		out[t] = s.countsLocked(t)
	}
	return out, nil
}

func (s *InMemoryStore) ViewerStates(_ context.Context, viewerID string, ts []Target) (map[Target]State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[Target]State, len(ts))
	for _, t := range ts {
		st := StateNeutral
		if r, ok := s.reactions[t][viewerID]; ok {
			st = r.state
		}
		out[t] = st
	}
	return out, nil
}

func (s *InMemoryStore) LikedVideoIDs(_ context.Context, viewerID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type liked struct {
		id string
		at time.Time
	}
	var hits []liked
	for t, byViewer := range s.reactions {
		if t.Kind != KindVideo {
			continue
		}
		if r, ok := byViewer[viewerID]; ok && r.state == StateLiked {
			hits = append(hits, liked{id: t.ID, at: r.at})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].at.After(hits[j].at) })

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.id
	}
	return ids, nil
}

func (s *InMemoryStore) DeleteForTargets(_ context.Context, ts []Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range ts {
		delete(s.reactions, t)
	}
	return nil
}

// ── Subscriptions ──────────────────────────────────────────────────────────

func (s *InMemoryStore) ToggleSubscription(_ context.Context, subscriberID, channelID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	channels := s.subs[subscriberID]
	if channels == nil {
		channels = make(map[string]time.Time)
		s.subs[subscriberID] = channels
	}
	if _, ok := channels[channelID]; ok {
		delete(channels, channelID)
		return false, nil
	}
	channels[channelID] = s.now()
	return true, nil
}

func (s *InMemoryStore) IsSubscribed(_ context.Context, subscriberID, channelID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.subs[subscriberID][channelID]
	return ok, nil
}

func (s *InMemoryStore) Channels(_ context.Context, subscriberID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []string{}
	for ch := range s.subs[subscriberID] {
		out = append(out, ch)
	}
	sort.Strings(out)
	return out, nil
}

func (s *InMemoryStore) CountSubscribers(_ context.Context, channelID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, channels := range s.subs {
		if _, ok := channels[channelID]; ok {
			n++
		}
	}
	return n, nil
}

// ── Profiles ───────────────────────────────────────────────────────────────

func (s *InMemoryStore) UpsertProfile(_ context.Context, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
	return nil
}

func (s *InMemoryStore) Profiles(_ context.Context, ids []string) (map[string]Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Profile, len(ids))
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}
