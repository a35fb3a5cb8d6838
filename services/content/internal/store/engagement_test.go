package store

import (
	"context"
	"sync"
	"testing"
)

func videoTarget(id string) Target { return Target{Kind: KindVideo, ID: id} }

func TestToggle_CreateFlipAndClear(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	tgt := videoTarget("vid-1")

	st, err := s.Toggle(ctx, "viewer-a", tgt, StateLiked)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if st != StateLiked {
		t.Fatalf("expected liked, got %s", st)
	}

	// Opposite action flips the record in place.
	st, _ = s.Toggle(ctx, "viewer-a", tgt, StateDisliked)
	if st != StateDisliked {
		t.Fatalf("expected disliked after flip, got %s", st)
	}
	c, _ := s.Counts(ctx, tgt)
	if c.Likes != 0 || c.Dislikes != 1 {
		t.Fatalf("expected 0/1 counts after flip, got %d/%d", c.Likes, c.Dislikes)
	}

	// Repeating the current state clears it.
	st, _ = s.Toggle(ctx, "viewer-a", tgt, StateDisliked)
	if st != StateNeutral {
		t.Fatalf("expected neutral after toggle-off, got %s", st)
	}
	c, _ = s.Counts(ctx, tgt)
	if c.Likes != 0 || c.Dislikes != 0 {
		t.Fatalf("expected zero counts, got %d/%d", c.Likes, c.Dislikes)
	}
}

func TestToggle_IdempotentToggleOffLeavesNoRecord(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	tgt := videoTarget("vid-1")

	_, _ = s.Toggle(ctx, "viewer-a", tgt, StateLiked)
	_, _ = s.Toggle(ctx, "viewer-a", tgt, StateLiked)

	states, _ := s.ViewerStates(ctx, "viewer-a", []Target{tgt})
	if states[tgt] != StateNeutral {
		t.Fatalf("expected neutral, got %s", states[tgt])
	}
	c, _ := s.Counts(ctx, tgt)
	if c.Likes != 0 {
		t.Fatalf("expected 0 likes, got %d", c.Likes)
	}
}

func TestToggle_ExclusivityUnderConcurrency(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	tgt := videoTarget("vid-1")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		desired := StateLiked
		if i%2 == 1 {
			desired = StateDisliked
		}
		go func(d State) {
			defer wg.Done()
			_, _ = s.Toggle(ctx, "viewer-a", tgt, d)
		}(desired)
	}
	wg.Wait()

	// Whatever interleaving happened, at most one record remains.
	c, _ := s.Counts(ctx, tgt)
	if c.Likes+c.Dislikes > 1 {
		t.Fatalf("expected at most 1 record, got %d likes and %d dislikes", c.Likes, c.Dislikes)
	}
}

func TestCounts_PerViewerAggregation(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	tgt := videoTarget("vid-1")

	_, _ = s.Toggle(ctx, "viewer-a", tgt, StateLiked)
	_, _ = s.Toggle(ctx, "viewer-b", tgt, StateLiked)
	_, _ = s.Toggle(ctx, "viewer-c", tgt, StateDisliked)

	c, err := s.Counts(ctx, tgt)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if c.Likes != 2 || c.Dislikes != 1 {
		t.Fatalf("expected 2/1, got %d/%d", c.Likes, c.Dislikes)
	}
}

func TestViewerStates_UnknownTargetIsNeutral(t *testing.T) {
	s := NewInMemoryStore()
	states, err := s.ViewerStates(context.Background(), "viewer-a", []Target{videoTarget("missing")})
	if err != nil {
		t.Fatalf("viewer states: %v", err)
	}
	if states[videoTarget("missing")] != StateNeutral {
		t.Fatalf("expected neutral for unknown target")
	}
}

func TestLikedVideoIDs_MostRecentFirst(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	_, _ = s.Toggle(ctx, "viewer-a", videoTarget("vid-1"), StateLiked)
	_, _ = s.Toggle(ctx, "viewer-a", videoTarget("vid-2"), StateLiked)
	_, _ = s.Toggle(ctx, "viewer-a", videoTarget("vid-3"), StateDisliked)
	_, _ = s.Toggle(ctx, "viewer-b", videoTarget("vid-4"), StateLiked)

	ids, err := s.LikedVideoIDs(ctx, "viewer-a")
	if err != nil {
		t.Fatalf("liked videos: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 liked videos, got %d: %v", len(ids), ids)
	}
}
