package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/example/clipstream/internal/platform/auth"
	"github.com/example/clipstream/services/content/internal/engagement"
	"github.com/example/clipstream/services/content/internal/query"
	"github.com/example/clipstream/services/content/internal/store"
)

// setupReq builds a request with chi URL params and an optional viewer
// identity in context.
func setupReq(method, url, body string, params map[string]string, viewerID string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, url, bytes.NewBufferString(body))
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if viewerID != "" {
		ctx = auth.WithViewer(ctx, viewerID)
	}
	return req.WithContext(ctx)
}

func newDeps() (*store.InMemoryStore, *query.Pipeline, *engagement.Engine) {
	s := store.NewInMemoryStore()
	p := &query.Pipeline{Videos: s, Tweets: s, Comments: s, Engagement: s, Profiles: s}
	e := &engagement.Engine{Videos: s, Tweets: s, Comments: s, Engagement: s}
	return s, p, e
}

func decodeData(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	var envelope struct {
		StatusCode int             `json:"statusCode"`
		Data       json.RawMessage `json:"data"`
		Message    string          `json:"message"`
		Success    bool            `json:"success"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if !envelope.Success {
		t.Fatalf("expected success envelope, got %+v", envelope)
	}
	if envelope.StatusCode != rr.Code {
		t.Fatalf("envelope status %d != http status %d", envelope.StatusCode, rr.Code)
	}
	if dst != nil {
		if err := json.Unmarshal(envelope.Data, dst); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
}

func TestCreateVideo(t *testing.T) {
	s, _, _ := newDeps()
	handler := CreateVideo(s, nil)

	req := setupReq(http.MethodPost, "/v1/videos",
		`{"title":"my clip","description":"d","published":true}`, nil, "chan-a")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var v store.Video
	decodeData(t, rr, &v)
	if v.Title != "my clip" || v.OwnerID != "chan-a" {
		t.Fatalf("unexpected video: %+v", v)
	}
}

func TestCreateVideo_EmptyTitle(t *testing.T) {
	s, _, _ := newDeps()
	rr := httptest.NewRecorder()
	CreateVideo(s, nil).ServeHTTP(rr, setupReq(http.MethodPost, "/v1/videos", `{"title":"  "}`, nil, "chan-a"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestGetVideo_UnpublishedHiddenFromOthers(t *testing.T) {
	s, p, _ := newDeps()
	ctx := context.Background()
	v, _ := s.CreateVideo(ctx, store.Video{OwnerID: "chan-a", Title: "draft", Published: false})
	handler := GetVideo(s, p, nil)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, setupReq(http.MethodGet, "/v1/videos/"+v.ID, "", map[string]string{"video_id": v.ID}, "stranger"))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("stranger should get 404, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, setupReq(http.MethodGet, "/v1/videos/"+v.ID, "", map[string]string{"video_id": v.ID}, "chan-a"))
	if rr.Code != http.StatusOK {
		t.Fatalf("owner should get 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var item query.ItemView
	decodeData(t, rr, &item)
	if !item.IsOwner {
		t.Fatal("owner flag not set on own draft")
	}
}

func TestGetVideo_CountsViews(t *testing.T) {
	s, p, _ := newDeps()
	v, _ := s.CreateVideo(context.Background(), store.Video{OwnerID: "chan-a", Title: "clip", Published: true})
	handler := GetVideo(s, p, nil)

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, setupReq(http.MethodGet, "/v1/videos/"+v.ID, "", map[string]string{"video_id": v.ID}, ""))
		if rr.Code != http.StatusOK {
			t.Fatalf("view %d: expected 200, got %d", i, rr.Code)
		}
	}
	got, _ := s.GetVideo(context.Background(), v.ID)
	if got.Views != 3 {
		t.Fatalf("views = %d, want 3", got.Views)
	}
}

func TestDeleteVideo_Forbidden(t *testing.T) {
	s, _, _ := newDeps()
	v, _ := s.CreateVideo(context.Background(), store.Video{OwnerID: "chan-a", Title: "kept", Published: true})

	rr := httptest.NewRecorder()
	DeleteVideo(s).ServeHTTP(rr, setupReq(http.MethodDelete, "/v1/videos/"+v.ID, "", map[string]string{"video_id": v.ID}, "intruder"))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestToggleEngagement(t *testing.T) {
	s, _, e := newDeps()
	v, _ := s.CreateVideo(context.Background(), store.Video{OwnerID: "chan-a", Title: "clip", Published: true})
	handler := ToggleEngagement(e)
	params := map[string]string{"target_kind": "video", "target_id": v.ID}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, setupReq(http.MethodPost, "/v1/engagement/video/"+v.ID, `{"state":"like"}`, params, "viewer-1"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var res engagement.Result
	decodeData(t, rr, &res)
	if res.State != store.StateLiked || res.LikeCount != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}

	// Repeating the same state clears it.
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, setupReq(http.MethodPost, "/v1/engagement/video/"+v.ID, `{"state":"like"}`, params, "viewer-1"))
	decodeData(t, rr, &res)
	if res.State != store.StateNeutral || res.LikeCount != 0 {
		t.Fatalf("expected neutral after repeat, got %+v", res)
	}
}

func TestToggleEngagement_BadInput(t *testing.T) {
	s, _, e := newDeps()
	v, _ := s.CreateVideo(context.Background(), store.Video{OwnerID: "chan-a", Title: "clip", Published: true})
	handler := ToggleEngagement(e)

	cases := []struct {
		name   string
		kind   string
		id     string
		body   string
		viewer string
		want   int
	}{
		{"unknown kind", "playlist", v.ID, `{"state":"like"}`, "viewer-1", http.StatusBadRequest},
		{"bad state", "video", v.ID, `{"state":"love"}`, "viewer-1", http.StatusBadRequest},
		{"missing target", "video", "nope", `{"state":"like"}`, "viewer-1", http.StatusNotFound},
		{"anonymous", "video", v.ID, `{"state":"like"}`, "", http.StatusUnauthorized},
		{"malformed body", "video", v.ID, `{`, "viewer-1", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, setupReq(http.MethodPost, "/v1/engagement/"+tc.kind+"/"+tc.id, tc.body,
				map[string]string{"target_kind": tc.kind, "target_id": tc.id}, tc.viewer))
			if rr.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestListVideos_SearchAndPagination(t *testing.T) {
	s, p, _ := newDeps()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, _ = s.CreateVideo(ctx, store.Video{OwnerID: "chan-a", Title: "gopher talk", Published: true})
	}
	_, _ = s.CreateVideo(ctx, store.Video{OwnerID: "chan-a", Title: "cooking", Published: true})
	handler := ListVideos(p, nil)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, setupReq(http.MethodGet, "/v1/videos?q=gopher&page=1&limit=2", "", nil, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var page struct {
		Items      []query.ItemView `json:"items"`
		TotalItems int              `json:"totalItems"`
		TotalPages int              `json:"totalPages"`
	}
	decodeData(t, rr, &page)
	if page.TotalItems != 3 || page.TotalPages != 2 || len(page.Items) != 2 {
		t.Fatalf("unexpected page: total=%d pages=%d items=%d", page.TotalItems, page.TotalPages, len(page.Items))
	}
}

func TestListVideos_BadPageParam(t *testing.T) {
	_, p, _ := newDeps()
	rr := httptest.NewRecorder()
	ListVideos(p, nil).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/videos?page=abc", "", nil, ""))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestCommentLifecycle(t *testing.T) {
	s, p, _ := newDeps()
	v, _ := s.CreateVideo(context.Background(), store.Video{OwnerID: "chan-a", Title: "clip", Published: true})
	params := map[string]string{"video_id": v.ID}

	rr := httptest.NewRecorder()
	CreateComment(s).ServeHTTP(rr, setupReq(http.MethodPost, "/v1/videos/"+v.ID+"/comments", `{"body":"nice"}`, params, "viewer-1"))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var c store.Comment
	decodeData(t, rr, &c)

	rr = httptest.NewRecorder()
	ListComments(p).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/videos/"+v.ID+"/comments", "", params, ""))
	var page struct {
		Items []query.ItemView `json:"items"`
	}
	decodeData(t, rr, &page)
	if len(page.Items) != 1 || page.Items[0].Body != "nice" {
		t.Fatalf("unexpected listing: %+v", page.Items)
	}

	rr = httptest.NewRecorder()
	DeleteComment(s).ServeHTTP(rr, setupReq(http.MethodDelete, "/v1/comments/"+c.ID, "", map[string]string{"comment_id": c.ID}, "viewer-1"))
	if rr.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rr.Code)
	}
}

func TestToggleSubscription_SelfRejected(t *testing.T) {
	s, _, _ := newDeps()
	rr := httptest.NewRecorder()
	ToggleSubscription(s, nil).ServeHTTP(rr, setupReq(http.MethodPost, "/v1/subscriptions/chan-a", "",
		map[string]string{"channel_id": "chan-a"}, "chan-a"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for self-subscribe, got %d", rr.Code)
	}
}

func TestChannelStats(t *testing.T) {
	s, _, _ := newDeps()
	ctx := context.Background()

	v1, _ := s.CreateVideo(ctx, store.Video{OwnerID: "chan-a", Title: "one", Published: true})
	v2, _ := s.CreateVideo(ctx, store.Video{OwnerID: "chan-a", Title: "two", Published: true})
	_ = s.IncrementViews(ctx, v1.ID)
	_ = s.IncrementViews(ctx, v1.ID)
	_ = s.IncrementViews(ctx, v2.ID)
	_, _ = s.Toggle(ctx, "u1", store.Target{Kind: store.KindVideo, ID: v1.ID}, store.StateLiked)
	_, _ = s.Toggle(ctx, "u2", store.Target{Kind: store.KindVideo, ID: v2.ID}, store.StateLiked)
	_, _ = s.Toggle(ctx, "u3", store.Target{Kind: store.KindVideo, ID: v2.ID}, store.StateDisliked)
	_, _ = s.ToggleSubscription(ctx, "u1", "chan-a")

	rr := httptest.NewRecorder()
	ChannelStats(s, s, s).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/channels/chan-a/stats", "",
		map[string]string{"channel_id": "chan-a"}, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var stats channelStats
	decodeData(t, rr, &stats)
	if stats.TotalVideos != 2 || stats.TotalSubscribers != 1 || stats.TotalViews != 3 || stats.TotalLikes != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestLikedVideos(t *testing.T) {
	s, p, _ := newDeps()
	ctx := context.Background()

	liked, _ := s.CreateVideo(ctx, store.Video{OwnerID: "chan-a", Title: "liked", Published: true})
	_, _ = s.CreateVideo(ctx, store.Video{OwnerID: "chan-a", Title: "other", Published: true})
	_, _ = s.Toggle(ctx, "viewer-1", store.Target{Kind: store.KindVideo, ID: liked.ID}, store.StateLiked)

	rr := httptest.NewRecorder()
	LikedVideos(s, p).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/likes/videos", "", nil, "viewer-1"))
	var page struct {
		Items []query.ItemView `json:"items"`
	}
	decodeData(t, rr, &page)
	if len(page.Items) != 1 || page.Items[0].ID != liked.ID {
		t.Fatalf("unexpected liked listing: %+v", page.Items)
	}
	if page.Items[0].ViewerState != store.StateLiked {
		t.Fatalf("viewer state = %s, want liked", page.Items[0].ViewerState)
	}
}
