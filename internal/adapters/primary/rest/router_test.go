package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jupiterclapton/journal/internal/adapters/secondary/eventbroker"
	"github.com/jupiterclapton/journal/internal/adapters/secondary/repository"
	"github.com/jupiterclapton/journal/internal/adapters/secondary/security"
	"github.com/jupiterclapton/journal/internal/core/domain"
	"github.com/jupiterclapton/journal/internal/core/filters"
	"github.com/jupiterclapton/journal/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	t      *testing.T
	srv    *httptest.Server
	store  *repository.MemoryStore
	tokens *security.JWTProvider
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := repository.NewMemoryStore()
	builder := filters.NewBuilder(filters.CaseInsensitive)
	pub := eventbroker.LogPublisher{}

	h := NewHandler(
		services.NewMemberService(store.Members(), builder, nil),
		services.NewFriendService(store.Members(), store.Requests(), store.Friends(), store.Acceptor(), pub, builder, nil),
		services.NewDiaryService(services.DiaryDeps{
			Diaries:    store.Diaries(),
			Categories: store.Categories(),
			Members:    store.Members(),
			Friends:    store.Friends(),
			Likes:      store.Likes(),
			Builder:    builder,
		}),
		services.NewInteractionService(store.Diaries(), store.Comments(), store.Likes(), store.Friends(), pub, builder, nil),
		Paging{DefaultSize: 10, MaxSize: 100},
	)

	tokens, err := security.NewJWTProvider([]byte("router-test-secret-0123"), "journal-test")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(NewRouter(h, RouterConfig{
		Logger:         logger,
		Tokens:         tokens,
		Ready:          store,
		AllowedOrigins: []string{"*"},
	}))
	t.Cleanup(srv.Close)

	for id, nick := range map[int64]string{1: "ann", 2: "bob", 3: "cid", 4: "dan"} {
		require.NoError(t, store.Members().Save(context.Background(), &domain.Member{ID: id, Nickname: nick, Email: nick + "@example.com"}))
	}
	return &testAPI{t: t, srv: srv, store: store, tokens: tokens}
}

func (a *testAPI) do(viewer int64, method, path, body string) (int, map[string]any) {
	a.t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, rd)
	require.NoError(a.t, err)
	if viewer > 0 {
		token, err := a.tokens.Generate(viewer, "", time.Minute)
		require.NoError(a.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	var out map[string]any
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		require.NoError(a.t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (a *testAPI) diary(d domain.Diary) {
	a.t.Helper()
	require.NoError(a.t, a.store.Diaries().Save(context.Background(), &d))
}

func ids(t *testing.T, body map[string]any, field string) []int64 {
	t.Helper()
	raw, ok := body[field].([]any)
	require.True(t, ok, "missing %s in %v", field, body)
	out := make([]int64, len(raw))
	for i, it := range raw {
		out[i] = int64(it.(map[string]any)["id"].(float64))
	}
	return out
}

func TestAuth(t *testing.T) {
	api := newTestAPI(t)

	status, body := api.do(0, http.MethodGet, "/api/v1/diaries", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", body["error"].(map[string]any)["type"])

	status, _ = api.do(0, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, status)
	status, _ = api.do(0, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestFeedPagination(t *testing.T) {
	api := newTestAPI(t)
	require.NoError(t, api.store.Friends().Link(context.Background(), 1, 2))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := int64(1); i <= 25; i++ {
		api.diary(domain.Diary{ID: 100 + i, MemberID: 2, Title: fmt.Sprint("d", i), IsPublic: true, CreatedAt: base.Add(time.Duration(i) * time.Hour)})
	}
	// Privée : jamais visible dans le fil
	api.diary(domain.Diary{ID: 200, MemberID: 2, Title: "secret", CreatedAt: base})

	status, p1 := api.do(1, http.MethodGet, "/api/v1/feed?size=10", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []int64{125, 124, 123, 122, 121, 120, 119, 118, 117, 116}, ids(t, p1, "diaries"))
	assert.Equal(t, 116.0, p1["next"])

	_, p2 := api.do(1, http.MethodGet, "/api/v1/feed?size=10&key=116", "")
	assert.Equal(t, []int64{115, 114, 113, 112, 111, 110, 109, 108, 107, 106}, ids(t, p2, "diaries"))
	assert.Equal(t, 106.0, p2["next"])

	_, p3 := api.do(1, http.MethodGet, "/api/v1/feed?size=10&key=106", "")
	assert.Equal(t, []int64{105, 104, 103, 102, 101}, ids(t, p3, "diaries"))
	assert.Contains(t, p3, "next")
	assert.Nil(t, p3["next"])
}

func TestOwnDiaryFilters(t *testing.T) {
	api := newTestAPI(t)
	at := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	api.diary(domain.Diary{ID: 1, MemberID: 1, Title: "a", Emoji: "😊", IsBookmark: true, CreatedAt: at})
	api.diary(domain.Diary{ID: 2, MemberID: 1, Title: "b", Emoji: "😊", IsBookmark: false, CreatedAt: at.Add(time.Hour)})
	api.diary(domain.Diary{ID: 3, MemberID: 1, Title: "c", Emoji: "🎉", IsBookmark: true, CreatedAt: at.Add(2 * time.Hour)})
	api.diary(domain.Diary{ID: 4, MemberID: 1, Title: "d", Emoji: "😢", IsBookmark: true, CreatedAt: at.Add(3 * time.Hour)})
	api.diary(domain.Diary{ID: 5, MemberID: 2, Title: "e", Emoji: "😊", IsBookmark: true, CreatedAt: at})

	t.Run("Should apply emoji set and bookmark flag together", func(t *testing.T) {
		status, body := api.do(1, http.MethodGet, "/api/v1/diaries?emoji="+url.QueryEscape("😊")+"&emoji="+url.QueryEscape("🎉")+"&bookmark=true", "")
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, []int64{3, 1}, ids(t, body, "diaries"))
		assert.Nil(t, body["next"])
	})

	t.Run("Should page with offsets and normalise bad cursors", func(t *testing.T) {
		_, p1 := api.do(1, http.MethodGet, "/api/v1/diaries?size=3&key=-4", "")
		assert.Equal(t, []int64{4, 3, 2}, ids(t, p1, "diaries"))
		assert.Equal(t, 1.0, p1["next"])

		_, p2 := api.do(1, http.MethodGet, "/api/v1/diaries?size=3&key=1", "")
		assert.Equal(t, []int64{1}, ids(t, p2, "diaries"))
		assert.Nil(t, p2["next"])

		_, bad := api.do(1, http.MethodGet, "/api/v1/diaries?size=-2&key=oops", "")
		assert.Equal(t, []int64{4, 3, 2, 1}, ids(t, bad, "diaries"))
	})

	t.Run("Should reject a malformed date", func(t *testing.T) {
		status, body := api.do(1, http.MethodGet, "/api/v1/diaries?date=10-05-2024", "")
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "VALIDATION_ERROR", body["error"].(map[string]any)["type"])
	})

	t.Run("Should filter a single day", func(t *testing.T) {
		_, body := api.do(1, http.MethodGet, "/api/v1/diaries?date=2024-05-10", "")
		assert.Len(t, ids(t, body, "diaries"), 4)
		_, body = api.do(1, http.MethodGet, "/api/v1/diaries?date=2024-05-11", "")
		assert.Empty(t, ids(t, body, "diaries"))
	})
}

func TestMemberTimelineVisibility(t *testing.T) {
	api := newTestAPI(t)
	require.NoError(t, api.store.Friends().Link(context.Background(), 1, 2))
	at := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	api.diary(domain.Diary{ID: 10, MemberID: 2, Title: "public", IsPublic: true, CreatedAt: at})
	api.diary(domain.Diary{ID: 11, MemberID: 2, Title: "private", CreatedAt: at.Add(time.Minute)})

	_, friend := api.do(1, http.MethodGet, "/api/v1/members/2/diaries", "")
	assert.Equal(t, []int64{10}, ids(t, friend, "diaries"))
	first := friend["diaries"].([]any)[0].(map[string]any)
	assert.NotContains(t, first, "isBookmark")

	_, stranger := api.do(3, http.MethodGet, "/api/v1/members/2/diaries", "")
	assert.Empty(t, ids(t, stranger, "diaries"))

	_, self := api.do(2, http.MethodGet, "/api/v1/members/2/diaries", "")
	assert.Equal(t, []int64{11, 10}, ids(t, self, "diaries"))

	status, _ := api.do(1, http.MethodGet, "/api/v1/members/999/diaries", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = api.do(3, http.MethodGet, "/api/v1/diaries/11", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestFriendshipFlow(t *testing.T) {
	api := newTestAPI(t)

	status, req := api.do(1, http.MethodPost, "/api/v1/friends/requests", `{"receiverId": 2}`)
	require.Equal(t, http.StatusCreated, status)
	reqID := int64(req["id"].(float64))

	status, _ = api.do(2, http.MethodPost, "/api/v1/friends/requests", `{"receiverId": 1}`)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = api.do(1, http.MethodPost, "/api/v1/friends/requests", `{"receiverId": 1}`)
	assert.Equal(t, http.StatusBadRequest, status)

	_, inbox := api.do(2, http.MethodGet, "/api/v1/friends/requests", "")
	assert.Equal(t, []int64{reqID}, ids(t, inbox, "requests"))
	sender := inbox["requests"].([]any)[0].(map[string]any)["sender"].(map[string]any)
	assert.Equal(t, "ann", sender["nickname"])

	status, _ = api.do(3, http.MethodPost, fmt.Sprintf("/api/v1/friends/requests/%d/accept", reqID), "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = api.do(2, http.MethodPost, fmt.Sprintf("/api/v1/friends/requests/%d/accept", reqID), "")
	require.Equal(t, http.StatusNoContent, status)

	_, mine := api.do(1, http.MethodGet, "/api/v1/friends", "")
	assert.Equal(t, []int64{2}, ids(t, mine, "friends"))
	_, theirs := api.do(1, http.MethodGet, "/api/v1/members/2/friends", "")
	assert.Equal(t, []int64{1}, ids(t, theirs, "friends"))

	_, inbox = api.do(2, http.MethodGet, "/api/v1/friends/requests", "")
	assert.Empty(t, ids(t, inbox, "requests"))

	status, _ = api.do(1, http.MethodGet, "/api/v1/members/999/friends", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = api.do(2, http.MethodDelete, "/api/v1/friends/1", "")
	require.Equal(t, http.StatusNoContent, status)
	_, mine = api.do(1, http.MethodGet, "/api/v1/friends", "")
	assert.Empty(t, ids(t, mine, "friends"))
}

func TestMemberSearch(t *testing.T) {
	api := newTestAPI(t)

	_, p1 := api.do(1, http.MethodGet, "/api/v1/members?size=2", "")
	assert.Equal(t, []int64{2, 3}, ids(t, p1, "members"))
	assert.Equal(t, 3.0, p1["next"])

	_, p2 := api.do(1, http.MethodGet, "/api/v1/members?size=2&key=3", "")
	assert.Equal(t, []int64{4}, ids(t, p2, "members"))
	assert.Nil(t, p2["next"])

	_, byNick := api.do(1, http.MethodGet, "/api/v1/members?nickname=BO", "")
	assert.Equal(t, []int64{2}, ids(t, byNick, "members"))
}

func TestDiaryInteractions(t *testing.T) {
	api := newTestAPI(t)
	require.NoError(t, api.store.Friends().Link(context.Background(), 1, 2))

	status, created := api.do(2, http.MethodPost, "/api/v1/diaries", `{"title":"hike","content":"long day","emoji":"⛰️","isPublic":true,"location":{"latitude":45.8,"longitude":6.8,"address":"Chamonix"}}`)
	require.Equal(t, http.StatusCreated, status)
	id := int64(created["id"].(float64))

	status, _ = api.do(2, http.MethodPost, "/api/v1/diaries", `{"content":"no title"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = api.do(1, http.MethodPost, fmt.Sprintf("/api/v1/diaries/%d/comments", id), `{"content":"nice"}`)
	require.Equal(t, http.StatusCreated, status)
	status, _ = api.do(3, http.MethodPost, fmt.Sprintf("/api/v1/diaries/%d/comments", id), `{"content":"hi"}`)
	assert.Equal(t, http.StatusNotFound, status)

	_, comments := api.do(2, http.MethodGet, fmt.Sprintf("/api/v1/diaries/%d/comments", id), "")
	assert.Len(t, ids(t, comments, "comments"), 1)

	_, liked := api.do(1, http.MethodPut, fmt.Sprintf("/api/v1/diaries/%d/likes", id), "")
	assert.Equal(t, 1.0, liked["likeCount"])
	_, liked = api.do(1, http.MethodPut, fmt.Sprintf("/api/v1/diaries/%d/likes", id), "")
	assert.Equal(t, 1.0, liked["likeCount"])

	_, got := api.do(1, http.MethodGet, fmt.Sprintf("/api/v1/diaries/%d", id), "")
	assert.Equal(t, true, got["liked"])
	assert.Equal(t, "Chamonix", got["location"].(map[string]any)["address"])

	status, _ = api.do(1, http.MethodPut, fmt.Sprintf("/api/v1/diaries/%d/bookmark", id), `{"bookmark":true}`)
	assert.Equal(t, http.StatusForbidden, status)
	status, bm := api.do(2, http.MethodPut, fmt.Sprintf("/api/v1/diaries/%d/bookmark", id), `{"bookmark":true}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, bm["isBookmark"])

	status, _ = api.do(2, http.MethodDelete, fmt.Sprintf("/api/v1/diaries/%d", id), "")
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = api.do(2, http.MethodGet, fmt.Sprintf("/api/v1/diaries/%d", id), "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCategories(t *testing.T) {
	api := newTestAPI(t)

	status, cat := api.do(1, http.MethodPost, "/api/v1/categories", `{"name":"travel"}`)
	require.Equal(t, http.StatusCreated, status)
	status, _ = api.do(1, http.MethodPost, "/api/v1/categories", `{"name":"Travel"}`)
	assert.Equal(t, http.StatusConflict, status)

	catID := int64(cat["id"].(float64))
	status, _ = api.do(2, http.MethodPost, "/api/v1/diaries", fmt.Sprintf(`{"title":"x","categoryId":%d}`, catID))
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = api.do(1, http.MethodPost, "/api/v1/diaries", fmt.Sprintf(`{"title":"x","categoryId":%d}`, catID))
	require.Equal(t, http.StatusCreated, status)
	_, body := api.do(1, http.MethodGet, fmt.Sprintf("/api/v1/diaries?category=%d", catID), "")
	assert.Len(t, ids(t, body, "diaries"), 1)

	_, list := api.do(1, http.MethodGet, "/api/v1/categories", "")
	assert.Len(t, list["categories"], 1)
}
