package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/blog-feed/config"
	"github.com/d60-Lab/blog-feed/internal/api/handler"
	"github.com/d60-Lab/blog-feed/internal/api/middleware"
	"github.com/d60-Lab/blog-feed/internal/cache"
	"github.com/d60-Lab/blog-feed/internal/model"
	"github.com/d60-Lab/blog-feed/internal/repository"
	"github.com/d60-Lab/blog-feed/internal/service"
	"github.com/d60-Lab/blog-feed/internal/testutil"
)

const testSecret = "test-secret"

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type apiEnv struct {
	engine *gin.Engine
	db     *gorm.DB
}

func newAPI(t *testing.T) *apiEnv {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Mode = gin.TestMode
	cfg.JWT.Secret = testSecret
	cfg.Feed.PageSize = 5

	db := testutil.NewDB(t)
	mem, err := cache.NewMemoryTimelineCache(0, 0, 0)
	require.NoError(t, err)
	t.Cleanup(mem.Close)

	repos := repository.NewRepositories(db)
	h := handler.New(
		service.NewFeedService(repos, mem, cfg.Feed.PageSize),
		service.NewPostService(repos, mem),
		service.NewCommentService(repos),
		service.NewRelationshipService(repos.Users, repos.Follows),
		service.NewGroupService(repos.Groups, mem),
		cfg.Feed.PageSize,
	)
	return &apiEnv{engine: Setup(cfg, h), db: db}
}

func (e *apiEnv) do(t *testing.T, method, path string, actor uint, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if actor != 0 {
		token, err := middleware.IssueToken(testSecret, actor)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestHealth(t *testing.T) {
	api := newAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestGlobalTimelineAndCreate(t *testing.T) {
	api := newAPI(t)
	users := testutil.SeedUsers(t, api.db, "alice")
	testutil.SeedPosts(t, api.db, users[0], nil, 7)

	w, env := api.do(t, http.MethodGet, "/api/v1/posts?page=2", 0, nil)
	require.Equal(t, http.StatusOK, w.Code)
	tl := decode[model.Timeline](t, env)
	assert.Len(t, tl.Posts, 2)
	assert.Equal(t, 2, tl.Page.Number)
	assert.Equal(t, 2, tl.Page.TotalPages)

	_, env = api.do(t, http.MethodGet, "/api/v1/posts?page=99999999999999999999", 0, nil)
	assert.Equal(t, 2, decode[model.Timeline](t, env).Page.Number)

	// 非法页码回退到第一页
	_, env = api.do(t, http.MethodGet, "/api/v1/posts?page=abc", 0, nil)
	first := decode[model.Timeline](t, env)
	assert.Equal(t, 1, first.Page.Number)
	assert.Equal(t, "post 6 by alice", first.Posts[0].Text)

	w, _ = api.do(t, http.MethodPost, "/api/v1/posts", 0, service.PostInput{Text: "anon"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = api.do(t, http.MethodPost, "/api/v1/posts", users[0].ID, service.PostInput{Text: "fresh"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[model.Post](t, env)
	assert.Equal(t, "alice", created.Author.Username)

	// 第一页已缓存，写路径应使其失效
	_, env = api.do(t, http.MethodGet, "/api/v1/posts", 0, nil)
	first = decode[model.Timeline](t, env)
	assert.Equal(t, created.ID, first.Posts[0].ID)
	assert.EqualValues(t, 8, first.Page.TotalItems)

	w, env = api.do(t, http.MethodPost, "/api/v1/posts", users[0].ID, service.PostInput{Text: "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, http.StatusBadRequest, env.Code)
}

func TestEditAndDeletePost(t *testing.T) {
	api := newAPI(t)
	users := testutil.SeedUsers(t, api.db, "alice", "bob")
	posts := testutil.SeedPosts(t, api.db, users[0], nil, 1)
	path := fmt.Sprintf("/api/v1/posts/%d", posts[0].ID)
	text := "edited"

	w, _ := api.do(t, http.MethodPatch, path, users[1].ID, service.PostPatch{Text: &text})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := api.do(t, http.MethodPatch, path, users[0].ID, service.PostPatch{Text: &text})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "edited", decode[model.Post](t, env).Text)

	w, _ = api.do(t, http.MethodPost, path+"/comments", users[1].ID, map[string]string{"text": "nice"})
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = api.do(t, http.MethodPost, path+"/comments", users[1].ID, map[string]string{"text": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = api.do(t, http.MethodGet, path, 0, nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[service.PostDetail](t, env)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "bob", detail.Comments[0].Author.Username)
	assert.EqualValues(t, 1, detail.AuthorPostsCount)

	w, _ = api.do(t, http.MethodDelete, path, users[1].ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = api.do(t, http.MethodDelete, path, users[0].ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = api.do(t, http.MethodGet, path, 0, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = api.do(t, http.MethodGet, "/api/v1/posts/not-a-number", 0, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFollowFlow(t *testing.T) {
	api := newAPI(t)
	users := testutil.SeedUsers(t, api.db, "alice", "bob")
	testutil.SeedPosts(t, api.db, users[0], nil, 2)
	bob := users[1].ID

	_, env := api.do(t, http.MethodGet, "/api/v1/feed/following", bob, nil)
	assert.Empty(t, decode[model.Timeline](t, env).Posts)

	w, _ := api.do(t, http.MethodPost, "/api/v1/users/alice/follow", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = api.do(t, http.MethodPost, "/api/v1/users/alice/follow", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = api.do(t, http.MethodPost, "/api/v1/users/nobody/follow", bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	_, env = api.do(t, http.MethodGet, "/api/v1/feed/following", bob, nil)
	assert.Len(t, decode[model.Timeline](t, env).Posts, 2)

	_, env = api.do(t, http.MethodGet, "/api/v1/users/alice/posts", bob, nil)
	profile := decode[service.ProfileTimeline](t, env)
	assert.True(t, profile.Following)
	assert.EqualValues(t, 1, profile.FollowersCount)

	_, env = api.do(t, http.MethodGet, "/api/v1/users/alice/posts", 0, nil)
	assert.False(t, decode[service.ProfileTimeline](t, env).Following)

	_, env = api.do(t, http.MethodGet, "/api/v1/me/following?page=-3", bob, nil)
	listing := decode[service.FollowingList](t, env)
	assert.Equal(t, []uint{users[0].ID}, listing.AuthorIDs)
	assert.Equal(t, 1, listing.Page)
	assert.Equal(t, 5, listing.PageSize)

	w, _ = api.do(t, http.MethodPost, "/api/v1/users/alice/follow", 4242, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = api.do(t, http.MethodDelete, "/api/v1/users/alice/follow", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = api.do(t, http.MethodDelete, "/api/v1/users/alice/follow", bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGroups(t *testing.T) {
	api := newAPI(t)
	users := testutil.SeedUsers(t, api.db, "alice")
	actor := users[0].ID

	in := service.GroupInput{Title: "Cats", Slug: "cats", Description: "all about cats"}
	w, _ := api.do(t, http.MethodPost, "/api/v1/groups", actor, in)
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = api.do(t, http.MethodPost, "/api/v1/groups", actor, in)
	assert.Equal(t, http.StatusConflict, w.Code)
	w, _ = api.do(t, http.MethodPost, "/api/v1/groups", actor, service.GroupInput{Title: "x", Slug: "no spaces", Description: "d"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := api.do(t, http.MethodGet, "/api/v1/groups/cats/posts", 0, nil)
	require.Equal(t, http.StatusOK, w.Code)
	gt := decode[service.GroupTimeline](t, env)
	assert.Equal(t, "Cats", gt.Group.Title)
	assert.Empty(t, gt.Timeline.Posts)

	w, _ = api.do(t, http.MethodDelete, "/api/v1/groups/cats", actor, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = api.do(t, http.MethodGet, "/api/v1/groups/cats/posts", 0, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvalidToken(t *testing.T) {
	api := newAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/feed/following", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 可选鉴权的路由同样拒绝无效 token
	req = httptest.NewRequest(http.MethodGet, "/api/v1/users/alice/posts", nil)
	req.Header.Set("Authorization", "Token abc")
	w = httptest.NewRecorder()
	api.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
