package service

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/blog-feed/internal/cache"
	"github.com/d60-Lab/blog-feed/internal/model"
	"github.com/d60-Lab/blog-feed/internal/repository"
	"github.com/d60-Lab/blog-feed/internal/testutil"
)

const testPageSize = 10

// countingCache 记录 Clear 次数
type countingCache struct {
	cache.TimelineCache
	clears atomic.Int32
	hits   atomic.Int32
}

func (c *countingCache) Get(ctx context.Context, page int) (*model.Timeline, bool, error) {
	tl, ok, err := c.TimelineCache.Get(ctx, page)
	if ok {
		c.hits.Add(1)
	}
	return tl, ok, err
}

func (c *countingCache) Clear(ctx context.Context) error {
	c.clears.Add(1)
	return c.TimelineCache.Clear(ctx)
}

type testEnv struct {
	db       *gorm.DB
	repos    *repository.Repositories
	cache    *countingCache
	feed     FeedService
	posts    PostService
	comments CommentService
	groups   GroupService
	rels     RelationshipService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, newMemoryCache(t))
}

func newMemoryCache(t *testing.T) cache.TimelineCache {
	t.Helper()
	mem, err := cache.NewMemoryTimelineCache(1000, 1<<20, 0)
	require.NoError(t, err)
	t.Cleanup(mem.Close)
	return mem
}

func newRedisCache(t *testing.T) cache.TimelineCache {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return cache.NewRedisTimelineCache(rdb, 0)
}

func newTestEnvWith(t *testing.T, backend cache.TimelineCache) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	repos := repository.NewRepositories(db)
	cc := &countingCache{TimelineCache: backend}

	return &testEnv{
		db:       db,
		repos:    repos,
		cache:    cc,
		feed:     NewFeedService(repos, cc, testPageSize),
		posts:    NewPostService(repos, cc),
		comments: NewCommentService(repos),
		groups:   NewGroupService(repos.Groups, cc),
		rels:     NewRelationshipService(repos.Users, repos.Follows),
	}
}

func ids(posts []model.Post) []uint {
	out := make([]uint, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}
