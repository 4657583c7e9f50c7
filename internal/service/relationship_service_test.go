package service

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/blog-feed/internal/model"
	"github.com/d60-Lab/blog-feed/internal/testutil"
)

func countFollows(t *testing.T, env *testEnv) int64 {
	t.Helper()
	var cnt int64
	require.NoError(t, env.db.Model(&model.Follow{}).Count(&cnt).Error)
	return cnt
}

func TestRelationshipService_FollowIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := testutil.SeedUsers(t, env.db, "alice", "bob")

	require.NoError(t, env.rels.Follow(ctx, users[0].ID, "bob"))
	ok, err := env.rels.IsFollowing(ctx, users[0].ID, users[1].ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, env.rels.Follow(ctx, users[0].ID, "bob"))
	ok, err = env.rels.IsFollowing(ctx, users[0].ID, users[1].ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1), countFollows(t, env))
}

func TestRelationshipService_SelfFollowIsNoop(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := testutil.SeedUsers(t, env.db, "alice")

	require.NoError(t, env.rels.Follow(ctx, users[0].ID, "alice"))
	assert.Zero(t, countFollows(t, env))

	ok, err := env.rels.IsFollowing(ctx, users[0].ID, users[0].ID)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, env.rels.Unfollow(ctx, users[0].ID, "alice"))
}

func TestRelationshipService_Unfollow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := testutil.SeedUsers(t, env.db, "alice", "bob")

	err := env.rels.Unfollow(ctx, users[0].ID, "bob")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, env.rels.Follow(ctx, users[0].ID, "bob"))
	require.NoError(t, env.rels.Unfollow(ctx, users[0].ID, "bob"))

	ok, err := env.rels.IsFollowing(ctx, users[0].ID, users[1].ID)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, env.rels.Unfollow(ctx, users[0].ID, "bob"), ErrNotFound)
}

func TestRelationshipService_UnknownUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := testutil.SeedUsers(t, env.db, "alice")

	assert.ErrorIs(t, env.rels.Follow(ctx, users[0].ID, "ghost"), ErrNotFound)
	assert.ErrorIs(t, env.rels.Unfollow(ctx, users[0].ID, "ghost"), ErrNotFound)
}

func TestRelationshipService_FollowRequiresKnownFollower(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := testutil.SeedUsers(t, env.db, "alice")

	assert.ErrorIs(t, env.rels.Follow(ctx, 4242, "alice"), ErrNotFound)

	followers, err := env.repos.Follows.CountFollowers(ctx, users[0].ID)
	require.NoError(t, err)
	assert.Zero(t, followers)
}

func TestRelationshipService_FollowDoesNotTouchCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := testutil.SeedUsers(t, env.db, "alice", "bob")

	require.NoError(t, env.rels.Follow(ctx, users[0].ID, "bob"))
	require.NoError(t, env.rels.Unfollow(ctx, users[0].ID, "bob"))
	assert.Zero(t, env.cache.clears.Load())
}

func TestRelationshipService_ListFollowing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := testutil.SeedUsers(t, env.db, "alice", "bob", "carol", "dave")

	for _, name := range []string{"bob", "carol", "dave"} {
		require.NoError(t, env.rels.Follow(ctx, users[0].ID, name))
	}

	first, err := env.rels.ListFollowing(ctx, users[0].ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint{users[3].ID, users[2].ID}, first.AuthorIDs)

	second, err := env.rels.ListFollowing(ctx, users[0].ID, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint{users[1].ID}, second.AuthorIDs)
	assert.Equal(t, 2, second.Page)

	defaults, err := env.rels.ListFollowing(ctx, users[0].ID, -3, 0)
	require.NoError(t, err)
	assert.Len(t, defaults.AuthorIDs, 3)
	assert.Equal(t, 1, defaults.Page)
	assert.Equal(t, 10, defaults.PageSize)

	last, err := env.rels.ListFollowing(ctx, users[0].ID, math.MaxInt, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, last.Page)
	assert.Equal(t, []uint{users[1].ID}, last.AuthorIDs)

	none, err := env.rels.ListFollowing(ctx, users[3].ID, 1, 2)
	require.NoError(t, err)
	assert.Empty(t, none.AuthorIDs)
	assert.Equal(t, 1, none.Page)
}
