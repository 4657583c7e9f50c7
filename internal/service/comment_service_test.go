package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/blog-feed/internal/testutil"
)

func TestCommentService_Add(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	users := testutil.SeedUsers(t, env.db, "alice", "bob")
	posts := testutil.SeedPosts(t, env.db, users[0], nil, 1)

	c, err := env.comments.Add(ctx, users[1].ID, posts[0].ID, "  great post ")
	require.NoError(t, err)
	assert.Equal(t, "great post", c.Text)
	assert.Equal(t, "bob", c.Author.Username)
	assert.False(t, c.CreatedAt.IsZero())

	_, err = env.comments.Add(ctx, users[1].ID, 999, "lost")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.comments.Add(ctx, users[1].ID, posts[0].ID, "   ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCommentService_DoesNotInvalidateCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	users := testutil.SeedUsers(t, env.db, "alice", "bob")
	posts := testutil.SeedPosts(t, env.db, users[0], nil, 1)

	_, err := env.feed.Global(ctx, 1)
	require.NoError(t, err)

	_, err = env.comments.Add(ctx, users[1].ID, posts[0].ID, "hi")
	require.NoError(t, err)
	assert.Zero(t, env.cache.clears.Load())

	_, err = env.feed.Global(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), env.cache.hits.Load())
}
