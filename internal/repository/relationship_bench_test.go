package repository

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/d60-Lab/blog-feed/internal/testutil"
)

func BenchmarkFollowWrite(b *testing.B) {
	db := testutil.NewDB(b)
	followRepo := NewFollowRepository(db)
	ctx := context.Background()

	// 预创建部分用户
	names := make([]string, 1000)
	for i := range names {
		names[i] = fmt.Sprintf("u%04d", i)
	}
	users := testutil.SeedUsers(b, db, names...)

	rng := rand.New(rand.NewSource(1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		from := users[rng.Intn(len(users))].ID
		to := users[rng.Intn(len(users))].ID
		if from == to {
			continue
		}
		_, _ = followRepo.Create(ctx, from, to)
	}
}

func BenchmarkTimelineQueries(b *testing.B) {
	db := testutil.NewDB(b)
	followRepo := NewFollowRepository(db)
	postRepo := NewPostRepository(db)
	ctx := context.Background()

	// 构造：u0 关注 N 个作者，每个作者 5 篇帖子
	const N = 500
	names := make([]string, N+1)
	for i := range names {
		names[i] = fmt.Sprintf("u%d", i)
	}
	users := testutil.SeedUsers(b, db, names...)
	for _, u := range users[1:] {
		testutil.SeedPosts(b, db, u, nil, 5)
		_, _ = followRepo.Create(ctx, users[0].ID, u.ID)
	}

	b.ResetTimer()
	b.Run("Global", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = postRepo.List(ctx, AllPosts(), 0, 10)
		}
	})

	b.Run("Following", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = postRepo.List(ctx, ByFollowedAuthors(users[0].ID), 0, 10)
		}
	})

	b.Run("FollowingCount", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = postRepo.Count(ctx, ByFollowedAuthors(users[0].ID))
		}
	})
}
