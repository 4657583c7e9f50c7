package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fatih/color"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/d60-Lab/blog-feed/config"
	"github.com/d60-Lab/blog-feed/internal/cache"
	"github.com/d60-Lab/blog-feed/internal/model"
	"github.com/d60-Lab/blog-feed/internal/repository"
	"github.com/d60-Lab/blog-feed/internal/service"
	"github.com/d60-Lab/blog-feed/pkg/database"
)

// 全站时间线读延迟：无缓存 / ristretto / redis，读写混合
//
//	DATABASE_URL  postgres DSN，未设置时使用本地 sqlite 文件
//	REDIS_ADDR    真实 redis 地址，未设置时使用 miniredis
//	POSTS READS WRITE_EVERY  数据量与读写比例
func main() {
	ctx := context.Background()

	cfg := config.Default()
	cfg.Database.LogLevel = "silent"
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.Database.Driver = config.DriverPostgres
		cfg.Database.DSN = dsn
	} else {
		cfg.Database.DSN = "feedbench.db"
		_ = os.Remove(cfg.Database.DSN)
	}
	db := must(database.InitDB(cfg))
	mustDo(database.Migrate(db))

	posts := envInt("POSTS", 5000)
	reads := envInt("READS", 3000)
	writeEvery := envInt("WRITE_EVERY", 200)

	fmt.Println("Setting up test data...")
	authors := seed(db, posts)
	fmt.Printf("Test data ready: %d authors, %d posts\n", len(authors), posts)

	rdb, cleanup := redisClient()
	defer cleanup()

	repos := repository.NewRepositories(db)
	mem := must(cache.NewMemoryTimelineCache(cfg.Cache.NumCounters, cfg.Cache.MaxCost, 0))
	defer mem.Close()

	backends := []struct {
		name  string
		cache cache.TimelineCache
	}{
		{"No cache", cache.NopTimelineCache{}},
		{"Ristretto", mem},
		{"Redis", cache.NewRedisTimelineCache(rdb, 0)},
	}

	reqs := makeRequests(reads, posts/cfg.Feed.PageSize+1)
	fmt.Printf("\nGlobal timeline latency (%d reads, write every %d, page_size=%d)\n", reads, writeEvery, cfg.Feed.PageSize)
	for _, b := range backends {
		mustDo(b.cache.Clear(ctx))
		feed := service.NewFeedService(repos, b.cache, cfg.Feed.PageSize)
		writer := service.NewPostService(repos, b.cache)

		durations := make([]time.Duration, 0, len(reqs))
		var writes int
		for i, page := range reqs {
			if writeEvery > 0 && i > 0 && i%writeEvery == 0 {
				_, err := writer.Create(ctx, authors[i%len(authors)].ID, service.PostInput{Text: fmt.Sprintf("bench write %d", i)})
				mustDo(err)
				writes++
			}
			start := time.Now()
			_ = must(feed.Global(ctx, page))
			durations = append(durations, time.Since(start))
		}
		fmt.Printf("%-10s avg=%v p95=%v p99=%v writes=%d\n",
			color.CyanString(b.name), avg(durations), pct(durations, 0.95), pct(durations, 0.99), writes)
	}
}

func seed(db *gorm.DB, n int) []model.User {
	authors := make([]model.User, 50)
	for i := range authors {
		authors[i] = model.User{Username: fmt.Sprintf("author_%d", i)}
	}
	mustDo(db.CreateInBatches(&authors, 50).Error)

	base := time.Now().Add(-time.Duration(n) * time.Second)
	rows := make([]model.Post, n)
	for i := 0; i < n; i++ {
		rows[i] = model.Post{
			Text:      fmt.Sprintf("post %d", i),
			AuthorID:  authors[i%len(authors)].ID,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
	}
	mustDo(db.Omit("Author", "Group").CreateInBatches(&rows, 500).Error)
	return authors
}

func redisClient() (*redis.Client, func()) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			panic(fmt.Sprintf("Failed to connect to Redis at %s: %v", addr, err))
		}
		return client, func() { _ = client.Close() }
	}
	mr := must(miniredis.Run())
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return client, func() {
		_ = client.Close()
		mr.Close()
	}
}

// makeRequests 大部分请求落在首页，少量深翻页
func makeRequests(n, maxPage int) []int {
	out := make([]int, n)
	rnd := rand.New(rand.NewSource(42))
	for i := range out {
		out[i] = 1
		if rnd.Float64() > 0.72 && maxPage > 1 {
			out[i] = 2 + rnd.Intn(maxPage-1)
		}
	}
	return out
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range vs {
		sum += v
	}
	return sum / time.Duration(len(vs))
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), vs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}
