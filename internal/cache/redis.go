package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/blog-feed/internal/model"
)

const (
	redisGenKey     = "timeline:global:gen"
	redisPagePrefix = "timeline:global:page:"
)

// setIfCurrent 仅当代号未变时写入页面
var setIfCurrent = redis.NewScript(`
local cur = redis.call('GET', KEYS[1]) or '0'
if cur ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[2], ARGV[2])
end
return 1
`)

// RedisTimelineCache shares pages between processes through redis.
type RedisTimelineCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisTimelineCache(rdb *redis.Client, ttl time.Duration) *RedisTimelineCache {
	return &RedisTimelineCache{rdb: rdb, ttl: ttl}
}

func redisKey(gen uint64, page int) string {
	return fmt.Sprintf("%s%d:%d", redisPagePrefix, gen, page)
}

func (c *RedisTimelineCache) Generation(ctx context.Context) (uint64, error) {
	gen, err := c.rdb.Get(ctx, redisGenKey).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *RedisTimelineCache) Get(ctx context.Context, page int) (*model.Timeline, bool, error) {
	gen, err := c.Generation(ctx)
	if err != nil {
		return nil, false, err
	}
	data, err := c.rdb.Get(ctx, redisKey(gen, page)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var tl model.Timeline
	if err := json.Unmarshal(data, &tl); err != nil {
		return nil, false, fmt.Errorf("decode cached timeline: %w", err)
	}
	return &tl, true, nil
}

func (c *RedisTimelineCache) Set(ctx context.Context, gen uint64, page int, timeline *model.Timeline) error {
	payload, err := json.Marshal(timeline)
	if err != nil {
		return err
	}
	return setIfCurrent.Run(ctx, c.rdb,
		[]string{redisGenKey, redisKey(gen, page)},
		strconv.FormatUint(gen, 10), payload, c.ttl.Milliseconds(),
	).Err()
}

// Clear 先推进代号再删除旧页；推进之后并发写入的旧代页面不会再被读到
func (c *RedisTimelineCache) Clear(ctx context.Context) error {
	if err := c.rdb.Incr(ctx, redisGenKey).Err(); err != nil {
		return err
	}
	iter := c.rdb.Scan(ctx, 0, redisPagePrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	pipe := c.rdb.TxPipeline()
	for start := 0; start < len(keys); start += 100 {
		end := min(start+100, len(keys))
		pipe.Del(ctx, keys[start:end]...)
	}
	_, err := pipe.Exec(ctx)
	return err
}
