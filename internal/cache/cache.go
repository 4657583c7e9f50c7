// Package cache memoizes composed pages of the global timeline.
//
// Entries are keyed by page number and never expire on their own unless a TTL is configured;
// writers that change the global timeline call Clear after their transaction commits.
//
// Every Clear advances a generation counter. Readers take the generation before they query the
// database and hand it back to Set, which drops pages composed under an older generation, so a
// read that overlaps a write can never repopulate the cache with rows the write removed.
package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/blog-feed/config"
	"github.com/d60-Lab/blog-feed/internal/model"
)

// TimelineCache stores rendered global timeline pages.
type TimelineCache interface {
	// Generation returns the current generation. Clear advances it.
	Generation(ctx context.Context) (uint64, error)
	// Get returns the cached page of the current generation and whether it was present.
	Get(ctx context.Context, page int) (*model.Timeline, bool, error)
	// Set stores a page composed under gen. Pages from a superseded generation are discarded.
	Set(ctx context.Context, gen uint64, page int, timeline *model.Timeline) error
	// Clear advances the generation and drops every cached page.
	Clear(ctx context.Context) error
}

// New builds the backend selected by cfg.Cache.Backend. rdb is only used by the redis backend.
func New(cfg *config.Config, rdb *redis.Client) (TimelineCache, error) {
	switch cfg.Cache.Backend {
	case config.CacheMemory:
		return NewMemoryTimelineCache(cfg.Cache.NumCounters, cfg.Cache.MaxCost, cfg.Cache.TTL)
	case config.CacheRedis:
		if rdb == nil {
			return nil, fmt.Errorf("redis cache backend requires a redis client")
		}
		return NewRedisTimelineCache(rdb, cfg.Cache.TTL), nil
	case config.CacheNone:
		return NopTimelineCache{}, nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Cache.Backend)
	}
}

// NopTimelineCache never stores anything.
type NopTimelineCache struct{}

func (NopTimelineCache) Generation(context.Context) (uint64, error) { return 0, nil }

func (NopTimelineCache) Get(context.Context, int) (*model.Timeline, bool, error) {
	return nil, false, nil
}

func (NopTimelineCache) Set(context.Context, uint64, int, *model.Timeline) error { return nil }

func (NopTimelineCache) Clear(context.Context) error { return nil }
