package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto"
	gocache "github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/marshaler"
	"github.com/eko/gocache/lib/v4/store"
	ristrettostore "github.com/eko/gocache/store/ristretto/v4"

	"github.com/d60-Lab/blog-feed/internal/model"
)

// MemoryTimelineCache keeps pages in a process-local ristretto cache, msgpack encoded so callers
// never share the cached value.
type MemoryTimelineCache struct {
	client  *ristretto.Cache
	marshal *marshaler.Marshaler
	ttl     time.Duration
	gen     atomic.Uint64
}

func NewMemoryTimelineCache(numCounters, maxCost int64, ttl time.Duration) (*MemoryTimelineCache, error) {
	if numCounters <= 0 {
		numCounters = 10000
	}
	if maxCost <= 0 {
		maxCost = 1 << 26
	}
	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: numCounters,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}
	manager := gocache.New[any](ristrettostore.NewRistretto(client))
	return &MemoryTimelineCache{client: client, marshal: marshaler.New(manager), ttl: ttl}, nil
}

// memoryKey 页码带上代号，旧代写入的页永远不会被读到
func memoryKey(gen uint64, page int) string { return fmt.Sprintf("timeline:global:%d:%d", gen, page) }

func (c *MemoryTimelineCache) Generation(context.Context) (uint64, error) {
	return c.gen.Load(), nil
}

func (c *MemoryTimelineCache) Get(ctx context.Context, page int) (*model.Timeline, bool, error) {
	v, err := c.marshal.Get(ctx, memoryKey(c.gen.Load(), page), new(model.Timeline))
	if errors.Is(err, store.NotFound{}) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("decode cached timeline: %w", err)
	}
	tl, ok := v.(*model.Timeline)
	if !ok {
		return nil, false, fmt.Errorf("unexpected cached value %T", v)
	}
	return tl, true, nil
}

func (c *MemoryTimelineCache) Set(ctx context.Context, gen uint64, page int, timeline *model.Timeline) error {
	if gen != c.gen.Load() {
		return nil
	}
	var opts []store.Option
	if c.ttl > 0 {
		opts = append(opts, store.WithExpiration(c.ttl))
	}
	if err := c.marshal.Set(ctx, memoryKey(gen, page), timeline, opts...); err != nil {
		return err
	}
	// ristretto applies sets asynchronously
	c.client.Wait()
	return nil
}

func (c *MemoryTimelineCache) Clear(ctx context.Context) error {
	c.gen.Add(1)
	return c.marshal.Clear(ctx)
}

// Close stops ristretto's background goroutines.
func (c *MemoryTimelineCache) Close() {
	c.client.Close()
}
