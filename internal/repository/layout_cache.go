package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/seating-designer/internal/config"
	"github.com/iliyamo/seating-designer/internal/logging"
	"github.com/iliyamo/seating-designer/internal/model"
)

// Cache holds serialized layouts keyed by screen.
type Cache interface {
	Get(ctx context.Context, screenID string) ([]model.Row, bool)
	Set(ctx context.Context, screenID string, rows []model.Row)
	Invalidate(ctx context.Context, screenID string) error
}

// LayoutCache is the Redis implementation of Cache.  Misses and Redis
// errors look the same to callers: the read falls through to MySQL.
type LayoutCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewLayoutCache returns nil when caching is disabled or Redis is not
// available; CachedLayouts treats a nil cache as a pass-through.
func NewLayoutCache(cfg config.CacheConfig, rdb *redis.Client) *LayoutCache {
	if !cfg.Enabled || rdb == nil {
		return nil
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &LayoutCache{rdb: rdb, prefix: cfg.Prefix, ttl: ttl}
}

func (c *LayoutCache) key(screenID string) string {
	return c.prefix + ":screen:" + screenID
}

func (c *LayoutCache) Get(ctx context.Context, screenID string) ([]model.Row, bool) {
	bs, err := c.rdb.Get(ctx, c.key(screenID)).Bytes()
	if err != nil {
		return nil, false
	}
	var l model.Layout
	if err := json.Unmarshal(bs, &l); err != nil {
		return nil, false
	}
	if l.Rows == nil {
		l.Rows = []model.Row{}
	}
	return l.Rows, true
}

func (c *LayoutCache) Set(ctx context.Context, screenID string, rows []model.Row) {
	bs, err := json.Marshal(model.Layout{Rows: rows})
	if err != nil {
		return
	}
	_ = c.rdb.SetEx(ctx, c.key(screenID), bs, c.ttl).Err()
}

func (c *LayoutCache) Invalidate(ctx context.Context, screenID string) error {
	err := c.rdb.Del(ctx, c.key(screenID)).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

type layoutStore interface {
	Fetch(ctx context.Context, screenID string) ([]model.Row, error)
	Replace(ctx context.Context, screenID string, rows []model.Row) error
}

// CachedLayouts puts a read-through cache in front of a layout store.
// Replace writes through to the store first and then drops the cached
// entry, so a failed write never leaves a stale or speculative cache entry.
type CachedLayouts struct {
	store layoutStore
	cache Cache
	log   zerolog.Logger
}

// NewCachedLayouts wraps store.  cache may be nil.
func NewCachedLayouts(store layoutStore, cache Cache) *CachedLayouts {
	if lc, ok := cache.(*LayoutCache); ok && lc == nil {
		cache = nil
	}
	return &CachedLayouts{store: store, cache: cache, log: logging.Component("layout-cache")}
}

func (c *CachedLayouts) Fetch(ctx context.Context, screenID string) ([]model.Row, error) {
	if c.cache != nil {
		if rows, ok := c.cache.Get(ctx, screenID); ok {
			return rows, nil
		}
	}
	rows, err := c.store.Fetch(ctx, screenID)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		c.cache.Set(ctx, screenID, rows)
	}
	return rows, nil
}

func (c *CachedLayouts) Replace(ctx context.Context, screenID string, rows []model.Row) error {
	if err := c.store.Replace(ctx, screenID, rows); err != nil {
		return err
	}
	if c.cache != nil {
		if err := c.cache.Invalidate(ctx, screenID); err != nil {
			c.log.Warn().Err(err).Str("screen", screenID).Msg("cache invalidation failed")
		}
	}
	return nil
}
