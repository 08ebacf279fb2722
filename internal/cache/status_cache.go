package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"taskhub/internal/model"
	"taskhub/pkg/metrics"
)

// StatusCache caches status-by-slug lookups, which sit on the hot path of
// every task create/update. Redis being down degrades to a miss, never an
// error.
type StatusCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewStatusCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *StatusCache {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &StatusCache{rdb: rdb, ttl: ttl, logger: logger}
}

func key(slug string) string {
	return "status:slug:" + slug
}

func (c *StatusCache) GetBySlug(ctx context.Context, slug string) (*model.TaskStatus, bool) {
	data, err := c.rdb.Get(ctx, key(slug)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("Status cache read failed", zap.Error(err))
		}
		metrics.IncrementCacheLookup("status", "miss")
		return nil, false
	}

	var s model.TaskStatus
	if err := json.Unmarshal(data, &s); err != nil {
		metrics.IncrementCacheLookup("status", "miss")
		return nil, false
	}

	metrics.IncrementCacheLookup("status", "hit")
	return &s, true
}

func (c *StatusCache) Set(ctx context.Context, s *model.TaskStatus) {
	data, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key(s.Slug), data, c.ttl).Err(); err != nil {
		c.logger.Debug("Status cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached entry for a slug. Called on every status
// mutation so task validation never sees a stale slug.
func (c *StatusCache) Invalidate(ctx context.Context, slug string) {
	if err := c.rdb.Del(ctx, key(slug)).Err(); err != nil {
		c.logger.Debug("Status cache invalidation failed", zap.Error(err))
	}
}
