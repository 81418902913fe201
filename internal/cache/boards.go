// Package cache keeps the rendered board list of each partition in Redis so
// repeated dashboard loads skip the database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"centrale/internal/model"
	"centrale/pkg/metrics"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type BoardCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewBoardCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *BoardCache {
	return &BoardCache{rdb: rdb, ttl: ttl, logger: logger}
}

func key(partition model.Partition) string {
	return fmt.Sprintf("centrale:boards:%s", partition)
}

// Get returns the cached board list for a partition, or (nil, false) on a
// miss. Redis being down counts as a miss so reads fall through to the
// database.
func (c *BoardCache) Get(ctx context.Context, partition model.Partition) ([]*model.Board, bool) {
	data, err := c.rdb.Get(ctx, key(partition)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.IncrementCacheLookup("miss")
		return nil, false
	}
	if err != nil {
		c.logger.Warn("Board cache read failed",
			zap.Error(err),
			zap.String("centrale_type", string(partition)),
		)
		metrics.IncrementCacheLookup("miss")
		return nil, false
	}
	var boards []*model.Board
	if err := json.Unmarshal(data, &boards); err != nil {
		c.logger.Warn("Board cache entry corrupt, dropping",
			zap.Error(err),
			zap.String("centrale_type", string(partition)),
		)
		c.rdb.Del(ctx, key(partition))
		metrics.IncrementCacheLookup("miss")
		return nil, false
	}
	metrics.IncrementCacheLookup("hit")
	return boards, true
}

// Set stores a board list. Failures are logged and swallowed; the cache is
// an optimization, not a dependency.
func (c *BoardCache) Set(ctx context.Context, partition model.Partition, boards []*model.Board) {
	data, err := json.Marshal(boards)
	if err != nil {
		c.logger.Warn("Board cache encode failed", zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, key(partition), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Board cache write failed",
			zap.Error(err),
			zap.String("centrale_type", string(partition)),
		)
	}
}

// Invalidate drops the cached list for a partition after any write.
func (c *BoardCache) Invalidate(ctx context.Context, partition model.Partition) {
	if err := c.rdb.Del(ctx, key(partition)).Err(); err != nil {
		c.logger.Warn("Board cache invalidation failed",
			zap.Error(err),
			zap.String("centrale_type", string(partition)),
		)
	}
}
