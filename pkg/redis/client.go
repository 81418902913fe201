package redis

import (
	"github.com/redis/go-redis/v9"

	"centrale/pkg/config"
)

// NewClient builds the redis client backing the board-list cache.
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
