package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis caches report payloads in a shared Redis so multiple replicas reuse
// each other's work. Failures degrade to a miss; the report is simply
// recomputed.
type Redis struct {
	c   *redis.Client
	log *slog.Logger
}

func NewRedis(c *redis.Client, log *slog.Logger) *Redis {
	return &Redis{c: c, log: log}
}

const keyPrefix = "adpulse:report:"

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.c.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		r.log.Warn("cache get failed", slog.String("err", err.Error()))
		return nil, false
	}
	return val, true
}

func (r *Redis) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := r.c.Set(ctx, keyPrefix+key, val, ttl).Err(); err != nil {
		r.log.Warn("cache set failed", slog.String("err", err.Error()))
	}
}
