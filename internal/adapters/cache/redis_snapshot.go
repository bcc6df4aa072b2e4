package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"github.com/unischedule/dashboard/internal/config"
	"github.com/unischedule/dashboard/internal/core/ports"
)

const keyPrefix = "dashboard:snapshot:"

// RedisCmdable is the subset of *redis.Client the snapshot cache uses.
type RedisCmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// RedisSnapshotCache stores the last good collection per resource.
type RedisSnapshotCache struct {
	rdb RedisCmdable
	ttl time.Duration
	cb  *gobreaker.CircuitBreaker
}

var _ ports.SnapshotCache = (*RedisSnapshotCache)(nil)

func NewRedisSnapshotCache(rdb RedisCmdable, ttl time.Duration) *RedisSnapshotCache {
	return &RedisSnapshotCache{
		rdb: rdb,
		ttl: ttl,
		cb:  config.NewCircuitBreaker("Redis-Snapshots"),
	}
}

func (c *RedisSnapshotCache) SaveSnapshot(ctx context.Context, resource string, payload []byte) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.rdb.Set(ctx, keyPrefix+resource, string(payload), c.ttl).Err()
	})
	return err
}

// LoadSnapshot returns nil, nil when no snapshot exists.
func (c *RedisSnapshotCache) LoadSnapshot(ctx context.Context, resource string) ([]byte, error) {
	result, err := c.cb.Execute(func() (interface{}, error) {
		val, err := c.rdb.Get(ctx, keyPrefix+resource).Result()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return []byte(val), nil
	})
	if err != nil || result == nil {
		return nil, err
	}
	return result.([]byte), nil
}

// Ping reports whether Redis answers, for readiness checks.
func (c *RedisSnapshotCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
