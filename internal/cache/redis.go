package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amishk599/jobscout/internal/model"
)

var _ Cache = (*Redis)(nil)

// DefaultKeyPrefix namespaces jobscout keys in a shared Redis.
const DefaultKeyPrefix = "jobscout:search:"

// Redis keeps fetch results in Redis so several jobscout processes share one
// cache. Freshness is enforced by the key's EX expiry.
type Redis struct {
	rdb    redis.UniversalClient
	ttl    time.Duration
	prefix string
}

// NewRedis wraps a connected client. A non-positive ttl uses DefaultTTL and an
// empty prefix uses DefaultKeyPrefix.
func NewRedis(rdb redis.UniversalClient, ttl time.Duration, prefix string) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Redis{rdb: rdb, ttl: ttl, prefix: prefix}
}

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// Get loads and decodes the records stored under key.
func (c *Redis) Get(ctx context.Context, key string) ([]model.RawJob, bool, error) {
	data, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var jobs []model.RawJob
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, false, fmt.Errorf("decoding cached jobs for %s: %w", key, err)
	}
	return jobs, true, nil
}

// Set encodes jobs as JSON and stores them with the cache TTL.
func (c *Redis) Set(ctx context.Context, key string, jobs []model.RawJob) error {
	data, err := json.Marshal(jobs)
	if err != nil {
		return fmt.Errorf("encoding jobs for %s: %w", key, err)
	}
	if err := c.rdb.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
