package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionCache is an optional short-lived cache of session validity. It
// trades a bounded staleness window for fewer session-row reads on the hot
// path; entries are invalidated on logout and revocation.
type SessionCache interface {
	Get(ctx context.Context, sessionID string) (Identity, bool, error)
	Set(ctx context.Context, sessionID string, identity Identity, ttl time.Duration) error
	Invalidate(ctx context.Context, sessionID string) error
}

// RedisSessionCache implements SessionCache on Redis.
type RedisSessionCache struct {
	client *redis.Client
	prefix string
}

// NewRedisSessionCache connects a cache to the given Redis address.
func NewRedisSessionCache(addr string) *RedisSessionCache {
	return &RedisSessionCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		prefix: "gpao:session:",
	}
}

func (c *RedisSessionCache) Get(ctx context.Context, sessionID string) (Identity, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Identity{}, false, nil
		}
		return Identity{}, false, err
	}
	var identity Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return Identity{}, false, err
	}
	return identity, true, nil
}

func (c *RedisSessionCache) Set(ctx context.Context, sessionID string, identity Identity, ttl time.Duration) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+sessionID, data, ttl).Err()
}

func (c *RedisSessionCache) Invalidate(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, c.prefix+sessionID).Err()
}

// Close releases the underlying connection pool.
func (c *RedisSessionCache) Close() error { return c.client.Close() }
