package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistPrefix = "blacklist:"

// RedisRevocations keeps revoked token IDs in Redis with a TTL matching the
// token's remaining lifetime. A nil client turns it into a no-op.
type RedisRevocations struct {
	client *redis.Client
}

// NewRedisRevocations wraps the given client.
func NewRedisRevocations(client *redis.Client) *RedisRevocations {
	return &RedisRevocations{client: client}
}

// IsRevoked reports whether jti was blacklisted.
func (r *RedisRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if r == nil || r.client == nil {
		return false, nil
	}
	n, err := r.client.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Revoke blacklists jti for ttl.
func (r *RedisRevocations) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}
