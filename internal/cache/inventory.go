package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	// ListGenerationKey is bumped on every post mutation; list keys embed it
	// so stale pages simply stop being read and expire on their own.
	ListGenerationKey = "blogs:list:gen"
	listKeyPrefix     = "blogs:list:v%d:%s"
)

// DefaultListTTL applies when no TTL is configured.
const DefaultListTTL = 30 * time.Second

// Store is a best-effort JSON cache over Redis. A nil client disables it;
// every method then behaves like a permanent miss.
type Store struct {
	client  *redis.Client
	listTTL time.Duration
}

// NewStore wraps client. listTTL <= 0 means DefaultListTTL.
func NewStore(client *redis.Client, listTTL time.Duration) *Store {
	if listTTL <= 0 {
		listTTL = DefaultListTTL
	}
	return &Store{client: client, listTTL: listTTL}
}

// Enabled reports whether a Redis client is configured.
func (s *Store) Enabled() bool {
	return s != nil && s.client != nil
}

// ListTTL is how long a cached listing page lives.
func (s *Store) ListTTL() time.Duration {
	return s.listTTL
}

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func (s *Store) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func (s *Store) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, b, ttl).Err()
}

// Aside tries Redis first; on a miss it calls fetch, which must populate
// dest, then stores dest with ttl. Redis failures degrade to a miss.
func (s *Store) Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := s.GetJSON(ctx, key, dest)
	if err != nil {
		slog.Default().WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	if found {
		observability.ListCacheLookups.WithLabelValues("hit").Inc()
		return nil
	}
	observability.ListCacheLookups.WithLabelValues("miss").Inc()

	if err := fetch(); err != nil {
		return err
	}

	if err := s.SetJSON(ctx, key, dest, ttl); err != nil {
		slog.Default().WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}

// ListKey returns the cache key for a listing query under the current
// generation.
func (s *Store) ListKey(ctx context.Context, q models.PostListQuery) (string, error) {
	if !s.Enabled() {
		return "", nil
	}
	gen, err := s.client.Get(ctx, ListGenerationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	params := url.Values{}
	params.Set("state", string(q.State))
	params.Set("author", fmt.Sprint(q.AuthorID))
	params.Set("search", q.Search)
	params.Set("sort", q.Sort.String())
	params.Set("page", fmt.Sprint(q.Page))
	params.Set("limit", fmt.Sprint(q.Limit))
	return fmt.Sprintf(listKeyPrefix, gen, params.Encode()), nil
}

// InvalidatePostLists retires every cached listing page.
func (s *Store) InvalidatePostLists(ctx context.Context) {
	if !s.Enabled() {
		return
	}
	if err := s.client.Incr(ctx, ListGenerationKey).Err(); err != nil {
		slog.Default().WarnContext(ctx, "list cache invalidation failed", slog.String("error", err.Error()))
	}
}

// Ping checks the Redis connection. A disabled store is healthy.
func (s *Store) Ping(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	return s.client.Ping(ctx).Err()
}
