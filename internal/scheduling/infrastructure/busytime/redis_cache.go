package busytime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/tandem/internal/scheduling/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL keeps cached busy windows fresh enough that a newly
// confirmed booking shows up within a minute.
const DefaultCacheTTL = time.Minute

// CachedProvider is a read-through Redis cache in front of another
// busy-window provider. Cache failures fall through to the inner
// provider; a slow cache must never make scheduling wrong.
type CachedProvider struct {
	inner  domain.BusyWindowProvider
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedProvider wraps a provider with a Redis cache.
func NewCachedProvider(inner domain.BusyWindowProvider, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedProvider {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedProvider{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// BusyWindows serves from cache when the exact same query was answered
// recently, otherwise asks the inner provider and caches the result.
func (c *CachedProvider) BusyWindows(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.BusyWindow, error) {
	key := cacheKey(userID, from, to)

	cached, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var windows []domain.BusyWindow
		if err := json.Unmarshal(cached, &windows); err == nil {
			return windows, nil
		}
		c.logger.Warn("corrupt busy-window cache entry", "key", key)
	} else if err != redis.Nil {
		c.logger.Warn("busy-window cache read failed", "error", err)
	}

	windows, err := c.inner.BusyWindows(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(windows); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("busy-window cache write failed", "error", err)
		}
	}
	return windows, nil
}

// Invalidate drops all cached windows for a user, called after a
// booking changes.
func (c *CachedProvider) Invalidate(ctx context.Context, userID uuid.UUID) {
	pattern := fmt.Sprintf("busytime:%s:*", userID)
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.logger.Warn("busy-window cache invalidation failed", "key", iter.Val(), "error", err)
		}
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("busy-window cache scan failed", "error", err)
	}
}

func cacheKey(userID uuid.UUID, from, to time.Time) string {
	return fmt.Sprintf("busytime:%s:%d:%d", userID, from.Unix(), to.Unix())
}
