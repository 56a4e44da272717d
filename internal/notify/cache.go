// Package notify caches per-user unread notification counts in Redis so the
// 30-second polling of every open client does not hit the database.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "acqplan:notifications:unread:"

// CountCache stores unread counts. A nil *CountCache is valid and caches nothing.
type CountCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCountCache(rdb *redis.Client, ttl time.Duration) *CountCache {
	if rdb == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CountCache{rdb: rdb, ttl: ttl}
}

func key(userID uuid.UUID) string { return keyPrefix + userID.String() }

// Get returns the cached count and whether it was present.
func (c *CountCache) Get(ctx context.Context, userID uuid.UUID) (int64, bool, error) {
	if c == nil {
		return 0, false, nil
	}
	n, err := c.rdb.Get(ctx, key(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read unread count: %w", err)
	}
	return n, true, nil
}

func (c *CountCache) Set(ctx context.Context, userID uuid.UUID, n int64) error {
	if c == nil {
		return nil
	}
	return c.rdb.Set(ctx, key(userID), n, c.ttl).Err()
}

// Invalidate drops the cached counts of the given users.
func (c *CountCache) Invalidate(ctx context.Context, userIDs ...uuid.UUID) error {
	if c == nil || len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = key(id)
	}
	return c.rdb.Del(ctx, keys...).Err()
}
