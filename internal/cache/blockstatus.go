// Package cache holds small Redis-backed read caches.  Everything in here
// degrades gracefully: a nil client or a Redis error falls through to the
// database loader so the marketplace keeps working without Redis.
package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// BlockStatusCache caches the users.blocked flag so middleware can reject
// blocked accounts on every request without a database round trip. Entries
// expire on their own; moderation invalidates eagerly on block/unblock so
// a block takes effect within one request rather than one TTL.
type BlockStatusCache struct {
	Client *redis.Client
	TTL    time.Duration
	Loader func(ctx context.Context, userID uint64) (bool, error)
}

func NewBlockStatusCache(client *redis.Client, ttl time.Duration, loader func(ctx context.Context, userID uint64) (bool, error)) *BlockStatusCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &BlockStatusCache{Client: client, TTL: ttl, Loader: loader}
}

func blockKey(userID uint64) string {
	return fmt.Sprintf("blocked:%d", userID)
}

// IsBlocked answers from Redis when possible and falls back to the loader,
// caching the loaded value. Redis errors are logged and treated as misses.
func (c *BlockStatusCache) IsBlocked(ctx context.Context, userID uint64) (bool, error) {
	if c.Client != nil {
		val, err := c.Client.Get(ctx, blockKey(userID)).Result()
		switch {
		case err == nil:
			return val == "1", nil
		case err != redis.Nil:
			log.Printf("block-cache: get failed for user %d: %v", userID, err)
		}
	}

	blocked, err := c.Loader(ctx, userID)
	if err != nil {
		return false, err
	}
	if c.Client != nil {
		val := "0"
		if blocked {
			val = "1"
		}
		if err := c.Client.Set(ctx, blockKey(userID), val, c.TTL).Err(); err != nil {
			log.Printf("block-cache: set failed for user %d: %v", userID, err)
		}
	}
	return blocked, nil
}

// Invalidate drops the cached entry so the next check hits the database.
func (c *BlockStatusCache) Invalidate(ctx context.Context, userID uint64) {
	if c.Client == nil {
		return
	}
	if err := c.Client.Del(ctx, blockKey(userID)).Err(); err != nil {
		log.Printf("block-cache: invalidate failed for user %d: %v", userID, err)
	}
}
