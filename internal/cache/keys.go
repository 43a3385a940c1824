package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pawgram/internal/middleware"
)

// Key builders. All post-derived keys live under posts:* so a single
// invalidation sweep can clear them after a write.
func FeedPageKey(userID uint, offset int) string {
	return fmt.Sprintf("posts:feed:%d:%d", userID, offset)
}

func HashtagPageKey(tag string, offset int) string {
	return fmt.Sprintf("posts:hashtag:%s:%d", tag, offset)
}

func PostKey(postID uint) string {
	return fmt.Sprintf("posts:single:%d", postID)
}

// Aside implements the cache-aside pattern: fill dest from the cache when the
// key is present, otherwise run load, store the result with the given TTL and
// leave it in dest. Cache failures are logged and treated as misses.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, load func() error) error {
	rdb := GetClient()
	if rdb == nil {
		return load()
	}

	raw, err := rdb.Get(ctx, key).Result()
	if err == nil {
		if err := json.Unmarshal([]byte(raw), dest); err == nil {
			return nil
		}
		// Corrupt entry, fall through to reload.
		rdb.Del(ctx, key)
	} else if err != redis.Nil {
		middleware.Logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}

	if err := load(); err != nil {
		return err
	}

	if data, err := json.Marshal(dest); err == nil {
		if err := rdb.Set(ctx, key, data, ttl).Err(); err != nil {
			middleware.Logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
		}
	}
	return nil
}

// TTLs for post-derived cache entries.
const (
	FeedTTL = 30 * time.Second
	PostTTL = 2 * time.Minute
)

// InvalidatePosts removes every cached post-derived entry. Writes are rare
// relative to reads so a full sweep keeps the invalidation story simple.
func InvalidatePosts(ctx context.Context) {
	rdb := GetClient()
	if rdb == nil {
		return
	}

	iter := rdb.Scan(ctx, 0, "posts:*", 200).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation scan failed", "error", err)
		return
	}
	if len(keys) > 0 {
		if err := rdb.Del(ctx, keys...).Err(); err != nil {
			middleware.Logger.WarnContext(ctx, "cache invalidation failed", "error", err)
		}
	}
}
