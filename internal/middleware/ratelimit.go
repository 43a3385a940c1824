package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// CheckRateLimit increments a fixed-window counter in Redis and reports
// whether the caller is still under the limit. It fails open when Redis is
// unavailable.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, bucket, id string, limit int, window time.Duration) (bool, error) {
	if rdb == nil {
		return true, nil
	}
	key := fmt.Sprintf("ratelimit:%s:%s", bucket, id)
	count, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return true, err
	}
	if count == 1 {
		if err := rdb.Expire(ctx, key, window).Err(); err != nil {
			return true, err
		}
	}
	return count <= int64(limit), nil
}

// RateLimit limits requests per client IP for the route it is mounted on.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, bucket string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		allowed, err := CheckRateLimit(c.UserContext(), rdb, bucket, c.IP(), limit, window)
		if err != nil {
			Logger.WarnContext(c.UserContext(), "rate limit check failed", "bucket", bucket, "error", err)
			return c.Next()
		}
		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		}
		return c.Next()
	}
}
