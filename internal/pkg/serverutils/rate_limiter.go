package serverutils

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RateLimitMiddleware enforces a fixed-window per-requester limit backed by
// Redis so the limit holds across replicas. If Redis is down the request is
// allowed through; throttling is protection, not a gate.
func RateLimitMiddleware(rdb *redis.Client, perMinute int) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if rdb == nil || perMinute <= 0 {
			return ctx.Next()
		}

		requester, _ := ctx.Locals("user_id").(string)
		if requester == "" {
			requester = ctx.IP()
		}
		key := fmt.Sprintf("ratelimit:%s:%d", requester, time.Now().Unix()/60)

		count, err := rdb.Incr(ctx.Context(), key).Result()
		if err != nil {
			return ctx.Next()
		}
		if count == 1 {
			rdb.Expire(ctx.Context(), key, time.Minute)
		}
		if count > int64(perMinute) {
			return ctx.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse(fiber.StatusTooManyRequests, "rate limit exceeded"))
		}
		return ctx.Next()
	}
}
