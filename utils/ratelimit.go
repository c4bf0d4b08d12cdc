package utils

import (
	"context"
	"time"

	"standwithnepal-server/storage"

	"github.com/kataras/iris/v12"
)

var rlContext = context.Background()

const (
	rateLimitMax    = 100
	rateLimitWindow = time.Hour
)

// RateLimitMiddleware is a fixed-window per-IP limiter backed by Redis
// INCR/EXPIRE. Fails open: when Redis is unavailable the request proceeds,
// since limiting is a guard rail, not a correctness requirement.
func RateLimitMiddleware(ctx iris.Context) {
	if storage.Redis == nil {
		ctx.Next()
		return
	}

	key := "rate_limit:" + ClientIP(ctx)
	current, err := storage.Redis.Incr(rlContext, key).Result()
	if err != nil {
		ctx.Next()
		return
	}
	if current == 1 {
		storage.Redis.Expire(rlContext, key, rateLimitWindow)
	}
	if current > rateLimitMax {
		CreateError(iris.StatusTooManyRequests, "Too many requests", ctx)
		return
	}
	ctx.Next()
}
