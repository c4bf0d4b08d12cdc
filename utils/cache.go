package utils

import (
	"context"
	"time"

	"standwithnepal-server/storage"
)

var cacheContext = context.Background()

// Issue list pages are cached for 5 minutes, matching their freshness
// contract. The cache is a side optimization only: a miss and a hit must
// serve byte-identical bodies, and nothing invalidates entries early.
const listCacheTTL = 5 * time.Minute

func CacheGet(key string) (string, bool) {
	if storage.Redis == nil {
		return "", false
	}
	val, err := storage.Redis.Get(cacheContext, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func CacheSet(key, body string) {
	if storage.Redis == nil {
		return
	}
	storage.Redis.Set(cacheContext, key, body, listCacheTTL)
}
