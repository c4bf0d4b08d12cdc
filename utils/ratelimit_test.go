package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"standwithnepal-server/storage"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/go-redis/redis/v8"
	"github.com/kataras/iris/v12"
	"github.com/stretchr/testify/require"
)

func buildLimitedApp() *iris.Application {
	app := iris.New()
	app.Use(RateLimitMiddleware)
	app.Get("/ping", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"success": true})
	})
	return app
}

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	storage.Redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { storage.Redis = nil })
	return mr
}

func pingFrom(app *iris.Application, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Forwarded-For", ip)
	resp := httptest.NewRecorder()
	app.Build()
	app.ServeHTTP(resp, req)
	return resp
}

func TestRateLimitAllowsUnderLimit(t *testing.T) {
	mr := withMiniredis(t)
	app := buildLimitedApp()

	resp := pingFrom(app, "203.0.113.1")
	require.Equal(t, http.StatusOK, resp.Code)

	// First hit creates the counter with a window TTL.
	count, err := mr.Get("rate_limit:203.0.113.1")
	require.NoError(t, err)
	require.Equal(t, "1", count)
	require.Greater(t, mr.TTL("rate_limit:203.0.113.1").Seconds(), 0.0)
}

func TestRateLimitBlocksOverLimit(t *testing.T) {
	mr := withMiniredis(t)
	app := buildLimitedApp()

	// Counter already at the cap; the next request tips it over.
	require.NoError(t, mr.Set("rate_limit:203.0.113.2", "100"))

	resp := pingFrom(app, "203.0.113.2")
	require.Equal(t, http.StatusTooManyRequests, resp.Code)

	// Another IP is unaffected.
	resp2 := pingFrom(app, "203.0.113.3")
	require.Equal(t, http.StatusOK, resp2.Code)
}

func TestRateLimitFailsOpen(t *testing.T) {
	mr := withMiniredis(t)
	app := buildLimitedApp()

	mr.Close()
	resp := pingFrom(app, "203.0.113.4")
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestRateLimitSkipsWithoutRedis(t *testing.T) {
	storage.Redis = nil
	app := buildLimitedApp()

	resp := pingFrom(app, "203.0.113.5")
	require.Equal(t, http.StatusOK, resp.Code)
}
