//go:build integration

package middleware

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/iliyamo/tourism-portal/internal/config"
	"github.com/iliyamo/tourism-portal/internal/model"
	"github.com/iliyamo/tourism-portal/internal/session"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	addr, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(addr)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRedisCacheServesAnonymousOnly(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rdb := newTestRedis(t)

	f := &guardFixture{
		e:       echo.New(),
		storage: session.NewMemoryStorage(),
		auth: &stubAuth{users: map[string]model.Identity{
			"tok-tourist": {ID: "t1", Email: "tourist@example.rw"},
		}},
	}
	f.mgr = session.NewManager(f.auth, f.storage, nil)
	t.Cleanup(f.mgr.Wait)

	var calls atomic.Int32
	cfg := config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{"GET": true},
		TTL:          time.Minute,
		KeyStrategy:  "route_query",
		Prefix:       "test:cache",
		MaxBodyBytes: 1 << 20,
	}
	f.e.Use(Sessions(SessionConfig{Secret: testSecret, Cookie: "sid", TTL: time.Hour}, f.mgr))
	f.e.GET("/explore", func(c echo.Context) error {
		calls.Add(1)
		c.Response().Header().Set("X-Listing", "explore")
		return c.JSON(http.StatusOK, echo.Map{"view": "explore"})
	}, NewRedisCache(cfg, rdb))

	first := f.get(t, "", "/explore")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	firstCookie := first.Header().Get(echo.HeaderSetCookie)
	require.NotEmpty(t, firstCookie)

	hit := f.get(t, "", "/explore")
	require.Equal(t, http.StatusOK, hit.Code)
	assert.Equal(t, []string{"HIT"}, hit.Header().Values("X-Cache"))
	assert.Equal(t, "explore", hit.Header().Get("X-Listing"))
	assert.JSONEq(t, `{"view":"explore"}`, hit.Body.String())
	cookies := hit.Header().Values(echo.HeaderSetCookie)
	require.Len(t, cookies, 1, "only the client's own cookie")
	assert.NotEqual(t, firstCookie, cookies[0])
	assert.Equal(t, int32(1), calls.Load())

	f.signIn(t, "signed-in", "tourist@example.rw")
	rec := f.get(t, "signed-in", "/explore")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Equal(t, int32(2), calls.Load())
}
