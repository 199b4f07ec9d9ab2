package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bookit/internal/config"
)

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{http.MethodGet: true},
		TTL:          time.Minute,
		KeyStrategy:  "route_query",
		Prefix:       "test:cache",
		MaxBodyBytes: 1 << 20,
	}
}

func keyFor(cfg config.CacheConfig, path, target string) string {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
	c.SetPath(path)
	return cacheKeyFrom(cfg, c)
}

func TestRedisCache_MissStoresResponse(t *testing.T) {
	cfg := testCacheConfig()
	rdb, mock := redismock.NewClientMock()
	key := keyFor(cfg, "/api/experiences", "/api/experiences?category=Adventure")

	mock.ExpectGet(key).RedisNil()
	mock.CustomMatch(func(expected, actual []any) error { return nil }).
		ExpectSetEx(key, "", cfg.TTL).SetVal("OK")

	e := echo.New()
	calls := 0
	e.GET("/api/experiences", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	}, NewRedisCache(cfg, rdb))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/experiences?category=Adventure", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, 1, calls)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_HitReplaysStoredResponse(t *testing.T) {
	cfg := testCacheConfig()
	rdb, mock := redismock.NewClientMock()
	key := keyFor(cfg, "/api/experiences", "/api/experiences")

	hdr := http.Header{}
	hdr.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	payload, err := encodePayload(http.StatusOK, hdr, []byte(`{"cached":true}`))
	require.NoError(t, err)
	mock.ExpectGet(key).SetVal(string(payload))

	e := echo.New()
	e.GET("/api/experiences", func(c echo.Context) error {
		t.Fatal("handler must not run on a cache hit")
		return nil
	}, NewRedisCache(cfg, rdb))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/experiences", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, echo.MIMEApplicationJSON, rec.Header().Get(echo.HeaderContentType))
	assert.JSONEq(t, `{"cached":true}`, rec.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_ErrorsAreNotStored(t *testing.T) {
	cfg := testCacheConfig()
	rdb, mock := redismock.NewClientMock()
	key := keyFor(cfg, "/api/experiences/:id", "/api/experiences/missing")
	mock.ExpectGet(key).RedisNil()

	e := echo.New()
	e.GET("/api/experiences/:id", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false})
	}, NewRedisCache(cfg, rdb))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/experiences/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheKey_DistinguishesPathParams(t *testing.T) {
	cfg := testCacheConfig()
	e := echo.New()
	keyOf := func(target string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		c.SetPath("/api/experiences/:id")
		c.SetParamNames("id")
		return cacheKeyFrom(cfg, c)
	}
	assert.NotEqual(t, keyOf("/api/experiences/a"), keyOf("/api/experiences/b"))
	assert.Equal(t, keyOf("/api/experiences/a"), keyOf("/api/experiences/a"))
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"X-Test": {"1", "2"}}
	bs, err := encodePayload(http.StatusAccepted, hdr, []byte("body"))
	require.NoError(t, err)
	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusAccepted, status)
	assert.Equal(t, hdr, got)
	assert.Equal(t, "body", string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
}

func TestRedisCache_DisabledPassesThrough(t *testing.T) {
	cfg := testCacheConfig()
	cfg.Enabled = false
	mw := NewRedisCache(cfg, nil)

	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") }, mw)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, "ok", rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Cache"))
}
