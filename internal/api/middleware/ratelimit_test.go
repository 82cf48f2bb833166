package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quotecraft/quoting-system/internal/infrastructure/config"
)

func limiterConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:        true,
		Capacity:       1,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            time.Minute,
		Prefix:         "rl-test",
	}
}

func TestRateLimit_DisabledIsPassthrough(t *testing.T) {
	cfg := limiterConfig()
	cfg.Enabled = false

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/auth/login", nil), rec)

	handler := RateLimit(cfg, nil, zerolog.Nop())(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	for i := 0; i < 5; i++ {
		if err := handler(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
	}
	if rec.Header().Get("X-RateLimit-Limit") != "" {
		t.Fatalf("disabled limiter must not set headers")
	}
}

func TestRateLimit_FailsOpenWhenRedisDown(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/auth/login", nil), rec)

	called := false
	handler := RateLimit(limiterConfig(), rdb, zerolog.Nop())(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("request must pass when redis is unreachable")
	}
}

func TestRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.1.2.3")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/auth/login")

	if got := rateKey("rl", c); got != "rl:ip:10.1.2.3:route:POST /api/auth/login" {
		t.Fatalf("unexpected key %q", got)
	}
}
