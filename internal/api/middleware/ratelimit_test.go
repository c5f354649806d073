package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"collection-engine/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiterMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	cfg := config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 2}

	rl := NewRateLimiterMiddleware(cfg, nil, logger)
	defer rl.Stop()
	handler := rl.Middleware(okHandler())

	serve := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("allows the burst and blocks the next request", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve("127.0.0.1:12345").Code)
		assert.Equal(t, http.StatusOK, serve("127.0.0.1:12345").Code)

		rec := serve("127.0.0.1:12345")
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("Retry-After"))

		var response map[string]map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, "Rate limit exceeded", response["error"]["message"])
	})

	t.Run("limits each client separately", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve("10.0.0.9:4000").Code)
	})

	t.Run("blocks requests without a usable client address", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, serve("not-an-address").Code)
	})
}

func TestRateLimiterDisabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	rl := NewRateLimiterMiddleware(config.RateLimitConfig{Enabled: false, RPS: 1, Burst: 1}, nil, logger)
	handler := rl.Middleware(okHandler())

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimiterFailsOpenWhenRedisIsUnreachable(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	rl := NewRateLimiterMiddleware(config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1}, client, logger)
	handler := rl.Middleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "127.0.0.1:12345"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

type stubLimiter struct {
	allowed bool
	err     error
}

func (s stubLimiter) Allow(context.Context, string) (bool, error) { return s.allowed, s.err }

func TestRateLimiterUsesLimiterDecision(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	tests := []struct {
		name    string
		limiter limiter
		want    int
	}{
		{"allowed", stubLimiter{allowed: true}, http.StatusOK},
		{"denied", stubLimiter{allowed: false}, http.StatusTooManyRequests},
		{"limiter error", stubLimiter{err: errors.New("down")}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := &RateLimiterMiddleware{limiter: tt.limiter, logger: logger, stop: make(chan struct{})}
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "127.0.0.1:1"
			rec := httptest.NewRecorder()
			rl.Middleware(okHandler()).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestExtractIPIgnoresForwardingHeaders(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	rl := &RateLimiterMiddleware{logger: logger}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:40000"
	req.Header.Set("X-Forwarded-For", "192.168.1.1")
	req.Header.Set("X-Real-IP", "10.0.0.1")
	assert.Equal(t, "203.0.113.9", rl.extractIP(req))

	req.RemoteAddr = "203.0.113.9"
	assert.Equal(t, "203.0.113.9", rl.extractIP(req))

	req.RemoteAddr = "not-an-address"
	assert.Equal(t, unknownClientIP, rl.extractIP(req))
}

func TestRateLimiterCannotBeDodgedByRotatingForwardedFor(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	rl := NewRateLimiterMiddleware(config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1}, nil, logger)
	defer rl.Stop()

	handler := RealIP(NewProxyTrust(nil, logger))(rl.Middleware(okHandler()))

	codes := make([]int, 0, 3)
	for _, spoofed := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "198.51.100.7:5555"
		req.Header.Set("X-Forwarded-For", spoofed)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}

func TestLocalLimiterSweepDropsIdleBuckets(t *testing.T) {
	l := &localLimiter{rps: rate.Limit(1000), burst: 1}

	allowed, err := l.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)

	time.Sleep(5 * time.Millisecond)
	l.sweep()

	_, exists := l.limiters.Load("10.0.0.1")
	assert.False(t, exists)
}

func TestRequestsPerWindow(t *testing.T) {
	assert.Equal(t, int64(1), requestsPerWindow(0))
	assert.Equal(t, int64(3), requestsPerWindow(2.5))
	assert.Equal(t, int64(10), requestsPerWindow(10))
}
