package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"collection-engine/internal/config"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const unknownClientIP = "unknown"

type limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimiterMiddleware limits requests per client IP. With a Redis client the counters
// are shared between replicas, otherwise each process keeps its own token buckets.
type RateLimiterMiddleware struct {
	cfg      config.RateLimitConfig
	limiter  limiter
	logger   *slog.Logger
	stop     chan struct{}
	stopOnce sync.Once
}

func NewRateLimiterMiddleware(cfg config.RateLimitConfig, redisClient *redis.Client, logger *slog.Logger) *RateLimiterMiddleware {
	rl := &RateLimiterMiddleware{
		cfg:    cfg,
		logger: logger.With("component", "RateLimiter"),
		stop:   make(chan struct{}),
	}

	switch {
	case !cfg.Enabled:
		rl.logger.Info("Rate limiting is disabled via configuration.")
	case redisClient != nil:
		rl.limiter = &redisLimiter{client: redisClient, limit: requestsPerWindow(cfg.RPS), window: time.Second}
		rl.logger.Info("Rate limiter configured with Redis", "rps", cfg.RPS)
	default:
		local := &localLimiter{rps: rate.Limit(cfg.RPS), burst: cfg.Burst}
		rl.limiter = local
		go local.cleanup(rl.stop, 10*time.Minute)
		rl.logger.Info("Rate limiter configured in-process", "rps", cfg.RPS, "burst", cfg.Burst)
	}

	return rl
}

func requestsPerWindow(rps float64) int64 {
	return max(int64(math.Ceil(rps)), 1)
}

// Stop ends the background cleanup of in-process limiters.
func (rl *RateLimiterMiddleware) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// extractIP keys on the connection address only. Forwarding headers are resolved earlier
// by RealIP, and only for trusted proxies.
func (rl *RateLimiterMiddleware) extractIP(r *http.Request) string {
	if ip := peerIP(r.RemoteAddr); ip != nil {
		return ip.String()
	}

	rl.logger.Warn("Could not determine client IP for rate limiting", "remoteAddr", r.RemoteAddr)
	return unknownClientIP
}

func (rl *RateLimiterMiddleware) Middleware(next http.Handler) http.Handler {
	if rl.limiter == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := rl.extractIP(r)
		if ip == unknownClientIP {
			rl.logger.Error("Blocking request due to unknown client IP for rate limiting")
			writeError(w, http.StatusForbidden, "Forbidden")
			return
		}

		allowed, err := rl.limiter.Allow(r.Context(), ip)
		if err != nil {
			rl.logger.ErrorContext(r.Context(), "Rate limit check failed; allowing request", "ip", ip, slog.Any("error", err))
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			rl.logger.WarnContext(r.Context(), "Rate limit exceeded", "ip", ip)
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

type localLimiter struct {
	limiters sync.Map
	rps      rate.Limit
	burst    int
}

func (l *localLimiter) Allow(_ context.Context, key string) (bool, error) {
	v, _ := l.limiters.LoadOrStore(key, rate.NewLimiter(l.rps, l.burst))
	return v.(*rate.Limiter).Allow(), nil
}

// cleanup drops buckets that have refilled completely, i.e. clients that went quiet.
func (l *localLimiter) cleanup(stop <-chan struct{}, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

func (l *localLimiter) sweep() {
	l.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(l.burst) {
			l.limiters.Delete(key)
		}
		return true
	})
}

type redisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// Allow counts requests in a fixed window keyed by IP.
func (l *redisLimiter) Allow(ctx context.Context, ip string) (bool, error) {
	key := fmt.Sprintf("ratelimit:%s", ip)

	pipe := l.client.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	ttlCmd := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis pipeline: %w", err)
	}

	count, err := incrCmd.Result()
	if err != nil {
		return false, fmt.Errorf("redis incr: %w", err)
	}

	// A negative TTL means the key was just created or lost its expiry.
	if ttl, err := ttlCmd.Result(); err != nil || ttl < 0 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, fmt.Errorf("redis expire: %w", err)
		}
	}

	return count <= l.limit, nil
}
