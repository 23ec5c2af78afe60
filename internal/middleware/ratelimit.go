package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Muntazir86/short-it/internal/api"
	"github.com/Muntazir86/short-it/internal/auth"
	"github.com/Muntazir86/short-it/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const window = time.Hour

// CounterStore counts requests per key inside the current window. The
// first hit creates the counter with the window's remaining TTL.
type CounterStore interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// RedisCounterStore backs the limiter with shared Redis counters.
type RedisCounterStore struct {
	client *redis.Client
}

func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

func (s *RedisCounterStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// MemoryCounterStore is a single-process fallback for tests and
// Redis-less runs.
type MemoryCounterStore struct {
	mu       sync.Mutex
	counters map[string]*memoryCounter
}

type memoryCounter struct {
	count     int64
	expiresAt time.Time
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{counters: make(map[string]*memoryCounter)}
}

func (s *MemoryCounterStore) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	c, ok := s.counters[key]
	if !ok || now.After(c.expiresAt) {
		c = &memoryCounter{expiresAt: now.Add(ttl)}
		s.counters[key] = c
	}
	c.count++

	// Expired keys from past windows accumulate otherwise.
	for k, v := range s.counters {
		if now.After(v.expiresAt) {
			delete(s.counters, k)
		}
	}

	return c.count, nil
}

// RateLimiter enforces fixed-window quotas on clock-aligned hour
// buckets. Anonymous callers are keyed by IP, authenticated ones by
// user id; premium accounts skip the general tiers and are only
// metered by the premium quota on the routes that carry it.
type RateLimiter struct {
	store  CounterStore
	cfg    config.RateLimitConfig
	logger *zap.Logger
	now    func() time.Time
}

func NewRateLimiter(store CounterStore, cfg config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		store:  store,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Middleware enforces the general tiers: anonymous callers by IP,
// authenticated callers by user id. Premium accounts pass through
// uncounted; only Premium meters them, on the routes it guards.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if caller, ok := auth.FromContext(c.Request.Context()); ok && caller.IsPremium {
			c.Next()
			return
		}

		key, limit := rl.identify(c)
		rl.limit(c, key, limit)
	}
}

// Premium applies the premium quota on privileged mutating routes. It
// runs after Required, so a missing identity just passes through.
func (rl *RateLimiter) Premium() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := auth.FromContext(c.Request.Context())
		if !ok {
			c.Next()
			return
		}
		rl.limit(c, "user:"+caller.ID, rl.cfg.PremiumPerHour)
	}
}

func (rl *RateLimiter) limit(c *gin.Context, key string, limit int) {
	now := rl.now()
	windowStart := now.Truncate(window)
	windowEnd := windowStart.Add(window)

	storeKey := fmt.Sprintf("ratelimit:%s:%d", key, windowStart.Unix())
	count, err := rl.store.Incr(c.Request.Context(), storeKey, windowEnd.Sub(now))
	if err != nil {
		// The limiter never takes the service down with it.
		rl.logger.Error("rate limit store unavailable", zap.Error(err))
		c.Next()
		return
	}

	remaining := int64(limit) - count
	if remaining < 0 {
		remaining = 0
	}
	c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(windowEnd.Unix(), 10))

	if count > int64(limit) {
		api.Fail(c, http.StatusTooManyRequests, api.CodeRateLimitExceeded, "rate limit exceeded, try again later")
		return
	}

	c.Next()
}

func (rl *RateLimiter) identify(c *gin.Context) (string, int) {
	if caller, ok := auth.FromContext(c.Request.Context()); ok {
		return "user:" + caller.ID, rl.cfg.AuthenticatedPerHour
	}
	return "ip:" + c.ClientIP(), rl.cfg.AnonymousPerHour
}
