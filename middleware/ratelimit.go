package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lingua/api-gateway/config"
	"github.com/lingua/api-gateway/gateway"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// staleAfter is how long an idle in-memory bucket survives cleanup
const staleAfter = 10 * time.Minute

// RateLimiter limits requests per client IP. It counts in Redis when Redis is reachable
// at startup and falls back to in-memory token buckets otherwise.
type RateLimiter struct {
	config      config.RateLimitConfig
	logger      *zap.Logger
	redisClient *redis.Client

	mu      sync.Mutex
	buckets map[string]*bucket

	stop     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(cfg *config.Config, logger *zap.Logger) (*RateLimiter, error) {
	rl := &RateLimiter{
		config:  cfg.RateLimit,
		logger:  logger,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}

	if cfg.Redis.Host != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unavailable, using in-memory rate limiting",
				zap.String("addr", client.Options().Addr),
				zap.Error(err),
			)
			_ = client.Close()
		} else {
			rl.redisClient = client
		}
	}

	if rl.redisClient == nil {
		go rl.cleanupLoop(cfg.RateLimit.CleanupInterval)
	}

	return rl, nil
}

// Close stops background work and releases the Redis connection
func (rl *RateLimiter) Close() error {
	rl.stopOnce.Do(func() { close(rl.stop) })
	if rl.redisClient != nil {
		return rl.redisClient.Close()
	}
	return nil
}

// Middleware returns a Gin middleware for rate limiting
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.config.Enabled {
			c.Next()
			return
		}

		clientID := "ip:" + c.ClientIP()
		allowed, remaining, resetTime, err := rl.allow(c.Request.Context(), clientID)
		if err != nil {
			// A broken limiter must not take the gateway down with it.
			rl.logger.Warn("Rate limiter error", zap.String("client", clientID), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.RequestsPerMin))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			retryAfter := int(time.Until(resetTime).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			resp := gateway.ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			c.Data(resp.Status, resp.Header.Get("Content-Type"), resp.Data)
			c.Abort()
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) allow(ctx context.Context, clientID string) (bool, int, time.Time, error) {
	if rl.redisClient != nil {
		return rl.allowRedis(ctx, clientID)
	}
	allowed, remaining, reset := rl.allowLocal(clientID, time.Now())
	return allowed, remaining, reset, nil
}

// allowRedis counts requests in a fixed one-minute window shared by all gateway instances
func (rl *RateLimiter) allowRedis(ctx context.Context, clientID string) (bool, int, time.Time, error) {
	window := time.Minute
	windowStart := time.Now().Truncate(window)
	resetTime := windowStart.Add(window)
	key := fmt.Sprintf("ratelimit:%s:%d", clientID, windowStart.Unix())

	pipe := rl.redisClient.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireAt(ctx, key, resetTime)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	limit := int64(rl.config.RequestsPerMin)
	count := incr.Val()
	remaining := int(limit - count)
	if remaining < 0 {
		remaining = 0
	}

	return count <= limit, remaining, resetTime, nil
}

// allowLocal takes a token from the client's bucket, refilled at RequestsPerMin per minute
func (rl *RateLimiter) allowLocal(clientID string, now time.Time) (bool, int, time.Time) {
	rl.mu.Lock()
	b, ok := rl.buckets[clientID]
	if !ok {
		perSecond := rate.Limit(float64(rl.config.RequestsPerMin) / 60)
		b = &bucket{limiter: rate.NewLimiter(perSecond, rl.config.BurstSize)}
		rl.buckets[clientID] = b
	}
	b.lastSeen = now
	rl.mu.Unlock()

	allowed := b.limiter.AllowN(now, 1)
	tokens := b.limiter.TokensAt(now)
	remaining := int(tokens)
	if remaining < 0 {
		remaining = 0
	}

	// Time until the bucket is full again.
	missing := float64(rl.config.BurstSize) - tokens
	reset := now
	if missing > 0 {
		reset = now.Add(time.Duration(missing / float64(b.limiter.Limit()) * float64(time.Second)))
	}

	return allowed, remaining, reset
}

func (rl *RateLimiter) cleanupLoop(interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.cleanup(now)
		}
	}
}

// cleanup drops buckets that have been idle for staleAfter
func (rl *RateLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for clientID, b := range rl.buckets {
		if now.Sub(b.lastSeen) > staleAfter {
			delete(rl.buckets, clientID)
		}
	}
}
