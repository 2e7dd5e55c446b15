package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/paypoint/internal/shared/logger"
	"github.com/orris-inc/paypoint/internal/shared/utils"
)

// RateLimiter provides Redis-backed IP rate limiting using a fixed-window counter.
// Each IP gets a counter key with TTL equal to the window duration, shared by
// every instance.
type RateLimiter struct {
	redisClient *redis.Client
	name        string
	limit       int
	window      time.Duration
	logger      logger.Interface
}

// NewRateLimiter creates a limiter allowing limit requests per client IP per window.
// name separates the counters of different routes.
func NewRateLimiter(redisClient *redis.Client, name string, limit int, window time.Duration, logger logger.Interface) *RateLimiter {
	return &RateLimiter{
		redisClient: redisClient,
		name:        name,
		limit:       limit,
		window:      window,
		logger:      logger,
	}
}

// Limit returns a Gin middleware that enforces the rate limit per client IP.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		windowBucket := time.Now().Unix() / int64(rl.window.Seconds())
		key := fmt.Sprintf("paypoint:ratelimit:%s:%s:%d", rl.name, clientIP, windowBucket)

		ctx := c.Request.Context()

		count, err := rl.redisClient.Incr(ctx, key).Result()
		if err != nil {
			// Redis outages must not block checkout.
			rl.logger.Warnw("rate limiter unavailable, allowing request", "error", err, "client_ip", clientIP)
			c.Next()
			return
		}

		if count == 1 {
			rl.redisClient.Expire(ctx, key, rl.window+time.Second)
		}

		if count > int64(rl.limit) {
			c.Header("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
