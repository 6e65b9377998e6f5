package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/astralremix/api/internal/metrics"
	"github.com/astralremix/api/pkg/response"
)

// RateLimiter is a fixed-window per-user limiter backed by Redis. A nil
// limiter or nil client lets every request through.
type RateLimiter struct {
	redis redis.Cmdable
}

func NewRateLimiter(redisClient redis.Cmdable) *RateLimiter {
	return &RateLimiter{redis: redisClient}
}

// Limit allows maxRequests per window per authenticated user
func (rl *RateLimiter) Limit(keyPrefix string, maxRequests int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rl == nil || rl.redis == nil || maxRequests <= 0 {
			return c.Next()
		}
		userID := GetUserID(c)
		if userID == "" {
			return c.Next()
		}

		key := fmt.Sprintf("ratelimit:%s:%s", keyPrefix, userID)
		ctx := c.UserContext()

		count, err := rl.redis.Incr(ctx, key).Result()
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable, allowing request")
			return c.Next()
		}
		if count == 1 {
			rl.redis.Expire(ctx, key, window)
		}

		if count > int64(maxRequests) {
			ttl, _ := rl.redis.TTL(ctx, key).Result()
			c.Set("Retry-After", strconv.Itoa(int(ttl.Seconds())))
			metrics.APIRateLimitHits.WithLabelValues(keyPrefix).Inc()
			log.Info().Str("user", userID).Str("scope", keyPrefix).Msg("rate limited")
			return response.RateLimited(c)
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(maxRequests-int(count)))
		return c.Next()
	}
}

// RemixLimit limits single remix calls per hour
func (rl *RateLimiter) RemixLimit(maxPerHour int) fiber.Handler {
	return rl.Limit("remix", maxPerHour, time.Hour)
}

// BatchLimit limits batch submissions per hour
func (rl *RateLimiter) BatchLimit(maxPerHour int) fiber.Handler {
	return rl.Limit("batch", maxPerHour, time.Hour)
}

// ShareLimit limits LinkedIn shares per hour
func (rl *RateLimiter) ShareLimit(maxPerHour int) fiber.Handler {
	return rl.Limit("share", maxPerHour, time.Hour)
}
