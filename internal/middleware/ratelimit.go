package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-paper/internal/config"
	"github.com/stemsi/exstem-paper/internal/logger"
	"github.com/stemsi/exstem-paper/internal/response"
)

// RateLimiter is a fixed-window limiter backed by Redis, shared by every
// server instance. Callers are keyed by bearer token, or by IP without one.
type RateLimiter struct {
	rdb    *redis.Client
	rate   int
	window time.Duration
	log    zerolog.Logger
	now    func() time.Time
}

// NewRateLimiter creates a RateLimiter allowing rate requests per window.
func NewRateLimiter(rdb *redis.Client, rate int, window time.Duration, log zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		rdb:    rdb,
		rate:   rate,
		window: window,
		log:    logger.Component(log, "rate_limiter"),
		now:    time.Now,
	}
}

// Middleware returns a Gin middleware enforcing the limit. A rate of zero
// disables limiting.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.rate <= 0 {
			c.Next()
			return
		}

		window := rl.now().UnixNano() / int64(rl.window)
		key := config.CacheKey.RenderRateKey(callerKey(c), window)

		pipe := rl.rdb.TxPipeline()
		incr := pipe.Incr(c.Request.Context(), key)
		pipe.Expire(c.Request.Context(), key, rl.window)
		if _, err := pipe.Exec(c.Request.Context()); err != nil {
			// Fail open.
			rl.log.Warn().Err(err).Msg("Rate limit check failed")
			c.Next()
			return
		}

		remaining := rl.rate - int(incr.Val())
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.rate))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if incr.Val() > int64(rl.rate) {
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}

func callerKey(c *gin.Context) string {
	if token := GetToken(c); token != "" {
		sum := sha256.Sum256([]byte(token))
		return hex.EncodeToString(sum[:8])
	}
	return c.ClientIP()
}
