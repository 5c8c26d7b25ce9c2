package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/workhivehq/workhive/internal/cache"
	apperrors "github.com/workhivehq/workhive/pkg/errors"
	"github.com/workhivehq/workhive/pkg/logger"
	"github.com/workhivehq/workhive/pkg/response"
)

// ErrRateLimited is returned when a client exhausts its request budget.
var ErrRateLimited = apperrors.New("RATE_LIMITED", "Too many requests, slow down", 429)

// RateLimitConfig bounds the number of requests per client within a window.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Scope    string
}

// RateLimit enforces a fixed-window limit keyed by client IP, backed by the
// shared cache store. A broken store fails open so the API stays available.
func RateLimit(store cache.Store, cfg RateLimitConfig) gin.HandlerFunc {
	log := logger.WithModule("ratelimit")

	if cfg.Requests <= 0 {
		cfg.Requests = 100
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	scope := cfg.Scope
	if scope == "" {
		scope = "api"
	}

	return func(c *gin.Context) {
		if store == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s", scope, c.ClientIP())
		count, remainingTTL, err := store.IncrementWithTTL(c.Request.Context(), key, cfg.Window)
		if err != nil {
			log.Warn("rate limit store unavailable", zap.Error(err))
			c.Next()
			return
		}

		remaining := cfg.Requests - int(count)
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if count > int64(cfg.Requests) {
			c.Header("Retry-After", strconv.Itoa(int(remainingTTL.Seconds())+1))
			response.Error(c, ErrRateLimited)
			c.Abort()
			return
		}

		c.Next()
	}
}
