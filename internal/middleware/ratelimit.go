package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/gymadmin/internal/cache"
	"github.com/charlesng35/gymadmin/pkg/errors"
	"github.com/charlesng35/gymadmin/pkg/logger"
	"github.com/charlesng35/gymadmin/pkg/metrics"
	"github.com/charlesng35/gymadmin/pkg/response"
)

// RateLimit limits requests per (clientIP, route) within a fixed window. The
// counters live in store so every instance shares them. A store failure lets
// the request through.
func RateLimit(store cache.Store, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || maxRequests <= 0 || window <= 0 {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		key := "ratelimit:" + c.ClientIP() + "|" + route

		count, ttl, err := store.IncrementWithTTL(c.Request.Context(), key, window)
		if err != nil {
			logger.WithModule("ratelimit").Warn("counter unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		remaining := maxRequests - int(count)
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(int(ttl.Seconds())))

		if int(count) > maxRequests {
			c.Header("Retry-After", strconv.Itoa(int(ttl.Seconds())+1))
			metrics.RateLimited.WithLabelValues(route).Inc()
			response.Abort(c, errors.ErrRateLimit)
			return
		}

		c.Next()
	}
}
