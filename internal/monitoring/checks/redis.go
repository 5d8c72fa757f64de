package checks

import (
	"context"
	"time"

	"github.com/charlesng35/gymadmin/internal/monitoring"
)

const defaultRedisTimeout = 2 * time.Second

// Pinger is implemented by cache stores backed by a network server.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Cache returns a readiness probe for a networked cache. An unreachable cache
// degrades the service: sessions and rate limits depend on it.
func Cache(client Pinger, timeout time.Duration) monitoring.Check {
	return monitoring.NewCheck("cache", func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()
		if client == nil {
			return monitoring.ProbeResult{Status: monitoring.StatusUp, Details: "database cache"}
		}

		probeCtx, cancel := context.WithTimeout(ctx, chooseTimeout(timeout, defaultRedisTimeout))
		defer cancel()

		result := monitoring.ResultFromError(client.Ping(probeCtx), time.Since(start))
		if result.Status == monitoring.StatusDown {
			result.Status = monitoring.StatusDegraded
		}
		return result
	})
}
