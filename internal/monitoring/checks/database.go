package checks

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/gymadmin/internal/monitoring"
)

const defaultDatabaseTimeout = 2 * time.Second

// Database probes the handle that stores accounts, menu revisions and the
// fallback cache. A saturated pool (every connection in use with callers
// waiting) is reported as degraded rather than down.
func Database(db *gorm.DB, timeout time.Duration) monitoring.Check {
	timeout = chooseTimeout(timeout, defaultDatabaseTimeout)

	return monitoring.NewCheck("database", func(ctx context.Context) monitoring.ProbeResult {
		if db == nil {
			return monitoring.ProbeResult{Status: monitoring.StatusDown, Details: "database not configured"}
		}

		start := time.Now()
		sqlDB, err := db.DB()
		if err != nil {
			return monitoring.ResultFromError(err, time.Since(start))
		}

		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := sqlDB.PingContext(probeCtx); err != nil {
			return monitoring.ResultFromError(err, time.Since(start))
		}

		stats := sqlDB.Stats()
		result := monitoring.ProbeResult{
			Status:   monitoring.StatusUp,
			Duration: time.Since(start),
			Details: fmt.Sprintf("driver=%s open=%d in_use=%d waiting=%d",
				db.Dialector.Name(), stats.OpenConnections, stats.InUse, stats.WaitCount),
		}
		if stats.MaxOpenConnections > 0 && stats.InUse >= stats.MaxOpenConnections && stats.WaitCount > 0 {
			result.Status = monitoring.StatusDegraded
		}
		return result
	})
}

func chooseTimeout(provided, fallback time.Duration) time.Duration {
	if provided <= 0 {
		return fallback
	}
	return provided
}
