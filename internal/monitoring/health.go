package monitoring

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ProbeStatus encodes the outcome of a health probe.
type ProbeStatus string

const (
	StatusUp       ProbeStatus = "up"
	StatusDown     ProbeStatus = "down"
	StatusDegraded ProbeStatus = "degraded"
)

// ProbeResult captures a single dependency check outcome.
type ProbeResult struct {
	Component string        `json:"component"`
	Status    ProbeStatus   `json:"status"`
	Details   string        `json:"details,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// HealthReport aggregates probe results.
type HealthReport struct {
	Success bool          `json:"success"`
	Status  ProbeStatus   `json:"status"`
	Checks  []ProbeResult `json:"checks"`
}

// Check encapsulates a single dependency probe.
type Check struct {
	Name string
	Run  func(ctx context.Context) ProbeResult
}

// NewCheck constructs a health check with the provided name and function.
func NewCheck(name string, fn func(ctx context.Context) ProbeResult) Check {
	if fn == nil {
		fn = func(context.Context) ProbeResult {
			return ProbeResult{Status: StatusDown, Details: "probe not implemented"}
		}
	}
	return Check{Name: name, Run: fn}
}

// HealthManager runs the readiness probes registered at start-up. Liveness
// needs no probes: a process that can answer is alive.
type HealthManager struct {
	checks []Check
}

// NewHealthManager constructs a manager with the given probes.
func NewHealthManager(checks ...Check) *HealthManager {
	m := &HealthManager{}
	for _, check := range checks {
		m.Register(check)
	}
	return m
}

// Register appends a readiness probe. Unnamed probes are ignored.
func (m *HealthManager) Register(check Check) {
	if check.Name == "" || check.Run == nil {
		return
	}
	m.checks = append(m.checks, check)
}

// Liveness reports the process as up.
func (m *HealthManager) Liveness() HealthReport {
	return HealthReport{Success: true, Status: StatusUp, Checks: []ProbeResult{}}
}

// Readiness runs every registered probe concurrently and reports them in
// registration order. The worst status decides the overall result.
func (m *HealthManager) Readiness(ctx context.Context) HealthReport {
	results := make([]ProbeResult, len(m.checks))

	var wg sync.WaitGroup
	for i, check := range m.checks {
		wg.Add(1)
		go func(i int, check Check) {
			defer wg.Done()
			results[i] = runCheck(ctx, check)
		}(i, check)
	}
	wg.Wait()

	report := HealthReport{Status: StatusUp, Checks: results}
	for _, result := range results {
		report.Status = worse(report.Status, result.Status)
	}
	report.Success = report.Status == StatusUp
	return report
}

var statusRank = map[ProbeStatus]int{StatusUp: 0, StatusDegraded: 1, StatusDown: 2}

func worse(a, b ProbeStatus) ProbeStatus {
	if statusRank[b] > statusRank[a] {
		return b
	}
	return a
}

func runCheck(ctx context.Context, check Check) (result ProbeResult) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			details := "panic recovered"
			switch v := rec.(type) {
			case string:
				details = v
			case error:
				details = v.Error()
			}
			result = ProbeResult{Status: StatusDown, Details: details, Duration: time.Since(start)}
		}
		result.Component = check.Name
	}()

	result = check.Run(ctx)
	if result.Status == "" {
		result.Status = StatusDown
	}
	if result.Duration == 0 {
		result.Duration = time.Since(start)
	}
	return result
}

// ResultFromError converts an error into a ProbeResult. Timeouts degrade
// rather than fail.
func ResultFromError(err error, duration time.Duration) ProbeResult {
	if duration < 0 {
		duration = 0
	}
	if err == nil {
		return ProbeResult{Status: StatusUp, Duration: duration}
	}

	status := StatusDown
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		status = StatusDegraded
	}
	return ProbeResult{Status: status, Details: err.Error(), Duration: duration}
}
