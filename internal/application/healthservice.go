package application

import (
	"context"
	"slices"
	"time"
)

// healthCheckTimeout bounds each individual dependency check.
const healthCheckTimeout = 2 * time.Second

// HealthChecker reports whether one runtime dependency is usable.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// HealthCheckFunc adapts a function to the HealthChecker interface.
type HealthCheckFunc func(ctx context.Context) error

// Check calls f(ctx).
func (f HealthCheckFunc) Check(ctx context.Context) error {
	return f(ctx)
}

// HealthReport is the outcome of one health evaluation. Checks maps each
// dependency name to "ok" or the error it reported.
type HealthReport struct {
	Healthy bool
	Checks  map[string]string
}

// HealthService evaluates the registered dependency checks for the ops
// endpoint. The set of checks is fixed at construction.
type HealthService struct {
	checks map[string]HealthChecker
}

// NewHealthService creates a new HealthService over the named checks.
func NewHealthService(checks map[string]HealthChecker) *HealthService {
	return &HealthService{checks: checks}
}

// Check runs every registered check in name order and aggregates the result.
// The report is healthy only when every check passes.
func (s *HealthService) Check(ctx context.Context) HealthReport {
	report := HealthReport{
		Healthy: true,
		Checks:  make(map[string]string, len(s.checks)),
	}

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		err := s.checks[name].Check(checkCtx)
		cancel()

		if err != nil {
			report.Healthy = false
			report.Checks[name] = err.Error()
			continue
		}
		report.Checks[name] = "ok"
	}

	return report
}
