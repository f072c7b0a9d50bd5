package health

import (
	"context"
	"fmt"
	"os"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	workDir string
	cache   Pinger
}

// New creates a Service. cache can be nil when the preview cache is disabled.
func New(workDir string, cache Pinger) *Service {
	return &Service{workDir: workDir, cache: cache}
}

// Check verifies that the work directory accepts files and the cache answers.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := probeDir(s.workDir); err != nil {
		checks["workdir"] = CheckError
	} else {
		checks["workdir"] = CheckOK
	}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			checks["cache"] = CheckError
		} else {
			checks["cache"] = CheckOK
		}
	}

	status := Healthy
	switch {
	case checks["workdir"] == CheckError:
		status = Unhealthy
	case checks["cache"] == CheckError:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}

// probeDir creates and removes a temporary file in dir.
func probeDir(dir string) error {
	f, err := os.CreateTemp(dir, ".health-*")
	if err != nil {
		return fmt.Errorf("create probe: %w", err)
	}
	name := f.Name()
	_ = f.Close()
	if err := os.Remove(name); err != nil {
		return fmt.Errorf("remove probe: %w", err)
	}
	return nil
}
