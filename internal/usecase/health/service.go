// Package health aggregates component health checks for the simulator.
package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
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

// DBPinger checks store connectivity.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// AnswerChecker verifies the answer provider is reachable.
type AnswerChecker interface {
	HealthCheck(ctx context.Context) error
}

// Service coordinates health checks.
type Service struct {
	db     DBPinger
	answer AnswerChecker
}

// New creates a Service. Either dependency can be nil; its check is skipped.
func New(db DBPinger, answer AnswerChecker) *Service {
	return &Service{db: db, answer: answer}
}

// Check runs health checks against all configured components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			checks["database"] = CheckError
		} else {
			checks["database"] = CheckOK
		}
	}

	if s.answer != nil {
		if err := s.answer.HealthCheck(ctx); err != nil {
			checks["answer"] = CheckError
		} else {
			checks["answer"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
