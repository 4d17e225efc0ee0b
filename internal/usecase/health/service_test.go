package health

import (
	"context"
	"errors"
	"testing"
)

type pinger func(context.Context) error

func (p pinger) Ping(ctx context.Context) error { return p(ctx) }

type checker func(context.Context) error

func (c checker) HealthCheck(ctx context.Context) error { return c(ctx) }

func TestCheck_AllHealthy(t *testing.T) {
	s := New(
		pinger(func(context.Context) error { return nil }),
		checker(func(context.Context) error { return nil }),
	)

	report := s.Check(context.Background())
	if report.Status != Healthy {
		t.Errorf("status = %q, want ok", report.Status)
	}
	if report.Checks["database"] != CheckOK || report.Checks["answer"] != CheckOK {
		t.Errorf("checks = %v", report.Checks)
	}
}

func TestCheck_DegradedOnFailure(t *testing.T) {
	s := New(
		pinger(func(context.Context) error { return errors.New("down") }),
		checker(func(context.Context) error { return nil }),
	)

	report := s.Check(context.Background())
	if report.Status != Degraded {
		t.Errorf("status = %q, want degraded", report.Status)
	}
	if report.Checks["database"] != CheckError {
		t.Errorf("checks = %v", report.Checks)
	}
}

func TestCheck_NilDependenciesSkipped(t *testing.T) {
	s := New(nil, nil)

	report := s.Check(context.Background())
	if report.Status != Healthy {
		t.Errorf("status = %q, want ok with no checks", report.Status)
	}
	if len(report.Checks) != 0 {
		t.Errorf("checks = %v, want empty", report.Checks)
	}
}
