// Package gate answers whether a new search is currently permitted.
package gate

import (
	"context"

	"github.com/helio-search/helio/internal/domain"
)

// Decision is the gate's answer for one check.
type Decision struct {
	Allowed bool
	// Reason is machine-readable and set only when Allowed is false
	// (domain.ReasonUsageLimitExceeded or domain.ReasonPaymentRequired).
	Reason string
}

// Gate is consulted before every search and re-consulted after every
// terminal outcome.
type Gate interface {
	Check(ctx context.Context) (Decision, error)
	RecordSearch(ctx context.Context) error
}

// AllowAll is the default gate: every search is permitted, nothing is counted.
type AllowAll struct{}

// Check always permits.
func (AllowAll) Check(context.Context) (Decision, error) {
	return Decision{Allowed: true}, nil
}

// RecordSearch is a no-op.
func (AllowAll) RecordSearch(context.Context) error { return nil }

var _ Gate = AllowAll{}

// Denied builds a denial decision for the given reason.
func Denied(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Err converts a denial into the typed domain error. Allowed decisions
// return nil.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return domain.NewGateDenied(d.Reason)
}
