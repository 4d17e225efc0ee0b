package gate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/helio-search/helio/internal/domain"
)

// Counter is the persistence interface for search usage counters.
type Counter interface {
	Increment(ctx context.Context) error
	Totals(ctx context.Context) (daily, monthly int64, err error)
}

// Limits caps searches per UTC day and month. Zero means unlimited.
type Limits struct {
	Daily   int64
	Monthly int64
}

// UsageGate permits searches while the account stays entitled and under
// its usage limits.
type UsageGate struct {
	counter  Counter
	limits   Limits
	entitled func(ctx context.Context) (bool, error)
	logger   *zap.Logger
}

// NewUsageGate creates a usage gate over the given counter.
func NewUsageGate(counter Counter, limits Limits, logger *zap.Logger) *UsageGate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UsageGate{
		counter: counter,
		limits:  limits,
		logger:  logger,
	}
}

// WithEntitlement attaches an entitlement check. When it reports false the
// gate denies with the payment-required reason before any limit is consulted.
func (g *UsageGate) WithEntitlement(fn func(ctx context.Context) (bool, error)) *UsageGate {
	g.entitled = fn
	return g
}

// Check reports whether a new search is currently permitted.
func (g *UsageGate) Check(ctx context.Context) (Decision, error) {
	if g.entitled != nil {
		ok, err := g.entitled(ctx)
		if err != nil {
			return Decision{}, fmt.Errorf("entitlement check: %w", err)
		}
		if !ok {
			return Denied(domain.ReasonPaymentRequired), nil
		}
	}

	daily, monthly, err := g.counter.Totals(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("usage totals: %w", err)
	}

	if g.limits.Daily > 0 && daily >= g.limits.Daily {
		g.logger.Debug("daily search limit reached",
			zap.Int64("used", daily),
			zap.Int64("limit", g.limits.Daily),
		)
		return Denied(domain.ReasonUsageLimitExceeded), nil
	}
	if g.limits.Monthly > 0 && monthly >= g.limits.Monthly {
		g.logger.Debug("monthly search limit reached",
			zap.Int64("used", monthly),
			zap.Int64("limit", g.limits.Monthly),
		)
		return Denied(domain.ReasonUsageLimitExceeded), nil
	}

	return Decision{Allowed: true}, nil
}

// RecordSearch counts one search against the usage counters.
func (g *UsageGate) RecordSearch(ctx context.Context) error {
	if err := g.counter.Increment(ctx); err != nil {
		return fmt.Errorf("record search: %w", err)
	}
	return nil
}

var _ Gate = (*UsageGate)(nil)
