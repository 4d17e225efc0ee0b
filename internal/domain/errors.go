package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery signals a blank search query.
	ErrEmptyQuery = errors.New("query is empty")
	// ErrSearchNotPermitted signals that the usage gate denied a new search.
	ErrSearchNotPermitted = errors.New("search not permitted")
	// ErrUsageLimitExceeded signals an exhausted search quota.
	ErrUsageLimitExceeded = errors.New("usage limit exceeded")
	// ErrPaymentRequired signals an inactive subscription.
	ErrPaymentRequired = errors.New("payment required")
	// ErrRateLimited signals a rate limit hit on the backend.
	ErrRateLimited = errors.New("rate limited")
	// ErrUnauthorized signals a rejected API key.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrStreamEnded signals a stream that closed before any terminal event.
	ErrStreamEnded = errors.New("stream ended before completion")
	// ErrAnswerProviderError signals an answer generation provider failure.
	ErrAnswerProviderError = errors.New("answer provider error")
)

// Gate denial reasons, as reported by the usage gate.
const (
	ReasonUsageLimitExceeded = "usage_limit_exceeded"
	ReasonPaymentRequired    = "payment_required"
)

// GateDeniedError wraps ErrSearchNotPermitted with the machine-readable reason.
type GateDeniedError struct {
	Reason string
}

func (e *GateDeniedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrSearchNotPermitted.Error(), e.Reason)
}

func (e *GateDeniedError) Unwrap() []error {
	errs := []error{ErrSearchNotPermitted}
	switch e.Reason {
	case ReasonUsageLimitExceeded:
		errs = append(errs, ErrUsageLimitExceeded)
	case ReasonPaymentRequired:
		errs = append(errs, ErrPaymentRequired)
	}
	return errs
}

// NewGateDenied creates a gate denial error for the given reason.
func NewGateDenied(reason string) error {
	return &GateDeniedError{Reason: reason}
}
