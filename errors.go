package helio

import "github.com/helio-search/helio/internal/domain"

// Sentinel errors returned by the client. Test with errors.Is.
var (
	// ErrEmptyQuery signals a blank search query.
	ErrEmptyQuery = domain.ErrEmptyQuery
	// ErrSearchNotPermitted signals that the usage gate denied a new search.
	ErrSearchNotPermitted = domain.ErrSearchNotPermitted
	// ErrUsageLimitExceeded signals an exhausted search quota.
	ErrUsageLimitExceeded = domain.ErrUsageLimitExceeded
	// ErrPaymentRequired signals an inactive subscription.
	ErrPaymentRequired = domain.ErrPaymentRequired
	// ErrRateLimited signals a rate limit hit on the backend.
	ErrRateLimited = domain.ErrRateLimited
	// ErrUnauthorized signals a rejected API key.
	ErrUnauthorized = domain.ErrUnauthorized
	// ErrStreamEnded signals a stream that closed before any terminal event.
	ErrStreamEnded = domain.ErrStreamEnded
)
