// Package usage persists per-period search counters (INCRBY + GET with TTL).
package usage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/helio-search/helio/internal/db"
	"github.com/helio-search/helio/internal/domain"
)

// store is the consumer interface for counter operations (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Store counts searches per UTC day and month.
type Store struct {
	store    store
	dailyTTL time.Duration
	monthTTL time.Duration
	now      func() time.Time
}

// New creates a usage store.
// dailyTTL is the TTL for daily keys (recommended: 48h).
// monthTTL is the TTL for monthly keys (recommended: 62 days).
func New(s store, dailyTTL, monthTTL time.Duration) *Store {
	return &Store{
		store:    s,
		dailyTTL: dailyTTL,
		monthTTL: monthTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Increment counts one search against the current day and month.
// TTLs are set only on first write (EXPIRE NX), not reset on repeat.
func (s *Store) Increment(ctx context.Context) error {
	now := s.now()

	dailyKey := dailyKey(now)
	if _, err := s.store.IncrBy(ctx, dailyKey, 1); err != nil {
		return fmt.Errorf("usage INCRBY %s: %w", dailyKey, err)
	}
	if err := s.store.Expire(ctx, dailyKey, s.dailyTTL, true); err != nil {
		return fmt.Errorf("usage EXPIRE %s: %w", dailyKey, err)
	}

	monthlyKey := monthlyKey(now)
	if _, err := s.store.IncrBy(ctx, monthlyKey, 1); err != nil {
		return fmt.Errorf("usage INCRBY %s: %w", monthlyKey, err)
	}
	if err := s.store.Expire(ctx, monthlyKey, s.monthTTL, true); err != nil {
		return fmt.Errorf("usage EXPIRE %s: %w", monthlyKey, err)
	}

	return nil
}

// Totals returns the search counts for the current day and month.
// Missing keys count as zero.
func (s *Store) Totals(ctx context.Context) (daily, monthly int64, err error) {
	now := s.now()

	daily, err = s.get(ctx, dailyKey(now))
	if err != nil {
		return 0, 0, err
	}
	monthly, err = s.get(ctx, monthlyKey(now))
	if err != nil {
		return 0, 0, err
	}
	return daily, monthly, nil
}

func (s *Store) get(ctx context.Context, key string) (int64, error) {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("usage GET %s: %w", key, err)
	}

	val, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("usage GET %s parse: %w", key, err)
	}
	return val, nil
}

func dailyKey(t time.Time) string {
	return fmt.Sprintf("%susage:searches:daily:%s", domain.KeyPrefix, t.Format("2006-01-02"))
}

func monthlyKey(t time.Time) string {
	return fmt.Sprintf("%susage:searches:monthly:%s", domain.KeyPrefix, t.Format("2006-01"))
}
