package helio

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/helio-search/helio/internal/db"
	"github.com/helio-search/helio/internal/db/redis"
	"github.com/helio-search/helio/internal/gate"
	"github.com/helio-search/helio/internal/repository/usage"
	"github.com/helio-search/helio/internal/session"
	"github.com/helio-search/helio/internal/transport/sse"
)

const (
	defaultBaseURL         = "http://localhost:8080"
	defaultReadiness       = 10 * time.Second
	defaultDailyUsageTTL   = 48 * time.Hour
	defaultMonthlyUsageTTL = 62 * 24 * time.Hour
)

// Client is the entry point for streaming search sessions. Create one with
// New, then open sessions with NewSession. A Client is safe for concurrent
// use; each Session runs one search at a time.
type Client struct {
	streamer session.Streamer
	gate     gate.Gate
	store    db.Store
	logger   *zap.Logger
	obs      *observer
}

// New creates a Client. ctx bounds the startup work (the usage store
// readiness wait when Redis is configured).
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := clientConfig{
		baseURL:    defaultBaseURL,
		readiness:  defaultReadiness,
		dailyTTL:   defaultDailyUsageTTL,
		monthlyTTL: defaultMonthlyUsageTTL,
	}
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	obs, err := newObserver(logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	c := &Client{
		streamer: sse.NewClient(&sse.Config{
			BaseURL:    cfg.baseURL,
			APIKey:     cfg.apiKey,
			HTTPClient: cfg.httpClient,
			Logger:     logger,
		}),
		gate:   cfg.gate,
		logger: logger,
		obs:    obs,
	}

	if c.gate == nil && len(cfg.redisAddrs) > 0 {
		store, err := redis.NewStore(redis.Config{
			Addrs:    cfg.redisAddrs,
			Password: cfg.redisPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("helio: connect usage store: %w", err)
		}
		if err := store.WaitForReady(ctx, cfg.readiness); err != nil {
			store.Close()
			return nil, fmt.Errorf("helio: usage store not ready: %w", err)
		}
		c.store = store

		counter := usage.New(store, cfg.dailyTTL, cfg.monthlyTTL)
		g := gate.NewUsageGate(counter, cfg.limits, logger)
		if cfg.entitled != nil {
			g.WithEntitlement(cfg.entitled)
		}
		c.gate = g
	}

	return c, nil
}

// CheckGate reports whether the usage gate currently permits searching.
// Clients without a gate always permit.
func (c *Client) CheckGate(ctx context.Context) (GateDecision, error) {
	start := time.Now()
	g := c.gate
	if g == nil {
		g = gate.AllowAll{}
	}
	dec, err := g.Check(ctx)
	c.obs.observe("gate_check", start, err)
	if err != nil {
		return GateDecision{}, err
	}
	return GateDecision{Allowed: dec.Allowed, Reason: dec.Reason}, nil
}

// Close releases the client's resources. The underlying HTTP client is left
// to the caller when one was injected.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}
