package helio

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/helio-search/helio/internal/gate"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	redisAddrs    []string
	redisPassword string
	readiness     time.Duration

	limits     gate.Limits
	dailyTTL   time.Duration
	monthlyTTL time.Duration
	entitled   func(ctx context.Context) (bool, error)
	gate       gate.Gate

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithBaseURL sets the search backend base URL.
// Defaults to http://localhost:8080.
func WithBaseURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseURL = url
	})
}

// WithAPIKey sets the bearer token sent on every stream open.
func WithAPIKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = key
	})
}

// WithHTTPClient overrides the HTTP client used for streaming. The default
// client carries no overall timeout because response bodies are long-lived
// streams.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithRedis enables usage counting against a Redis instance. Combined with
// WithUsageLimits it turns on the usage gate; without limits searches are
// counted but never denied.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.redisAddrs = []string{addr}
		c.redisPassword = password
	})
}

// WithUsageLimits caps searches per UTC day and month. Zero means unlimited.
// Requires WithRedis (or WithGate) to take effect.
func WithUsageLimits(daily, monthly int64) Option {
	return optionFunc(func(c *clientConfig) {
		c.limits = gate.Limits{Daily: daily, Monthly: monthly}
	})
}

// WithEntitlement attaches a subscription check to the usage gate. When it
// reports false, sends are denied with ErrPaymentRequired before any limit
// is consulted.
func WithEntitlement(fn func(ctx context.Context) (bool, error)) Option {
	return optionFunc(func(c *clientConfig) {
		c.entitled = fn
	})
}

// WithGate installs a custom usage gate, replacing the Redis-backed one.
func WithGate(g gate.Gate) Option {
	return optionFunc(func(c *clientConfig) {
		c.gate = g
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
