// Package sse opens the backend's streaming search endpoint and hands the
// raw frame stream to the session layer.
package sse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/helio-search/helio/internal/domain"
	"github.com/helio-search/helio/internal/domain/search/request"
)

const streamPath = "/api/v1/search/stream"

// Config holds the stream transport settings.
type Config struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client opens streaming search connections over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a stream transport client.
func NewClient(cfg *Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		// No overall timeout: the response body is a long-lived stream.
		hc = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    hc,
		logger:  logger,
	}
}

// Open POSTs the search request and returns the response body as the frame
// stream. The body aborts when ctx is cancelled. Non-2xx statuses are mapped
// to domain errors before any stream is returned.
func (c *Client) Open(ctx context.Context, req *request.Request) (io.ReadCloser, error) {
	payload, err := json.Marshal(toWire(req))
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+streamPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("open search stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, statusError(resp.StatusCode, body)
	}

	c.logger.Debug("search stream opened",
		zap.String("strategy", string(req.Strategy())),
		zap.Duration("connect_time", time.Since(start)),
	)
	return resp.Body, nil
}

// statusError maps a rejected stream open to a domain error.
func statusError(status int, body []byte) error {
	msg := extractMessage(body)
	switch status {
	case http.StatusUnauthorized:
		return fmt.Errorf("stream rejected: %s: %w", msg, domain.ErrUnauthorized)
	case http.StatusPaymentRequired:
		return fmt.Errorf("stream rejected: %s: %w", msg, domain.ErrPaymentRequired)
	case http.StatusTooManyRequests:
		return fmt.Errorf("stream rejected: %s: %w", msg, domain.ErrRateLimited)
	default:
		return fmt.Errorf("stream rejected: status %d: %s", status, msg)
	}
}

// extractMessage pulls the "message" field from a JSON error body, falling
// back to the raw body.
func extractMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Message != "" {
		return parsed.Message
	}
	return string(bytes.TrimSpace(body))
}
