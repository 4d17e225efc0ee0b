// Package openai generates answers from search results via an
// OpenAI-compatible chat completion API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/helio-search/helio/internal/domain"
	"github.com/helio-search/helio/internal/domain/search/result"
	"github.com/helio-search/helio/internal/metrics"
)

const systemPrompt = "You answer user questions using only the provided search results. " +
	"Be concise. If the results do not contain the answer, say so."

// Answerer generates grounded answers using the OpenAI-compatible API.
type Answerer struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// Config holds the answer provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewAnswerer creates an OpenAI-compatible answer provider.
func NewAnswerer(cfg *Config) *Answerer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Answerer{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: logger,
	}
}

// Answer produces an answer for query grounded in items.
func (a *Answerer) Answer(ctx context.Context, query string, items []result.Item) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(query, items)},
		},
	}

	start := time.Now()

	resp, err := a.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.AnswerRequestsTotal.WithLabelValues(a.model, "error").Inc()
		return "", parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.AnswerRequestsTotal.WithLabelValues(a.model, "error").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrAnswerProviderError)
	}

	metrics.AnswerRequestsTotal.WithLabelValues(a.model, "success").Inc()
	metrics.AnswerRequestDuration.WithLabelValues(a.model).Observe(duration.Seconds())

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	a.logger.Debug("answer generated",
		zap.String("model", a.model),
		zap.Int("result_count", len(items)),
		zap.Duration("duration", duration),
	)
	return answer, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (a *Answerer) HealthCheck(ctx context.Context) error {
	if _, err := a.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// buildPrompt renders the query and numbered result snippets for the model.
func buildPrompt(query string, items []result.Item) string {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(query)
	b.WriteString("\n\nSearch results:\n")
	for i, it := range items {
		fmt.Fprintf(&b, "%d. %s", i+1, it.Title)
		if it.Snippet != "" {
			b.WriteString(" - ")
			b.WriteString(it.Snippet)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrAnswerProviderError.
func parseAPIError(err error) error {
	wrap := domain.ErrAnswerProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("answer API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("answer API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("answer API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("answer request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
