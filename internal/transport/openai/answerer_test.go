package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/helio-search/helio/internal/domain"
	"github.com/helio-search/helio/internal/domain/search/result"
	"github.com/helio-search/helio/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterAnswerMetrics()
	os.Exit(m.Run())
}

// chatCompletionResponse mirrors the OpenAI-compatible chat completion response.
type chatCompletionResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func completionWith(content string) chatCompletionResponse {
	resp := chatCompletionResponse{
		ID:     "chatcmpl-1",
		Object: "chat.completion",
		Model:  "test-model",
	}
	resp.Choices = append(resp.Choices, struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	}{
		Message: struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}{Role: "assistant", Content: content},
		FinishReason: "stop",
	})
	return resp
}

func TestAnswerer_Answer(t *testing.T) {
	var gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}

		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) == 2 {
			gotPrompt = req.Messages[1].Content
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completionWith("Plans start at $10/month."))
	}))
	defer server.Close()

	a := NewAnswerer(&Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	answer, err := a.Answer(context.Background(), "what is the pricing", []result.Item{
		{ID: "1", Title: "Pricing plans", Snippet: "Plans start at $10 per month."},
	})
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if answer != "Plans start at $10/month." {
		t.Errorf("answer = %q", answer)
	}
	if !strings.Contains(gotPrompt, "what is the pricing") {
		t.Errorf("prompt lacks query: %s", gotPrompt)
	}
	if !strings.Contains(gotPrompt, "1. Pricing plans - Plans start at $10 per month.") {
		t.Errorf("prompt lacks numbered result: %s", gotPrompt)
	}
}

func TestAnswerer_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"detail":"upstream overloaded"}`))
	}))
	defer server.Close()

	a := NewAnswerer(&Config{APIKey: "k", BaseURL: server.URL, Model: "m"})

	_, err := a.Answer(context.Background(), "q", nil)
	if !errors.Is(err, domain.ErrAnswerProviderError) {
		t.Fatalf("err = %v, want ErrAnswerProviderError", err)
	}
	if !strings.Contains(err.Error(), "upstream overloaded") {
		t.Errorf("err lacks detail: %v", err)
	}
}

func TestAnswerer_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletionResponse{ID: "chatcmpl-1", Object: "chat.completion"})
	}))
	defer server.Close()

	a := NewAnswerer(&Config{APIKey: "k", BaseURL: server.URL, Model: "m"})

	_, err := a.Answer(context.Background(), "q", nil)
	if !errors.Is(err, domain.ErrAnswerProviderError) {
		t.Fatalf("err = %v, want ErrAnswerProviderError", err)
	}
}
