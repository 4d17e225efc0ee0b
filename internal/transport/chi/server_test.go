package chi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/helio-search/helio/internal/domain/search/result"
	"github.com/helio-search/helio/internal/stream"
	healthuc "github.com/helio-search/helio/internal/usecase/health"
	searchuc "github.com/helio-search/helio/internal/usecase/search"
)

func testCorpus() []searchuc.Document {
	return []searchuc.Document{
		{
			ID: "pricing", Title: "Pricing plans", URL: "https://docs.example.com/pricing",
			Snippet:   "Plans start at $10 per month.",
			UpdatedAt: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func newTestServer(answer Answerer) *Server {
	if answer == nil {
		answer = StaticAnswerer{}
	}
	return NewServer(
		searchuc.New(testCorpus(), nil),
		answer,
		healthuc.New(nil, nil),
		nil,
	)
}

func parseEvents(t *testing.T, raw []byte) []stream.Event {
	t.Helper()
	dec := stream.NewDecoder()
	var events []stream.Event
	for _, fr := range dec.Feed(raw) {
		if ev, ok := stream.Parse(fr); ok {
			events = append(events, ev)
		}
	}
	if fr, ok := dec.Flush(); ok {
		if ev, parsed := stream.Parse(fr); parsed {
			events = append(events, ev)
		}
	}
	return events
}

func TestStreamSearch_FullStream(t *testing.T) {
	h := newTestServer(nil).Router(nil)

	body := strings.NewReader(`{"query":"pricing","recency_bias":0,"generate_answer":true}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search/stream", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content-type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), ": keep-alive") {
		t.Error("keep-alive comment frame missing")
	}

	events := parseEvents(t, rec.Body.Bytes())
	if len(events) != 4 {
		t.Fatalf("events = %d (%#v), want 4", len(events), events)
	}

	conn, ok := events[0].(stream.Connected)
	if !ok || conn.RequestID == "" {
		t.Errorf("first event = %#v, want connected with request id", events[0])
	}
	res, ok := events[1].(stream.Results)
	if !ok || len(res.Items) != 1 || res.Items[0].ID != "pricing" {
		t.Errorf("second event = %#v", events[1])
	}
	comp, ok := events[2].(stream.CompletionDone)
	if !ok || !strings.Contains(comp.Text, "$10 per month") {
		t.Errorf("third event = %#v", events[2])
	}
	if _, ok := events[3].(stream.Done); !ok {
		t.Errorf("fourth event = %#v, want done", events[3])
	}
}

func TestStreamSearch_NoAnswer(t *testing.T) {
	h := newTestServer(nil).Router(nil)

	body := strings.NewReader(`{"query":"pricing","recency_bias":0}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search/stream", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	events := parseEvents(t, rec.Body.Bytes())
	for _, ev := range events {
		if _, ok := ev.(stream.CompletionDone); ok {
			t.Error("completion emitted without generate_answer")
		}
	}
	if _, ok := events[len(events)-1].(stream.Done); !ok {
		t.Errorf("last event = %#v, want done", events[len(events)-1])
	}
}

type failingAnswerer struct{}

func (failingAnswerer) Answer(context.Context, string, []result.Item) (string, error) {
	return "", errors.New("provider down")
}

func TestStreamSearch_AnswerFailure(t *testing.T) {
	h := newTestServer(failingAnswerer{}).Router(nil)

	body := strings.NewReader(`{"query":"pricing","recency_bias":0,"generate_answer":true}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search/stream", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	events := parseEvents(t, rec.Body.Bytes())
	last := events[len(events)-1]
	ev, ok := last.(stream.ErrorEvent)
	if !ok {
		t.Fatalf("last event = %#v, want error", last)
	}
	if ev.Message == "" {
		t.Error("error event lacks message")
	}
}

func TestStreamSearch_EmptyQuery(t *testing.T) {
	h := newTestServer(nil).Router(nil)

	body := strings.NewReader(`{"query":"  ","recency_bias":0}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search/stream", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestStreamSearch_InvalidBody(t *testing.T) {
	h := newTestServer(nil).Router(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search/stream", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRequestFromWire_RecencyBiasDefault(t *testing.T) {
	req, err := requestFromWire(streamRequest{Query: "q"})
	if err != nil {
		t.Fatalf("requestFromWire: %v", err)
	}
	if req.RecencyBias() != defaultRecencyBias {
		t.Errorf("bias = %v, want server default %v for absent field", req.RecencyBias(), defaultRecencyBias)
	}

	zero := 0.0
	req, err = requestFromWire(streamRequest{Query: "q", RecencyBias: &zero})
	if err != nil {
		t.Fatalf("requestFromWire: %v", err)
	}
	if req.RecencyBias() != 0 {
		t.Errorf("bias = %v, want explicit zero preserved", req.RecencyBias())
	}
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestServer(nil).Router([]string{"secret"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestStreamSearch_RequiresAuth(t *testing.T) {
	h := newTestServer(nil).Router([]string{"secret"})

	body := strings.NewReader(`{"query":"pricing","recency_bias":0}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search/stream", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
