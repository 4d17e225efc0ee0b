package sse

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/helio-search/helio/internal/domain"
	"github.com/helio-search/helio/internal/domain/search/filter"
	"github.com/helio-search/helio/internal/domain/search/request"
	"github.com/helio-search/helio/internal/stream"
)

func mustRequest(t *testing.T, recencyBias float64) *request.Request {
	t.Helper()
	req, err := request.New("what is the pricing", "", "", false, recencyBias, true, true, filter.Expression{})
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &req
}

func TestOpen_RequestShape(t *testing.T) {
	var gotBody string
	var gotHeader http.Header
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotHeader = r.Header.Clone()
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"type\":\"done\"}\n\n"))
	}))
	defer srv.Close()

	c := NewClient(&Config{BaseURL: srv.URL, APIKey: "key-123"})
	body, err := c.Open(context.Background(), mustRequest(t, 0))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer body.Close()

	if gotPath != streamPath {
		t.Errorf("path = %q, want %q", gotPath, streamPath)
	}
	if got := gotHeader.Get("Authorization"); got != "Bearer key-123" {
		t.Errorf("authorization = %q", got)
	}
	if got := gotHeader.Get("Accept"); got != "text/event-stream" {
		t.Errorf("accept = %q", got)
	}
	if got := gotHeader.Get("Content-Type"); got != "application/json" {
		t.Errorf("content-type = %q", got)
	}

	// A zero bias must be present on the wire, not omitted: the server
	// treats absence as "use the default", which is not zero.
	if !strings.Contains(gotBody, `"recency_bias":0`) {
		t.Errorf("body lacks explicit zero recency_bias: %s", gotBody)
	}
	if !strings.Contains(gotBody, `"strategy":"hybrid"`) {
		t.Errorf("body lacks defaulted strategy: %s", gotBody)
	}
	if strings.Contains(gotBody, `"filters"`) {
		t.Errorf("empty filters serialized: %s", gotBody)
	}
}

func TestOpen_NonZeroBias(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Write([]byte("data: {\"type\":\"done\"}\n\n"))
	}))
	defer srv.Close()

	c := NewClient(&Config{BaseURL: srv.URL})
	body, err := c.Open(context.Background(), mustRequest(t, 0.7))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	body.Close()

	if !strings.Contains(gotBody, `"recency_bias":0.7`) {
		t.Errorf("body = %s", gotBody)
	}
}

func TestOpen_Filters(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Write([]byte("data: {\"type\":\"done\"}\n\n"))
	}))
	defer srv.Close()

	match, err := filter.NewMatch("category", "docs")
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	gte := 0.5
	bounds, err := filter.NewBounds(nil, &gte, nil, nil)
	if err != nil {
		t.Fatalf("NewBounds: %v", err)
	}
	rng, err := filter.NewRange("score", bounds)
	if err != nil {
		t.Fatalf("NewRange: %v", err)
	}
	expr, err := filter.NewExpression([]filter.Condition{match, rng}, nil)
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	req, err := request.New("q", "", "", false, 0, false, false, expr)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}

	c := NewClient(&Config{BaseURL: srv.URL})
	body, err := c.Open(context.Background(), &req)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	body.Close()

	for _, want := range []string{
		`"must":[`,
		`"key":"category"`,
		`"match":"docs"`,
		`"key":"score"`,
		`"range":{"gte":0.5}`,
	} {
		if !strings.Contains(gotBody, want) {
			t.Errorf("body lacks %s: %s", want, gotBody)
		}
	}
	if strings.Contains(gotBody, `"must_not"`) {
		t.Errorf("empty must_not serialized: %s", gotBody)
	}
}

func TestOpen_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, domain.ErrUnauthorized},
		{http.StatusPaymentRequired, domain.ErrPaymentRequired},
		{http.StatusTooManyRequests, domain.ErrRateLimited},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(`{"message":"nope"}`))
		}))

		c := NewClient(&Config{BaseURL: srv.URL})
		_, err := c.Open(context.Background(), mustRequest(t, 0))
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: err = %v, want %v", tt.status, err, tt.want)
		}
		if err != nil && !strings.Contains(err.Error(), "nope") {
			t.Errorf("status %d: err lacks server message: %v", tt.status, err)
		}
		srv.Close()
	}
}

func TestOpen_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "oops", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(&Config{BaseURL: srv.URL})
	_, err := c.Open(context.Background(), mustRequest(t, 0))
	if err == nil || !strings.Contains(err.Error(), "status 500") {
		t.Errorf("err = %v", err)
	}
}

func TestOpen_StreamReadable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"type\":\"connected\",\"request_id\":\"r1\"}\n\n"))
		w.Write([]byte("data: {\"type\":\"done\"}\n\n"))
	}))
	defer srv.Close()

	c := NewClient(&Config{BaseURL: srv.URL})
	body, err := c.Open(context.Background(), mustRequest(t, 0))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read stream: %v", err)
	}
	dec := stream.NewDecoder()
	var types []string
	for _, fr := range dec.Feed(raw) {
		if ev, ok := stream.Parse(fr); ok {
			types = append(types, eventType(ev))
		}
	}
	if len(types) != 2 || types[0] != "connected" || types[1] != "done" {
		t.Errorf("events = %v", types)
	}
}

func eventType(ev stream.Event) string {
	switch ev.(type) {
	case stream.Connected:
		return "connected"
	case stream.Done:
		return "done"
	default:
		return "other"
	}
}
