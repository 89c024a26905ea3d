//-------------------------------------------------------------------------
//
// pgEdge Search Server
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pgEdge/pgedge-search-server/internal/config"
	"github.com/pgEdge/pgedge-search-server/internal/engine"
	"github.com/pgEdge/pgedge-search-server/internal/morph"
)

// mockEngine implements SearchEngine for testing.
type mockEngine struct {
	response *engine.Response
	err      error
	queries  []string
}

func (m *mockEngine) Execute(_ context.Context, query string) (*engine.Response, error) {
	m.queries = append(m.queries, query)
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *mockEngine) Info() []engine.LanguageInfo {
	return []engine.LanguageInfo{
		{Name: "english", Code: "en", Model: "topic", Documents: 5, Vocabulary: 12, Topics: 5},
		{Name: "spanish", Code: "es", Model: "topic", Documents: 2, Vocabulary: 3, Topics: 2},
	}
}

func (m *mockEngine) Close() error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			ListenAddress: "127.0.0.1",
			Port:          8080,
		},
	}
}

func testServer(eng *mockEngine) *Server {
	if eng == nil {
		eng = &mockEngine{}
	}
	return New(testConfig(), eng, nil)
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	w := httptest.NewRecorder()

	srv.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Status != "healthy" {
		t.Errorf("expected status 'healthy', got '%s'", resp.Status)
	}
}

func TestHealthEndpoint_MethodNotAllowed(t *testing.T) {
	srv := testServer(nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/health", nil)
	w := httptest.NewRecorder()

	srv.mux.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, w.Code)
	}
}

func TestLanguagesEndpoint(t *testing.T) {
	srv := testServer(nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/languages", nil)
	w := httptest.NewRecorder()

	srv.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp LanguagesResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Languages) != 2 {
		t.Fatalf("expected 2 languages, got %d", len(resp.Languages))
	}
	if resp.Languages[0].Name != "english" || resp.Languages[1].Code != "es" {
		t.Errorf("unexpected languages: %+v", resp.Languages)
	}
}

func TestSearchEndpoint(t *testing.T) {
	eng := &mockEngine{
		response: &engine.Response{
			Language: "english",
			Terms:    []string{"equity", "investor"},
			Results: []engine.Record{
				{URL: "https://example.com/b", Title: "Equity Basics", Snippet: "An investor wants equity..."},
			},
		},
	}
	srv := testServer(eng)

	body := bytes.NewBufferString(`{"query": "equity investors"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/search", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	srv.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var resp engine.Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Language != "english" {
		t.Errorf("expected language 'english', got '%s'", resp.Language)
	}
	if len(resp.Results) != 1 || resp.Results[0].Title != "Equity Basics" {
		t.Errorf("unexpected results: %+v", resp.Results)
	}
	if len(eng.queries) != 1 || eng.queries[0] != "equity investors" {
		t.Errorf("engine received %v", eng.queries)
	}
}

func TestSearchEndpoint_NoResults(t *testing.T) {
	eng := &mockEngine{response: &engine.Response{Language: "english"}}
	srv := testServer(eng)

	body := bytes.NewBufferString(`{"query": "nothing matches"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/search", body)
	w := httptest.NewRecorder()

	srv.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if !strings.Contains(w.Body.String(), `"results":[]`) {
		t.Errorf("expected an empty results array, got %s", w.Body.String())
	}
}

func TestSearchEndpoint_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty query", `{"query": ""}`},
		{"blank query", `{"query": "   "}`},
		{"missing query", `{}`},
		{"invalid json", `invalid json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := &mockEngine{}
			srv := testServer(eng)

			req := httptest.NewRequest(http.MethodPost, "/v1/search", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			srv.mux.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
			}
			if len(eng.queries) != 0 {
				t.Errorf("engine should not be called, got %v", eng.queries)
			}
		})
	}
}

func TestSearchEndpoint_ExecutionErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{
			name:   "analyzer down",
			err:    fmt.Errorf("failed to lemmatize query: %w", morph.ErrAnalyzerUnavailable),
			status: http.StatusServiceUnavailable,
			code:   "ANALYZER_UNAVAILABLE",
		},
		{
			name:   "empty analysis",
			err:    morph.ErrEmptyAnalysis,
			status: http.StatusServiceUnavailable,
			code:   "ANALYZER_UNAVAILABLE",
		},
		{
			name:   "empty query",
			err:    engine.ErrEmptyQuery,
			status: http.StatusBadRequest,
			code:   "INVALID_REQUEST",
		},
		{
			name:   "unreadable document",
			err:    errors.New("failed to read document b.txt"),
			status: http.StatusInternalServerError,
			code:   "EXECUTION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testServer(&mockEngine{err: tt.err})

			req := httptest.NewRequest(http.MethodPost, "/v1/search",
				bytes.NewBufferString(`{"query": "equity"}`))
			w := httptest.NewRecorder()

			srv.mux.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}

			var resp ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Error.Code != tt.code {
				t.Errorf("expected error code '%s', got '%s'", tt.code, resp.Error.Code)
			}
		})
	}
}

func TestOpenAPIEndpoint(t *testing.T) {
	srv := testServer(nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/openapi.json", nil)
	w := httptest.NewRecorder()

	srv.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type 'application/json', got '%s'", ct)
	}

	var spec map[string]any
	if err := json.NewDecoder(w.Body).Decode(&spec); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if spec["openapi"] != "3.0.3" {
		t.Errorf("expected OpenAPI version '3.0.3', got '%v'", spec["openapi"])
	}

	paths, ok := spec["paths"].(map[string]any)
	if !ok {
		t.Fatal("OpenAPI spec missing 'paths' field")
	}
	for _, p := range []string{"/health", "/languages", "/search"} {
		if paths[p] == nil {
			t.Errorf("OpenAPI spec missing path %s", p)
		}
	}
}

func TestRFC8631LinkHeader(t *testing.T) {
	srv := testServer(nil)

	endpoints := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/v1/health"},
		{http.MethodGet, "/v1/languages"},
		{http.MethodGet, "/v1/openapi.json"},
	}

	for _, ep := range endpoints {
		req := httptest.NewRequest(ep.method, ep.path, nil)
		w := httptest.NewRecorder()
		srv.mux.ServeHTTP(w, req)

		link := w.Header().Get("Link")
		if !strings.Contains(link, "</v1/openapi.json>") {
			t.Errorf("%s %s: Link header should reference /v1/openapi.json", ep.method, ep.path)
		}
		if !strings.Contains(link, `rel="service-desc"`) {
			t.Errorf("%s %s: Link header should have rel=\"service-desc\"", ep.method, ep.path)
		}
	}
}

func TestCORSMiddleware(t *testing.T) {
	cfg := testConfig()
	cfg.Server.CORS.Enabled = true
	cfg.Server.CORS.AllowedOrigins = []string{"https://app.example.com"}
	srv := New(cfg, &mockEngine{}, nil)
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodOptions, "/v1/search", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("unexpected allowed origin '%s'", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no allowed origin, got '%s'", got)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Server.RateLimit = config.RateLimitConfig{
		Enabled:           true,
		RequestsPerSecond: 1,
		Burst:             2,
	}
	srv := New(cfg, &mockEngine{response: &engine.Response{Language: "english"}}, nil)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	srv.limiter.now = func() time.Time { return now }
	handler := srv.Handler()

	send := func(method, path, remote string) int {
		var body *bytes.Buffer
		if method == http.MethodPost {
			body = bytes.NewBufferString(`{"query": "equity"}`)
		} else {
			body = &bytes.Buffer{}
		}
		req := httptest.NewRequest(method, path, body)
		req.RemoteAddr = remote
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}
	search := func(remote string) int {
		return send(http.MethodPost, "/v1/search", remote)
	}

	for i := 0; i < 2; i++ {
		if code := search("10.0.0.1:1234"); code != http.StatusOK {
			t.Fatalf("request %d: expected status %d, got %d", i, http.StatusOK, code)
		}
	}
	if code := search("10.0.0.1:5678"); code != http.StatusTooManyRequests {
		t.Errorf("expected status %d, got %d", http.StatusTooManyRequests, code)
	}
	if code := search("10.0.0.2:1234"); code != http.StatusOK {
		t.Errorf("other client: expected status %d, got %d", http.StatusOK, code)
	}

	// Only the search route is limited.
	if code := send(http.MethodGet, "/v1/health", "10.0.0.1:1234"); code != http.StatusOK {
		t.Errorf("health: expected status %d, got %d", http.StatusOK, code)
	}

	now = now.Add(time.Second)
	if code := search("10.0.0.1:1234"); code != http.StatusOK {
		t.Errorf("after refill: expected status %d, got %d", http.StatusOK, code)
	}
}

func TestRequestLogging(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	eng := &mockEngine{response: &engine.Response{
		Language: "spanish",
		Terms:    []string{"capital"},
		Results:  []engine.Record{{URL: "u", Title: "t", Snippet: "s"}},
	}}
	handler := New(testConfig(), eng, logger).Handler()

	req := httptest.NewRequest(http.MethodPost, "/v1/search",
		bytes.NewBufferString(`{"query": "el capital"}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	id := w.Header().Get(RequestIDHeader)
	if id == "" {
		t.Fatal("expected a generated request id")
	}
	line := logs.String()
	for _, want := range []string{"request_id=" + id, "language=spanish", "results=1", "status=200"} {
		if !strings.Contains(line, want) {
			t.Errorf("log line missing %q: %s", want, line)
		}
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("expected the client request id to be echoed, got '%s'", got)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	srv := testServer(nil)
	handler := srv.recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/health", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
}
