package newsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rosssaab/CryptoAiDataCollector/pkg/source"
)

type gateRecorder struct {
	mu        sync.Mutex
	allow     bool
	requests  int
	exhausted int
}

func (g *gateRecorder) CanProceed(string) bool { return g.allow }

func (g *gateRecorder) RecordRequest(string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests++
}

func (g *gateRecorder) MarkExhausted(string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.exhausted++
}

func TestFetchReturnsCandidates(t *testing.T) {
	var gotQuery, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/everything", r.URL.Path)
		gotQuery = r.URL.Query().Get("q")
		gotKey = r.URL.Query().Get("apiKey")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"totalResults": 3,
			"articles": [
				{"title": "Bitcoin surges past 100k", "description": "Bulls in control", "url": "https://news.example/a", "publishedAt": "2026-08-27T10:00:00Z"},
				{"title": "Bitcoin dips on profit taking", "description": "", "url": "https://news.example/b", "publishedAt": "2026-08-27T11:00:00Z"},
				{"title": "No link on this one", "description": "dropped", "url": ""}
			]
		}`))
	}))
	defer server.Close()

	gate := &gateRecorder{allow: true}
	adapter := NewAdapter(source.News, NewClient("test-key", WithBaseURL(server.URL)), gate)

	candidates, err := adapter.Fetch(context.Background(), source.Asset{ID: 1, Symbol: "BTC", FullName: "Bitcoin"})
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, `"BTC" OR "Bitcoin"`, gotQuery)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "Bitcoin surges past 100k Bulls in control", candidates[0].Text)
	assert.Equal(t, "https://news.example/a", candidates[0].URL)
	assert.False(t, candidates[0].PublishedAt.IsZero())
	assert.Equal(t, "Bitcoin dips on profit taking", candidates[1].Text)
	assert.Equal(t, 1, gate.requests)
}

func TestFetchSkipsWhenQuotaReached(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer server.Close()

	gate := &gateRecorder{allow: false}
	adapter := NewAdapter(source.News, NewClient("test-key", WithBaseURL(server.URL)), gate)

	candidates, err := adapter.Fetch(context.Background(), source.Asset{Symbol: "BTC", FullName: "Bitcoin"})
	require.NoError(t, err)
	assert.Empty(t, candidates)
	assert.Zero(t, hits)
	assert.Zero(t, gate.requests)
}

func TestFetchMarksExhaustedOn429(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	gate := &gateRecorder{allow: true}
	adapter := NewAdapter(source.News, NewClient("test-key", WithBaseURL(server.URL)), gate)

	candidates, err := adapter.Fetch(context.Background(), source.Asset{Symbol: "BTC", FullName: "Bitcoin"})
	require.NoError(t, err)
	assert.Empty(t, candidates)
	assert.Equal(t, 1, gate.exhausted)
}

func TestFetchMarksExhaustedOnRateLimitedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "error", "code": "rateLimited", "message": "too many requests"}`))
	}))
	defer server.Close()

	gate := &gateRecorder{allow: true}
	adapter := NewAdapter(source.News, NewClient("test-key", WithBaseURL(server.URL)), gate)

	candidates, err := adapter.Fetch(context.Background(), source.Asset{Symbol: "BTC", FullName: "Bitcoin"})
	require.NoError(t, err)
	assert.Empty(t, candidates)
	assert.Equal(t, 1, gate.exhausted)
}

func TestFetchReturnsErrorOnAPIFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "error", "code": "apiKeyInvalid", "message": "bad key"}`))
	}))
	defer server.Close()

	gate := &gateRecorder{allow: true}
	adapter := NewAdapter(source.News, NewClient("bad-key", WithBaseURL(server.URL)), gate)

	_, err := adapter.Fetch(context.Background(), source.Asset{Symbol: "BTC", FullName: "Bitcoin"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apiKeyInvalid")
	assert.Zero(t, gate.exhausted)
}

func TestBuilderRequiresAPIKey(t *testing.T) {
	cfg := &source.Config{Sources: map[string]*source.AdapterConfig{
		source.News: {Type: "newsapi"},
	}}
	_, err := cfg.BuildAdapters(source.NopGate{})
	assert.Error(t, err)
}
