package cryptocompare

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rosssaab/CryptoAiDataCollector/pkg/source"
)

type gateRecorder struct {
	allow     bool
	requests  int
	exhausted int
}

func (g *gateRecorder) CanProceed(string) bool { return g.allow }
func (g *gateRecorder) RecordRequest(string)   { g.requests++ }
func (g *gateRecorder) MarkExhausted(string)   { g.exhausted++ }

const feedBody = `{"Data": [
	{"title": "Bitcoin tests resistance", "body": "BTC bulls push higher", "url": "https://agg.example/1", "published_on": 1756280000},
	{"title": "Ethereum devnet launches", "body": "staking changes ahead", "url": "https://agg.example/2", "published_on": 1756280100},
	{"title": "Bitcoin without a link", "body": "", "url": "", "published_on": 1756280200}
]}`

func TestFetchFiltersFeedByAsset(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/data/v2/news/", r.URL.Path)
		assert.Equal(t, "EN", r.URL.Query().Get("lang"))
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(feedBody))
	}))
	defer server.Close()

	gate := &gateRecorder{allow: true}
	adapter := NewAdapter(source.AggregatorNews, NewClient("feed-key", WithBaseURL(server.URL)), gate)

	candidates, err := adapter.Fetch(context.Background(), source.Asset{Symbol: "BTC", FullName: "Bitcoin"})
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	assert.Equal(t, "Apikey feed-key", gotAuth)
	assert.Equal(t, "Bitcoin tests resistance BTC bulls push higher", candidates[0].Text)
	assert.Equal(t, "https://agg.example/1", candidates[0].URL)
	assert.Equal(t, 1, gate.requests)
}

func TestFetchMatchesOnBodyToo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(feedBody))
	}))
	defer server.Close()

	adapter := NewAdapter(source.AggregatorNews, NewClient("", WithBaseURL(server.URL)), &gateRecorder{allow: true})

	candidates, err := adapter.Fetch(context.Background(), source.Asset{Symbol: "ETH", FullName: "Ethereum"})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Contains(t, candidates[0].Text, "Ethereum devnet")
}

func TestFetchCapsResults(t *testing.T) {
	var items []string
	for i := 0; i < 80; i++ {
		items = append(items, fmt.Sprintf(
			`{"title": "Bitcoin story %d", "body": "", "url": "https://agg.example/%d", "published_on": 1756280000}`, i, i))
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Data": [` + strings.Join(items, ",") + `]}`))
	}))
	defer server.Close()

	adapter := NewAdapter(source.AggregatorNews, NewClient("", WithBaseURL(server.URL)), &gateRecorder{allow: true})

	candidates, err := adapter.Fetch(context.Background(), source.Asset{Symbol: "BTC", FullName: "Bitcoin"})
	require.NoError(t, err)
	assert.Len(t, candidates, defaultMaxResults)
}

func TestFetchSkipsWhenQuotaReached(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer server.Close()

	adapter := NewAdapter(source.AggregatorNews, NewClient("", WithBaseURL(server.URL)), &gateRecorder{allow: false})

	candidates, err := adapter.Fetch(context.Background(), source.Asset{Symbol: "BTC", FullName: "Bitcoin"})
	require.NoError(t, err)
	assert.Empty(t, candidates)
	assert.Zero(t, hits)
}

func TestFetchMarksExhaustedOn429(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	gate := &gateRecorder{allow: true}
	adapter := NewAdapter(source.AggregatorNews, NewClient("", WithBaseURL(server.URL)), gate)

	candidates, err := adapter.Fetch(context.Background(), source.Asset{Symbol: "BTC", FullName: "Bitcoin"})
	require.NoError(t, err)
	assert.Empty(t, candidates)
	assert.Equal(t, 1, gate.exhausted)
}
