package reddit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

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

func newTestAdapter(t *testing.T, serverURL string, gate source.Gate) *Adapter {
	t.Helper()
	adapter := NewAdapter(source.Reddit, NewClient(WithBaseURL(serverURL)), gate)
	adapter.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return adapter
}

func redditHandler(t *testing.T, missing map[string]bool, listing string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		require.Len(t, parts, 3)
		require.Equal(t, "r", parts[0])
		subreddit := parts[1]

		switch parts[2] {
		case "about.json":
			if missing[subreddit] {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_, _ = w.Write([]byte(`{"kind": "t5"}`))
		case "search.json":
			assert.Equal(t, "1", r.URL.Query().Get("restrict_sr"))
			assert.Equal(t, "day", r.URL.Query().Get("t"))
			_, _ = w.Write([]byte(listing))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}
}

func TestFetchSearchesBaseAndAssetChannels(t *testing.T) {
	listing := `{"data": {"children": [
		{"data": {"title": "BTC breaks out", "selftext": "volume confirms the move", "permalink": "/r/CryptoCurrency/comments/abc/btc/", "created_utc": 1756300000}},
		{"data": {"title": "short", "selftext": "", "permalink": "/r/CryptoCurrency/comments/def/short/", "created_utc": 1756300001}}
	]}}`
	server := httptest.NewServer(redditHandler(t, nil, listing))
	defer server.Close()

	gate := &gateRecorder{allow: true}
	adapter := newTestAdapter(t, server.URL, gate)

	candidates, err := adapter.Fetch(context.Background(), source.Asset{Symbol: "LINK", FullName: "Chainlink"})
	require.NoError(t, err)

	// Three channels searched (two base + Chainlink), each yields one post
	// above the minimum text length.
	assert.Len(t, candidates, 3)
	assert.Equal(t, "BTC breaks out volume confirms the move", candidates[0].Text)
	assert.Equal(t, "https://www.reddit.com/r/CryptoCurrency/comments/abc/btc/", candidates[0].URL)
	assert.Equal(t, time.Unix(1756300000, 0).UTC(), candidates[0].PublishedAt)
	// One probe plus one search per channel.
	assert.Equal(t, 6, gate.requests)
}

func TestFetchSkipsAssetChannelForShortSymbols(t *testing.T) {
	var searched []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "search.json") {
			searched = append(searched, strings.Split(strings.Trim(r.URL.Path, "/"), "/")[1])
		}
		_, _ = w.Write([]byte(`{"data": {"children": []}}`))
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server.URL, &gateRecorder{allow: true})

	_, err := adapter.Fetch(context.Background(), source.Asset{Symbol: "BTC", FullName: "Bitcoin"})
	require.NoError(t, err)
	assert.Equal(t, []string{"CryptoCurrency", "CryptoMarkets"}, searched)
}

func TestFetchSkipsInaccessibleChannel(t *testing.T) {
	listing := `{"data": {"children": [
		{"data": {"title": "a post long enough to keep", "permalink": "/r/x/comments/1/a/", "created_utc": 1756300000}}
	]}}`
	server := httptest.NewServer(redditHandler(t, map[string]bool{"Chainlink": true}, listing))
	defer server.Close()

	adapter := newTestAdapter(t, server.URL, &gateRecorder{allow: true})

	candidates, err := adapter.Fetch(context.Background(), source.Asset{Symbol: "LINK", FullName: "Chainlink"})
	require.NoError(t, err)
	// Only the two base channels contribute.
	assert.Len(t, candidates, 2)
}

func TestFetchStopsAtQuota(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server.URL, &gateRecorder{allow: false})

	candidates, err := adapter.Fetch(context.Background(), source.Asset{Symbol: "BTC", FullName: "Bitcoin"})
	require.NoError(t, err)
	assert.Empty(t, candidates)
	assert.Zero(t, hits)
}

func TestFetchMarksExhaustedOn429(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "about.json") {
			_, _ = w.Write([]byte(`{"kind": "t5"}`))
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	gate := &gateRecorder{allow: true}
	adapter := newTestAdapter(t, server.URL, gate)

	candidates, err := adapter.Fetch(context.Background(), source.Asset{Symbol: "BTC", FullName: "Bitcoin"})
	require.NoError(t, err)
	assert.Empty(t, candidates)
	assert.Equal(t, 1, gate.exhausted)
}

func TestFetchSendsConfiguredUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{"data": {"children": []}}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithUserAgent("mention-bot/2.0"))
	adapter := NewAdapter(source.Reddit, client, &gateRecorder{allow: true})
	adapter.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }

	_, err := adapter.Fetch(context.Background(), source.Asset{Symbol: "BTC", FullName: "Bitcoin"})
	require.NoError(t, err)
	assert.Equal(t, "mention-bot/2.0", gotUA)
}
