package cryptocompare

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/dnaeon/go-vcr/recorder"
	"github.com/stretchr/testify/assert"
)

// This test uses go-vcr to record/replay a real LatestNews call.
// It skips by default if cassette is absent and RECORD_CASSETTES != 1.
func TestClient_LatestNews_Recorded(t *testing.T) {
	cassette := filepath.Join("testdata", "cassettes", "cryptocompare_news.yaml")
	if _, err := os.Stat(cassette); os.IsNotExist(err) {
		if os.Getenv("RECORD_CASSETTES") != "1" {
			t.Skipf("cassette missing; set RECORD_CASSETTES=1 to record: %s", cassette)
		}
		err := os.MkdirAll(filepath.Dir(cassette), 0o755)
		assert.NoError(t, err, "mkdir cassettes dir should succeed")
	}

	r, err := recorder.New(cassette)
	assert.NoError(t, err, "recorder.New should not error")
	assert.NotNil(t, r, "recorder should not be nil")
	defer func() { _ = r.Stop() }()

	httpClient := &http.Client{Transport: r}
	client := NewClient(os.Getenv("CRYPTOCOMPARE_KEY"), WithHTTPClient(httpClient))
	items, err := client.LatestNews(context.Background())
	assert.NoError(t, err, "LatestNews should not error")
	assert.NotEmpty(t, items, "feed should contain articles")
	for _, item := range items {
		assert.NotEmpty(t, item.URL, "every article should carry a url")
	}
}
