package journal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rosssaab/CryptoAiDataCollector/pkg/collector"
)

func TestWriteCycleCreatesSequencedFiles(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)
	w.nowFn = func() time.Time {
		return time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	}

	summary := &collector.Summary{
		State:           collector.StateCompleted,
		AssetsProcessed: 3,
		Saved:           12,
		Skipped:         4,
		PerSource:       map[string]*collector.SourceStats{"News": {Fetched: 16, Saved: 12, Skipped: 4}},
	}

	first, err := w.WriteCycle(&CycleRecord{Summary: summary, Success: true})
	require.NoError(t, err)
	assert.Equal(t, "cycle_20260828_103000_00001.json", filepath.Base(first))

	second, err := w.WriteCycle(&CycleRecord{Summary: summary, Success: false, ErrorMessage: "store unavailable"})
	require.NoError(t, err)
	assert.Equal(t, "cycle_20260828_103000_00002.json", filepath.Base(second))

	data, err := os.ReadFile(first)
	require.NoError(t, err)

	var rec CycleRecord
	require.NoError(t, json.Unmarshal(data, &rec))
	assert.Equal(t, 1, rec.CycleNumber)
	assert.True(t, rec.Success)
	require.NotNil(t, rec.Summary)
	assert.Equal(t, collector.StateCompleted, rec.Summary.State)
	assert.Equal(t, 12, rec.Summary.Saved)
	assert.Contains(t, rec.Summary.PerSource, "News")
}

func TestWriteCycleRejectsNilRecord(t *testing.T) {
	w := NewWriter(t.TempDir())
	_, err := w.WriteCycle(nil)
	assert.Error(t, err)
}

func TestWriteCycleKeepsExplicitTimestamp(t *testing.T) {
	w := NewWriter(t.TempDir())
	ts := time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)

	path, err := w.WriteCycle(&CycleRecord{Timestamp: ts, Success: true})
	require.NoError(t, err)
	assert.Equal(t, "cycle_20260115_080000_00001.json", filepath.Base(path))
}
