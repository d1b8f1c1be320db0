// Package journal persists per-cycle collection summaries as JSON files
// for audit and offline analysis.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Rosssaab/CryptoAiDataCollector/pkg/collector"
)

// CycleRecord captures the outcome of one collection cycle.
type CycleRecord struct {
	Timestamp    time.Time          `json:"timestamp"`
	CycleNumber  int                `json:"cycle_number"`
	Summary      *collector.Summary `json:"summary,omitempty"`
	Success      bool               `json:"success"`
	ErrorMessage string             `json:"error_message,omitempty"`
}

// Writer persists cycle records to a directory, one JSON file per cycle.
type Writer struct {
	dir   string
	seq   int
	nowFn func() time.Time
}

// NewWriter constructs a journal writer.
func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = "journal"
	}
	_ = os.MkdirAll(dir, 0o755)
	return &Writer{dir: dir, nowFn: time.Now}
}

// WriteCycle writes a cycle record to a timestamped JSON file and returns
// its path.
func (w *Writer) WriteCycle(rec *CycleRecord) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("journal: nil record")
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = w.nowFn()
	}
	w.seq++
	rec.CycleNumber = w.seq
	name := fmt.Sprintf("cycle_%s_%05d.json", rec.Timestamp.UTC().Format("20060102_150405"), w.seq)
	path := filepath.Join(w.dir, name)
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
