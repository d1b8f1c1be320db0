package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rosssaab/CryptoAiDataCollector/internal/config"
	"github.com/Rosssaab/CryptoAiDataCollector/pkg/source"
)

type stubAdapter struct{ name string }

func (s *stubAdapter) Source() string { return s.name }
func (s *stubAdapter) Fetch(context.Context, source.Asset) ([]source.Candidate, error) {
	return nil, nil
}

func init() {
	source.RegisterAdapter("cfg-stub", func(name string, _ *source.AdapterConfig, _ source.Gate) (source.Adapter, error) {
		return &stubAdapter{name: name}, nil
	})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadHydratesSourcesSection(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sources.yaml"), `
sources:
  News:
    type: cfg-stub
    soft_limit: 95
`)
	writeFile(t, filepath.Join(dir, "collector.yaml"), `
Name: collector-test
Log:
  Mode: console
Env: test
Postgres:
  DSN: postgres://localhost/test
Collector:
  JournalDir: journal
Sources:
  File: sources.yaml
`)

	cfg, err := config.Load(filepath.Join(dir, "collector.yaml"))
	require.NoError(t, err)

	assert.True(t, cfg.IsTestEnv())
	assert.Equal(t, "postgres://localhost/test", cfg.Postgres.DSN)

	// Collector section falls back to defaults where the file is silent.
	assert.Equal(t, 500, cfg.Collector.MaxContentLen)
	assert.Equal(t, 24*time.Hour, cfg.DedupWindow())
	assert.Equal(t, time.Second, cfg.RequestDelay())
	assert.Equal(t, 4*time.Hour, cfg.CycleInterval())
	assert.Equal(t, 5*time.Minute, cfg.RefCacheTTL())

	require.NotNil(t, cfg.Sources.Value)
	assert.Equal(t, filepath.Join(dir, "sources.yaml"), cfg.Sources.File)
	assert.Equal(t, map[string]int{"News": 95}, cfg.Sources.Value.SoftLimits())
}

func TestLoadRejectsUnknownEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "collector.yaml"), `
Name: collector-test
Log:
  Mode: console
Env: staging
`)

	_, err := config.Load(filepath.Join(dir, "collector.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "env")
}

func TestLoadFailsOnMissingSourcesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "collector.yaml"), `
Name: collector-test
Log:
  Mode: console
Sources:
  File: does-not-exist.yaml
`)

	_, err := config.Load(filepath.Join(dir, "collector.yaml"))
	require.Error(t, err)
}
