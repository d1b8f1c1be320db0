package cli

import (
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/Rosssaab/CryptoAiDataCollector/internal/config"
)

// ConfigSummaryLines returns human readable lines describing the loaded
// collector configuration.
func ConfigSummaryLines(cfg *config.Config) []string {
	if cfg == nil {
		return []string{"Configuration: <nil>"}
	}

	sourcesLine := "Sources config: not configured"
	if strings.TrimSpace(cfg.Sources.File) != "" {
		sourcesLine = fmt.Sprintf("Sources config: %s", cfg.Sources.File)
		if cfg.Sources.Value != nil {
			sourcesLine += fmt.Sprintf(" (%d sources)", len(cfg.Sources.Value.Sources))
		}
	}

	return []string{
		fmt.Sprintf("Environment: %s", cfg.Env),
		fmt.Sprintf("Postgres: %s", presence(cfg.Postgres.DSN != "")),
		fmt.Sprintf("Redis: %s", presence(strings.TrimSpace(cfg.Redis.Host) != "")),
		fmt.Sprintf("Max content length: %d", cfg.Collector.MaxContentLen),
		fmt.Sprintf("Dedup window: %s", cfg.DedupWindow()),
		fmt.Sprintf("Request delay: %s", cfg.RequestDelay()),
		fmt.Sprintf("Cycle interval: %s", cfg.CycleInterval()),
		fmt.Sprintf("Journal dir: %s", orNone(cfg.Collector.JournalDir)),
		sourcesLine,
	}
}

// LogConfigSummary emits the configuration summary using logx.
func LogConfigSummary(cfg *config.Config) {
	logx.Info("configuration summary")
	for _, line := range ConfigSummaryLines(cfg) {
		logx.Infof("config • %s", line)
	}
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "<disabled>"
	}
	return s
}
