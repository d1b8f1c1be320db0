package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/Rosssaab/CryptoAiDataCollector/internal/cli"
	"github.com/Rosssaab/CryptoAiDataCollector/internal/config"
	"github.com/Rosssaab/CryptoAiDataCollector/internal/svc"
	"github.com/Rosssaab/CryptoAiDataCollector/pkg/collector"
	"github.com/Rosssaab/CryptoAiDataCollector/pkg/journal"
)

var (
	configFile = flag.String("f", "etc/collector.yaml", "the config file")
	runOnce    = flag.Bool("once", false, "run a single collection cycle and exit")
)

func main() {
	flag.Parse()

	cfg := config.MustLoad(*configFile)
	cfg.MustSetUp()
	defer logx.Close()

	cli.LogConfigSummary(cfg)

	svcCtx := svc.NewServiceContext(*cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *runOnce {
		summary := runCycle(ctx, svcCtx)
		if summary == nil || summary.State != collector.StateCompleted {
			os.Exit(1)
		}
		return
	}

	runForever(ctx, svcCtx, cfg.CycleInterval())
}

// runForever repeats collection cycles with a fixed sleep between them
// until a shutdown signal arrives.
func runForever(ctx context.Context, svcCtx *svc.ServiceContext, interval time.Duration) {
	logx.Infof("collector started, cycle interval %s", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run once immediately on startup.
	runCycle(ctx, svcCtx)

	for {
		select {
		case <-ctx.Done():
			logx.Info("shutdown signal received, stopping collector")
			return
		case <-ticker.C:
			runCycle(ctx, svcCtx)
		}
	}
}

// runCycle executes one cycle, journals the outcome and returns the
// summary (nil only when the orchestrator refused to start).
func runCycle(ctx context.Context, svcCtx *svc.ServiceContext) *collector.Summary {
	start := time.Now()
	summary, err := svcCtx.Orchestrator.Run(ctx)
	elapsed := time.Since(start)

	switch {
	case err != nil && summary == nil:
		logx.Errorf("cycle rejected: %v", err)
	case err != nil:
		logx.Errorf("cycle failed after %s: %v", elapsed, err)
	default:
		logx.Infof("cycle completed in %s: assets=%d saved=%d skipped=%d errors=%d",
			elapsed, summary.AssetsProcessed, summary.Saved, summary.Skipped, summary.Errors)
	}

	if svcCtx.Journal != nil && summary != nil {
		rec := &journal.CycleRecord{
			Summary: summary,
			Success: err == nil,
		}
		if err != nil {
			rec.ErrorMessage = err.Error()
		}
		if path, jerr := svcCtx.Journal.WriteCycle(rec); jerr != nil {
			logx.Errorf("journal write failed: %v", jerr)
		} else {
			logx.Infof("cycle journaled to %s", path)
		}
	}
	return summary
}
