package svc

import (
	"database/sql"
	"log"

	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/core/syncx"

	"github.com/Rosssaab/CryptoAiDataCollector/internal/config"
	"github.com/Rosssaab/CryptoAiDataCollector/internal/store"
	"github.com/Rosssaab/CryptoAiDataCollector/pkg/collector"
	"github.com/Rosssaab/CryptoAiDataCollector/pkg/journal"
	"github.com/Rosssaab/CryptoAiDataCollector/pkg/quota"
	"github.com/Rosssaab/CryptoAiDataCollector/pkg/source"

	// Imports for side-effects: register the source adapter builders.
	_ "github.com/Rosssaab/CryptoAiDataCollector/pkg/source/binance"
	_ "github.com/Rosssaab/CryptoAiDataCollector/pkg/source/coingecko"
	_ "github.com/Rosssaab/CryptoAiDataCollector/pkg/source/cryptocompare"
	_ "github.com/Rosssaab/CryptoAiDataCollector/pkg/source/newsapi"
	_ "github.com/Rosssaab/CryptoAiDataCollector/pkg/source/reddit"
	_ "github.com/Rosssaab/CryptoAiDataCollector/pkg/source/twitter"
)

type ServiceContext struct {
	Config config.Config

	Store        *store.SQLStore
	Quota        *quota.Tracker
	Adapters     []source.Adapter
	Orchestrator *collector.Orchestrator
	Journal      *journal.Writer
}

func NewServiceContext(c config.Config) *ServiceContext {
	svc := &ServiceContext{Config: c}

	if c.Postgres.DSN == "" {
		log.Fatal("postgres dsn is required")
	}
	if c.Sources.Value == nil {
		log.Fatal("sources config file is required")
	}

	storeOpts := []store.Option{}
	if c.Redis.Host != "" {
		rds := redis.MustNewRedis(c.Redis)
		node := cache.NewNode(rds, syncx.NewSingleFlight(), cache.NewStat("collector"), sql.ErrNoRows)
		storeOpts = append(storeOpts, store.WithCache(node, c.RefCacheTTL()))
	}
	svc.Store = store.NewSQLStore(c.Postgres.DSN, storeOpts...)

	svc.Quota = quota.NewTracker(c.Sources.Value.SoftLimits())

	adapters, err := c.Sources.Value.BuildAdapters(svc.Quota)
	if err != nil {
		log.Fatalf("failed to build source adapters: %v", err)
	}
	svc.Adapters = adapters

	orchestrator, err := collector.NewOrchestrator(collector.Config{
		Store:         svc.Store,
		Adapters:      adapters,
		Quota:         svc.Quota,
		MaxContentLen: c.Collector.MaxContentLen,
		DedupWindow:   c.DedupWindow(),
		RequestDelay:  c.RequestDelay(),
	})
	if err != nil {
		log.Fatalf("failed to build orchestrator: %v", err)
	}
	svc.Orchestrator = orchestrator

	if c.Collector.JournalDir != "" {
		svc.Journal = journal.NewWriter(c.Collector.JournalDir)
	}
	return svc
}
