// Package store implements the mention persistence contract on Postgres.
//
// Tables mirror the collector schema: chat_source holds the fixed source
// set, coins the tracked assets, chat_data the append-only mention log.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"github.com/Rosssaab/CryptoAiDataCollector/pkg/collector"
	"github.com/Rosssaab/CryptoAiDataCollector/pkg/source"
)

const (
	cacheKeySources = "collector:ref:sources"
	cacheKeyAssets  = "collector:ref:assets"
)

// SQLStore implements collector.Store over a Postgres connection, with an
// optional cache in front of the reference-data loads.
type SQLStore struct {
	dsn    string
	cache  cache.Cache
	refTTL time.Duration

	connMu sync.RWMutex
	conn   sqlx.SqlConn
}

// Option configures a SQLStore.
type Option func(*SQLStore)

// WithCache fronts reference-data loads with the given cache.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *SQLStore) {
		if c != nil && ttl > 0 {
			s.cache = c
			s.refTTL = ttl
		}
	}
}

// NewSQLStore connects to Postgres via the pgx driver.
func NewSQLStore(dsn string, opts ...Option) *SQLStore {
	s := &SQLStore{
		dsn:  dsn,
		conn: sqlx.NewSqlConn("pgx", dsn),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ collector.Store = (*SQLStore)(nil)

type sourceRow struct {
	ID   int64  `db:"source_id"`
	Name string `db:"source_name"`
}

type assetRow struct {
	ID       int64  `db:"coin_id"`
	Symbol   string `db:"symbol"`
	FullName string `db:"full_name"`
}

// LoadSources maps source names to ids from chat_source.
func (s *SQLStore) LoadSources(ctx context.Context) (map[string]int64, error) {
	var cached map[string]int64
	if ok := s.getCache(ctx, cacheKeySources, &cached); ok {
		return cached, nil
	}

	const q = `SELECT source_id, source_name FROM chat_source`
	var rows []sourceRow
	if err := s.db().QueryRowsCtx(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("store: load sources: %w", err)
	}

	sources := make(map[string]int64, len(rows))
	for _, row := range rows {
		sources[row.Name] = row.ID
	}
	s.setCache(ctx, cacheKeySources, sources)
	return sources, nil
}

// LoadAssets returns all tracked assets ordered by id.
func (s *SQLStore) LoadAssets(ctx context.Context) ([]source.Asset, error) {
	var cached []source.Asset
	if ok := s.getCache(ctx, cacheKeyAssets, &cached); ok {
		return cached, nil
	}

	const q = `SELECT coin_id, symbol, full_name FROM coins ORDER BY coin_id`
	var rows []assetRow
	if err := s.db().QueryRowsCtx(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("store: load assets: %w", err)
	}

	assets := make([]source.Asset, 0, len(rows))
	for _, row := range rows {
		assets = append(assets, source.Asset{ID: row.ID, Symbol: row.Symbol, FullName: row.FullName})
	}
	s.setCache(ctx, cacheKeyAssets, assets)
	return assets, nil
}

// ExistsMention reports whether (asset, url) was stored within the window.
// Never cached: the answer changes with every insert.
func (s *SQLStore) ExistsMention(ctx context.Context, assetID int64, url string, window time.Duration) (bool, error) {
	const q = `SELECT EXISTS (
    SELECT 1 FROM chat_data
    WHERE coin_id = $1 AND url = $2 AND timestamp >= $3
)`
	var exists bool
	cutoff := time.Now().UTC().Add(-window)
	if err := s.db().QueryRowCtx(ctx, &exists, q, assetID, url, cutoff); err != nil {
		return false, fmt.Errorf("store: exists mention: %w", err)
	}
	return exists, nil
}

// InsertMention appends one mention to chat_data.
func (s *SQLStore) InsertMention(ctx context.Context, m *collector.Mention) error {
	const q = `INSERT INTO chat_data (
    timestamp, coin_id, source_id, content, sentiment_score, sentiment_label, url
) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.db().ExecCtx(ctx, q,
		m.Timestamp, m.AssetID, m.SourceID, m.Content,
		m.SentimentScore, string(m.SentimentLabel), m.URL,
	)
	if err != nil {
		return fmt.Errorf("store: insert mention: %w", err)
	}
	return nil
}

// Ping verifies the connection is alive.
func (s *SQLStore) Ping(ctx context.Context) error {
	var one int
	if err := s.db().QueryRowCtx(ctx, &one, `SELECT 1`); err != nil {
		return fmt.Errorf("store: ping: %w", err)
	}
	return nil
}

// Reconnect rebuilds the connection from the stored DSN.
func (s *SQLStore) Reconnect(ctx context.Context) error {
	s.connMu.Lock()
	s.conn = sqlx.NewSqlConn("pgx", s.dsn)
	s.connMu.Unlock()
	return s.Ping(ctx)
}

func (s *SQLStore) db() sqlx.SqlConn {
	s.connMu.RLock()
	defer s.connMu.RUnlock()
	return s.conn
}

func (s *SQLStore) getCache(ctx context.Context, key string, v interface{}) bool {
	if s.cache == nil {
		return false
	}
	if err := s.cache.GetCtx(ctx, key, v); err != nil {
		if !s.cache.IsNotFound(err) {
			logx.WithContext(ctx).Errorf("store: get cache %s: %v", key, err)
		}
		return false
	}
	return true
}

func (s *SQLStore) setCache(ctx context.Context, key string, v interface{}) {
	if s.cache == nil || s.refTTL <= 0 {
		return
	}
	if err := s.cache.SetWithExpireCtx(ctx, key, v, s.refTTL); err != nil {
		logx.WithContext(ctx).Errorf("store: set cache %s: %v", key, err)
	}
}
