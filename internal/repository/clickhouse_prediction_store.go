package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"CryptoLiq/internal/domain/models"
	domrepo "CryptoLiq/internal/domain/repository"
	applogger "CryptoLiq/pkg/logger"
)

const chPredictionsTable = "liquidity_predictions"

// CHPredictionStore keeps prediction history in ClickHouse.
type CHPredictionStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHPredictionStore(db *sql.DB, l *applogger.Logger) *CHPredictionStore {
	return &CHPredictionStore{db: db, table: chPredictionsTable, l: l}
}

// Schema returns the idempotent DDL for the history table.
func (s *CHPredictionStore) Schema() []string {
	return []string{fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            id         String,
            created_at DateTime64(3, 'UTC'),
            coin       LowCardinality(String),
            score      Float64,
            level      LowCardinality(String),
            trend      LowCardinality(String),
            market_cap Float64,
            model      LowCardinality(String),
            source     LowCardinality(String),
            open       Float64,
            high       Float64,
            low        Float64,
            close      Float64,
            volume     Float64,
            sma_5      Float64,
            ema_12     Float64,
            rsi        Float64,
            macd       Float64,
            snapshot_market_cap Float64 DEFAULT 0
        ) ENGINE = MergeTree
        PARTITION BY toYYYYMM(created_at)
        ORDER BY (coin, created_at)
        TTL toDateTime(created_at) + INTERVAL 90 DAY
    `, s.table)}
}

func (s *CHPredictionStore) Init(ctx context.Context) error {
	for _, stmt := range s.Schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init %s: %w", s.table, err)
		}
	}
	return nil
}

func (s *CHPredictionStore) Save(ctx context.Context, p *models.Prediction) error {
	if _, err := s.db.ExecContext(ctx, insertQuery(s.table), predictionArgs(p, p.CreatedAt.UTC())...); err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

func (s *CHPredictionStore) Recent(ctx context.Context, q models.HistoryQuery) ([]models.Prediction, error) {
	start := time.Now()
	query, args := recentQuery(s.table, q, q.Since.UTC())
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	var out []models.Prediction
	for rows.Next() {
		var ts time.Time
		p, err := scanPrediction(rows, &ts)
		if err != nil {
			return nil, err
		}
		p.CreatedAt = ts.UTC()
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.l.Debug("clickhouse recent predictions",
		applogger.String("coin", q.Coin),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

func (s *CHPredictionStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close is a no-op; the pool belongs to pkg/clickhouse.Client.
func (s *CHPredictionStore) Close() error {
	return nil
}

var _ domrepo.PredictionStore = (*CHPredictionStore)(nil)
