package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"CryptoLiq/internal/domain/models"
	domrepo "CryptoLiq/internal/domain/repository"
)

const sqlitePredictionsTable = "predictions"

// SQLitePredictionStore keeps prediction history in a local SQLite file.
// created_at is stored as unix milliseconds.
type SQLitePredictionStore struct {
	db *sql.DB
}

// NewSQLitePredictionStore opens or creates the database at path.
func NewSQLitePredictionStore(path string) (*SQLitePredictionStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // single writer; WAL lets readers proceed
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	return &SQLitePredictionStore{db: db}, nil
}

func (s *SQLitePredictionStore) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS predictions (
			id         TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL,
			coin       TEXT NOT NULL DEFAULT '',
			score      REAL NOT NULL,
			level      TEXT NOT NULL,
			trend      TEXT NOT NULL,
			market_cap REAL NOT NULL,
			model      TEXT NOT NULL,
			source     TEXT NOT NULL,
			open       REAL NOT NULL,
			high       REAL NOT NULL,
			low        REAL NOT NULL,
			close      REAL NOT NULL,
			volume     REAL NOT NULL,
			sma_5      REAL NOT NULL DEFAULT 0,
			ema_12     REAL NOT NULL DEFAULT 0,
			rsi        REAL NOT NULL DEFAULT 0,
			macd       REAL NOT NULL DEFAULT 0,
			snapshot_market_cap REAL NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_coin ON predictions(coin, created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init sqlite schema: %w", err)
		}
	}
	return nil
}

func (s *SQLitePredictionStore) Save(ctx context.Context, p *models.Prediction) error {
	if _, err := s.db.ExecContext(ctx, insertQuery(sqlitePredictionsTable), predictionArgs(p, p.CreatedAt.UnixMilli())...); err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

func (s *SQLitePredictionStore) Recent(ctx context.Context, q models.HistoryQuery) ([]models.Prediction, error) {
	query, args := recentQuery(sqlitePredictionsTable, q, q.Since.UnixMilli())
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	var out []models.Prediction
	for rows.Next() {
		var ms int64
		p, err := scanPrediction(rows, &ms)
		if err != nil {
			return nil, err
		}
		p.CreatedAt = time.UnixMilli(ms).UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLitePredictionStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLitePredictionStore) Close() error {
	return s.db.Close()
}

var _ domrepo.PredictionStore = (*SQLitePredictionStore)(nil)
