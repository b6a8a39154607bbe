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

// CHFeatureStore reads OHLCV candles from ClickHouse. Candles live in
// <base>_1s and <base>_1m; 5m candles are folded from the 1m table.
type CHFeatureStore struct {
	db   *sql.DB
	base string
	l    *applogger.Logger
}

func NewCHFeatureStore(db *sql.DB, base string, l *applogger.Logger) *CHFeatureStore {
	return &CHFeatureStore{db: db, base: base, l: l}
}

func (s *CHFeatureStore) GetLatestNCandles(ctx context.Context, symbol string, n int, tf domrepo.Timeframe) ([]models.Candle, error) {
	start := time.Now()
	q, err := s.latestQuery(tf)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, q, symbol, n)
	if err != nil {
		s.l.Error("clickhouse latest_candles query error",
			applogger.String("symbol", symbol),
			applogger.String("tf", string(tf)),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("get latest candles: %w", err)
	}
	defer rows.Close()

	tmp := make([]models.Candle, 0, n)
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Bucket, &c.Symbol, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		tmp = append(tmp, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	// reverse to ASC
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	s.l.Debug("clickhouse latest_candles ok",
		applogger.String("symbol", symbol),
		applogger.String("tf", string(tf)),
		applogger.Int("limit", n),
		applogger.Int("rows", len(tmp)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return tmp, nil
}

func (s *CHFeatureStore) latestQuery(tf domrepo.Timeframe) (string, error) {
	switch tf {
	case domrepo.TF1s, domrepo.TF1m:
		return fmt.Sprintf(`
        SELECT bucket, symbol, open, high, low, close, vol
        FROM %s_%s
        WHERE symbol = ?
        ORDER BY bucket DESC
        LIMIT ?`, s.base, tf), nil
	case domrepo.TF5m:
		return fmt.Sprintf(`
        SELECT toStartOfFiveMinutes(bucket) AS b, symbol,
               argMin(open, bucket), max(high), min(low), argMax(close, bucket), sum(vol)
        FROM %s_1m
        WHERE symbol = ?
        GROUP BY b, symbol
        ORDER BY b DESC
        LIMIT ?`, s.base), nil
	default:
		return "", fmt.Errorf("unsupported timeframe: %s", tf)
	}
}

var _ domrepo.FeatureStore = (*CHFeatureStore)(nil)
