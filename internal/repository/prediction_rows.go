package repository

import (
	"fmt"
	"strings"

	"CryptoLiq/internal/domain/models"
)

// predictionColumns is shared by every SQL prediction store; created_at is
// the second column and its encoding is store specific. market_cap is the
// reported (possibly derived) value, snapshot_market_cap the submitted one.
const predictionColumns = "id, created_at, coin, score, level, trend, market_cap, model, source, " +
	"open, high, low, close, volume, sma_5, ema_12, rsi, macd, snapshot_market_cap"

const defaultHistoryLimit = 50

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func predictionArgs(p *models.Prediction, createdAt interface{}) []interface{} {
	s := p.Snapshot
	return []interface{}{
		p.ID, createdAt, p.Coin, p.Score, string(p.Level), string(p.Trend), p.MarketCap, p.Model, p.Source,
		s.Open, s.High, s.Low, s.Close, s.Volume, s.SMA5, s.EMA12, s.RSI, s.MACD, s.MarketCap,
	}
}

func scanPrediction(rs rowScanner, createdAt interface{}) (models.Prediction, error) {
	var p models.Prediction
	s := &p.Snapshot
	err := rs.Scan(
		&p.ID, createdAt, &p.Coin, &p.Score, &p.Level, &p.Trend, &p.MarketCap, &p.Model, &p.Source,
		&s.Open, &s.High, &s.Low, &s.Close, &s.Volume, &s.SMA5, &s.EMA12, &s.RSI, &s.MACD, &s.MarketCap,
	)
	if err != nil {
		return p, fmt.Errorf("scan prediction: %w", err)
	}
	p.TrendHint = p.Trend.Hint()
	s.Coin = p.Coin
	return p, nil
}

func insertQuery(table string) string {
	n := strings.Count(predictionColumns, ",") + 1
	marks := strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, predictionColumns, marks)
}

// recentQuery builds the history query; since is the already encoded lower bound.
func recentQuery(table string, q models.HistoryQuery, since interface{}) (string, []interface{}) {
	var where []string
	var args []interface{}
	if q.Coin != "" {
		where = append(where, "coin = ?")
		args = append(args, q.Coin)
	}
	if !q.Since.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, since)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	sql := fmt.Sprintf("SELECT %s FROM %s", predictionColumns, table)
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	sql += " ORDER BY created_at DESC LIMIT ?"
	return sql, append(args, limit)
}
