package repository

import (
	"context"

	"CryptoLiq/internal/domain/models"
)

// Timeframe represents candle resolution buckets.
type Timeframe string

const (
	TF1s Timeframe = "1s"
	TF1m Timeframe = "1m"
	TF5m Timeframe = "5m"
)

// FeatureStore provides read-only access to candle history for indicator derivation.
// Candles come back oldest first.
type FeatureStore interface {
	GetLatestNCandles(ctx context.Context, symbol string, n int, tf Timeframe) ([]models.Candle, error)
}

// DefaultTimeframe is used when a request omits or garbles the timeframe.
const DefaultTimeframe = TF1m

// NormalizeTimeframe converts a raw string to a supported timeframe, falling back to the default.
func NormalizeTimeframe(s string) Timeframe {
	switch tf := Timeframe(s); tf {
	case TF1s, TF1m, TF5m:
		return tf
	default:
		return DefaultTimeframe
	}
}
