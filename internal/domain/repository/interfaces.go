package repository

import (
	"context"

	"CryptoLiq/internal/domain/models"
)

// PredictionStore persists predictions for later inspection.
type PredictionStore interface {
	Init(ctx context.Context) error // ensure tables
	Save(ctx context.Context, p *models.Prediction) error
	Recent(ctx context.Context, q models.HistoryQuery) ([]models.Prediction, error)
	Health(ctx context.Context) error
	Close() error
}

// PredictionSink receives every successful prediction (event bus, live feed).
type PredictionSink interface {
	Publish(ctx context.Context, p *models.Prediction) error
}

// Metrics is the recorder the use cases report to.
type Metrics interface {
	RecordPrediction(level, source string)
	RecordScore(score float64)
	RecordCache(hit bool)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
