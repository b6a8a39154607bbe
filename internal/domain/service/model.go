package service

import (
	"context"
	"errors"

	"CryptoLiq/internal/domain/models"
)

var (
	// ErrModelNotLoaded means no artifact could be loaded at startup.
	ErrModelNotLoaded = errors.New("Model not loaded. Prediction unavailable.")
	// ErrPredictionFailed wraps every inference failure surfaced to users.
	ErrPredictionFailed = errors.New("Prediction failed")
	// ErrSchemaMismatch means the feature row does not match the model's columns.
	ErrSchemaMismatch = errors.New("feature schema mismatch")
	// ErrNonFiniteScore means the model produced Inf or NaN for a row.
	ErrNonFiniteScore = errors.New("non-finite score")
)

// LiquidityModel is an externally trained regression model. It is opaque:
// one row in, one scalar score out.
type LiquidityModel interface {
	Name() string
	Columns() []string
	Predict(ctx context.Context, row models.FeatureRow) (float64, error)
}
