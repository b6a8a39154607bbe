package model

import (
    "context"
    "fmt"

    "CryptoLiq/internal/domain/models"
    domsvc "CryptoLiq/internal/domain/service"
)

// Unavailable stands in for a model that failed to load.
type Unavailable struct {
    Reason error
}

func (Unavailable) Name() string { return "unavailable" }

func (Unavailable) Columns() []string { return nil }

// Err explains why no model is loaded.
func (u Unavailable) Err() error {
    if u.Reason != nil {
        return fmt.Errorf("%w: %v", domsvc.ErrModelNotLoaded, u.Reason)
    }
    return domsvc.ErrModelNotLoaded
}

func (u Unavailable) Predict(context.Context, models.FeatureRow) (float64, error) {
    return 0, u.Err()
}

var _ domsvc.LiquidityModel = Unavailable{}
