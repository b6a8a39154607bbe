package model

import (
    "context"
    "errors"
    "fmt"
    "time"

    "github.com/sony/gobreaker"

    "CryptoLiq/internal/domain/models"
    domsvc "CryptoLiq/internal/domain/service"
)

// BreakerSettings tunes the circuit around a model.
type BreakerSettings struct {
    MaxFailures uint32
    Interval    time.Duration
    OpenTimeout time.Duration
}

// BreakerModel stops calling a failing model until the open timeout passes.
type BreakerModel struct {
    inner domsvc.LiquidityModel
    cb    *gobreaker.CircuitBreaker
}

func NewBreakerModel(inner domsvc.LiquidityModel, s BreakerSettings) *BreakerModel {
    if s.MaxFailures == 0 {
        s.MaxFailures = 3
    }
    st := gobreaker.Settings{
        Name:     inner.Name(),
        Interval: s.Interval,
        Timeout:  s.OpenTimeout,
        ReadyToTrip: func(counts gobreaker.Counts) bool {
            return counts.ConsecutiveFailures >= s.MaxFailures
        },
        // Schema mismatches are caller errors and must not trip the breaker.
        IsSuccessful: func(err error) bool {
            return err == nil || errors.Is(err, domsvc.ErrSchemaMismatch)
        },
    }
    return &BreakerModel{inner: inner, cb: gobreaker.NewCircuitBreaker(st)}
}

func (b *BreakerModel) Name() string { return b.inner.Name() }

func (b *BreakerModel) Columns() []string { return b.inner.Columns() }

func (b *BreakerModel) Predict(ctx context.Context, row models.FeatureRow) (float64, error) {
    out, err := b.cb.Execute(func() (interface{}, error) {
        return b.inner.Predict(ctx, row)
    })
    if err != nil {
        return 0, fmt.Errorf("model %s: %w", b.inner.Name(), err)
    }
    return out.(float64), nil
}

// State exposes the breaker state for health reporting.
func (b *BreakerModel) State() string { return b.cb.State().String() }

var _ domsvc.LiquidityModel = (*BreakerModel)(nil)
