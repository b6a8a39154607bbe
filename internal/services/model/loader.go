package model

import (
    "fmt"

    "CryptoLiq/internal/domain/models"
    domsvc "CryptoLiq/internal/domain/service"
    "CryptoLiq/internal/services/features"
    "CryptoLiq/pkg/config"
)

// Load builds the configured model. HTTP models take their columns from the
// configured feature schema; artifact models declare their own, which
// must equal it.
func Load(cfg *config.Config) (domsvc.LiquidityModel, error) {
    var m domsvc.LiquidityModel
    switch cfg.Model.Type {
    case config.ModelArtifact:
        am, err := LoadArtifact(cfg.Model.ArtifactPath)
        if err != nil {
            return nil, err
        }
        schema, err := features.SchemaByName(cfg.Model.Schema)
        if err != nil {
            return nil, err
        }
        if err := checkColumns(am.Columns(), models.FeatureRow{Columns: schema, Values: make([]float64, len(schema))}); err != nil {
            return nil, fmt.Errorf("artifact %s against schema %q: %w", am.Name(), cfg.Model.Schema, err)
        }
        m = am
    case config.ModelHTTP:
        schema, err := features.SchemaByName(cfg.Model.Schema)
        if err != nil {
            return nil, err
        }
        m = NewHTTPModel(cfg.Model.ServiceURL, schema, cfg.Model.Timeout)
    default:
        return nil, fmt.Errorf("unknown model type %q", cfg.Model.Type)
    }
    if cfg.Model.Breaker.Enabled {
        m = NewBreakerModel(m, BreakerSettings{
            MaxFailures: cfg.Model.Breaker.MaxFailures,
            Interval:    cfg.Model.Breaker.Interval,
            OpenTimeout: cfg.Model.Breaker.OpenTimeout,
        })
    }
    return m, nil
}
