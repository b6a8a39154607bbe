package features

import (
    "errors"
    "fmt"
    "math"

    "CryptoLiq/internal/domain/models"
    "CryptoLiq/internal/services/liquidity"
)

// ErrNonFinite means a snapshot value is Inf or NaN.
var ErrNonFinite = errors.New("non-finite feature value")

// Column names as the trained artifact expects them.
const (
    ColOpen      = "Open"
    ColHigh      = "High"
    ColLow       = "Low"
    ColClose     = "Close"
    ColVolume    = "Volume"
    ColMarketCap = "Market Cap"
    ColSMA5      = "SMA_5"
    ColEMA12     = "EMA_12"
    ColRSI       = "RSI"
    ColMACD      = "MACD"
)

// Schema is an ordered list of feature columns.
type Schema []string

var (
    // DefaultSchema is the ten column layout of the liquidity artifact.
    DefaultSchema = Schema{ColOpen, ColHigh, ColLow, ColClose, ColVolume, ColMarketCap, ColSMA5, ColEMA12, ColRSI, ColMACD}
    // OHLCVSchema drops the technical indicators.
    OHLCVSchema = Schema{ColOpen, ColHigh, ColLow, ColClose, ColVolume, ColMarketCap}
)

// SchemaByName resolves a configured schema name. Empty means default.
func SchemaByName(name string) (Schema, error) {
    switch name {
    case "", "default":
        return DefaultSchema, nil
    case "ohlcv":
        return OHLCVSchema, nil
    default:
        return nil, fmt.Errorf("unknown feature schema %q", name)
    }
}

// BuildRow lays the snapshot out in schema order. A zero market cap is derived
// from close and volume; unset indicators stay zero. Inf and NaN are rejected.
func BuildRow(s models.Snapshot, schema Schema) (models.FeatureRow, error) {
    if len(schema) == 0 {
        return models.FeatureRow{}, fmt.Errorf("empty feature schema")
    }
    mc := s.MarketCap
    if mc == 0 {
        mc = liquidity.MarketCap(s.Close, s.Volume)
    }
    row := models.FeatureRow{
        Columns: append([]string(nil), schema...),
        Values:  make([]float64, 0, len(schema)),
    }
    for _, col := range schema {
        var v float64
        switch col {
        case ColOpen:
            v = s.Open
        case ColHigh:
            v = s.High
        case ColLow:
            v = s.Low
        case ColClose:
            v = s.Close
        case ColVolume:
            v = s.Volume
        case ColMarketCap:
            v = mc
        case ColSMA5:
            v = s.SMA5
        case ColEMA12:
            v = s.EMA12
        case ColRSI:
            v = s.RSI
        case ColMACD:
            v = s.MACD
        default:
            return models.FeatureRow{}, fmt.Errorf("unknown feature column %q", col)
        }
        if math.IsInf(v, 0) || math.IsNaN(v) {
            return models.FeatureRow{}, fmt.Errorf("%w: %s is %v", ErrNonFinite, col, v)
        }
        row.Values = append(row.Values, v)
    }
    return row, nil
}
