package features

import (
    "errors"
    "fmt"

    "CryptoLiq/internal/domain/models"
    "CryptoLiq/internal/services/liquidity"
)

// Indicator periods used for the derived columns.
const (
    SMAPeriod  = 5
    EMAPeriod  = 12
    RSIPeriod  = 14
    MACDFast   = 12
    MACDSlow   = 26
    MinCandles = MACDSlow
)

// ErrInsufficientCandles means the history is too short for the indicators.
var ErrInsufficientCandles = errors.New("insufficient candles")

// Closes extracts close prices in candle order.
func Closes(candles []models.Candle) []float64 {
    out := make([]float64, len(candles))
    for i, c := range candles {
        out[i] = c.Close
    }
    return out
}

// SnapshotFromCandles builds a snapshot from candles sorted oldest first: the
// last candle supplies OHLCV and the full series supplies the indicators.
func SnapshotFromCandles(symbol string, candles []models.Candle) (models.Snapshot, error) {
    if len(candles) < MinCandles {
        return models.Snapshot{}, fmt.Errorf("%w: need at least %d for %s, got %d", ErrInsufficientCandles, MinCandles, symbol, len(candles))
    }
    last := candles[len(candles)-1]
    closes := Closes(candles)
    return models.Snapshot{
        Coin:      symbol,
        Open:      last.Open,
        High:      last.High,
        Low:       last.Low,
        Close:     last.Close,
        Volume:    last.Volume,
        MarketCap: liquidity.MarketCap(last.Close, last.Volume),
        SMA5:      SMA(closes, SMAPeriod),
        EMA12:     EMA(closes, EMAPeriod),
        RSI:       RSI(closes, RSIPeriod),
        MACD:      MACD(closes, MACDFast, MACDSlow),
    }, nil
}
