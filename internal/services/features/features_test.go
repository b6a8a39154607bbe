package features

import (
    "math"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "CryptoLiq/internal/domain/models"
)

func TestSMA(t *testing.T) {
    assert.Equal(t, 4.0, SMA([]float64{1, 2, 3, 4, 5, 6}, 5))
    assert.Equal(t, 3.0, SMA([]float64{2, 4}, 5))
    assert.Equal(t, 0.0, SMA(nil, 5))
}

func TestEMA(t *testing.T) {
    assert.InDelta(t, 3.5, EMA([]float64{1, 2, 3, 4}, 2), 1e-12)
    assert.Equal(t, 3.0, EMA([]float64{1, 2, 3}, 5))
    assert.InDelta(t, 7.0, EMA([]float64{7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7}, 12), 1e-12)
}

func TestRSI(t *testing.T) {
    up := make([]float64, 20)
    down := make([]float64, 20)
    for i := range up {
        up[i] = float64(i + 1)
        down[i] = float64(100 - i)
    }
    assert.Equal(t, 100.0, RSI(up, 14))
    assert.Equal(t, 0.0, RSI(down, 14))
    assert.Equal(t, 50.0, RSI(up[:10], 14))
}

func TestMACD(t *testing.T) {
    flat := make([]float64, 40)
    for i := range flat {
        flat[i] = 10
    }
    assert.InDelta(t, 0.0, MACD(flat, 12, 26), 1e-12)
    assert.Equal(t, 0.0, MACD(flat[:20], 12, 26))
}

func TestBuildRowDefaultSchema(t *testing.T) {
    row, err := BuildRow(models.DemoSnapshot(), DefaultSchema)
    require.NoError(t, err)
    require.Len(t, row.Values, 10)
    assert.Equal(t, []string(DefaultSchema), row.Columns)
    assert.Equal(t, 56787.5, row.Values[0])
    assert.Equal(t, 123456.789, row.Values[4])

    mc, ok := row.Get(ColMarketCap)
    require.True(t, ok)
    assert.Equal(t, 7777777707.0, math.Round(mc*10)/10)

    for _, col := range []string{ColSMA5, ColEMA12, ColRSI, ColMACD} {
        v, ok := row.Get(col)
        require.True(t, ok)
        assert.Zero(t, v, col)
    }
}

func TestBuildRowKeepsSuppliedMarketCap(t *testing.T) {
    s := models.Snapshot{Close: 2, Volume: 3, MarketCap: 10}
    row, err := BuildRow(s, OHLCVSchema)
    require.NoError(t, err)
    assert.Len(t, row.Values, 6)
    mc, _ := row.Get(ColMarketCap)
    assert.Equal(t, 10.0, mc)
}

func TestBuildRowErrors(t *testing.T) {
    _, err := BuildRow(models.Snapshot{}, Schema{"Open", "open_interest"})
    assert.Error(t, err)
    _, err = BuildRow(models.Snapshot{}, nil)
    assert.Error(t, err)
}

func TestBuildRowRejectsNonFinite(t *testing.T) {
    _, err := BuildRow(models.Snapshot{Open: 1, Close: 2, Volume: math.Inf(1)}, DefaultSchema)
    assert.ErrorIs(t, err, ErrNonFinite)
    assert.Contains(t, err.Error(), "Volume")

    _, err = BuildRow(models.Snapshot{Close: 2, RSI: math.NaN()}, DefaultSchema)
    assert.ErrorIs(t, err, ErrNonFinite)
}

func TestSchemaByName(t *testing.T) {
    s, err := SchemaByName("")
    require.NoError(t, err)
    assert.Equal(t, DefaultSchema, s)
    s, err = SchemaByName("ohlcv")
    require.NoError(t, err)
    assert.Equal(t, OHLCVSchema, s)
    _, err = SchemaByName("v2")
    assert.Error(t, err)
}

func TestSnapshotFromCandles(t *testing.T) {
    base := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
    cs := make([]models.Candle, 30)
    for i := range cs {
        p := float64(100 + i)
        cs[i] = models.Candle{Bucket: base.Add(time.Duration(i) * time.Minute), Symbol: "BTCUSDT", Open: p - 0.5, High: p + 1, Low: p - 1, Close: p, Volume: 2}
    }

    s, err := SnapshotFromCandles("BTCUSDT", cs)
    require.NoError(t, err)
    assert.Equal(t, "BTCUSDT", s.Coin)
    assert.Equal(t, 129.0, s.Close)
    assert.Equal(t, 258.0, s.MarketCap)
    assert.Equal(t, 127.0, s.SMA5)
    assert.Equal(t, 100.0, s.RSI)
    assert.Greater(t, s.MACD, 0.0)

    _, err = SnapshotFromCandles("BTCUSDT", cs[:10])
    assert.ErrorIs(t, err, ErrInsufficientCandles)
}
