package models

import "time"

// LiquidityLevel is the bucket a liquidity score falls into.
type LiquidityLevel string

const (
	LiquidityLow    LiquidityLevel = "Low"
	LiquidityMedium LiquidityLevel = "Medium"
	LiquidityHigh   LiquidityLevel = "High"
)

// Trend is the direction hint derived from open and close.
type Trend string

const (
	TrendUp   Trend = "Up"
	TrendDown Trend = "Down"
	TrendFlat Trend = "Flat"
)

// Hint returns the human readable form of the trend.
func (t Trend) Hint() string {
	switch t {
	case TrendUp:
		return "Price may go Up"
	case TrendDown:
		return "Price may go Down"
	default:
		return "No Clear Price Movement"
	}
}

// Prediction sources.
const (
	SourceAPI    = "api"
	SourceSymbol = "symbol"
	SourceKafka  = "kafka"
	SourceCLI    = "cli"
)

// Prediction is the outcome of one inference call.
type Prediction struct {
	ID        string         `json:"id"`
	Coin      string         `json:"coin,omitempty"`
	Score     float64        `json:"score"`
	Level     LiquidityLevel `json:"level"`
	Trend     Trend          `json:"trend"`
	TrendHint string         `json:"trend_hint"`
	MarketCap float64        `json:"market_cap"`
	Model     string         `json:"model"`
	Source    string         `json:"source"`
	Cached    bool           `json:"cached"`
	Snapshot  Snapshot       `json:"snapshot"`
	CreatedAt time.Time      `json:"created_at"`
}

// ModelSchema describes the active model and the columns it is fed.
type ModelSchema struct {
	Model   string   `json:"model"`
	Columns []string `json:"columns"`
}

// HistoryQuery filters stored predictions. Zero values mean no filter.
type HistoryQuery struct {
	Coin  string
	Since time.Time
	Limit int
}

// Health is the liveness report of the scoring service.
type Health struct {
	Status      string `json:"status"`
	Model       string `json:"model"`
	ModelLoaded bool   `json:"model_loaded"`
	Storage     string `json:"storage"`
}
