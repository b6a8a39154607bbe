// Package liquidity holds the decision rules applied to a model score.
package liquidity

import (
	"math"

	"github.com/shopspring/decimal"

	"CryptoLiq/internal/domain/models"
)

// Bucket boundaries. A score equal to a boundary belongs to the upper bucket.
const (
	MediumThreshold = 0.4
	HighThreshold   = 0.7
)

// Classify maps a score to a liquidity level. Scores outside [0,1] are not
// rejected; they land in Low or High.
func Classify(score float64) models.LiquidityLevel {
	switch {
	case score < MediumThreshold:
		return models.LiquidityLow
	case score < HighThreshold:
		return models.LiquidityMedium
	default:
		return models.LiquidityHigh
	}
}

// TrendOf returns the sign of close-open as a trend.
func TrendOf(open, close float64) models.Trend {
	switch {
	case close > open:
		return models.TrendUp
	case close < open:
		return models.TrendDown
	default:
		return models.TrendFlat
	}
}

// MarketCap derives market capitalisation as close * volume. The product is
// taken in decimal so binary rounding of the operands does not leak into it.
// decimal has no Inf or NaN, so non-finite operands use the float product.
func MarketCap(close, volume float64) float64 {
	if !finite(close) || !finite(volume) {
		return close * volume
	}
	mc, _ := decimal.NewFromFloat(close).Mul(decimal.NewFromFloat(volume)).Float64()
	return mc
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
