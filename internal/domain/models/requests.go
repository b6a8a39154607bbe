package models

// Requests for liquidity HTTP endpoints. Defined in domain for consistency and reuse.

type PredictRequest struct {
	Coin             string  `json:"coin" validate:"omitempty,max=64"`
	Open             float64 `json:"open" validate:"finite,gte=0"`
	High             float64 `json:"high" validate:"finite,gte=0"`
	Low              float64 `json:"low" validate:"finite,gte=0"`
	Close            float64 `json:"close" validate:"finite,gte=0"`
	Volume           float64 `json:"volume" validate:"finite,gte=0"`
	MarketCap        float64 `json:"market_cap" validate:"finite,gte=0"`
	SMA5             float64 `json:"sma_5" validate:"finite,gte=0"`
	EMA12            float64 `json:"ema_12" validate:"finite,gte=0"`
	RSI              float64 `json:"rsi" validate:"finite,gte=0,lte=100"`
	MACD             float64 `json:"macd" validate:"finite"`
	AcceptDisclaimer bool    `json:"accept_disclaimer"`
}

// Snapshot converts the request into a domain snapshot.
func (r *PredictRequest) Snapshot() Snapshot {
	return Snapshot{
		Coin:      r.Coin,
		Open:      r.Open,
		High:      r.High,
		Low:       r.Low,
		Close:     r.Close,
		Volume:    r.Volume,
		MarketCap: r.MarketCap,
		SMA5:      r.SMA5,
		EMA12:     r.EMA12,
		RSI:       r.RSI,
		MACD:      r.MACD,
	}
}

type SymbolRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	N      int    `query:"n" json:"n" default:"200" validate:"gte=26,lte=5000"`
	TF     string `query:"tf" json:"tf" default:"1m" validate:"oneof=1s 1m 5m"`
}

type HistoryRequest struct {
	Coin  string `query:"coin" json:"coin" validate:"omitempty,max=64"`
	Since string `query:"since" json:"since"`
	Limit int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=1000"`
}
