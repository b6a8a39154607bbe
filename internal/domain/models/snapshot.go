package models

// Snapshot is one market observation submitted for a single inference call.
// Indicator fields are optional; zero means "not supplied".
type Snapshot struct {
	Coin      string  `json:"coin,omitempty"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	MarketCap float64 `json:"market_cap,omitempty"`
	SMA5      float64 `json:"sma_5,omitempty"`
	EMA12     float64 `json:"ema_12,omitempty"`
	RSI       float64 `json:"rsi,omitempty"`
	MACD      float64 `json:"macd,omitempty"`
}

// FeatureRow is the ordered single-row table handed to a model.
type FeatureRow struct {
	Columns []string  `json:"columns"`
	Values  []float64 `json:"values"`
}

// Get returns the value of the named column.
func (r FeatureRow) Get(column string) (float64, bool) {
	for i, c := range r.Columns {
		if c == column && i < len(r.Values) {
			return r.Values[i], true
		}
	}
	return 0, false
}

// Coins lists the coin names a client may attach to a snapshot.
var Coins = []string{
	"Avalanche", "BNB", "Bitcoin", "Cardano", "Chainlink", "Dogecoin", "Ethereum",
	"Filecoin", "Litecoin", "Near", "Polkadot", "Polygon", "Shiba Inu", "Solana",
	"Stellar", "TRON", "Tether", "Uniswap", "VeChain", "XRP",
}

// DemoSnapshot returns the canned demo values.
func DemoSnapshot() Snapshot {
	return Snapshot{
		Open:   56787.5,
		High:   64776.4,
		Low:    55000.0,
		Close:  63000.0,
		Volume: 123456.789,
	}
}
