package domain

import (
	"math"
	"time"
)

// AssetMetrics is one row of a market snapshot - the quote fields we pull
// from CoinMarketCap for a single symbol. All fields must be populated;
// a symbol with partial data should never make it into a snapshot.
type AssetMetrics struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	LastPrice float64 `json:"lastPrice"`
	Change24h float64 `json:"change24h"`
	Change7d  float64 `json:"change7d"`
	Change30d float64 `json:"change30d"`
	Change90d float64 `json:"change90d"`
	MarketCap float64 `json:"marketCap"`
}

// VolatilityScore blends the price-change horizons, decaying the longer
// windows so the 24h move dominates. Always >= 0.
func (m AssetMetrics) VolatilityScore() float64 {
	return math.Abs(m.Change24h) +
		math.Abs(m.Change7d)/7 +
		math.Abs(m.Change30d)/30 +
		math.Abs(m.Change90d)/90
}

// MarketSnapshot is the full set of metrics fetched in one run, keyed by
// symbol. Quantile-based tiering operates over the whole snapshot, so two
// snapshots with different universes can tier the same asset differently.
type MarketSnapshot struct {
	Assets    []AssetMetrics `json:"assets"`
	FetchedAt time.Time      `json:"fetchedAt"`
}

func (s MarketSnapshot) Get(symbol string) (AssetMetrics, bool) {
	for _, a := range s.Assets {
		if a.Symbol == symbol {
			return a, true
		}
	}
	return AssetMetrics{}, false
}

func (s MarketSnapshot) Symbols() []string {
	symbols := make([]string, 0, len(s.Assets))
	for _, a := range s.Assets {
		symbols = append(symbols, a.Symbol)
	}
	return symbols
}

// PricePoint is a single observation in an asset's historical series.
type PricePoint struct {
	Timestamp time.Time
	Price     float64
}
