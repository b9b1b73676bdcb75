package repository

import (
	"aetherum/internal/domain"
	"aetherum/internal/logger"
	"aetherum/pkg/coingecko"
	"context"
	"time"
)

// coinGecko keys its chart API by coin id, not ticker symbol
var coinIDBySymbol = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"SOL":  "solana",
	"XRP":  "ripple",
	"LINK": "chainlink",
	"DOT":  "polkadot",
	"ADA":  "cardano",
	"AVAX": "avalanche-2",
}

type HistoricalPriceRepository interface {
	// GetDailySeries returns raw price series per symbol over the
	// lookback window. Symbols with no retrievable history are simply
	// absent from the result; correlation handles exclusion.
	GetDailySeries(ctx context.Context, symbols []string, lookbackDays int) (map[string][]domain.PricePoint, error)
}

type historicalPriceRepositoryHandler struct {
	GeckoClient coingecko.Client
}

func NewHistoricalPriceRepository(geckoClient coingecko.Client) HistoricalPriceRepository {
	return historicalPriceRepositoryHandler{
		GeckoClient: geckoClient,
	}
}

func (h historicalPriceRepositoryHandler) GetDailySeries(ctx context.Context, symbols []string, lookbackDays int) (map[string][]domain.PricePoint, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -lookbackDays)

	seriesBySymbol := map[string][]domain.PricePoint{}
	for _, symbol := range symbols {
		coinID, ok := coinIDBySymbol[symbol]
		if !ok {
			logger.Debug("no coin id mapping for %s, excluding from history", symbol)
			continue
		}

		points, err := h.GeckoClient.GetMarketChartRange(coinID, "usd", start, end)
		if err != nil {
			// a fetch failure costs this symbol its correlation
			// adjustment, not the whole calculation
			logger.Warn("failed to fetch history for %s: %v", symbol, err)
			continue
		}

		series := make([]domain.PricePoint, 0, len(points))
		for _, p := range points {
			series = append(series, domain.PricePoint{
				Timestamp: p.Timestamp,
				Price:     p.Price,
			})
		}
		seriesBySymbol[symbol] = series
	}

	return seriesBySymbol, nil
}
