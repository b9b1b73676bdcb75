package repository

import (
	"aetherum/internal/domain"
	"aetherum/internal/logger"
	"aetherum/pkg/coinmarketcap"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	snapshotCacheKey = "CMC_DATA"
	snapshotCacheTTL = 15 * time.Minute
	snapshotLimit    = 100
)

type MarketDataRepository interface {
	// GetSnapshot returns the current market snapshot, served from the
	// redis cache when a fresh copy exists.
	GetSnapshot(ctx context.Context) (*domain.MarketSnapshot, error)
}

type marketDataRepositoryHandler struct {
	CmcClient   coinmarketcap.Client
	RedisClient *redis.Client
}

// NewMarketDataRepository wires the CoinMarketCap client with an optional
// redis cache. A nil redis client disables caching entirely rather than
// failing.
func NewMarketDataRepository(cmcClient coinmarketcap.Client, redisClient *redis.Client) MarketDataRepository {
	return marketDataRepositoryHandler{
		CmcClient:   cmcClient,
		RedisClient: redisClient,
	}
}

func (h marketDataRepositoryHandler) GetSnapshot(ctx context.Context) (*domain.MarketSnapshot, error) {
	if h.RedisClient != nil {
		cached, err := h.RedisClient.Get(ctx, snapshotCacheKey).Bytes()
		if err == nil {
			snapshot := domain.MarketSnapshot{}
			if err := json.Unmarshal(cached, &snapshot); err == nil && len(snapshot.Assets) > 0 {
				return &snapshot, nil
			}
			logger.Warn("discarding unreadable cached snapshot")
		} else if err != redis.Nil {
			logger.Warn("failed to read snapshot cache: %v", err)
		}
	}

	listings, err := h.CmcClient.ListLatest(snapshotLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch market snapshot: %w", err)
	}

	snapshot := &domain.MarketSnapshot{
		FetchedAt: time.Now().UTC(),
	}
	for _, listing := range listings {
		quote, ok := listing.Quote["USD"]
		if !ok {
			logger.Debug("%s listing has no USD quote, skipping", listing.Symbol)
			continue
		}
		// an asset missing any metric is left out of the snapshot
		// entirely; downstream treats a referenced-but-absent symbol as
		// a hard error instead of running on defaults
		if quote.Price == nil || quote.PercentChange24H == nil || quote.PercentChange7D == nil ||
			quote.PercentChange30D == nil || quote.PercentChange90D == nil || quote.MarketCap == nil {
			logger.Debug("%s listing has incomplete quote data, skipping", listing.Symbol)
			continue
		}
		snapshot.Assets = append(snapshot.Assets, domain.AssetMetrics{
			Symbol:    listing.Symbol,
			Name:      listing.Name,
			LastPrice: *quote.Price,
			Change24h: *quote.PercentChange24H,
			Change7d:  *quote.PercentChange7D,
			Change30d: *quote.PercentChange30D,
			Change90d: *quote.PercentChange90D,
			MarketCap: *quote.MarketCap,
		})
	}

	if h.RedisClient != nil {
		snapshotBytes, err := json.Marshal(snapshot)
		if err == nil {
			err = h.RedisClient.Set(ctx, snapshotCacheKey, snapshotBytes, snapshotCacheTTL).Err()
		}
		if err != nil {
			logger.Warn("failed to cache snapshot: %v", err)
		}
	}

	return snapshot, nil
}
