package calculator

import (
	"aetherum/internal/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func snapshotOf(assets ...domain.AssetMetrics) domain.MarketSnapshot {
	return domain.MarketSnapshot{Assets: assets}
}

func TestQuantileClassifier(t *testing.T) {
	classifier := NewRiskClassifier(RiskTierStrategy_Quantile)

	t.Run("four distinct scores land one per tier", func(t *testing.T) {
		// ranks follow market cap descending, so risk scores come out
		// as 1*1, 2*2, 3*3, 4*4
		snapshot := snapshotOf(
			domain.AssetMetrics{Symbol: "BTC", Change24h: 1, MarketCap: 100e9},
			domain.AssetMetrics{Symbol: "ETH", Change24h: 2, MarketCap: 50e9},
			domain.AssetMetrics{Symbol: "SOL", Change24h: 3, MarketCap: 10e9},
			domain.AssetMetrics{Symbol: "XRP", Change24h: 4, MarketCap: 1e9},
		)

		tiers, err := classifier.Classify(snapshot)
		require.NoError(t, err)

		require.Equal(t, map[string]domain.RiskTier{
			"BTC": domain.RiskTier1,
			"ETH": domain.RiskTier1_5,
			"SOL": domain.RiskTier2,
			"XRP": domain.RiskTier3,
		}, tiers)
	})

	t.Run("tiers are monotonic in risk score", func(t *testing.T) {
		snapshot := snapshotOf(
			domain.AssetMetrics{Symbol: "A", Change24h: 9, MarketCap: 1e9},
			domain.AssetMetrics{Symbol: "B", Change24h: 2, MarketCap: 80e9},
			domain.AssetMetrics{Symbol: "C", Change24h: 5, MarketCap: 20e9},
			domain.AssetMetrics{Symbol: "D", Change24h: 1, MarketCap: 300e9},
			domain.AssetMetrics{Symbol: "E", Change24h: 14, MarketCap: 0.5e9},
		)

		tiers, err := classifier.Classify(snapshot)
		require.NoError(t, err)
		require.Len(t, tiers, 5)

		tierIndex := map[domain.RiskTier]int{}
		for i, tier := range domain.RiskTiers {
			tierIndex[tier] = i
		}

		ranks := map[string]int{"D": 1, "B": 2, "C": 3, "A": 4, "E": 5}
		scores := map[string]float64{}
		for _, a := range snapshot.Assets {
			scores[a.Symbol] = a.VolatilityScore() * float64(ranks[a.Symbol])
		}
		for _, a := range snapshot.Assets {
			for _, b := range snapshot.Assets {
				if scores[a.Symbol] < scores[b.Symbol] {
					require.LessOrEqual(t, tierIndex[tiers[a.Symbol]], tierIndex[tiers[b.Symbol]])
				}
			}
		}
	})

	t.Run("fewer than four assets is insufficient data", func(t *testing.T) {
		snapshot := snapshotOf(
			domain.AssetMetrics{Symbol: "BTC", Change24h: 1, MarketCap: 100e9},
			domain.AssetMetrics{Symbol: "ETH", Change24h: 2, MarketCap: 50e9},
		)

		_, err := classifier.Classify(snapshot)
		require.Error(t, err)
		require.IsType(t, InsufficientDataError{}, err)
	})

	t.Run("identical caps tie-break by symbol", func(t *testing.T) {
		// equal caps rank A=1..D=4, so equal 24h moves still give four
		// distinct scores and deterministic tiers
		snapshot := snapshotOf(
			domain.AssetMetrics{Symbol: "A", Change24h: 2, MarketCap: 1e9},
			domain.AssetMetrics{Symbol: "B", Change24h: 2, MarketCap: 1e9},
			domain.AssetMetrics{Symbol: "C", Change24h: 2, MarketCap: 1e9},
			domain.AssetMetrics{Symbol: "D", Change24h: 2, MarketCap: 1e9},
		)

		tiers, err := classifier.Classify(snapshot)
		require.NoError(t, err)
		require.Equal(t, domain.RiskTier1, tiers["A"])
		require.Equal(t, domain.RiskTier3, tiers["D"])
	})

	t.Run("score on a quartile boundary takes the lower tier", func(t *testing.T) {
		// descending caps rank A=1..E=5 and equal moves give scores 1..5,
		// putting the second-lowest score exactly on the 25th percentile.
		// every tier stays populated
		snapshot := snapshotOf(
			domain.AssetMetrics{Symbol: "A", Change24h: 1, MarketCap: 500e9},
			domain.AssetMetrics{Symbol: "B", Change24h: 1, MarketCap: 400e9},
			domain.AssetMetrics{Symbol: "C", Change24h: 1, MarketCap: 300e9},
			domain.AssetMetrics{Symbol: "D", Change24h: 1, MarketCap: 200e9},
			domain.AssetMetrics{Symbol: "E", Change24h: 1, MarketCap: 100e9},
		)

		tiers, err := classifier.Classify(snapshot)
		require.NoError(t, err)
		require.Equal(t, map[string]domain.RiskTier{
			"A": domain.RiskTier1,
			"B": domain.RiskTier1,
			"C": domain.RiskTier1_5,
			"D": domain.RiskTier2,
			"E": domain.RiskTier3,
		}, tiers)
	})
}

func TestThresholdClassifier(t *testing.T) {
	classifier := NewRiskClassifier(RiskTierStrategy_Threshold)

	t.Run("fixed cutoffs", func(t *testing.T) {
		snapshot := snapshotOf(
			domain.AssetMetrics{Symbol: "BTC", Change24h: 2, MarketCap: 900e9},
			domain.AssetMetrics{Symbol: "SOL", Change24h: 5, MarketCap: 60e9},
			domain.AssetMetrics{Symbol: "DOGE", Change24h: -8, MarketCap: 2e9},
			domain.AssetMetrics{Symbol: "PEPE", Change24h: 22, MarketCap: 1e9},
		)

		tiers, err := classifier.Classify(snapshot)
		require.NoError(t, err)

		require.Equal(t, map[string]domain.RiskTier{
			"BTC":  domain.RiskTier1,
			"SOL":  domain.RiskTier1_5,
			"DOGE": domain.RiskTier2,
			"PEPE": domain.RiskTier3,
		}, tiers)
	})

	t.Run("big cap with big swings is not tier 1", func(t *testing.T) {
		snapshot := snapshotOf(
			domain.AssetMetrics{Symbol: "BTC", Change24h: 7, MarketCap: 900e9},
		)

		tiers, err := classifier.Classify(snapshot)
		require.NoError(t, err)
		require.Equal(t, domain.RiskTier2, tiers["BTC"])
	})

	t.Run("works on fewer than four assets", func(t *testing.T) {
		snapshot := snapshotOf(
			domain.AssetMetrics{Symbol: "BTC", Change24h: 2, MarketCap: 900e9},
		)

		tiers, err := classifier.Classify(snapshot)
		require.NoError(t, err)
		require.Len(t, tiers, 1)
	})
}

func TestNewRiskTierStrategy(t *testing.T) {
	strategy, err := NewRiskTierStrategy("QUANTILE")
	require.NoError(t, err)
	require.Equal(t, RiskTierStrategy_Quantile, *strategy)

	_, err = NewRiskTierStrategy("VIBES")
	require.Error(t, err)
}
