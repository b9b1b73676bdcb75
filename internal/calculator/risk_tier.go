package calculator

import (
	"aetherum/internal/domain"
	"fmt"
	"sort"
)

type RiskTierStrategy string

const (
	// RiskTierStrategy_Quantile scores every asset in the snapshot as
	// volatility * market-cap-rank and bins the universe into quartiles.
	// An asset's tier therefore depends on which other assets were
	// fetched that run - re-running against a different universe can move
	// an unchanged asset between tiers. Known sensitivity, not a bug.
	RiskTierStrategy_Quantile RiskTierStrategy = "QUANTILE"
	// RiskTierStrategy_Threshold classifies each asset independently
	// against fixed volatility/market-cap cutoffs.
	RiskTierStrategy_Threshold RiskTierStrategy = "THRESHOLD"
)

func NewRiskTierStrategy(in string) (*RiskTierStrategy, error) {
	v := RiskTierStrategy(in)
	switch v {
	case RiskTierStrategy_Quantile, RiskTierStrategy_Threshold:
		return &v, nil
	}
	return nil, fmt.Errorf("invalid risk tier strategy: %s", in)
}

type RiskClassifier interface {
	Strategy() RiskTierStrategy
	// Classify assigns a tier to every asset in the snapshot.
	Classify(snapshot domain.MarketSnapshot) (map[string]domain.RiskTier, error)
}

func NewRiskClassifier(strategy RiskTierStrategy) RiskClassifier {
	if strategy == RiskTierStrategy_Threshold {
		return thresholdClassifierHandler{}
	}
	return quantileClassifierHandler{}
}

type quantileClassifierHandler struct{}

func (h quantileClassifierHandler) Strategy() RiskTierStrategy {
	return RiskTierStrategy_Quantile
}

func (h quantileClassifierHandler) Classify(snapshot domain.MarketSnapshot) (map[string]domain.RiskTier, error) {
	if len(snapshot.Assets) < 4 {
		return nil, InsufficientDataError{
			fmt.Errorf("quantile tiering needs at least 4 assets, snapshot has %d", len(snapshot.Assets)),
		}
	}

	rankBySymbol := marketCapRanks(snapshot.Assets)

	scoreBySymbol := map[string]float64{}
	scores := make([]float64, 0, len(snapshot.Assets))
	for _, asset := range snapshot.Assets {
		score := asset.VolatilityScore() * float64(rankBySymbol[asset.Symbol])
		scoreBySymbol[asset.Symbol] = score
		scores = append(scores, score)
	}

	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	sort.Float64s(sorted)

	q25 := interpolatedPercentile(sorted, 25)
	q50 := interpolatedPercentile(sorted, 50)
	q75 := interpolatedPercentile(sorted, 75)

	tiers := map[string]domain.RiskTier{}
	for symbol, score := range scoreBySymbol {
		// right-closed bins: a score sitting exactly on a quartile
		// boundary lands in the lower-risk tier
		switch {
		case score <= q25:
			tiers[symbol] = domain.RiskTier1
		case score <= q50:
			tiers[symbol] = domain.RiskTier1_5
		case score <= q75:
			tiers[symbol] = domain.RiskTier2
		default:
			tiers[symbol] = domain.RiskTier3
		}
	}

	return tiers, nil
}

// interpolatedPercentile is the linearly-interpolated quantile over an
// already sorted slice. With these cut points, right-closed quartile bins
// are equal-frequency: every quartile of a >=4 asset universe holds at
// least one asset.
func interpolatedPercentile(sorted []float64, percent float64) float64 {
	position := percent / 100 * float64(len(sorted)-1)
	lower := int(position)
	if lower >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	fraction := position - float64(lower)
	return sorted[lower] + fraction*(sorted[lower+1]-sorted[lower])
}

// marketCapRanks gives the largest market cap rank 1. Ties are broken by
// symbol so ranks stay deterministic run to run.
func marketCapRanks(assets []domain.AssetMetrics) map[string]int {
	sorted := make([]domain.AssetMetrics, len(assets))
	copy(sorted, assets)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].MarketCap != sorted[j].MarketCap {
			return sorted[i].MarketCap > sorted[j].MarketCap
		}
		return sorted[i].Symbol < sorted[j].Symbol
	})

	ranks := map[string]int{}
	for i, asset := range sorted {
		ranks[asset.Symbol] = i + 1
	}
	return ranks
}

type thresholdClassifierHandler struct{}

func (h thresholdClassifierHandler) Strategy() RiskTierStrategy {
	return RiskTierStrategy_Threshold
}

func (h thresholdClassifierHandler) Classify(snapshot domain.MarketSnapshot) (map[string]domain.RiskTier, error) {
	tiers := map[string]domain.RiskTier{}
	for _, asset := range snapshot.Assets {
		tiers[asset.Symbol] = classifyByThreshold(asset)
	}
	return tiers, nil
}

func classifyByThreshold(asset domain.AssetMetrics) domain.RiskTier {
	vol := asset.Change24h
	if vol < 0 {
		vol = -vol
	}
	switch {
	case vol < 3 && asset.MarketCap > 10_000_000_000:
		return domain.RiskTier1
	case vol < 6 && asset.MarketCap > 5_000_000_000:
		return domain.RiskTier1_5
	case vol < 10:
		return domain.RiskTier2
	default:
		return domain.RiskTier3
	}
}
