package calculator

import (
	"aetherum/internal/domain"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

const (
	minLTV = 0.20
	maxLTV = 0.85

	baseInterestRate = 0.03

	highVolatilityLTVPenalty = 0.05
	lowVolatilityLTVBonus    = 0.02
	highCorrelationPenalty   = 0.05
	lowCorrelationBonus      = 0.02

	// +1% on the rate when the 24h move alone exceeds 10%
	volatilitySurcharge          = 0.01
	volatilitySurchargeThreshold = 10.0
)

var baseLTVByTier = map[domain.RiskTier]float64{
	domain.RiskTier1:   0.70,
	domain.RiskTier1_5: 0.60,
	domain.RiskTier2:   0.50,
	domain.RiskTier3:   0.40,
}

// an unrecognized tier still gets terms, just conservative ones
const fallbackBaseLTV = 0.30

var riskPremiumByTier = map[domain.RiskTier]float64{
	domain.RiskTier1:   0.04,
	domain.RiskTier1_5: 0.045,
	domain.RiskTier2:   0.05,
	domain.RiskTier3:   0.06,
}

const fallbackRiskPremium = 0.07

// VolatilityBounds are the 25th/75th percentile volatility scores of the
// assets being termed, computed once per calculation so every asset is
// adjusted against the same distribution.
type VolatilityBounds struct {
	P25 float64
	P75 float64
}

// ComputeVolatilityBounds uses nearest-rank percentiles so it stays
// defined for portfolios of any size, including a single asset (where
// both bounds collapse to its score and no adjustment applies).
func ComputeVolatilityBounds(assets []domain.AssetMetrics) (*VolatilityBounds, error) {
	scores := make([]float64, 0, len(assets))
	for _, a := range assets {
		scores = append(scores, a.VolatilityScore())
	}
	p25, err := stats.PercentileNearestRank(scores, 25)
	if err != nil {
		return nil, fmt.Errorf("failed to compute volatility percentiles: %w", err)
	}
	p75, err := stats.PercentileNearestRank(scores, 75)
	if err != nil {
		return nil, fmt.Errorf("failed to compute volatility percentiles: %w", err)
	}
	return &VolatilityBounds{P25: p25, P75: p75}, nil
}

type ComputeLoanTermsInput struct {
	Asset            domain.AssetMetrics
	Tier             domain.RiskTier
	VolatilityBounds VolatilityBounds

	// Correlations may be nil when no matrix could be built; the
	// correlation adjustment is skipped and flagged, never faked as zero
	Correlations     *domain.CorrelationMatrix
	PortfolioSymbols []string
}

// ComputeLoanTerms runs the per-asset LTV and interest rules. Adjustments
// are additive and order matters: volatility first, correlation second,
// then one clamp at the end.
func ComputeLoanTerms(in ComputeLoanTermsInput) domain.LoanTerms {
	baseLTV, ok := baseLTVByTier[in.Tier]
	if !ok {
		baseLTV = fallbackBaseLTV
	}
	ltv := baseLTV

	volScore := in.Asset.VolatilityScore()
	if volScore > in.VolatilityBounds.P75 {
		ltv -= highVolatilityLTVPenalty
	} else if volScore < in.VolatilityBounds.P25 {
		ltv += lowVolatilityLTVBonus
	}

	correlationSkipped := true
	if in.Correlations != nil {
		meanAbs, ok := in.Correlations.MeanAbsCorrelation(in.Asset.Symbol, in.PortfolioSymbols)
		if ok {
			correlationSkipped = false
			if meanAbs > 0.8 {
				ltv -= highCorrelationPenalty
			} else if meanAbs < 0.5 {
				ltv += lowCorrelationBonus
			}
		}
	}

	ltv = math.Max(minLTV, math.Min(ltv, maxLTV))

	return domain.LoanTerms{
		Symbol:             in.Asset.Symbol,
		Tier:               in.Tier,
		BaseLTV:            baseLTV,
		AdjustedLTV:        ltv,
		InterestRate:       interestRate(in.Tier, in.Asset),
		CorrelationSkipped: correlationSkipped,
	}
}

func interestRate(tier domain.RiskTier, asset domain.AssetMetrics) float64 {
	premium, ok := riskPremiumByTier[tier]
	if !ok {
		premium = fallbackRiskPremium
	}
	rate := baseInterestRate + premium
	if math.Abs(asset.Change24h) > volatilitySurchargeThreshold {
		rate += volatilitySurcharge
	}
	return rate
}
