package app

import (
	"aetherum/internal/calculator"
	"aetherum/internal/domain"
	"aetherum/internal/logger"
	"aetherum/internal/repository"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const correlationLookbackDays = 90

type LoanCalculatorHandler struct {
	MarketDataRepository      repository.MarketDataRepository
	HistoricalPriceRepository repository.HistoricalPriceRepository
	NarrativeRepository       repository.NarrativeRepository
	// LoanCacheRepository may be nil; every request recomputes then
	LoanCacheRepository repository.LoanCacheRepository
	RiskClassifier      calculator.RiskClassifier
}

type CalculateLoanInput struct {
	Holdings   domain.PortfolioHolding
	Parameters domain.LoanParameters
}

type CalculateLoanResponse struct {
	QuoteID       uuid.UUID                   `json:"quoteId"`
	Summary       domain.PortfolioLoanSummary `json:"summary"`
	TermsBySymbol map[string]domain.LoanTerms `json:"termsBySymbol"`
	Breakdown     []domain.AssetBreakdown     `json:"breakdown"`

	// CorrelationAvailable distinguishes "no adjustment was warranted"
	// from "the adjustment was skipped for lack of data"
	CorrelationAvailable bool                          `json:"correlationAvailable"`
	Correlations         map[string]map[string]float64 `json:"correlations,omitempty"`

	Narrative string `json:"narrative"`
	FromCache bool   `json:"fromCache"`
}

// CalculateLoan runs the full pipeline: snapshot -> tiers -> correlations
// -> per-asset terms -> portfolio summary -> narrative. Pure with respect
// to its inputs; identical snapshot+portfolio in, identical figures out.
func (h LoanCalculatorHandler) CalculateLoan(ctx context.Context, in CalculateLoanInput) (*CalculateLoanResponse, error) {
	log := logger.FromContext(ctx)
	profile, hasProfile := domain.GetProfile(ctx)
	addEvent := func(name string) {
		if hasProfile {
			profile.Add(name)
		}
	}

	if err := in.Parameters.Validate(); err != nil {
		return nil, fmt.Errorf("invalid loan parameters: %w", err)
	}
	if len(in.Holdings) == 0 || !in.Holdings.TotalCollateral().IsPositive() {
		return nil, calculator.EmptyPortfolioError{}
	}
	for symbol, amount := range in.Holdings {
		if !amount.IsPositive() {
			return nil, fmt.Errorf("holding %s must have positive collateral, got %s", symbol, amount)
		}
	}

	prompt := buildLoanPrompt(in.Holdings, in.Parameters)
	cacheKey := repository.LoanCacheKey(prompt, in.Holdings)

	if h.LoanCacheRepository != nil {
		cached, err := h.LoanCacheRepository.Get(ctx, cacheKey)
		if err != nil {
			log.Warnf("loan cache read failed, recomputing: %v", err)
		} else if cached != nil {
			addEvent("served from cache")
			return &CalculateLoanResponse{
				QuoteID:              uuid.New(),
				Summary:              cached.Summary,
				TermsBySymbol:        cached.TermsBySymbol,
				Breakdown:            cached.Breakdown,
				CorrelationAvailable: cached.CorrelationAvailable,
				Correlations:         cached.Correlations,
				Narrative:            cached.Narrative,
				FromCache:            true,
			}, nil
		}
	}

	snapshot, err := h.MarketDataRepository.GetSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get market snapshot: %w", err)
	}
	addEvent("fetched snapshot")

	portfolioSymbols := make([]string, 0, len(in.Holdings))
	for symbol := range in.Holdings {
		portfolioSymbols = append(portfolioSymbols, symbol)
	}
	sort.Strings(portfolioSymbols)

	portfolioAssets := make([]domain.AssetMetrics, 0, len(portfolioSymbols))
	for _, symbol := range portfolioSymbols {
		asset, ok := snapshot.Get(symbol)
		if !ok {
			return nil, calculator.MissingAssetMetricsError{Symbol: symbol}
		}
		portfolioAssets = append(portfolioAssets, asset)
	}

	tiers, err := h.RiskClassifier.Classify(*snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to classify risk tiers: %w", err)
	}
	addEvent("classified tiers")

	correlations := h.correlationMatrix(ctx, portfolioSymbols)
	addEvent("computed correlations")

	bounds, err := calculator.ComputeVolatilityBounds(portfolioAssets)
	if err != nil {
		return nil, err
	}

	termsBySymbol := map[string]domain.LoanTerms{}
	for _, asset := range portfolioAssets {
		termsBySymbol[asset.Symbol] = calculator.ComputeLoanTerms(calculator.ComputeLoanTermsInput{
			Asset:            asset,
			Tier:             tiers[asset.Symbol],
			VolatilityBounds: *bounds,
			Correlations:     correlations,
			PortfolioSymbols: portfolioSymbols,
		})
	}

	summary, err := calculator.Aggregate(calculator.AggregateInput{
		Holdings:      in.Holdings,
		TermsBySymbol: termsBySymbol,
		TermMonths:    in.Parameters.TermMonths,
	})
	if err != nil {
		return nil, err
	}
	addEvent("aggregated portfolio")

	breakdown := make([]domain.AssetBreakdown, 0, len(portfolioAssets))
	for _, asset := range portfolioAssets {
		terms := termsBySymbol[asset.Symbol]
		collateral := in.Holdings[asset.Symbol]
		breakdown = append(breakdown, domain.AssetBreakdown{
			Symbol:          asset.Symbol,
			Tier:            terms.Tier,
			VolatilityScore: asset.VolatilityScore(),
			AdjustedLTV:     terms.AdjustedLTV,
			InterestRate:    terms.InterestRate,
			Collateral:      collateral,
			LoanShare:       collateral.Mul(decimal.NewFromFloat(terms.AdjustedLTV)),
		})
	}

	var correlationsOut map[string]map[string]float64
	if correlations != nil {
		correlationsOut = correlations.ToMap()
	}

	// commentary is advisory; a narrative failure never blocks the quote
	narrative := ""
	if h.NarrativeRepository != nil {
		enhancedPrompt := buildEnhancedPrompt(prompt, portfolioAssets, termsBySymbol, summary, correlationsOut)
		narrative, err = h.NarrativeRepository.GenerateMarketCommentary(ctx, enhancedPrompt)
		if err != nil {
			log.Warnf("failed to generate market commentary: %v", err)
			narrative = ""
		}
	}
	addEvent("generated narrative")

	if h.LoanCacheRepository != nil {
		err = h.LoanCacheRepository.Set(ctx, cacheKey, repository.CachedLoanCalculation{
			Narrative:            narrative,
			Summary:              *summary,
			TermsBySymbol:        termsBySymbol,
			Breakdown:            breakdown,
			CorrelationAvailable: correlations != nil,
			Correlations:         correlationsOut,
			CachedAt:             time.Now().UTC(),
		})
		if err != nil {
			log.Warnf("failed to cache loan result: %v", err)
		}
	}

	return &CalculateLoanResponse{
		QuoteID:              uuid.New(),
		Summary:              *summary,
		TermsBySymbol:        termsBySymbol,
		Breakdown:            breakdown,
		CorrelationAvailable: correlations != nil,
		Correlations:         correlationsOut,
		Narrative:            narrative,
	}, nil
}

// correlationMatrix degrades to nil on any failure - the engine then skips
// the correlation adjustment and flags it, rather than inventing zeros.
func (h LoanCalculatorHandler) correlationMatrix(ctx context.Context, symbols []string) *domain.CorrelationMatrix {
	log := logger.FromContext(ctx)

	seriesBySymbol, err := h.HistoricalPriceRepository.GetDailySeries(ctx, symbols, correlationLookbackDays)
	if err != nil {
		log.Warnf("failed to fetch historical series: %v", err)
		return nil
	}

	matrix, err := calculator.Correlate(seriesBySymbol)
	if err != nil {
		if !errors.Is(err, calculator.ErrCorrelationUnavailable) {
			log.Warnf("failed to compute correlations: %v", err)
		}
		return nil
	}
	return matrix
}

func buildLoanPrompt(holdings domain.PortfolioHolding, params domain.LoanParameters) string {
	symbols := make([]string, 0, len(holdings))
	for symbol := range holdings {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	var b strings.Builder
	b.WriteString("The user has:\n")
	for _, symbol := range symbols {
		fmt.Fprintf(&b, "$%s in %s\n", holdings[symbol].StringFixed(2), symbol)
	}
	fmt.Fprintf(&b, "Total Collateral = $%s\n\n", holdings.TotalCollateral().StringFixed(2))

	b.WriteString("Loan parameters:\n")
	fmt.Fprintf(&b, "- Loan Length: %d months\n", params.TermMonths)
	fmt.Fprintf(&b, "- Payout Currency: %s\n", params.PayoutCurrency)
	fmt.Fprintf(&b, "- Inception Date: %s\n", params.InceptionDate.Format(time.DateOnly))
	fmt.Fprintf(&b, "- Lender: %s\n", params.Lender)

	return b.String()
}

func buildEnhancedPrompt(
	prompt string,
	assets []domain.AssetMetrics,
	termsBySymbol map[string]domain.LoanTerms,
	summary *domain.PortfolioLoanSummary,
	correlations map[string]map[string]float64,
) string {
	var b strings.Builder
	b.WriteString(prompt)

	b.WriteString("\nLatest Market Data:\n")
	for _, asset := range assets {
		terms := termsBySymbol[asset.Symbol]
		fmt.Fprintf(&b, "%s (%s): price $%.2f, 24h %+.2f%%, 7d %+.2f%%, 30d %+.2f%%, 90d %+.2f%%, tier %s, adjusted LTV %.0f%%\n",
			asset.Name, asset.Symbol, asset.LastPrice,
			asset.Change24h, asset.Change7d, asset.Change30d, asset.Change90d,
			terms.Tier, terms.AdjustedLTV*100)
	}

	fmt.Fprintf(&b, "\nLoan Metrics:\n")
	fmt.Fprintf(&b, "- Loan Amount: $%s\n", summary.LoanAmount.StringFixed(2))
	fmt.Fprintf(&b, "- Weighted LTV: %.2f%%\n", summary.WeightedLTV*100)
	fmt.Fprintf(&b, "- Liquidation LTV: %.2f%%\n", summary.LiquidationLTV*100)
	fmt.Fprintf(&b, "- Weighted Interest Rate: %.2f%%\n", summary.WeightedInterestRate*100)

	if correlations != nil {
		correlationJson, err := json.MarshalIndent(correlations, "", "  ")
		if err == nil {
			b.WriteString("\nCorrelation Matrix:\n")
			b.Write(correlationJson)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nPlease analyze the current market conditions considering:\n")
	b.WriteString("1. The latest price movements and volatility metrics shown above\n")
	b.WriteString("2. Provide current market analysis and determine the appropriate interest rate\n")

	return b.String()
}
