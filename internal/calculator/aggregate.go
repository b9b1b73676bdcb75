package calculator

import (
	"aetherum/internal/domain"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// liquidation triggers at 120% of the origination LTV
var liquidationMultiplier = decimal.NewFromFloat(1.2)

// expense is a flat 0.05% of the loan amount
var expenseRatioOfLoan = decimal.NewFromFloat(0.0005)

type AggregateInput struct {
	Holdings      domain.PortfolioHolding
	TermsBySymbol map[string]domain.LoanTerms
	TermMonths    int
}

// Aggregate rolls per-asset terms up into the portfolio loan summary.
// Weighted figures are convex combinations weighted by collateral size;
// symbols are walked in sorted order so identical inputs always sum in the
// same order and produce bit-identical output.
func Aggregate(in AggregateInput) (*domain.PortfolioLoanSummary, error) {
	totalCollateral := in.Holdings.TotalCollateral()
	if len(in.Holdings) == 0 || !totalCollateral.IsPositive() {
		return nil, EmptyPortfolioError{}
	}
	if in.TermMonths <= 0 {
		return nil, fmt.Errorf("cannot aggregate with term of %d months", in.TermMonths)
	}

	symbols := make([]string, 0, len(in.Holdings))
	for symbol := range in.Holdings {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	weightedLTV := decimal.Zero
	weightedRate := decimal.Zero
	for _, symbol := range symbols {
		terms, ok := in.TermsBySymbol[symbol]
		if !ok {
			return nil, MissingAssetMetricsError{Symbol: symbol}
		}
		weight := in.Holdings[symbol].Div(totalCollateral)
		weightedLTV = weightedLTV.Add(weight.Mul(decimal.NewFromFloat(terms.AdjustedLTV)))
		weightedRate = weightedRate.Add(weight.Mul(decimal.NewFromFloat(terms.InterestRate)))
	}

	loanAmount := totalCollateral.Mul(weightedLTV)
	monthlyPayment := loanAmount.
		Mul(decimal.NewFromInt(1).Add(weightedRate)).
		Div(decimal.NewFromInt(int64(in.TermMonths)))

	return &domain.PortfolioLoanSummary{
		TotalCollateral:      totalCollateral,
		WeightedLTV:          weightedLTV.InexactFloat64(),
		LoanAmount:           loanAmount,
		LiquidationLTV:       weightedLTV.Mul(liquidationMultiplier).InexactFloat64(),
		WeightedInterestRate: weightedRate.InexactFloat64(),
		ExpenseRatio:         loanAmount.Mul(expenseRatioOfLoan),
		MonthlyPayment:       monthlyPayment,
		EMISimplified:        true,
	}, nil
}
