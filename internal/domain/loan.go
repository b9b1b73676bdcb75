package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RiskTier buckets an asset from lowest risk (Tier 1) to highest (Tier 3).
// Tiers are assigned once per snapshot and never mutated.
type RiskTier string

const (
	RiskTier1   RiskTier = "Tier 1"
	RiskTier1_5 RiskTier = "Tier 1.5"
	RiskTier2   RiskTier = "Tier 2"
	RiskTier3   RiskTier = "Tier 3"
)

// ordered lowest risk first
var RiskTiers = []RiskTier{RiskTier1, RiskTier1_5, RiskTier2, RiskTier3}

// LoanTerms is the per-asset output of the rule engine. LTVs and rates are
// fractions, not percents - 0.70 means 70% of collateral value.
type LoanTerms struct {
	Symbol       string   `json:"symbol"`
	Tier         RiskTier `json:"tier"`
	BaseLTV      float64  `json:"baseLtv"`
	AdjustedLTV  float64  `json:"adjustedLtv"`
	InterestRate float64  `json:"interestRate"`

	// set when the correlation adjustment was skipped because no usable
	// matrix covered this asset, so callers can tell "no adjustment
	// needed" apart from "adjustment skipped"
	CorrelationSkipped bool `json:"correlationSkipped"`
}

// PortfolioHolding maps symbol -> collateral dollars. Keys are unique,
// order never matters.
type PortfolioHolding map[string]decimal.Decimal

func (p PortfolioHolding) TotalCollateral() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range p {
		total = total.Add(amount)
	}
	return total
}

// LoanParameters are caller-supplied terms that do not affect the numeric
// engine; they feed EMI (term length) and the narrative prompt.
type LoanParameters struct {
	TermMonths     int       `json:"termMonths"`
	PayoutCurrency string    `json:"payoutCurrency"`
	InceptionDate  time.Time `json:"inceptionDate"`
	Lender         string    `json:"lender"`
}

func (p LoanParameters) Validate() error {
	if p.TermMonths <= 0 {
		return fmt.Errorf("term months must be positive, got %d", p.TermMonths)
	}
	if p.PayoutCurrency == "" {
		return fmt.Errorf("payout currency is required")
	}
	return nil
}

// AssetBreakdown is one row of the quote's per-asset table: how much the
// asset contributes to the collateral and to the loan. LoanShare values
// across a quote sum to the portfolio loan amount.
type AssetBreakdown struct {
	Symbol          string          `json:"symbol"`
	Tier            RiskTier        `json:"tier"`
	VolatilityScore float64         `json:"volatilityScore"`
	AdjustedLTV     float64         `json:"adjustedLtv"`
	InterestRate    float64         `json:"interestRate"`
	Collateral      decimal.Decimal `json:"collateral"`
	LoanShare       decimal.Decimal `json:"loanShare"`
}

// PortfolioLoanSummary holds the aggregate loan figures. Derived fresh on
// every calculation; nothing in here is ever mutated in place.
type PortfolioLoanSummary struct {
	TotalCollateral      decimal.Decimal `json:"totalCollateral"`
	WeightedLTV          float64         `json:"weightedLtv"`
	LoanAmount           decimal.Decimal `json:"loanAmount"`
	LiquidationLTV       float64         `json:"liquidationLtv"`
	WeightedInterestRate float64         `json:"weightedInterestRate"`
	ExpenseRatio         decimal.Decimal `json:"expenseRatio"`

	// MonthlyPayment uses the simplified non-amortizing formula
	// loan * (1 + rate) / termMonths. EMISimplified stays true until we
	// ever switch to a real amortization schedule.
	MonthlyPayment decimal.Decimal `json:"monthlyPayment"`
	EMISimplified  bool            `json:"emiSimplified"`
}
