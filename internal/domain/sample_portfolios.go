package domain

import "github.com/shopspring/decimal"

// SamplePortfolio is a canned collateral mix used by the CLI for quick
// quotes and demos.
type SamplePortfolio struct {
	Name     string
	Holdings PortfolioHolding
}

// all samples total $1M so quotes are easy to compare side by side
var SamplePortfolios = []SamplePortfolio{
	{
		Name: "conservative",
		Holdings: PortfolioHolding{
			"BTC": decimal.NewFromInt(800_000),
			"ETH": decimal.NewFromInt(200_000),
		},
	},
	{
		Name: "moderate",
		Holdings: PortfolioHolding{
			"BTC": decimal.NewFromInt(500_000),
			"ETH": decimal.NewFromInt(300_000),
			"SOL": decimal.NewFromInt(200_000),
		},
	},
	{
		Name: "aggressive",
		Holdings: PortfolioHolding{
			"BTC": decimal.NewFromInt(400_000),
			"ETH": decimal.NewFromInt(300_000),
			"SOL": decimal.NewFromInt(200_000),
			"XRP": decimal.NewFromInt(100_000),
		},
	},
}

func FindSamplePortfolio(name string) (*SamplePortfolio, bool) {
	for _, p := range SamplePortfolios {
		if p.Name == name {
			return &p, true
		}
	}
	return nil, false
}
