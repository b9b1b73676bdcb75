package calculator

import "fmt"

// InsufficientDataError means a statistical policy didn't have enough
// inputs to run, e.g. quartile binning on fewer than 4 assets. Surfaced to
// the caller; never retried here.
type InsufficientDataError struct {
	Err error
}

func (e InsufficientDataError) Error() string {
	return e.Err.Error()
}

// MissingAssetMetricsError means the portfolio references a symbol the
// market snapshot doesn't cover. Fatal for the whole calculation - the
// caller decides whether to drop the asset and retry.
type MissingAssetMetricsError struct {
	Symbol string
}

func (e MissingAssetMetricsError) Error() string {
	return fmt.Sprintf("no market data for portfolio symbol %s", e.Symbol)
}

// EmptyPortfolioError means zero holdings or zero total collateral. We
// refuse to divide by it rather than hand back NaN.
type EmptyPortfolioError struct{}

func (e EmptyPortfolioError) Error() string {
	return "portfolio has no holdings with positive collateral"
}
