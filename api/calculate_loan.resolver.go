package api

import (
	"aetherum/internal/app"
	"aetherum/internal/domain"
	"aetherum/internal/logger"
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CalculateLoanRequest struct {
	// Holdings maps symbol -> collateral dollars. Either provide this, or
	// TotalPortfolioValue + SelectedTokens for an equal split.
	Holdings map[string]float64 `json:"holdings"`

	TotalPortfolioValue *float64 `json:"totalPortfolioValue"`
	SelectedTokens      []string `json:"selectedTokens"`

	LoanTermMonths int    `json:"loanTermMonths"`
	PayoutCurrency string `json:"payoutCurrency"`
	InceptionDate  string `json:"inceptionDate"`
	Lender         string `json:"lender"`
}

func (h ApiHandler) calculateLoan(c *gin.Context) {
	requestLogger := logger.New()
	if requestID := c.GetString("requestID"); requestID != "" {
		requestLogger = requestLogger.With("requestID", requestID)
	}

	profile := domain.NewProfile()
	ctx := context.WithValue(c.Request.Context(), logger.ContextKey, requestLogger)
	ctx = context.WithValue(ctx, domain.ContextProfileKey, profile)
	profile.Add("initialized")
	defer func() {
		profile.End()
		if profileBytes, err := profile.ToJsonBytes(); err == nil {
			requestLogger.Debugf("calculateLoan profile: %s", profileBytes)
		}
	}()

	var requestBody CalculateLoanRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	holdings, err := holdingsFromRequest(requestBody)
	if err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	parameters, err := parametersFromRequest(requestBody)
	if err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	response, err := h.LoanApp.CalculateLoan(ctx, app.CalculateLoanInput{
		Holdings:   holdings,
		Parameters: *parameters,
	})
	if err != nil {
		returnErrorJson(fmt.Errorf("failed to calculate loan: %w", err), c)
		return
	}

	c.JSON(200, response)
}

func holdingsFromRequest(requestBody CalculateLoanRequest) (domain.PortfolioHolding, error) {
	if len(requestBody.Holdings) > 0 {
		holdings := domain.PortfolioHolding{}
		for symbol, amount := range requestBody.Holdings {
			if amount <= 0 {
				return nil, fmt.Errorf("holding %s must be positive, got %f", symbol, amount)
			}
			holdings[symbol] = decimal.NewFromFloat(amount)
		}
		return holdings, nil
	}

	if requestBody.TotalPortfolioValue == nil || len(requestBody.SelectedTokens) == 0 {
		return nil, fmt.Errorf("provide either holdings, or totalPortfolioValue with selectedTokens")
	}
	if *requestBody.TotalPortfolioValue <= 0 {
		return nil, fmt.Errorf("totalPortfolioValue must be positive, got %f", *requestBody.TotalPortfolioValue)
	}

	// equal split across the selected tokens
	total := decimal.NewFromFloat(*requestBody.TotalPortfolioValue)
	perToken := total.Div(decimal.NewFromInt(int64(len(requestBody.SelectedTokens))))

	holdings := domain.PortfolioHolding{}
	for _, symbol := range requestBody.SelectedTokens {
		if _, ok := holdings[symbol]; ok {
			return nil, fmt.Errorf("duplicate token %s in selectedTokens", symbol)
		}
		holdings[symbol] = perToken
	}
	return holdings, nil
}

func parametersFromRequest(requestBody CalculateLoanRequest) (*domain.LoanParameters, error) {
	parameters := domain.LoanParameters{
		TermMonths:     requestBody.LoanTermMonths,
		PayoutCurrency: requestBody.PayoutCurrency,
		Lender:         requestBody.Lender,
	}

	if parameters.TermMonths == 0 {
		parameters.TermMonths = 12
	}
	if parameters.PayoutCurrency == "" {
		parameters.PayoutCurrency = "USD"
	}
	if parameters.Lender == "" {
		parameters.Lender = "Aetherum"
	}

	if requestBody.InceptionDate != "" {
		inceptionDate, err := time.Parse("2006-01-02", requestBody.InceptionDate)
		if err != nil {
			return nil, fmt.Errorf("could not parse inception date: %w", err)
		}
		parameters.InceptionDate = inceptionDate
	} else {
		now := time.Now().UTC()
		parameters.InceptionDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	if err := parameters.Validate(); err != nil {
		return nil, err
	}

	return &parameters, nil
}
