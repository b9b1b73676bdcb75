package api

import (
	"aetherum/internal/app"
	"aetherum/internal/calculator"
	"aetherum/internal/domain"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func decimalFromInt(i int64) decimal.Decimal {
	return decimal.NewFromInt(i)
}

func float64Pointer(f float64) *float64 {
	return &f
}

type stubMarketDataRepository struct {
	Snapshot *domain.MarketSnapshot
	Err      error
}

func (s stubMarketDataRepository) GetSnapshot(ctx context.Context) (*domain.MarketSnapshot, error) {
	return s.Snapshot, s.Err
}

type stubHistoricalPriceRepository struct{}

func (s stubHistoricalPriceRepository) GetDailySeries(ctx context.Context, symbols []string, lookbackDays int) (map[string][]domain.PricePoint, error) {
	return map[string][]domain.PricePoint{}, nil
}

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	snapshot := &domain.MarketSnapshot{
		Assets: []domain.AssetMetrics{
			{Symbol: "BTC", Name: "Bitcoin", LastPrice: 95_000, Change24h: 1.5, MarketCap: 1.2e12},
			{Symbol: "ETH", Name: "Ethereum", LastPrice: 3_400, Change24h: 4, MarketCap: 4e11},
			{Symbol: "SOL", Name: "Solana", LastPrice: 180, Change24h: 8, MarketCap: 8e10},
			{Symbol: "DOGE", Name: "Dogecoin", LastPrice: 0.3, Change24h: 15, MarketCap: 2e10},
		},
		FetchedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	marketData := stubMarketDataRepository{Snapshot: snapshot}
	handler := ApiHandler{
		LoanApp: app.LoanCalculatorHandler{
			MarketDataRepository:      marketData,
			HistoricalPriceRepository: stubHistoricalPriceRepository{},
			RiskClassifier:            calculator.NewRiskClassifier(calculator.RiskTierStrategy_Threshold),
		},
		MarketDataRepository: marketData,
	}
	return handler.InitializeRouterEngine()
}

func postJson(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	bodyBytes, err := json.Marshal(body)
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(bodyBytes))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func TestCalculateLoanResolver(t *testing.T) {
	t.Run("explicit holdings", func(t *testing.T) {
		recorder := postJson(t, testRouter(), "/calculateLoan", CalculateLoanRequest{
			Holdings:       map[string]float64{"BTC": 600_000, "ETH": 400_000},
			LoanTermMonths: 12,
		})
		require.Equal(t, 200, recorder.Code, recorder.Body.String())

		response := app.CalculateLoanResponse{}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))

		require.True(t, response.Summary.LoanAmount.Equal(decimalFromInt(660_000)),
			"expected 660000, got %s", response.Summary.LoanAmount)
		require.Equal(t, domain.RiskTier1, response.TermsBySymbol["BTC"].Tier)
		require.False(t, response.CorrelationAvailable)
	})

	t.Run("equal split from total value", func(t *testing.T) {
		recorder := postJson(t, testRouter(), "/calculateLoan", CalculateLoanRequest{
			TotalPortfolioValue: float64Pointer(1_000_000),
			SelectedTokens:      []string{"BTC", "ETH", "SOL", "DOGE"},
		})
		require.Equal(t, 200, recorder.Code, recorder.Body.String())

		response := app.CalculateLoanResponse{}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		require.Len(t, response.TermsBySymbol, 4)
		require.True(t, response.Summary.TotalCollateral.Equal(decimalFromInt(1_000_000)))
	})

	t.Run("unknown symbol is a 400", func(t *testing.T) {
		recorder := postJson(t, testRouter(), "/calculateLoan", CalculateLoanRequest{
			Holdings: map[string]float64{"BTC": 100_000, "ZZZ": 100_000},
		})
		require.Equal(t, 400, recorder.Code)
		require.Contains(t, recorder.Body.String(), "ZZZ")
	})

	t.Run("negative holding is a 400", func(t *testing.T) {
		recorder := postJson(t, testRouter(), "/calculateLoan", CalculateLoanRequest{
			Holdings: map[string]float64{"BTC": -5},
		})
		require.Equal(t, 400, recorder.Code)
	})

	t.Run("neither holdings nor split is a 400", func(t *testing.T) {
		recorder := postJson(t, testRouter(), "/calculateLoan", CalculateLoanRequest{})
		require.Equal(t, 400, recorder.Code)
	})

	t.Run("bad inception date is a 400", func(t *testing.T) {
		recorder := postJson(t, testRouter(), "/calculateLoan", CalculateLoanRequest{
			Holdings:      map[string]float64{"BTC": 100_000},
			InceptionDate: "June 3rd",
		})
		require.Equal(t, 400, recorder.Code)
	})
}

func TestParametersFromRequest(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		parameters, err := parametersFromRequest(CalculateLoanRequest{})
		require.NoError(t, err)
		require.Equal(t, 12, parameters.TermMonths)
		require.Equal(t, "USD", parameters.PayoutCurrency)
		require.Equal(t, "Aetherum", parameters.Lender)
		require.False(t, parameters.InceptionDate.IsZero())
	})

	t.Run("explicit values pass through", func(t *testing.T) {
		parameters, err := parametersFromRequest(CalculateLoanRequest{
			LoanTermMonths: 24,
			PayoutCurrency: "EUR",
			InceptionDate:  "2024-06-03",
			Lender:         "Acme",
		})
		require.NoError(t, err)
		require.Equal(t, 24, parameters.TermMonths)
		require.Equal(t, "EUR", parameters.PayoutCurrency)
		require.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), parameters.InceptionDate)
		require.Equal(t, "Acme", parameters.Lender)
	})

	t.Run("negative term is rejected", func(t *testing.T) {
		_, err := parametersFromRequest(CalculateLoanRequest{LoanTermMonths: -6})
		require.Error(t, err)
	})
}

func TestHoldingsFromRequest(t *testing.T) {
	t.Run("duplicate selected token is rejected", func(t *testing.T) {
		_, err := holdingsFromRequest(CalculateLoanRequest{
			TotalPortfolioValue: float64Pointer(100),
			SelectedTokens:      []string{"BTC", "BTC"},
		})
		require.Error(t, err)
	})

	t.Run("split preserves the total", func(t *testing.T) {
		holdings, err := holdingsFromRequest(CalculateLoanRequest{
			TotalPortfolioValue: float64Pointer(999),
			SelectedTokens:      []string{"BTC", "ETH", "SOL"},
		})
		require.NoError(t, err)
		require.True(t, holdings.TotalCollateral().Equal(decimalFromInt(999)),
			"expected 999, got %s", holdings.TotalCollateral())
	})
}

func TestMarketDataResolver(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/marketData", nil)
	testRouter().ServeHTTP(recorder, request)

	require.Equal(t, 200, recorder.Code)

	snapshot := domain.MarketSnapshot{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &snapshot))
	require.Len(t, snapshot.Assets, 4)
	require.Equal(t, "BTC", snapshot.Assets[0].Symbol)
}

func TestWelcome(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	testRouter().ServeHTTP(recorder, request)

	require.Equal(t, 200, recorder.Code)
	require.Contains(t, recorder.Body.String(), "welcome to aetherum")
}
