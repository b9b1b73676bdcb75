package cmd

import (
	"aetherum/api"
	"aetherum/internal/app"
	"aetherum/internal/calculator"
	"aetherum/internal/logger"
	"aetherum/internal/repository"
	"aetherum/internal/util"
	"aetherum/pkg/coingecko"
	"aetherum/pkg/coinmarketcap"
	"fmt"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func InitializeDependencies() (*api.ApiHandler, error) {
	// .env is optional; secrets.json or real env vars work too
	_ = godotenv.Load()

	secrets, err := util.LoadSecrets()
	if err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}
	if secrets.CoinMarketCapApiKey == "" {
		return nil, fmt.Errorf("missing CoinMarketCap api key")
	}

	var redisClient *redis.Client
	if secrets.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     secrets.Redis.Addr(),
			Username: secrets.Redis.Username,
			Password: secrets.Redis.Password,
		})
	} else {
		logger.Info("no redis host configured - running without caching")
	}

	cmcClient := coinmarketcap.Client{
		HttpClient: http.DefaultClient,
		ApiKey:     secrets.CoinMarketCapApiKey,
	}
	geckoClient := coingecko.Client{
		HttpClient: http.DefaultClient,
	}

	marketDataRepository := repository.NewMarketDataRepository(cmcClient, redisClient)
	historicalPriceRepository := repository.NewHistoricalPriceRepository(geckoClient)

	var narrativeRepository repository.NarrativeRepository
	if secrets.ChatGPTApiKey != "" {
		narrativeRepository, err = repository.NewNarrativeRepository(secrets.ChatGPTApiKey)
		if err != nil {
			return nil, err
		}
	} else {
		logger.Info("no gpt api key configured - quotes will have no narrative")
	}

	var loanCacheRepository repository.LoanCacheRepository
	if redisClient != nil {
		loanCacheRepository = repository.NewLoanCacheRepository(redisClient)
	}

	strategy := calculator.RiskTierStrategy_Quantile
	if secrets.RiskTierStrategy != "" {
		parsed, err := calculator.NewRiskTierStrategy(secrets.RiskTierStrategy)
		if err != nil {
			return nil, err
		}
		strategy = *parsed
	}

	apiHandler := &api.ApiHandler{
		LoanApp: app.LoanCalculatorHandler{
			MarketDataRepository:      marketDataRepository,
			HistoricalPriceRepository: historicalPriceRepository,
			NarrativeRepository:       narrativeRepository,
			LoanCacheRepository:       loanCacheRepository,
			RiskClassifier:            calculator.NewRiskClassifier(strategy),
		},
		MarketDataRepository: marketDataRepository,
	}

	return apiHandler, nil
}
