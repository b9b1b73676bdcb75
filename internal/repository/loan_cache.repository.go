package repository

import (
	"aetherum/internal/domain"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

const loanCacheTTL = 24 * time.Hour

// CachedLoanCalculation is the full result payload stored under a
// (prompt, portfolio) key. Served verbatim on a hit - the engine is
// idempotent for identical inputs so a cached result is as good as a
// recomputed one inside the TTL.
type CachedLoanCalculation struct {
	Narrative            string                        `json:"narrative"`
	Summary              domain.PortfolioLoanSummary   `json:"summary"`
	TermsBySymbol        map[string]domain.LoanTerms   `json:"termsBySymbol"`
	Breakdown            []domain.AssetBreakdown       `json:"breakdown"`
	CorrelationAvailable bool                          `json:"correlationAvailable"`
	Correlations         map[string]map[string]float64 `json:"correlations,omitempty"`
	CachedAt             time.Time                     `json:"cachedAt"`
}

type LoanCacheRepository interface {
	Get(ctx context.Context, key string) (*CachedLoanCalculation, error)
	Set(ctx context.Context, key string, result CachedLoanCalculation) error
}

type loanCacheRepositoryHandler struct {
	RedisClient *redis.Client
}

func NewLoanCacheRepository(redisClient *redis.Client) LoanCacheRepository {
	return loanCacheRepositoryHandler{
		RedisClient: redisClient,
	}
}

// LoanCacheKey hashes the prompt plus the portfolio with symbols sorted,
// so the same holdings always map to the same key regardless of map order.
func LoanCacheKey(prompt string, holdings domain.PortfolioHolding) string {
	symbols := make([]string, 0, len(holdings))
	for symbol := range holdings {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	type keyEntry struct {
		Symbol string `json:"symbol"`
		Amount string `json:"amount"`
	}
	entries := make([]keyEntry, 0, len(symbols))
	for _, symbol := range symbols {
		entries = append(entries, keyEntry{
			Symbol: symbol,
			Amount: holdings[symbol].String(),
		})
	}

	keyBytes, err := json.Marshal(struct {
		Prompt    string     `json:"prompt"`
		Portfolio []keyEntry `json:"portfolio"`
	}{
		Prompt:    prompt,
		Portfolio: entries,
	})
	if err != nil {
		// marshaling strings cannot fail
		panic(err)
	}

	hasher := sha256.New()
	hasher.Write(keyBytes)
	return "loan_quote:" + hex.EncodeToString(hasher.Sum(nil))
}

func (h loanCacheRepositoryHandler) Get(ctx context.Context, key string) (*CachedLoanCalculation, error) {
	cachedBytes, err := h.RedisClient.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read loan cache: %w", err)
	}

	cached := CachedLoanCalculation{}
	err = json.Unmarshal(cachedBytes, &cached)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cached loan result: %w", err)
	}

	return &cached, nil
}

func (h loanCacheRepositoryHandler) Set(ctx context.Context, key string, result CachedLoanCalculation) error {
	resultBytes, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode loan result for cache: %w", err)
	}

	err = h.RedisClient.Set(ctx, key, resultBytes, loanCacheTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to write loan cache: %w", err)
	}

	return nil
}
