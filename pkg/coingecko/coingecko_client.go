package coingecko

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseUrl = "https://api.coingecko.com"

type Client struct {
	HttpClient *http.Client
	// BaseUrl overrides the public API host, mainly for tests
	BaseUrl string
}

type marketChartResponse struct {
	// each entry is [unix ms, price]
	Prices [][]float64 `json:"prices"`
}

type PricePoint struct {
	Timestamp time.Time
	Price     float64
}

// GetMarketChartRange fetches the price series for a coin between from and
// to. CoinGecko returns sub-daily granularity for short ranges; callers
// that need daily values resample themselves.
func (c Client) GetMarketChartRange(coinID string, vsCurrency string, from, to time.Time) ([]PricePoint, error) {
	baseUrl := c.BaseUrl
	if baseUrl == "" {
		baseUrl = defaultBaseUrl
	}
	url := fmt.Sprintf("%s/api/v3/coins/%s/market_chart/range?vs_currency=%s&from=%d&to=%d",
		baseUrl, coinID, vsCurrency, from.Unix(), to.Unix())

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	response, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	responseBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("received status code %d and failed to read body: %w", response.StatusCode, err)
	}

	if response.StatusCode != 200 {
		return nil, fmt.Errorf("market chart request for %s failed with status code %d: %s", coinID, response.StatusCode, string(responseBytes))
	}

	var responseJson marketChartResponse
	err = json.Unmarshal(responseBytes, &responseJson)
	if err != nil {
		return nil, err
	}

	points := make([]PricePoint, 0, len(responseJson.Prices))
	for _, pair := range responseJson.Prices {
		if len(pair) != 2 {
			return nil, fmt.Errorf("malformed price entry for %s: expected [ts, price], got %v", coinID, pair)
		}
		points = append(points, PricePoint{
			Timestamp: time.UnixMilli(int64(pair[0])).UTC(),
			Price:     pair[1],
		})
	}

	return points, nil
}
