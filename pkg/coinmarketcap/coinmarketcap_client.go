package coinmarketcap

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

const defaultBaseUrl = "https://pro-api.coinmarketcap.com"

type Client struct {
	HttpClient *http.Client
	ApiKey     string
	// BaseUrl overrides the pro API host, mainly for tests
	BaseUrl string
}

type Quote struct {
	Price            *float64 `json:"price"`
	PercentChange24H *float64 `json:"percent_change_24h"`
	PercentChange7D  *float64 `json:"percent_change_7d"`
	PercentChange30D *float64 `json:"percent_change_30d"`
	PercentChange90D *float64 `json:"percent_change_90d"`
	MarketCap        *float64 `json:"market_cap"`
}

type Listing struct {
	Name   string           `json:"name"`
	Symbol string           `json:"symbol"`
	Quote  map[string]Quote `json:"quote"`
}

type listingsResponse struct {
	Status struct {
		ErrorCode    int     `json:"error_code"`
		ErrorMessage *string `json:"error_message"`
	} `json:"status"`
	Data []Listing `json:"data"`
}

// ListLatest pulls the top `limit` cryptocurrencies by market cap with USD
// quotes.
func (c Client) ListLatest(limit int) ([]Listing, error) {
	baseUrl := c.BaseUrl
	if baseUrl == "" {
		baseUrl = defaultBaseUrl
	}
	url := fmt.Sprintf("%s/v1/cryptocurrency/listings/latest?start=1&limit=%s&convert=USD",
		baseUrl, strconv.Itoa(limit))

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accepts", "application/json")
	req.Header.Set("X-CMC_PRO_API_KEY", c.ApiKey)

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
		return nil, fmt.Errorf("listings request failed with status code %d: %s", response.StatusCode, string(responseBytes))
	}

	var responseJson listingsResponse
	err = json.Unmarshal(responseBytes, &responseJson)
	if err != nil {
		return nil, err
	}
	if responseJson.Status.ErrorCode != 0 {
		msg := ""
		if responseJson.Status.ErrorMessage != nil {
			msg = *responseJson.Status.ErrorMessage
		}
		return nil, fmt.Errorf("listings request failed with error code %d: %s", responseJson.Status.ErrorCode, msg)
	}

	return responseJson.Data, nil
}
