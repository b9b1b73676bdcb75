package coingecko

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetMarketChartRange(t *testing.T) {
	t.Run("parses price pairs", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/v3/coins/bitcoin/market_chart/range", r.URL.Path)
			require.Equal(t, "usd", r.URL.Query().Get("vs_currency"))

			w.Write([]byte(`{"prices": [[1704067200000, 42000.5], [1704153600000, 43250.0]]}`))
		}))
		defer server.Close()

		client := Client{
			HttpClient: server.Client(),
			BaseUrl:    server.URL,
		}

		points, err := client.GetMarketChartRange(
			"bitcoin",
			"usd",
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		)
		require.NoError(t, err)

		require.Len(t, points, 2)
		require.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), points[0].Timestamp)
		require.Equal(t, 42000.5, points[0].Price)
		require.Equal(t, 43250.0, points[1].Price)
	})

	t.Run("non-200 fails", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(429)
			w.Write([]byte(`{"error": "rate limited"}`))
		}))
		defer server.Close()

		client := Client{
			HttpClient: server.Client(),
			BaseUrl:    server.URL,
		}

		_, err := client.GetMarketChartRange("bitcoin", "usd", time.Now().AddDate(0, 0, -90), time.Now())
		require.Error(t, err)
		require.Contains(t, err.Error(), "status code 429")
	})
}
