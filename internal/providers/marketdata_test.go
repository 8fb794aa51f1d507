package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coindash-api/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMarketDataTestClient(serverURL string) *MarketDataClient {
	return NewMarketDataClient(&config.ProviderConfig{
		BaseURL: serverURL,
		Timeout: 15 * time.Second,
	})
}

func TestGlobalStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/global", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{
			"active_cryptocurrencies": 12000,
			"total_market_cap": {"usd": 2500000000000},
			"total_volume": {"usd": 90000000000},
			"market_cap_percentage": {"btc": 52.3},
			"market_cap_change_percentage_24h_usd": -1.2
		}}`))
	}))
	defer server.Close()

	client := newMarketDataTestClient(server.URL)
	stats, err := client.GlobalStats(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 12000, stats.ActiveCryptocurrencies)
	assert.Equal(t, 2.5e12, stats.TotalMarketCapUSD)
	assert.Equal(t, 52.3, stats.BTCDominancePct)
	assert.Equal(t, -1.2, stats.MarketCapChange24hPct)
}

func TestGlobalStatsSendsAPIKeyHeader(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get(apiKeyHeader)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{}}`))
	}))
	defer server.Close()

	client := newMarketDataTestClient(server.URL)

	// Caller-supplied key wins over the configured one
	_, err := client.GlobalStats(context.Background(), "byok-key")
	require.NoError(t, err)
	assert.Equal(t, "byok-key", gotKey)
}

func TestTrendingNormalization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/trending", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"coins":[
			{"item":{"id":"pepe","symbol":"pepe","name":"Pepe","market_cap_rank":35}},
			{"item":{"id":"solana","symbol":"sol","name":"Solana","market_cap_rank":5}}
		]}`))
	}))
	defer server.Close()

	client := newMarketDataTestClient(server.URL)
	coins, err := client.Trending(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, coins, 2)
	assert.Equal(t, "pepe", coins[0].ID)
	assert.Equal(t, "PEPE", coins[0].Symbol, "symbols are upper-cased in the normalized shape")
	assert.Equal(t, 5, coins[1].MarketCapRank)
}

func TestMarketsQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		assert.Equal(t, "bitcoin,ethereum", r.URL.Query().Get("ids"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":64000,"market_cap":1260000000000,"total_volume":31000000000,"price_change_percentage_24h":2.1}
		]`))
	}))
	defer server.Close()

	client := newMarketDataTestClient(server.URL)
	rows, err := client.Markets(context.Background(), "", []string{"bitcoin", "ethereum"})
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, "BTC", rows[0].Symbol)
	assert.Equal(t, float64(64000), rows[0].PriceUSD)
}

func TestOHLCNormalization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/bitcoin/ohlc", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[[1700000000000,64000,64500,63800,64200],[1700001800000,64200]]`))
	}))
	defer server.Close()

	client := newMarketDataTestClient(server.URL)
	candles, err := client.OHLC(context.Background(), "", "bitcoin")
	require.NoError(t, err)

	// Malformed short rows are skipped
	require.Len(t, candles, 1)
	assert.Equal(t, int64(1700000000000), candles[0].Timestamp)
	assert.Equal(t, float64(64500), candles[0].High)
}

func TestProviderErrorOnUpstreamStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newMarketDataTestClient(server.URL)
	_, err := client.GlobalStats(context.Background(), "")

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusTooManyRequests, provErr.Status)
	assert.Equal(t, ProviderMarketData, provErr.Provider)
}

func TestTimeoutClassification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"data":{}}`))
	}))
	defer server.Close()

	client := newMarketDataTestClient(server.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.GlobalStats(ctx, "")
	require.Error(t, err)
	assert.True(t, IsTimeout(err), "deadline expiry must map to TimeoutError, got %v", err)
}

func TestSimplePriceUnknownCoin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newMarketDataTestClient(server.URL)
	_, err := client.SimplePrice(context.Background(), "no-such-coin")

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
}
