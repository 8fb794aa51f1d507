package providers

import (
	"context"
	"strings"

	"coindash-api/internal/config"

	"golang.org/x/time/rate"
	"resty.dev/v3"
)

// apiKeyHeader is the market-data provider's authentication header
const apiKeyHeader = "x-cg-demo-api-key"

// MarketDataClient talks to the market-data provider (CoinGecko-compatible
// API). Public endpoints work without a key; callers may bring their own.
type MarketDataClient struct {
	client   *resty.Client
	apiKey   string
	throttle *rate.Limiter
}

// NewMarketDataClient creates a market-data adapter from configuration
func NewMarketDataClient(cfg *config.ProviderConfig) *MarketDataClient {
	return &MarketDataClient{
		client:   newHTTPClient(cfg.BaseURL),
		apiKey:   cfg.APIKey,
		throttle: newThrottle(cfg.RatePerSecond),
	}
}

// GlobalStats is the normalized shape of global market data
type GlobalStats struct {
	ActiveCryptocurrencies int     `json:"activeCryptocurrencies"`
	TotalMarketCapUSD      float64 `json:"totalMarketCapUsd"`
	TotalVolumeUSD         float64 `json:"totalVolumeUsd"`
	BTCDominancePct        float64 `json:"btcDominancePct"`
	MarketCapChange24hPct  float64 `json:"marketCapChange24hPct"`
}

// TrendingCoin is one entry of the trending search list
type TrendingCoin struct {
	ID            string `json:"id"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	MarketCapRank int    `json:"marketCapRank"`
}

// MarketSnapshot is the normalized per-coin market row
type MarketSnapshot struct {
	ID            string  `json:"id"`
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	PriceUSD      float64 `json:"priceUsd"`
	MarketCapUSD  float64 `json:"marketCapUsd"`
	Volume24hUSD  float64 `json:"volume24hUsd"`
	Change24hPct  float64 `json:"change24hPct"`
}

// Candle is one OHLC candle
type Candle struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
}

// CoinProfile is the normalized coin metadata shape
type CoinProfile struct {
	ID            string `json:"id"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Homepage      string `json:"homepage"`
	MarketCapRank int    `json:"marketCapRank"`
}

// SimplePrice is the normalized quote shape
type SimplePrice struct {
	ID           string  `json:"id"`
	PriceUSD     float64 `json:"priceUsd"`
	Change24hPct float64 `json:"change24hPct"`
}

// request builds an outbound request with the effective API key. A caller-
// supplied key takes precedence over the configured one.
func (m *MarketDataClient) request(ctx context.Context, apiKey string) *resty.Request {
	req := m.client.R().SetContext(ctx)
	key := apiKey
	if key == "" {
		key = m.apiKey
	}
	if key != "" {
		req.SetHeader(apiKeyHeader, key)
	}
	return req
}

// GlobalStats fetches global market statistics
func (m *MarketDataClient) GlobalStats(ctx context.Context, apiKey string) (*GlobalStats, error) {
	if err := m.throttle.Wait(ctx); err != nil {
		return nil, classify(ProviderMarketData, 0, ctx, err)
	}

	var raw struct {
		Data struct {
			ActiveCryptocurrencies int                `json:"active_cryptocurrencies"`
			TotalMarketCap         map[string]float64 `json:"total_market_cap"`
			TotalVolume            map[string]float64 `json:"total_volume"`
			MarketCapPercentage    map[string]float64 `json:"market_cap_percentage"`
			MarketCapChange24h     float64            `json:"market_cap_change_percentage_24h_usd"`
		} `json:"data"`
	}

	resp, err := m.request(ctx, apiKey).SetResult(&raw).Get("/global")
	if err != nil {
		return nil, classify(ProviderMarketData, 0, ctx, err)
	}
	if resp.IsError() {
		return nil, &ProviderError{Provider: ProviderMarketData, Status: resp.StatusCode(), Message: resp.String()}
	}

	return &GlobalStats{
		ActiveCryptocurrencies: raw.Data.ActiveCryptocurrencies,
		TotalMarketCapUSD:      raw.Data.TotalMarketCap["usd"],
		TotalVolumeUSD:         raw.Data.TotalVolume["usd"],
		BTCDominancePct:        raw.Data.MarketCapPercentage["btc"],
		MarketCapChange24hPct:  raw.Data.MarketCapChange24h,
	}, nil
}

// Trending fetches the trending coin list
func (m *MarketDataClient) Trending(ctx context.Context, apiKey string) ([]TrendingCoin, error) {
	if err := m.throttle.Wait(ctx); err != nil {
		return nil, classify(ProviderMarketData, 0, ctx, err)
	}

	var raw struct {
		Coins []struct {
			Item struct {
				ID            string `json:"id"`
				Symbol        string `json:"symbol"`
				Name          string `json:"name"`
				MarketCapRank int    `json:"market_cap_rank"`
			} `json:"item"`
		} `json:"coins"`
	}

	resp, err := m.request(ctx, apiKey).SetResult(&raw).Get("/search/trending")
	if err != nil {
		return nil, classify(ProviderMarketData, 0, ctx, err)
	}
	if resp.IsError() {
		return nil, &ProviderError{Provider: ProviderMarketData, Status: resp.StatusCode(), Message: resp.String()}
	}

	coins := make([]TrendingCoin, 0, len(raw.Coins))
	for _, c := range raw.Coins {
		coins = append(coins, TrendingCoin{
			ID:            c.Item.ID,
			Symbol:        strings.ToUpper(c.Item.Symbol),
			Name:          c.Item.Name,
			MarketCapRank: c.Item.MarketCapRank,
		})
	}
	return coins, nil
}

// Markets fetches market rows for the given coin ids
func (m *MarketDataClient) Markets(ctx context.Context, apiKey string, coinIDs []string) ([]MarketSnapshot, error) {
	if err := m.throttle.Wait(ctx); err != nil {
		return nil, classify(ProviderMarketData, 0, ctx, err)
	}

	var raw []struct {
		ID           string  `json:"id"`
		Symbol       string  `json:"symbol"`
		Name         string  `json:"name"`
		CurrentPrice float64 `json:"current_price"`
		MarketCap    float64 `json:"market_cap"`
		TotalVolume  float64 `json:"total_volume"`
		Change24h    float64 `json:"price_change_percentage_24h"`
	}

	resp, err := m.request(ctx, apiKey).
		SetQueryParam("vs_currency", "usd").
		SetQueryParam("ids", strings.Join(coinIDs, ",")).
		SetResult(&raw).
		Get("/coins/markets")
	if err != nil {
		return nil, classify(ProviderMarketData, 0, ctx, err)
	}
	if resp.IsError() {
		return nil, &ProviderError{Provider: ProviderMarketData, Status: resp.StatusCode(), Message: resp.String()}
	}

	rows := make([]MarketSnapshot, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, MarketSnapshot{
			ID:           r.ID,
			Symbol:       strings.ToUpper(r.Symbol),
			Name:         r.Name,
			PriceUSD:     r.CurrentPrice,
			MarketCapUSD: r.MarketCap,
			Volume24hUSD: r.TotalVolume,
			Change24hPct: r.Change24h,
		})
	}
	return rows, nil
}

// OHLC fetches one day of OHLC candles for a coin
func (m *MarketDataClient) OHLC(ctx context.Context, apiKey, coinID string) ([]Candle, error) {
	if err := m.throttle.Wait(ctx); err != nil {
		return nil, classify(ProviderMarketData, 0, ctx, err)
	}

	var raw [][]float64

	resp, err := m.request(ctx, apiKey).
		SetQueryParam("vs_currency", "usd").
		SetQueryParam("days", "1").
		SetResult(&raw).
		Get("/coins/" + coinID + "/ohlc")
	if err != nil {
		return nil, classify(ProviderMarketData, 0, ctx, err)
	}
	if resp.IsError() {
		return nil, &ProviderError{Provider: ProviderMarketData, Status: resp.StatusCode(), Message: resp.String()}
	}

	candles := make([]Candle, 0, len(raw))
	for _, row := range raw {
		if len(row) < 5 {
			continue
		}
		candles = append(candles, Candle{
			Timestamp: int64(row[0]),
			Open:      row[1],
			High:      row[2],
			Low:       row[3],
			Close:     row[4],
		})
	}
	return candles, nil
}

// CoinProfile fetches slow-changing coin metadata
func (m *MarketDataClient) CoinProfile(ctx context.Context, coinID string) (*CoinProfile, error) {
	if err := m.throttle.Wait(ctx); err != nil {
		return nil, classify(ProviderMarketData, 0, ctx, err)
	}

	var raw struct {
		ID          string `json:"id"`
		Symbol      string `json:"symbol"`
		Name        string `json:"name"`
		Description struct {
			En string `json:"en"`
		} `json:"description"`
		Links struct {
			Homepage []string `json:"homepage"`
		} `json:"links"`
		MarketCapRank int `json:"market_cap_rank"`
	}

	resp, err := m.request(ctx, "").
		SetQueryParam("localization", "false").
		SetQueryParam("tickers", "false").
		SetQueryParam("community_data", "false").
		SetQueryParam("developer_data", "false").
		SetResult(&raw).
		Get("/coins/" + coinID)
	if err != nil {
		return nil, classify(ProviderMarketData, 0, ctx, err)
	}
	if resp.IsError() {
		return nil, &ProviderError{Provider: ProviderMarketData, Status: resp.StatusCode(), Message: resp.String()}
	}

	homepage := ""
	if len(raw.Links.Homepage) > 0 {
		homepage = raw.Links.Homepage[0]
	}

	return &CoinProfile{
		ID:            raw.ID,
		Symbol:        strings.ToUpper(raw.Symbol),
		Name:          raw.Name,
		Description:   raw.Description.En,
		Homepage:      homepage,
		MarketCapRank: raw.MarketCapRank,
	}, nil
}

// SimplePrice fetches the current USD quote for a coin
func (m *MarketDataClient) SimplePrice(ctx context.Context, coinID string) (*SimplePrice, error) {
	if err := m.throttle.Wait(ctx); err != nil {
		return nil, classify(ProviderMarketData, 0, ctx, err)
	}

	raw := map[string]map[string]float64{}

	resp, err := m.request(ctx, "").
		SetQueryParam("ids", coinID).
		SetQueryParam("vs_currencies", "usd").
		SetQueryParam("include_24hr_change", "true").
		SetResult(&raw).
		Get("/simple/price")
	if err != nil {
		return nil, classify(ProviderMarketData, 0, ctx, err)
	}
	if resp.IsError() {
		return nil, &ProviderError{Provider: ProviderMarketData, Status: resp.StatusCode(), Message: resp.String()}
	}

	quote, ok := raw[coinID]
	if !ok {
		return nil, &ProviderError{Provider: ProviderMarketData, Message: "unknown coin id " + coinID}
	}

	return &SimplePrice{
		ID:           coinID,
		PriceUSD:     quote["usd"],
		Change24hPct: quote["usd_24h_change"],
	}, nil
}
