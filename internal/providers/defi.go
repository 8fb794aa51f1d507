package providers

import (
	"context"
	"strconv"

	"coindash-api/internal/config"

	"golang.org/x/time/rate"
	"resty.dev/v3"
)

// DeFiClient talks to the DeFi aggregation provider (DefiLlama-compatible
// API). All endpoints are public; no authentication scheme.
type DeFiClient struct {
	client   *resty.Client
	throttle *rate.Limiter
}

// NewDeFiClient creates a DeFi adapter from configuration
func NewDeFiClient(cfg *config.ProviderConfig) *DeFiClient {
	return &DeFiClient{
		client:   newHTTPClient(cfg.BaseURL),
		throttle: newThrottle(cfg.RatePerSecond),
	}
}

// ProtocolTVL is the normalized per-protocol TVL shape
type ProtocolTVL struct {
	Slug   string  `json:"slug"`
	TVLUSD float64 `json:"tvlUsd"`
}

// ChainTVL is the normalized per-chain TVL shape
type ChainTVL struct {
	Name   string  `json:"name"`
	Symbol string  `json:"symbol"`
	TVLUSD float64 `json:"tvlUsd"`
}

// ProtocolTVL fetches total value locked for one protocol slug. The
// provider returns a bare JSON number for this endpoint.
func (d *DeFiClient) ProtocolTVL(ctx context.Context, slug string) (*ProtocolTVL, error) {
	if err := d.throttle.Wait(ctx); err != nil {
		return nil, classify(ProviderDeFi, 0, ctx, err)
	}

	resp, err := d.client.R().SetContext(ctx).Get("/tvl/" + slug)
	if err != nil {
		return nil, classify(ProviderDeFi, 0, ctx, err)
	}
	if resp.IsError() {
		return nil, &ProviderError{Provider: ProviderDeFi, Status: resp.StatusCode(), Message: resp.String()}
	}

	tvl, err := strconv.ParseFloat(resp.String(), 64)
	if err != nil {
		return nil, &ProviderError{Provider: ProviderDeFi, Message: "unexpected TVL payload: " + resp.String()}
	}

	return &ProtocolTVL{Slug: slug, TVLUSD: tvl}, nil
}

// Chains fetches TVL for every tracked chain
func (d *DeFiClient) Chains(ctx context.Context) ([]ChainTVL, error) {
	if err := d.throttle.Wait(ctx); err != nil {
		return nil, classify(ProviderDeFi, 0, ctx, err)
	}

	var raw []struct {
		Name        string  `json:"name"`
		TokenSymbol string  `json:"tokenSymbol"`
		TVL         float64 `json:"tvl"`
	}

	resp, err := d.client.R().SetContext(ctx).SetResult(&raw).Get("/v2/chains")
	if err != nil {
		return nil, classify(ProviderDeFi, 0, ctx, err)
	}
	if resp.IsError() {
		return nil, &ProviderError{Provider: ProviderDeFi, Status: resp.StatusCode(), Message: resp.String()}
	}

	chains := make([]ChainTVL, 0, len(raw))
	for _, c := range raw {
		chains = append(chains, ChainTVL{Name: c.Name, Symbol: c.TokenSymbol, TVLUSD: c.TVL})
	}
	return chains, nil
}
