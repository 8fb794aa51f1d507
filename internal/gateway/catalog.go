// Package gateway dispatches one batch request against the upstream adapter
// catalog, running every resolved call concurrently under its own timeout
// budget and merging the outcomes into a single aggregate result.
package gateway

import (
	"context"
	"time"

	"coindash-api/internal/models"
	"coindash-api/internal/providers"
	"coindash-api/internal/sanitize"
)

// invocation is one outbound adapter call resolved from a requested endpoint.
// Fan-out endpoints resolve to several invocations, one per sub-key.
type invocation struct {
	subKey string
	call   func(ctx context.Context) (interface{}, error)
}

// endpointSpec describes one batchable endpoint: which provider family serves
// it, its per-call timeout budget, and how a request resolves into calls.
type endpointSpec struct {
	provider string
	timeout  time.Duration
	resolve  func(g *Gateway, req *models.BatchRequest) []invocation
}

// buildCatalog wires the endpoint registry. An endpoint that resolves to zero
// invocations (parameters missing or rejected by sanitization) is treated as
// not requested rather than failing the batch.
func (g *Gateway) buildCatalog() map[string]endpointSpec {
	return map[string]endpointSpec{
		"global": {
			provider: providers.ProviderMarketData,
			timeout:  g.marketDataTimeout,
			resolve: func(g *Gateway, req *models.BatchRequest) []invocation {
				return []invocation{{call: func(ctx context.Context) (interface{}, error) {
					return g.marketData.GlobalStats(ctx, req.MarketDataKey)
				}}}
			},
		},
		"trending": {
			provider: providers.ProviderMarketData,
			timeout:  g.marketDataTimeout,
			resolve: func(g *Gateway, req *models.BatchRequest) []invocation {
				return []invocation{{call: func(ctx context.Context) (interface{}, error) {
					return g.marketData.Trending(ctx, req.MarketDataKey)
				}}}
			},
		},
		"markets": {
			provider: providers.ProviderMarketData,
			timeout:  g.marketDataTimeout,
			resolve: func(g *Gateway, req *models.BatchRequest) []invocation {
				// The provider supports batched ids, so this endpoint stays a
				// single call regardless of how many coins were requested.
				coinIDs := sanitize.IdentifierList(req.ParamList("coinIds", "coinId"))
				if len(coinIDs) == 0 {
					return nil
				}
				return []invocation{{call: func(ctx context.Context) (interface{}, error) {
					return g.marketData.Markets(ctx, req.MarketDataKey, coinIDs)
				}}}
			},
		},
		"ohlc": {
			provider: providers.ProviderMarketData,
			timeout:  g.marketDataTimeout,
			resolve: func(g *Gateway, req *models.BatchRequest) []invocation {
				coinIDs := sanitize.IdentifierList(req.ParamList("coinIds", "coinId"))
				out := make([]invocation, 0, len(coinIDs))
				for _, coinID := range coinIDs {
					coinID := coinID
					out = append(out, invocation{subKey: coinID, call: func(ctx context.Context) (interface{}, error) {
						return g.marketData.OHLC(ctx, req.MarketDataKey, coinID)
					}})
				}
				return out
			},
		},
		"tvl": {
			provider: providers.ProviderDeFi,
			timeout:  g.defiTimeout,
			resolve: func(g *Gateway, req *models.BatchRequest) []invocation {
				slugs := sanitize.IdentifierList(req.ParamList("protocols", "protocol"))
				out := make([]invocation, 0, len(slugs))
				for _, slug := range slugs {
					slug := slug
					out = append(out, invocation{subKey: slug, call: func(ctx context.Context) (interface{}, error) {
						return g.defi.ProtocolTVL(ctx, slug)
					}})
				}
				return out
			},
		},
		"chains": {
			provider: providers.ProviderDeFi,
			timeout:  g.defiTimeout,
			resolve: func(g *Gateway, req *models.BatchRequest) []invocation {
				return []invocation{{call: func(ctx context.Context) (interface{}, error) {
					return g.defi.Chains(ctx)
				}}}
			},
		},
		"feargreed": {
			provider: providers.ProviderSentiment,
			timeout:  g.sentimentTimeout,
			resolve: func(g *Gateway, req *models.BatchRequest) []invocation {
				return []invocation{{call: func(ctx context.Context) (interface{}, error) {
					return g.sentiment.FearGreed(ctx)
				}}}
			},
		},
		"balances": {
			provider: providers.ProviderOnchain,
			timeout:  g.onchainTimeout,
			resolve: func(g *Gateway, req *models.BatchRequest) []invocation {
				if req.WalletAddress == "" {
					return nil
				}
				chains := sanitize.ChainList(req.Chains)
				out := make([]invocation, 0, len(chains))
				for _, chain := range chains {
					if err := sanitize.WalletAddress(req.WalletAddress, chain); err != nil {
						continue
					}
					chain := chain
					out = append(out, invocation{subKey: chain, call: func(ctx context.Context) (interface{}, error) {
						return g.onchain.NativeBalance(ctx, req.OnchainKey, chain, req.WalletAddress)
					}})
				}
				return out
			},
		},
	}
}
