package providers

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"coindash-api/internal/config"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"golang.org/x/time/rate"
	"resty.dev/v3"
)

// nativeSymbols maps a chain selector to its gas token symbol
var nativeSymbols = map[string]string{
	"ethereum": "ETH",
	"polygon":  "POL",
	"arbitrum": "ETH",
	"optimism": "ETH",
	"base":     "ETH",
	"solana":   "SOL",
}

// OnchainClient is the multi-chain RPC adapter. EVM chains are queried with
// a JSON-RPC request-body payload; Solana goes through its own RPC client.
type OnchainClient struct {
	client       *resty.Client
	evmEndpoints map[string]string
	solanaClient *solanarpc.Client
	apiKey       string
	throttle     *rate.Limiter
}

// NewOnchainClient creates an on-chain adapter from configuration
func NewOnchainClient(cfg *config.OnchainConfig) *OnchainClient {
	return &OnchainClient{
		client:       newHTTPClient("").SetHeader("Content-Type", "application/json"),
		evmEndpoints: cfg.EVMEndpoints,
		solanaClient: solanarpc.New(cfg.SolanaEndpoint),
		apiKey:       cfg.APIKey,
		throttle:     newThrottle(cfg.RatePerSecond),
	}
}

// ChainBalance is the normalized per-chain native balance shape
type ChainBalance struct {
	Chain   string  `json:"chain"`
	Address string  `json:"address"`
	Balance float64 `json:"balance"`
	Symbol  string  `json:"symbol"`
}

// NativeBalance fetches the native-token balance of address on the given
// chain. A caller-supplied RPC key takes precedence over the configured one.
func (o *OnchainClient) NativeBalance(ctx context.Context, apiKey, chain, address string) (*ChainBalance, error) {
	if err := o.throttle.Wait(ctx); err != nil {
		return nil, classify(ProviderOnchain, 0, ctx, err)
	}

	if chain == "solana" {
		return o.solanaBalance(ctx, address)
	}
	return o.evmBalance(ctx, apiKey, chain, address)
}

// evmBalance issues eth_getBalance against the chain's JSON-RPC endpoint
func (o *OnchainClient) evmBalance(ctx context.Context, apiKey, chain, address string) (*ChainBalance, error) {
	endpoint, ok := o.evmEndpoints[chain]
	if !ok {
		return nil, &ProviderError{Provider: ProviderOnchain, Message: "no RPC endpoint configured for chain " + chain}
	}

	key := apiKey
	if key == "" {
		key = o.apiKey
	}
	if key == "" {
		return nil, &ProviderError{Provider: ProviderOnchain, Message: "RPC key required for chain " + chain}
	}

	body := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "eth_getBalance",
		"params":  []string{address, "latest"},
	}

	var raw struct {
		Result string `json:"result"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	resp, err := o.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&raw).
		Post(endpoint + "/" + key)
	if err != nil {
		return nil, classify(ProviderOnchain, 0, ctx, err)
	}
	if resp.IsError() {
		return nil, &ProviderError{Provider: ProviderOnchain, Status: resp.StatusCode(), Message: resp.String()}
	}
	if raw.Error != nil {
		return nil, &ProviderError{Provider: ProviderOnchain, Status: raw.Error.Code, Message: raw.Error.Message}
	}

	balance, err := weiHexToNative(raw.Result)
	if err != nil {
		return nil, &ProviderError{Provider: ProviderOnchain, Message: err.Error()}
	}

	return &ChainBalance{
		Chain:   chain,
		Address: address,
		Balance: balance,
		Symbol:  nativeSymbols[chain],
	}, nil
}

// solanaBalance fetches lamports via the Solana RPC client and converts to
// SOL (1 SOL = 1e9 lamports)
func (o *OnchainClient) solanaBalance(ctx context.Context, address string) (*ChainBalance, error) {
	pubKey, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, &ProviderError{Provider: ProviderOnchain, Message: fmt.Sprintf("invalid wallet address: %v", err)}
	}

	result, err := o.solanaClient.GetBalance(ctx, pubKey, solanarpc.CommitmentFinalized)
	if err != nil {
		return nil, classify(ProviderOnchain, 0, ctx, err)
	}

	return &ChainBalance{
		Chain:   "solana",
		Address: address,
		Balance: float64(result.Value) / 1e9,
		Symbol:  nativeSymbols["solana"],
	}, nil
}

// weiHexToNative converts a 0x-prefixed wei quantity to the native unit
// (1 ether = 1e18 wei) with float64 precision, which is sufficient for
// dashboard display
func weiHexToNative(hexValue string) (float64, error) {
	trimmed := strings.TrimPrefix(hexValue, "0x")
	if trimmed == "" {
		return 0, fmt.Errorf("empty balance result")
	}

	wei, ok := new(big.Int).SetString(trimmed, 16)
	if !ok {
		return 0, fmt.Errorf("malformed balance result %q", hexValue)
	}

	native := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(1e18))
	value, _ := native.Float64()
	return value, nil
}
