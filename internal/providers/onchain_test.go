package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"coindash-api/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddress = "0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb1"

func TestEVMBalance(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/test-key", r.URL.Path, "RPC key is appended as a path segment")

		var body struct {
			Method string   `json:"method"`
			Params []string `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "eth_getBalance", body.Method)
		assert.Equal(t, []string{testAddress, "latest"}, body.Params)

		w.Header().Set("Content-Type", "application/json")
		// 1.5 ether in wei
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":"0x14d1120d7b160000"}`))
	}))
	defer server.Close()

	client := NewOnchainClient(&config.OnchainConfig{
		EVMEndpoints:   map[string]string{"ethereum": server.URL},
		SolanaEndpoint: "http://localhost:0",
	})

	balance, err := client.NativeBalance(context.Background(), "test-key", "ethereum", testAddress)
	require.NoError(t, err)

	assert.Equal(t, "ethereum", balance.Chain)
	assert.Equal(t, "ETH", balance.Symbol)
	assert.InDelta(t, 1.5, balance.Balance, 1e-9)
}

func TestEVMBalanceRPCError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"header not found"}}`))
	}))
	defer server.Close()

	client := NewOnchainClient(&config.OnchainConfig{
		EVMEndpoints:   map[string]string{"ethereum": server.URL},
		SolanaEndpoint: "http://localhost:0",
	})

	_, err := client.NativeBalance(context.Background(), "k", "ethereum", testAddress)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Contains(t, provErr.Message, "header not found")
}

func TestEVMBalanceRequiresKey(t *testing.T) {
	client := NewOnchainClient(&config.OnchainConfig{
		EVMEndpoints:   map[string]string{"ethereum": "http://localhost:0"},
		SolanaEndpoint: "http://localhost:0",
	})

	_, err := client.NativeBalance(context.Background(), "", "ethereum", testAddress)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Contains(t, provErr.Message, "RPC key required")
}

func TestEVMBalanceUnknownChain(t *testing.T) {
	client := NewOnchainClient(&config.OnchainConfig{
		EVMEndpoints:   map[string]string{"ethereum": "http://localhost:0"},
		SolanaEndpoint: "http://localhost:0",
	})

	_, err := client.NativeBalance(context.Background(), "k", "dogechain", testAddress)
	assert.Error(t, err)
}

func TestWeiHexToNative(t *testing.T) {
	cases := []struct {
		hex  string
		want float64
	}{
		{"0x0", 0},
		{"0xde0b6b3a7640000", 1},               // 1 ether
		{"0x14d1120d7b160000", 1.5},            // 1.5 ether
		{"0x1bc16d674ec80000", 2},              // 2 ether
	}
	for _, tc := range cases {
		got, err := weiHexToNative(tc.hex)
		require.NoError(t, err)
		assert.InDelta(t, tc.want, got, 1e-9, "hex %s", tc.hex)
	}

	_, err := weiHexToNative("0x")
	assert.Error(t, err)
	_, err = weiHexToNative("0xzzzz")
	assert.Error(t, err)
}
