package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"coindash-api/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtocolTVL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tvl/aave", r.URL.Path)
		w.Write([]byte(`12345678901.23`))
	}))
	defer server.Close()

	client := NewDeFiClient(&config.ProviderConfig{BaseURL: server.URL})
	tvl, err := client.ProtocolTVL(context.Background(), "aave")
	require.NoError(t, err)

	assert.Equal(t, "aave", tvl.Slug)
	assert.Equal(t, 12345678901.23, tvl.TVLUSD)
}

func TestProtocolTVLMalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not-a-number`))
	}))
	defer server.Close()

	client := NewDeFiClient(&config.ProviderConfig{BaseURL: server.URL})
	_, err := client.ProtocolTVL(context.Background(), "aave")

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, ProviderDeFi, provErr.Provider)
}

func TestChains(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/chains", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"name":"Ethereum","tokenSymbol":"ETH","tvl":55000000000},
			{"name":"Solana","tokenSymbol":"SOL","tvl":8000000000}
		]`))
	}))
	defer server.Close()

	client := NewDeFiClient(&config.ProviderConfig{BaseURL: server.URL})
	chains, err := client.Chains(context.Background())
	require.NoError(t, err)

	require.Len(t, chains, 2)
	assert.Equal(t, "Ethereum", chains[0].Name)
	assert.Equal(t, float64(8000000000), chains[1].TVLUSD)
}
