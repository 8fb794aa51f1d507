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

func TestFearGreed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fng/", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"value":"54","value_classification":"Neutral","timestamp":"1700000000"}]}`))
	}))
	defer server.Close()

	client := NewSentimentClient(&config.ProviderConfig{BaseURL: server.URL})
	index, err := client.FearGreed(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 54, index.Value)
	assert.Equal(t, "Neutral", index.Classification)
	assert.Equal(t, int64(1700000000), index.Timestamp)
}

func TestFearGreedEmptyPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	client := NewSentimentClient(&config.ProviderConfig{BaseURL: server.URL})
	_, err := client.FearGreed(context.Background())

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, ProviderSentiment, provErr.Provider)
}
