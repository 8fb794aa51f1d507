package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "https://api.coingecko.com/api/v3", cfg.MarketData.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.MarketData.Timeout)
	assert.Equal(t, 10*time.Second, cfg.Onchain.Timeout)
	assert.Equal(t, 30, cfg.RateLimit.Quota)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 5*time.Minute, cfg.Cache.QuoteTTL)
	assert.Equal(t, time.Hour, cfg.Cache.MetadataTTL)
	assert.Contains(t, cfg.Onchain.EVMEndpoints, "ethereum")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("COINDASH_MARKETDATA_API_KEY", "cg-test-key")
	t.Setenv("COINDASH_MARKETDATA_BASE_URL", "http://localhost:9999")
	t.Setenv("COINDASH_RATE_LIMIT_QUOTA", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "cg-test-key", cfg.MarketData.APIKey)
	assert.Equal(t, "http://localhost:9999", cfg.MarketData.BaseURL)
	assert.Equal(t, 5, cfg.RateLimit.Quota)
}

func TestValidate(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.RateLimit.Quota = 0
	assert.Error(t, cfg.Validate())

	cfg.RateLimit.Quota = 30
	cfg.MarketData.BaseURL = ""
	assert.Error(t, cfg.Validate())
}
