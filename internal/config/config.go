package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig    `mapstructure:"server"`
	MarketData ProviderConfig  `mapstructure:"marketdata"`
	Onchain    OnchainConfig   `mapstructure:"onchain"`
	DeFi       ProviderConfig  `mapstructure:"defi"`
	Sentiment  ProviderConfig  `mapstructure:"sentiment"`
	Mongo      MongoConfig     `mapstructure:"mongo"`
	Cache      CacheConfig     `mapstructure:"cache"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
	Logging    LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// ProviderConfig holds configuration for one HTTP upstream provider
type ProviderConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
	// RatePerSecond throttles outbound calls to this provider
	RatePerSecond float64 `mapstructure:"rate_per_second"`
}

// OnchainConfig holds configuration for the multi-chain RPC provider
type OnchainConfig struct {
	// EVMEndpoints maps a chain selector to its JSON-RPC base URL.
	// The RPC key (service-wide or BYOK) is appended as a path segment.
	EVMEndpoints   map[string]string `mapstructure:"evm_endpoints"`
	SolanaEndpoint string            `mapstructure:"solana_endpoint"`
	APIKey         string            `mapstructure:"api_key"`
	Timeout        time.Duration     `mapstructure:"timeout"`
	RatePerSecond  float64           `mapstructure:"rate_per_second"`
}

// MongoConfig holds the durable cache layer connection configuration
type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	Collection     string        `mapstructure:"collection"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	MaxPoolSize    uint64        `mapstructure:"max_pool_size"`
}

// CacheConfig holds tiered cache configuration
type CacheConfig struct {
	// QuoteTTL bounds freshness for quote-like data
	QuoteTTL time.Duration `mapstructure:"quote_ttl"`
	// MetadataTTL bounds freshness for slow-changing metadata
	MetadataTTL     time.Duration `mapstructure:"metadata_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RateLimitConfig holds inbound rate limiting configuration
type RateLimitConfig struct {
	Quota           int           `mapstructure:"quota"`
	Window          time.Duration `mapstructure:"window"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level       string   `mapstructure:"level"`
	Environment string   `mapstructure:"environment"`
	OutputPaths []string `mapstructure:"output_paths"`
}

// Load reads configuration from environment variables and an optional
// config.yaml. Environment variables take precedence over file values.
func Load() (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("COINDASH")
	v.AutomaticEnv()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)

	v.SetDefault("marketdata.base_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("marketdata.timeout", 15*time.Second)
	v.SetDefault("marketdata.rate_per_second", 4)

	v.SetDefault("onchain.evm_endpoints", map[string]string{
		"ethereum": "https://eth-mainnet.g.alchemy.com/v2",
		"polygon":  "https://polygon-mainnet.g.alchemy.com/v2",
		"arbitrum": "https://arb-mainnet.g.alchemy.com/v2",
		"optimism": "https://opt-mainnet.g.alchemy.com/v2",
		"base":     "https://base-mainnet.g.alchemy.com/v2",
	})
	v.SetDefault("onchain.solana_endpoint", "https://api.mainnet-beta.solana.com")
	v.SetDefault("onchain.timeout", 10*time.Second)
	v.SetDefault("onchain.rate_per_second", 10)

	v.SetDefault("defi.base_url", "https://api.llama.fi")
	v.SetDefault("defi.timeout", 10*time.Second)
	v.SetDefault("defi.rate_per_second", 5)

	v.SetDefault("sentiment.base_url", "https://api.alternative.me")
	v.SetDefault("sentiment.timeout", 10*time.Second)
	v.SetDefault("sentiment.rate_per_second", 2)

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "coindash")
	v.SetDefault("mongo.collection", "resource_cache")
	v.SetDefault("mongo.connect_timeout", 10*time.Second)
	v.SetDefault("mongo.max_pool_size", 100)

	v.SetDefault("cache.quote_ttl", 5*time.Minute)
	v.SetDefault("cache.metadata_ttl", time.Hour)
	v.SetDefault("cache.cleanup_interval", 10*time.Minute)

	v.SetDefault("rate_limit.quota", 30)
	v.SetDefault("rate_limit.window", time.Minute)
	v.SetDefault("rate_limit.cleanup_interval", 5*time.Minute)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.environment", "development")
	v.SetDefault("logging.output_paths", []string{"stdout"})

	// Optional config file alongside the binary
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.coindash")
	_ = v.ReadInConfig()

	v.BindEnv("server.port", "COINDASH_SERVER_PORT")
	v.BindEnv("marketdata.api_key", "COINDASH_MARKETDATA_API_KEY")
	v.BindEnv("marketdata.base_url", "COINDASH_MARKETDATA_BASE_URL")
	v.BindEnv("onchain.api_key", "COINDASH_ONCHAIN_API_KEY")
	v.BindEnv("onchain.solana_endpoint", "COINDASH_SOLANA_ENDPOINT")
	v.BindEnv("defi.base_url", "COINDASH_DEFI_BASE_URL")
	v.BindEnv("sentiment.base_url", "COINDASH_SENTIMENT_BASE_URL")
	v.BindEnv("mongo.uri", "COINDASH_MONGO_URI")
	v.BindEnv("rate_limit.quota", "COINDASH_RATE_LIMIT_QUOTA")
	v.BindEnv("logging.level", "COINDASH_LOG_LEVEL")
	v.BindEnv("logging.environment", "COINDASH_LOG_ENVIRONMENT")

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.RateLimit.Quota <= 0 {
		return fmt.Errorf("rate limit quota must be positive, got %d", c.RateLimit.Quota)
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate limit window must be positive, got %s", c.RateLimit.Window)
	}
	if c.MarketData.BaseURL == "" {
		return fmt.Errorf("market data base URL cannot be empty")
	}
	if c.Cache.QuoteTTL <= 0 || c.Cache.MetadataTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	if len(c.Onchain.EVMEndpoints) == 0 {
		return fmt.Errorf("at least one EVM endpoint must be configured")
	}
	return nil
}
