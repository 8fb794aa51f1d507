package providers

import (
	"context"
	"strconv"

	"coindash-api/internal/config"

	"golang.org/x/time/rate"
	"resty.dev/v3"
)

// SentimentClient talks to the sentiment-index provider (alternative.me
// fear & greed API). Public, no authentication scheme.
type SentimentClient struct {
	client   *resty.Client
	throttle *rate.Limiter
}

// NewSentimentClient creates a sentiment adapter from configuration
func NewSentimentClient(cfg *config.ProviderConfig) *SentimentClient {
	return &SentimentClient{
		client:   newHTTPClient(cfg.BaseURL),
		throttle: newThrottle(cfg.RatePerSecond),
	}
}

// FearGreedIndex is the normalized sentiment shape
type FearGreedIndex struct {
	Value          int    `json:"value"`
	Classification string `json:"classification"`
	Timestamp      int64  `json:"timestamp"`
}

// FearGreed fetches the current fear & greed index. The provider encodes
// numbers as strings; the adapter normalizes them.
func (s *SentimentClient) FearGreed(ctx context.Context) (*FearGreedIndex, error) {
	if err := s.throttle.Wait(ctx); err != nil {
		return nil, classify(ProviderSentiment, 0, ctx, err)
	}

	var raw struct {
		Data []struct {
			Value          string `json:"value"`
			Classification string `json:"value_classification"`
			Timestamp      string `json:"timestamp"`
		} `json:"data"`
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("limit", "1").
		SetQueryParam("format", "json").
		SetResult(&raw).
		Get("/fng/")
	if err != nil {
		return nil, classify(ProviderSentiment, 0, ctx, err)
	}
	if resp.IsError() {
		return nil, &ProviderError{Provider: ProviderSentiment, Status: resp.StatusCode(), Message: resp.String()}
	}

	if len(raw.Data) == 0 {
		return nil, &ProviderError{Provider: ProviderSentiment, Message: "empty index payload"}
	}

	value, err := strconv.Atoi(raw.Data[0].Value)
	if err != nil {
		return nil, &ProviderError{Provider: ProviderSentiment, Message: "non-numeric index value: " + raw.Data[0].Value}
	}
	timestamp, _ := strconv.ParseInt(raw.Data[0].Timestamp, 10, 64)

	return &FearGreedIndex{
		Value:          value,
		Classification: raw.Data[0].Classification,
		Timestamp:      timestamp,
	}, nil
}
