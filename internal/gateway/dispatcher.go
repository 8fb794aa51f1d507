package gateway

import (
	"context"
	"sync"
	"time"

	"coindash-api/internal/config"
	"coindash-api/internal/models"
	"coindash-api/internal/policy"
	"coindash-api/internal/providers"
	"coindash-api/pkg/logger"
	"coindash-api/pkg/metrics"

	"go.uber.org/zap"
)

// Clients bundles the upstream adapters the gateway dispatches to
type Clients struct {
	MarketData *providers.MarketDataClient
	Onchain    *providers.OnchainClient
	DeFi       *providers.DeFiClient
	Sentiment  *providers.SentimentClient
}

// Gateway owns the endpoint catalog and the concurrent dispatch loop
type Gateway struct {
	marketData *providers.MarketDataClient
	onchain    *providers.OnchainClient
	defi       *providers.DeFiClient
	sentiment  *providers.SentimentClient

	marketDataTimeout time.Duration
	onchainTimeout    time.Duration
	defiTimeout       time.Duration
	sentimentTimeout  time.Duration

	gate      policy.Gate
	collector *metrics.Collector
	log       *logger.Logger

	catalog map[string]endpointSpec
}

// New creates a gateway over the given adapters. Per-provider timeout budgets
// come from configuration.
func New(cfg *config.Config, clients Clients, gate policy.Gate, collector *metrics.Collector) *Gateway {
	g := &Gateway{
		marketData:        clients.MarketData,
		onchain:           clients.Onchain,
		defi:              clients.DeFi,
		sentiment:         clients.Sentiment,
		marketDataTimeout: cfg.MarketData.Timeout,
		onchainTimeout:    cfg.Onchain.Timeout,
		defiTimeout:       cfg.DeFi.Timeout,
		sentimentTimeout:  cfg.Sentiment.Timeout,
		gate:              gate,
		collector:         collector,
		log:               logger.GetLogger(),
	}
	g.catalog = g.buildCatalog()
	return g
}

// outcome is the result of one adapter invocation, sent from a worker
// goroutine to the single collecting loop
type outcome struct {
	endpoint string
	subKey   string
	value    interface{}
	err      error
}

// job pairs a resolved invocation with its endpoint spec
type job struct {
	endpoint string
	spec     endpointSpec
	inv      invocation
}

// Execute dispatches every requested endpoint concurrently and merges the
// outcomes. One failing endpoint never aborts the others; each failure is
// recorded under its endpoint (or sub-key) and the first error message is
// kept for the case where nothing succeeded.
func (g *Gateway) Execute(ctx context.Context, req *models.BatchRequest) *models.AggregateResult {
	purpose := policy.Purpose(req.Purpose)
	if purpose == "" {
		purpose = policy.PurposeDisplay
	}

	jobs := g.resolveJobs(req)
	result := models.NewAggregateResult()
	if len(jobs) == 0 {
		return result
	}

	results := make(chan outcome, len(jobs))
	var wg sync.WaitGroup

	for _, j := range jobs {
		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			results <- g.run(ctx, j, purpose)
		}(j)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// Single owner of the merge: only this loop touches the result maps.
	fanout := make(map[string]map[string]interface{})
	fanoutErrs := make(map[string]map[string]string)
	firstSubErr := make(map[string]string)

	for out := range results {
		if out.err != nil && result.FirstError == "" {
			result.FirstError = out.err.Error()
		}

		if out.subKey == "" {
			if out.err != nil {
				result.Errors[out.endpoint] = out.err.Error()
			} else {
				result.Sections[out.endpoint] = out.value
			}
			continue
		}

		if out.err != nil {
			if fanoutErrs[out.endpoint] == nil {
				fanoutErrs[out.endpoint] = make(map[string]string)
			}
			fanoutErrs[out.endpoint][out.subKey] = out.err.Error()
			if _, seen := firstSubErr[out.endpoint]; !seen {
				firstSubErr[out.endpoint] = out.err.Error()
			}
			continue
		}

		if fanout[out.endpoint] == nil {
			fanout[out.endpoint] = make(map[string]interface{})
		}
		fanout[out.endpoint][out.subKey] = out.value
	}

	// A fan-out endpoint succeeds if any sub-key did; its failed sub-keys
	// surface as partial errors. With no successful sub-key at all the
	// endpoint fails with the first sub-key error.
	for endpoint, subs := range fanout {
		result.Sections[endpoint] = subs
		if errs, ok := fanoutErrs[endpoint]; ok {
			result.SubErrors[endpoint] = errs
			delete(fanoutErrs, endpoint)
		}
	}
	for endpoint := range fanoutErrs {
		result.Errors[endpoint] = firstSubErr[endpoint]
	}

	return result
}

// resolveJobs turns the request's endpoint list into concrete invocations.
// Duplicate and unknown endpoint identifiers are skipped.
func (g *Gateway) resolveJobs(req *models.BatchRequest) []job {
	seen := make(map[string]bool, len(req.Endpoints))
	var jobs []job

	for _, endpoint := range req.Endpoints {
		if seen[endpoint] {
			continue
		}
		seen[endpoint] = true

		spec, ok := g.catalog[endpoint]
		if !ok {
			g.log.Debug("skipping unknown endpoint", zap.String("endpoint", endpoint))
			continue
		}
		for _, inv := range spec.resolve(g, req) {
			jobs = append(jobs, job{endpoint: endpoint, spec: spec, inv: inv})
		}
	}
	return jobs
}

// run executes one invocation under its timeout budget, records metrics and
// applies the redistribution policy gate to successful fetches
func (g *Gateway) run(ctx context.Context, j job, purpose policy.Purpose) outcome {
	callCtx, cancel := context.WithTimeout(ctx, j.spec.timeout)
	defer cancel()

	start := time.Now()
	value, err := j.inv.call(callCtx)
	duration := time.Since(start)

	g.collector.RecordUpstreamCall(j.spec.provider, duration, err == nil)
	if providers.IsTimeout(err) {
		g.collector.RecordUpstreamTimeout()
	}

	if err == nil {
		if policyErr := g.gate.AssertAllowed(j.spec.provider, policy.RequestContext{
			Purpose: purpose,
			Route:   "/api/batch",
		}); policyErr != nil {
			value, err = nil, policyErr
		}
	}

	if err != nil {
		g.log.Warn("endpoint dispatch failed",
			zap.String("endpoint", j.endpoint),
			zap.String("provider", j.spec.provider),
			zap.String("sub_key", j.inv.subKey),
			zap.Duration("duration", duration),
			zap.Error(err))
	}

	return outcome{endpoint: j.endpoint, subKey: j.inv.subKey, value: value, err: err}
}
