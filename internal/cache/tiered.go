package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"coindash-api/pkg/logger"
	"coindash-api/pkg/metrics"

	"go.uber.org/zap"
)

// Status describes how a lookup was satisfied; it is surfaced to clients in
// the X-Cache response header
type Status string

const (
	// StatusHit means a fresh cached value was served
	StatusHit Status = "HIT"
	// StatusMiss means the value was fetched from upstream
	StatusMiss Status = "MISS"
	// StatusStale means an expired value was served because upstream failed
	StatusStale Status = "STALE"
)

// Lookup is the outcome of one read-through lookup
type Lookup struct {
	Value  []byte
	Status Status
}

// Tiered is the read-through cache: ephemeral tier first, durable tier
// second, upstream last. Fetched values are written through to both tiers;
// durable hits are promoted into the ephemeral tier.
type Tiered struct {
	memory    *Memory
	durable   Durable // nil when no durable tier is configured
	collector *metrics.Collector
	log       *logger.Logger
	locks     keyedMutex
}

// NewTiered creates a tiered cache. durable may be nil.
func NewTiered(memory *Memory, durable Durable, collector *metrics.Collector) *Tiered {
	return &Tiered{
		memory:    memory,
		durable:   durable,
		collector: collector,
		log:       logger.GetLogger(),
	}
}

// GetOrFetch returns the cached value for key or fetches it from upstream.
// Concurrent lookups of the same key are serialized so a cold key triggers
// one upstream call, not one per waiting request. When the fetch fails and a
// stale entry exists in either tier, the stale value is served instead of
// the error.
func (t *Tiered) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch func(ctx context.Context) ([]byte, error)) (*Lookup, error) {
	unlock := t.locks.lock(key)
	defer unlock()

	if value, fresh, ok := t.memory.Get(key); ok && fresh {
		t.collector.RecordCacheHit()
		return &Lookup{Value: value, Status: StatusHit}, nil
	}

	if entry := t.durableGet(ctx, key); entry != nil && entry.Fresh() {
		t.collector.RecordCacheHit()
		// Promote with the remaining lifetime, not a full TTL
		t.memory.Set(key, entry.Value, time.Until(entry.ExpiresAt))
		return &Lookup{Value: entry.Value, Status: StatusHit}, nil
	}

	value, err := fetch(ctx)
	if err == nil {
		t.collector.RecordCacheMiss()
		t.memory.Set(key, value, ttl)
		if t.durable != nil {
			if setErr := t.durable.Set(ctx, key, value, ttl); setErr != nil {
				t.log.Warn("durable cache write failed", zap.String("key", key), zap.Error(setErr))
			}
		}
		return &Lookup{Value: value, Status: StatusMiss}, nil
	}

	if stale := t.staleValue(ctx, key); stale != nil {
		t.collector.RecordCacheStale()
		t.log.Warn("serving stale cache entry after upstream failure",
			zap.String("key", key), zap.Error(err))
		return &Lookup{Value: stale, Status: StatusStale}, nil
	}

	return nil, err
}

// durableGet reads the durable tier, treating any failure as a miss
func (t *Tiered) durableGet(ctx context.Context, key string) *DurableEntry {
	if t.durable == nil {
		return nil
	}
	entry, err := t.durable.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			t.log.Warn("durable cache lookup failed", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
	return entry
}

// staleValue returns an expired entry from either tier, ephemeral first
func (t *Tiered) staleValue(ctx context.Context, key string) []byte {
	if value, _, ok := t.memory.Get(key); ok {
		return value
	}
	if entry := t.durableGet(ctx, key); entry != nil {
		return entry.Value
	}
	return nil
}

// Cleanup evicts long-expired ephemeral entries. Entries stale for less than
// one cleanup generation survive for stale-on-error.
func (t *Tiered) Cleanup(maxStale time.Duration) {
	t.memory.Cleanup(maxStale)
}

// Ping reports durable tier health; a nil durable tier is always healthy
func (t *Tiered) Ping(ctx context.Context) error {
	if t.durable == nil {
		return nil
	}
	return t.durable.Ping(ctx)
}

// keyedMutex serializes work per key so concurrent cold lookups of the same
// resource collapse into a single upstream fetch
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// lock acquires the mutex for key and returns its release func
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyLock)
	}
	entry, ok := k.locks[key]
	if !ok {
		entry = &keyLock{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
