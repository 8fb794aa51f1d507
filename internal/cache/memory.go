// Package cache implements the tiered read-through cache in front of the
// resource endpoints: a fast in-process tier backed by a durable tier, with
// stale entries retained so they can be served when every upstream fails.
package cache

import (
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	storedAt  time.Time
	expiresAt time.Time
}

// Memory is the ephemeral cache tier. Expired entries are kept until Cleanup
// evicts them, so a lookup can distinguish fresh, stale and absent.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemory creates an empty ephemeral tier
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry)}
}

// Get returns the cached value for key. fresh reports whether the entry is
// still within its TTL; ok reports whether any entry (fresh or stale) exists.
func (m *Memory) Get(key string) (value []byte, fresh bool, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false, false
	}
	return entry.value, time.Now().Before(entry.expiresAt), true
}

// Set stores a value under key with the given TTL
func (m *Memory) Set(key string, value []byte, ttl time.Duration) {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{value: value, storedAt: now, expiresAt: now.Add(ttl)}
}

// Len returns the number of entries, stale ones included
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Cleanup evicts entries that have been stale longer than maxStale. Recently
// expired entries survive so stale-on-error still has something to serve.
func (m *Memory) Cleanup(maxStale time.Duration) {
	cutoff := time.Now().Add(-maxStale)
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, entry := range m.entries {
		if entry.expiresAt.Before(cutoff) {
			delete(m.entries, key)
		}
	}
}
