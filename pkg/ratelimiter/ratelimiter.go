package ratelimiter

import (
	"sync"
	"time"
)

// window tracks the request count and reset time for one client
type window struct {
	count   int
	resetAt time.Time
}

// RateLimiter implements per-client fixed-window rate limiting with
// in-memory tracking. Windows are created lazily on a client's first
// request and reset once their deadline passes. Bursts across a window
// boundary can reach up to twice the quota; that is an accepted tradeoff
// of the fixed-window design.
type RateLimiter struct {
	windows map[string]*window
	mutex   sync.RWMutex
	quota   int
	length  time.Duration
}

// New creates a new RateLimiter with the given per-window quota and
// window length
func New(quota int, length time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*window),
		quota:   quota,
		length:  length,
	}
}

// Admit reports whether the client may issue a request now. The first
// request from a client, or the first after its window elapsed, resets
// the counter to 1 and records a new deadline.
func (rl *RateLimiter) Admit(clientID string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()

	w, exists := rl.windows[clientID]
	if !exists {
		rl.windows[clientID] = &window{count: 1, resetAt: now.Add(rl.length)}
		return true
	}

	if now.After(w.resetAt) {
		w.count = 1
		w.resetAt = now.Add(rl.length)
		return true
	}

	if w.count >= rl.quota {
		return false
	}

	w.count++
	return true
}

// Quota returns the configured per-window quota
func (rl *RateLimiter) Quota() int {
	return rl.quota
}

// Usage returns the current request count and window deadline for a client
func (rl *RateLimiter) Usage(clientID string) (count int, resetAt time.Time) {
	rl.mutex.RLock()
	defer rl.mutex.RUnlock()

	w, exists := rl.windows[clientID]
	if !exists || time.Now().After(w.resetAt) {
		return 0, time.Now().Add(rl.length)
	}
	return w.count, w.resetAt
}

// Size returns the number of tracked client windows
func (rl *RateLimiter) Size() int {
	rl.mutex.RLock()
	defer rl.mutex.RUnlock()
	return len(rl.windows)
}

// Cleanup removes elapsed windows. Correctness does not depend on this;
// it only bounds memory for clients that stopped sending requests.
func (rl *RateLimiter) Cleanup() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()
	for clientID, w := range rl.windows {
		if now.After(w.resetAt) {
			delete(rl.windows, clientID)
		}
	}
}
