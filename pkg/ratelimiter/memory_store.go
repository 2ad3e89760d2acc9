package ratelimiter

import (
	"context"
	"sync"
	"time"
)

type bucketState struct {
	tokens     int64
	lastRefill time.Time
}

// MemoryStore keeps bucket state in process memory. Suitable for single-node
// deployments and tests; multi-node setups need a shared store.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucketState
}

// NewMemoryStore creates an in-memory bucket store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: make(map[string]*bucketState)}
}

func (m *MemoryStore) ConsumeTokens(ctx context.Context, key string, n int64, cfg Config) (bool, int64, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	state, ok := m.buckets[key]
	if !ok {
		state = &bucketState{tokens: cfg.Capacity, lastRefill: now}
		m.buckets[key] = state
	}

	// Lazy refill based on elapsed whole intervals.
	elapsed := now.Sub(state.lastRefill)
	intervals := int64(elapsed / cfg.RefillInterval)
	if intervals > 0 {
		state.tokens += intervals * cfg.RefillRate
		if state.tokens > cfg.Capacity {
			state.tokens = cfg.Capacity
		}
		state.lastRefill = state.lastRefill.Add(time.Duration(intervals) * cfg.RefillInterval)
	}

	resetAt := state.lastRefill.Add(cfg.RefillInterval)

	if state.tokens < n {
		return false, state.tokens, resetAt, nil
	}

	state.tokens -= n
	return true, state.tokens, resetAt, nil
}

func (m *MemoryStore) Reset(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.buckets, key)
	return nil
}

var _ Store = (*MemoryStore)(nil)
