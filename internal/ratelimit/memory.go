package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the process-local fallback counter store. It only limits
// requests seen by this process: with multiple server instances each one
// enforces the limit independently, which is a weaker guarantee than the
// shared store provides.
type MemoryStore struct {
	mu        sync.Mutex
	hits      map[string][]time.Time
	lastSweep time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{hits: make(map[string][]time.Time)}
}

func (s *MemoryStore) Hit(_ context.Context, identity string, now time.Time, window time.Duration) (int64, error) {
	windowStart := now.Add(-window)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Once per window, drop identities whose hits have all aged out so
	// clients that never return do not accumulate for the process lifetime
	if now.Sub(s.lastSweep) >= window {
		for id, times := range s.hits {
			if id != identity && !times[len(times)-1].After(windowStart) {
				delete(s.hits, id)
			}
		}
		s.lastSweep = now
	}

	kept := s.hits[identity][:0]
	for _, at := range s.hits[identity] {
		if at.After(windowStart) {
			kept = append(kept, at)
		}
	}

	kept = append(kept, now)
	s.hits[identity] = kept

	return int64(len(kept)), nil
}
