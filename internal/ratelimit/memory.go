package ratelimit

import (
	"context"
	"sort"
	"sync"
	"time"
)

type entry struct {
	windowStart time.Time
	count       int
	lastSeen    time.Time
}

// MemoryStore keeps counters in a map. Windows are reset lazily on access;
// stale entries are pruned every pruneEvery operations and the map is capped
// at maxEntries, evicting the least recently seen keys first.
type MemoryStore struct {
	mu         sync.Mutex
	now        func() time.Time
	maxEntries int
	pruneEvery uint64
	opCount    uint64
	entries    map[string]*entry
}

func NewMemoryStore() *MemoryStore {
	return newMemoryStoreWithBounds(10_000, 256, time.Now)
}

func newMemoryStoreWithBounds(maxEntries int, pruneEvery uint64, now func() time.Time) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = 10_000
	}
	if pruneEvery == 0 {
		pruneEvery = 256
	}
	return &MemoryStore{
		now:        now,
		maxEntries: maxEntries,
		pruneEvery: pruneEvery,
		entries:    make(map[string]*entry),
	}
}

func (s *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.entries[key]
	if !ok {
		e = &entry{windowStart: now}
		s.entries[key] = e
	}
	e.lastSeen = now
	if now.Sub(e.windowStart) >= window {
		e.windowStart = now
		e.count = 0
	}
	e.count++
	count, resetAt := e.count, e.windowStart.Add(window)

	if s.shouldPruneLocked() {
		s.pruneLocked(now, window)
	}
	return count, resetAt, nil
}

// Len returns the number of tracked keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) shouldPruneLocked() bool {
	s.opCount++
	if len(s.entries) > s.maxEntries {
		return true
	}
	return s.opCount%s.pruneEvery == 0
}

// pruneLocked drops entries whose window has expired, then evicts the least
// recently seen keys until the map fits maxEntries.
func (s *MemoryStore) pruneLocked(now time.Time, window time.Duration) {
	for key, e := range s.entries {
		if now.Sub(e.windowStart) >= window {
			delete(s.entries, key)
		}
	}
	if len(s.entries) <= s.maxEntries {
		return
	}

	type candidate struct {
		key      string
		lastSeen time.Time
	}
	candidates := make([]candidate, 0, len(s.entries))
	for key, e := range s.entries {
		candidates = append(candidates, candidate{key: key, lastSeen: e.lastSeen})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].lastSeen.Equal(candidates[j].lastSeen) {
			return candidates[i].key < candidates[j].key
		}
		return candidates[i].lastSeen.Before(candidates[j].lastSeen)
	})

	over := len(s.entries) - s.maxEntries
	for i := 0; i < over && i < len(candidates); i++ {
		delete(s.entries, candidates[i].key)
	}
}
