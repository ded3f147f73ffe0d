package series

import (
	"sort"
	"sync"

	"ChartSignals/internal/domain/models"
	domrepo "ChartSignals/internal/domain/repository"
)

// DefaultCap is the default bound on bars retained per (symbol, timeframe).
const DefaultCap = 3000

// Key identifies one series in the store.
type Key struct {
	Symbol    string
	Timeframe domrepo.Timeframe
}

// Store owns the bounded, deduplicated, time-ordered bar sequence per key.
// Upserts build a fresh slice and swap the reference under the lock, so a
// concurrent reader sees either the pre- or post-upsert series, never a
// partially updated one. Readers must not mutate returned slices.
type Store struct {
	mu     sync.RWMutex
	series map[Key][]models.Bar
	cap    int
}

// NewStore creates a store with the given per-series cap (<=0 means DefaultCap).
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	return &Store{series: make(map[Key][]models.Bar), cap: capacity}
}

// Upsert inserts b into the series for k, replacing any bar with the same
// timestamp, and evicts the oldest bars beyond the cap.
func (s *Store) Upsert(k Key, b models.Bar) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.series[k]
	i := sort.Search(len(cur), func(i int) bool { return cur[i].Timestamp >= b.Timestamp })

	var next []models.Bar
	switch {
	case i < len(cur) && cur[i].Timestamp == b.Timestamp:
		next = make([]models.Bar, len(cur))
		copy(next, cur)
		next[i] = b
	case i == len(cur):
		// common path: append at the tail
		next = make([]models.Bar, len(cur), len(cur)+1)
		copy(next, cur)
		next = append(next, b)
	default:
		next = make([]models.Bar, 0, len(cur)+1)
		next = append(next, cur[:i]...)
		next = append(next, b)
		next = append(next, cur[i:]...)
	}

	if len(next) > s.cap {
		next = next[len(next)-s.cap:]
	}
	s.series[k] = next
}

// Read returns the current snapshot of the series for k, or nil if absent.
func (s *Store) Read(k Key) []models.Bar {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.series[k]
}

// Len returns the number of bars stored for k.
func (s *Store) Len(k Key) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.series[k])
}

// Keys returns all series keys currently held.
func (s *Store) Keys() []Key {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]Key, 0, len(s.series))
	for k := range s.series {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Symbol != keys[j].Symbol {
			return keys[i].Symbol < keys[j].Symbol
		}
		return keys[i].Timeframe < keys[j].Timeframe
	})
	return keys
}

// Tail returns at most n most recent bars for k (snapshot, read-only).
func (s *Store) Tail(k Key, n int) []models.Bar {
	cur := s.Read(k)
	if n <= 0 || len(cur) <= n {
		return cur
	}
	return cur[len(cur)-n:]
}
