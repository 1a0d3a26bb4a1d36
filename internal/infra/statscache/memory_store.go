package statscache

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/dreamvision/internal/domain/dream"
)

type cachedStats struct {
	day        string
	generation int64
	stats      dream.AggregateStats
	expiresAt  time.Time
}

// MemoryStore caches aggregate statistics in process memory for tests/dev.
type MemoryStore struct {
	mu          sync.RWMutex
	entries     map[int64]cachedStats
	generations map[int64]int64
	ttl         time.Duration
	now         func() time.Time
}

// NewMemoryStore constructs a store whose entries expire after ttl. A zero
// ttl keeps entries until the day changes or they are invalidated.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries:     make(map[int64]cachedStats),
		generations: make(map[int64]int64),
		ttl:         ttl,
		now:         time.Now,
	}
}

// GetStats implements dream.StatsCache.
func (s *MemoryStore) GetStats(_ context.Context, userID int64, day string) (dream.CachedStats, error) {
	s.mu.RLock()
	record, ok := s.entries[userID]
	generation := s.generations[userID]
	s.mu.RUnlock()

	miss := dream.CachedStats{Generation: generation}
	if !ok || record.day != day || record.generation != generation {
		return miss, nil
	}
	if !record.expiresAt.IsZero() && s.now().After(record.expiresAt) {
		s.mu.Lock()
		if current, ok := s.entries[userID]; ok && current.expiresAt.Equal(record.expiresAt) {
			delete(s.entries, userID)
		}
		s.mu.Unlock()
		return miss, nil
	}
	return dream.CachedStats{Stats: cloneStats(record.stats), Generation: generation, Hit: true}, nil
}

// SetStats implements dream.StatsCache. Snapshots computed under a generation
// that has since been invalidated are dropped.
func (s *MemoryStore) SetStats(_ context.Context, userID int64, day string, generation int64, stats dream.AggregateStats) error {
	record := cachedStats{day: day, generation: generation, stats: cloneStats(stats)}
	if s.ttl > 0 {
		record.expiresAt = s.now().Add(s.ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generations[userID] != generation {
		return nil
	}
	s.entries[userID] = record
	return nil
}

// Invalidate implements dream.StatsCache.
func (s *MemoryStore) Invalidate(_ context.Context, userID int64) error {
	s.mu.Lock()
	s.generations[userID]++
	delete(s.entries, userID)
	s.mu.Unlock()
	return nil
}

func cloneStats(in dream.AggregateStats) dream.AggregateStats {
	out := in
	out.TopThemes = append([]string{}, in.TopThemes...)
	out.TopSymbols = append([]string{}, in.TopSymbols...)
	return out
}

var _ dream.StatsCache = (*MemoryStore)(nil)
