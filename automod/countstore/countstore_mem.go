package countstore

import (
	"context"
	"sync"
)

// In-process counters. Safe for concurrent use; counts are never expired.
type MemCountStore struct {
	mu             sync.Mutex
	Counts         map[string]int
	DistinctCounts map[string]map[string]bool
}

var _ CountStore = (*MemCountStore)(nil)

func NewMemCountStore() *MemCountStore {
	return &MemCountStore{
		Counts:         make(map[string]int),
		DistinctCounts: make(map[string]map[string]bool),
	}
}

func (s *MemCountStore) GetCount(ctx context.Context, name, val, period string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Counts[periodBucket(name, val, period)], nil
}

func (s *MemCountStore) Increment(ctx context.Context, name, val string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range []string{PeriodTotal, PeriodDay, PeriodHour} {
		s.Counts[periodBucket(name, val, p)]++
	}
	return nil
}

func (s *MemCountStore) GetCountDistinct(ctx context.Context, name, bucket, period string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.DistinctCounts[periodBucket(name, bucket, period)]), nil
}

func (s *MemCountStore) IncrementDistinct(ctx context.Context, name, bucket, val string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range []string{PeriodTotal, PeriodDay, PeriodHour} {
		k := periodBucket(name, bucket, p)
		m, ok := s.DistinctCounts[k]
		if !ok {
			m = make(map[string]bool)
			s.DistinctCounts[k] = m
		}
		m[val] = true
	}
	return nil
}
