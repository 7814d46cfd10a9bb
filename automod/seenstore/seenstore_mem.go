package seenstore

import (
	"context"
	"sync"
)

type MemSeenStore struct {
	mu   sync.RWMutex
	Data map[string]bool
}

var _ SeenStore = (*MemSeenStore)(nil)

func NewMemSeenStore() *MemSeenStore {
	return &MemSeenStore{
		Data: make(map[string]bool),
	}
}

func (s *MemSeenStore) Seen(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Data[id], nil
}

func (s *MemSeenStore) MarkSeen(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Data[id] = true
	return nil
}
