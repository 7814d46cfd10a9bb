package configsync

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

var ErrNoDocument = errors.New("no rule document")

// Canonical storage for per-community rule documents.
type DocumentStore interface {
	// returns ErrNoDocument when the community has no document yet
	GetDocument(ctx context.Context, community string) (string, error)
	// creates or overwrites the document; reason is kept as the revision message where supported
	PutDocument(ctx context.Context, community, content, reason string) error
}

type Revision struct {
	Community string
	Content   string
	Reason    string
	CreatedAt time.Time
}

// In-process document store. Keeps every revision.
type MemDocumentStore struct {
	mu        sync.RWMutex
	Revisions map[string][]Revision
}

var _ DocumentStore = (*MemDocumentStore)(nil)

func NewMemDocumentStore() *MemDocumentStore {
	return &MemDocumentStore{
		Revisions: make(map[string][]Revision),
	}
}

func (s *MemDocumentStore) GetDocument(ctx context.Context, community string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	revs := s.Revisions[strings.ToLower(community)]
	if len(revs) == 0 {
		return "", ErrNoDocument
	}
	return revs[len(revs)-1].Content, nil
}

func (s *MemDocumentStore) PutDocument(ctx context.Context, community, content, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := strings.ToLower(community)
	s.Revisions[k] = append(s.Revisions[k], Revision{
		Community: k,
		Content:   content,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}
