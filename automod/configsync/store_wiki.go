package configsync

import (
	"context"
	"errors"

	"github.com/theimperious1/OCRAutoModerator/automod/platform"
)

// Document store backed by each community's wiki page, which is where moderators edit their rules.
type WikiDocumentStore struct {
	Wiki platform.Wiki
	// defaults to WikiPage
	Page string
	// optional second copy of every document written or read, for revision history
	Mirror DocumentStore
}

var _ DocumentStore = (*WikiDocumentStore)(nil)

func (s *WikiDocumentStore) page() string {
	if s.Page == "" {
		return WikiPage
	}
	return s.Page
}

func (s *WikiDocumentStore) GetDocument(ctx context.Context, community string) (string, error) {
	content, err := s.Wiki.GetPage(ctx, community, s.page())
	if errors.Is(err, platform.ErrNotFound) {
		return "", ErrNoDocument
	}
	if err != nil {
		return "", err
	}
	if s.Mirror != nil {
		if prev, err := s.Mirror.GetDocument(ctx, community); err != nil || prev != content {
			if err := s.Mirror.PutDocument(ctx, community, content, "read from wiki"); err != nil {
				return "", err
			}
		}
	}
	return content, nil
}

func (s *WikiDocumentStore) PutDocument(ctx context.Context, community, content, reason string) error {
	if err := s.Wiki.PutPage(ctx, community, s.page(), content, reason); err != nil {
		return err
	}
	if s.Mirror != nil {
		return s.Mirror.PutDocument(ctx, community, content, reason)
	}
	return nil
}
