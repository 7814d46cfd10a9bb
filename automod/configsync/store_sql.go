package configsync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// One saved revision of a community rule document.
type RuleDocument struct {
	ID        uint   `gorm:"primaryKey"`
	Community string `gorm:"index;not null"`
	Content   string `gorm:"not null"`
	Reason    string
	CreatedAt time.Time
}

// Document store backed by a SQL database (sqlite or postgres). Every write is a new revision row; reads return the newest.
type SQLDocumentStore struct {
	db *gorm.DB
}

var _ DocumentStore = (*SQLDocumentStore)(nil)

func NewSQLDocumentStore(db *gorm.DB) (*SQLDocumentStore, error) {
	if err := db.AutoMigrate(&RuleDocument{}); err != nil {
		return nil, fmt.Errorf("migrating rule documents: %w", err)
	}
	return &SQLDocumentStore{db: db}, nil
}

func (s *SQLDocumentStore) GetDocument(ctx context.Context, community string) (string, error) {
	var doc RuleDocument
	err := s.db.WithContext(ctx).
		Where("community = ?", strings.ToLower(community)).
		Order("id DESC").
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNoDocument
	}
	if err != nil {
		return "", err
	}
	return doc.Content, nil
}

func (s *SQLDocumentStore) PutDocument(ctx context.Context, community, content, reason string) error {
	doc := RuleDocument{
		Community: strings.ToLower(community),
		Content:   content,
		Reason:    reason,
	}
	return s.db.WithContext(ctx).Create(&doc).Error
}

// Most recent revisions for a community, newest first.
func (s *SQLDocumentStore) History(ctx context.Context, community string, limit int) ([]RuleDocument, error) {
	var out []RuleDocument
	err := s.db.WithContext(ctx).
		Where("community = ?", strings.ToLower(community)).
		Order("id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
