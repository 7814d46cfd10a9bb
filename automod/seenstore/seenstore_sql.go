package seenstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProcessedSubmission struct {
	SubmissionID string `gorm:"primaryKey"`
	CreatedAt    time.Time
}

// Durable processed-submission tracking in a SQL database.
type SQLSeenStore struct {
	db *gorm.DB
}

var _ SeenStore = (*SQLSeenStore)(nil)

func NewSQLSeenStore(db *gorm.DB) (*SQLSeenStore, error) {
	if err := db.AutoMigrate(&ProcessedSubmission{}); err != nil {
		return nil, err
	}
	return &SQLSeenStore{db: db}, nil
}

func (s *SQLSeenStore) Seen(ctx context.Context, id string) (bool, error) {
	var row ProcessedSubmission
	err := s.db.WithContext(ctx).Where("submission_id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

func (s *SQLSeenStore) MarkSeen(ctx context.Context, id string) error {
	row := ProcessedSubmission{SubmissionID: id}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}
