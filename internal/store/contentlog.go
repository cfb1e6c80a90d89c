package store

import (
	"gorm.io/gorm"

	"github.com/nightpost/relay/internal/models"
)

// ContentLogs is the append-only audit trail of delivered items. Nothing in
// the moderation path reads it back.
type ContentLogs struct {
	db *gorm.DB
}

func NewContentLogs(db *gorm.DB) *ContentLogs {
	return &ContentLogs{db: db}
}

// Append records one delivered item.
func (s *ContentLogs) Append(entry *models.ContentLog) error {
	return s.db.Create(entry).Error
}

// ByChannel returns the most recent entries for a channel, newest first.
func (s *ContentLogs) ByChannel(channel string, limit int) ([]models.ContentLog, error) {
	var entries []models.ContentLog
	q := s.db.Where("channel = ?", channel).Order("created_at desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
