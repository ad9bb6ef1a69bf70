// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Message model.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/emoto-backend/internal/domain"
)

// CreateMessage inserts m. CreatedTime must already be set.
func CreateMessage(ctx context.Context, db *gorm.DB, m *domain.Message) error {
	return db.WithContext(ctx).Omit("Emoto", "Author").Create(m).Error
}

// GetMessage fetches a message by ID with its emoto preloaded.
func GetMessage(ctx context.Context, db *gorm.DB, id uint) (*domain.Message, error) {
	var m domain.Message
	if err := db.WithContext(ctx).Preload("Emoto").First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// scopeAuthors restricts a messages query to authors. No authors means all
// messages.
func scopeAuthors(authors []string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(authors) == 0 {
			return db
		}
		return db.Where("author_username IN ?", authors)
	}
}

// CountMessages counts messages written by authors.
func CountMessages(ctx context.Context, db *gorm.DB, authors []string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Message{}).
		Scopes(scopeAuthors(authors)).
		Count(&total).Error
	return total, err
}

// ListMessagesPage returns a page of messages written by authors, ordered
// deterministically (created_time ASC, id ASC), with emotos preloaded.
func ListMessagesPage(ctx context.Context, db *gorm.DB, authors []string, offset, limit int) ([]domain.Message, error) {
	out := []domain.Message{}
	err := db.WithContext(ctx).
		Preload("Emoto").
		Scopes(scopeAuthors(authors)).
		Order("created_time ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
