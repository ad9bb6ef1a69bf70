// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/emoto-backend/internal/domain"
)

// MessagesStats returns the number of messages written by authors (all
// messages when authors is empty) and the newest created_time among them.
// maxCreated is nil when there are no rows.
func MessagesStats(ctx context.Context, db *gorm.DB, authors []string) (count int64, maxCreated *time.Time, err error) {
	q := func() *gorm.DB {
		return db.WithContext(ctx).Model(&domain.Message{}).Scopes(scopeAuthors(authors))
	}

	if err = q().Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest created_time (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CreatedTime time.Time
	}
	if err = q().Select("created_time").Order("created_time DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedTime, nil
}

// EmotosStats returns the catalog size and the newest updated_at, used to
// build a weak ETag for the emoto list.
func EmotosStats(ctx context.Context, db *gorm.DB) (count int64, maxUpdated *time.Time, err error) {
	q := func() *gorm.DB { return db.WithContext(ctx).Model(&domain.Emoto{}) }

	if err = q().Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	var row struct {
		UpdatedAt time.Time
	}
	if err = q().Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
