// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Emoto
// catalog.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/emoto-backend/internal/domain"
)

// CreateEmoto inserts a catalog entry.
func CreateEmoto(ctx context.Context, db *gorm.DB, e *domain.Emoto) error {
	return mapWriteErr(db.WithContext(ctx).Create(e).Error)
}

// GetEmoto fetches an emoto by id.
func GetEmoto(ctx context.Context, db *gorm.DB, id uint) (*domain.Emoto, error) {
	var e domain.Emoto
	if err := db.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// ListEmotos returns the catalog ordered by name (ID breaks ties). When
// onlyAvailable is set, unavailable entries are skipped.
func ListEmotos(ctx context.Context, db *gorm.DB, onlyAvailable bool) ([]domain.Emoto, error) {
	out := []domain.Emoto{}
	q := db.WithContext(ctx).Order("name ASC, id ASC")
	if onlyAvailable {
		q = q.Where("available = ?", true)
	}
	err := q.Find(&out).Error
	return out, err
}
