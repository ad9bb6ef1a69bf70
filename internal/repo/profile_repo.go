// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Profile
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: no business logic, only persistence and query composition.
//
// Error semantics:
//   - Missing rows surface as ErrNotFound (gorm.ErrRecordNotFound).
//   - Unique violations on username or pair code surface as ErrDuplicate.
//   - Other DB errors are propagated unchanged.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/emoto-backend/internal/domain"
)

// CreateProfile inserts p. The caller fills every field it cares about,
// including PairCode and PresenceTimestamp.
func CreateProfile(ctx context.Context, db *gorm.DB, p *domain.Profile) error {
	// Omit associations so a preloaded CurrentEmoto is never upserted.
	return mapWriteErr(db.WithContext(ctx).Omit("CurrentEmoto").Create(p).Error)
}

// GetProfile loads a profile by username with its current emoto preloaded.
func GetProfile(ctx context.Context, db *gorm.DB, username string) (*domain.Profile, error) {
	var p domain.Profile
	err := db.WithContext(ctx).
		Preload("CurrentEmoto").
		Where("username = ?", username).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProfileByPairCode loads the profile that was issued code.
func GetProfileByPairCode(ctx context.Context, db *gorm.DB, code string) (*domain.Profile, error) {
	var p domain.Profile
	err := db.WithContext(ctx).
		Preload("CurrentEmoto").
		Where("pair_code = ?", code).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PairCodeExists reports whether code has already been issued.
func PairCodeExists(ctx context.Context, db *gorm.DB, code string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Profile{}).
		Where("pair_code = ?", code).
		Count(&n).Error
	return n > 0, err
}

// UpdateProfile writes the given columns for username. Returns ErrNotFound
// when no row matched.
func UpdateProfile(ctx context.Context, db *gorm.DB, username string, cols map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.Profile{}).
		Where("username = ?", username).
		Updates(cols)
	if res.Error != nil {
		return mapWriteErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateWeather persists only the weather_* columns of username.
func UpdateWeather(ctx context.Context, db *gorm.DB, username string, s domain.WeatherSnapshot) error {
	return UpdateProfile(ctx, db, username, map[string]any{
		"weather_city":        s.City,
		"weather_description": s.Description,
		"weather_time_zone":   s.TimeZone,
		"weather_temperature": s.Temperature,
		"weather_icon_url":    s.IconURL,
		"weather_fetched_at":  s.FetchedAt,
	})
}

// SetPartner sets (or clears, when partner is nil) username's partner link.
func SetPartner(ctx context.Context, db *gorm.DB, username string, partner *string) error {
	return UpdateProfile(ctx, db, username, map[string]any{"partner_username": partner})
}

// ClearPartnerReferences nulls every partner link that points at username.
func ClearPartnerReferences(ctx context.Context, db *gorm.DB, username string) error {
	return db.WithContext(ctx).
		Model(&domain.Profile{}).
		Where("partner_username = ?", username).
		Update("partner_username", nil).Error
}

// ProfileExists reports whether a profile with username exists.
func ProfileExists(ctx context.Context, db *gorm.DB, username string) (bool, error) {
	_, err := GetProfile(ctx, db, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}
