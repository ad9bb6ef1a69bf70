package services

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tbourn/emoto-backend/internal/domain"
	"github.com/tbourn/emoto-backend/internal/repo"
	"github.com/tbourn/emoto-backend/internal/weather"
)

// newSvcDB opens a migrated temp-dir SQLite database.
func newSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "svc.db"), repo.Options{Silent: true})
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

// repoShim binds the repo package functions to ProfileRepo.
type repoShim struct{}

func (repoShim) CreateProfile(ctx context.Context, db *gorm.DB, p *domain.Profile) error {
	return repo.CreateProfile(ctx, db, p)
}

func (repoShim) GetProfile(ctx context.Context, db *gorm.DB, username string) (*domain.Profile, error) {
	return repo.GetProfile(ctx, db, username)
}

func (repoShim) GetProfileByPairCode(ctx context.Context, db *gorm.DB, code string) (*domain.Profile, error) {
	return repo.GetProfileByPairCode(ctx, db, code)
}

func (repoShim) ProfileExists(ctx context.Context, db *gorm.DB, username string) (bool, error) {
	return repo.ProfileExists(ctx, db, username)
}

func (repoShim) PairCodeExists(ctx context.Context, db *gorm.DB, code string) (bool, error) {
	return repo.PairCodeExists(ctx, db, code)
}

func (repoShim) UpdateProfile(ctx context.Context, db *gorm.DB, username string, cols map[string]any) error {
	return repo.UpdateProfile(ctx, db, username, cols)
}

func (repoShim) UpdateWeather(ctx context.Context, db *gorm.DB, username string, s domain.WeatherSnapshot) error {
	return repo.UpdateWeather(ctx, db, username, s)
}

func (repoShim) SetPartner(ctx context.Context, db *gorm.DB, username string, partner *string) error {
	return repo.SetPartner(ctx, db, username, partner)
}

func (repoShim) ClearPartnerReferences(ctx context.Context, db *gorm.DB, username string) error {
	return repo.ClearPartnerReferences(ctx, db, username)
}

func (repoShim) GetEmoto(ctx context.Context, db *gorm.DB, id uint) (*domain.Emoto, error) {
	return repo.GetEmoto(ctx, db, id)
}

// stubProvider answers every lookup with report/err and counts calls.
type stubProvider struct {
	calls  atomic.Int32
	report weather.Report
	err    error
}

func (p *stubProvider) Lookup(ctx context.Context, lat, lon decimal.Decimal) (weather.Report, error) {
	p.calls.Add(1)
	return p.report, p.err
}

var sfReport = weather.Report{
	City:        "San Francisco",
	Weather:     "Clear",
	TimeZone:    "PST",
	Temperature: 61,
	IconURL:     "http://example.test/icon.png",
}

// clock is a settable test clock.
type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sptr(s string) *string { return &s }
