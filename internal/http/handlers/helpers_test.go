package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tbourn/emoto-backend/internal/domain"
	"github.com/tbourn/emoto-backend/internal/http/middleware"
	"github.com/tbourn/emoto-backend/internal/repo"
	"github.com/tbourn/emoto-backend/internal/services"
	"github.com/tbourn/emoto-backend/internal/weather"
)

// ---------- test plumbing ----------

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "handlers.db"), repo.Options{Silent: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// profileRepo binds the repo functions to services.ProfileRepo.
type profileRepo struct{}

func (profileRepo) CreateProfile(ctx context.Context, db *gorm.DB, p *domain.Profile) error {
	return repo.CreateProfile(ctx, db, p)
}

func (profileRepo) GetProfile(ctx context.Context, db *gorm.DB, username string) (*domain.Profile, error) {
	return repo.GetProfile(ctx, db, username)
}

func (profileRepo) GetProfileByPairCode(ctx context.Context, db *gorm.DB, code string) (*domain.Profile, error) {
	return repo.GetProfileByPairCode(ctx, db, code)
}

func (profileRepo) ProfileExists(ctx context.Context, db *gorm.DB, username string) (bool, error) {
	return repo.ProfileExists(ctx, db, username)
}

func (profileRepo) PairCodeExists(ctx context.Context, db *gorm.DB, code string) (bool, error) {
	return repo.PairCodeExists(ctx, db, code)
}

func (profileRepo) UpdateProfile(ctx context.Context, db *gorm.DB, username string, cols map[string]any) error {
	return repo.UpdateProfile(ctx, db, username, cols)
}

func (profileRepo) UpdateWeather(ctx context.Context, db *gorm.DB, username string, s domain.WeatherSnapshot) error {
	return repo.UpdateWeather(ctx, db, username, s)
}

func (profileRepo) SetPartner(ctx context.Context, db *gorm.DB, username string, partner *string) error {
	return repo.SetPartner(ctx, db, username, partner)
}

func (profileRepo) ClearPartnerReferences(ctx context.Context, db *gorm.DB, username string) error {
	return repo.ClearPartnerReferences(ctx, db, username)
}

func (profileRepo) GetEmoto(ctx context.Context, db *gorm.DB, id uint) (*domain.Emoto, error) {
	return repo.GetEmoto(ctx, db, id)
}

// testEnv is a fully wired handler stack over a temp database.
type testEnv struct {
	db      *gorm.DB
	router  *gin.Engine
	profile *services.ProfileService
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	env := &testEnv{db: newTestDB(t)}

	wc := weather.New(weather.ProviderFunc(func(ctx context.Context, lat, lon decimal.Decimal) (weather.Report, error) {
		return weather.Report{City: "San Francisco", Weather: "Clear", TimeZone: "UTC-07:00", Temperature: 61}, nil
	}), 10*time.Minute)

	env.profile = services.NewProfileService(env.db, profileRepo{}, wc)
	env.profile.MediaBaseURL = "/media"
	h := New(env.profile, &services.MessageService{DB: env.db}, services.NewEmotoService(env.db),
		WithMediaBaseURL("/media"),
		WithIdempotencyTTL(time.Hour),
	)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("X-Request-ID", "rid-test")
		c.Next()
	})
	r.Use(middleware.Identify())
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{},
		func(ctx context.Context, username, scope, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, env.db, username, scope, key, now)
			return err == nil && rec != nil, nil
		}))

	r.POST("/profiles", h.CreateProfile)
	r.GET("/profiles/:username", h.GetProfileStatus)
	r.GET("/profiles/:username/partner", h.GetPartnerStatus)
	r.PUT("/profiles/:username/presence", h.SetPresence)
	r.PUT("/profiles/:username/location", h.UpdateLocation)
	r.PUT("/profiles/:username/emoto", h.SetCurrentEmoto)
	r.PUT("/profiles/:username/device-token", h.SetDeviceToken)
	r.POST("/profiles/:username/pair", h.Pair)
	r.DELETE("/profiles/:username/pair", h.Unpair)
	r.GET("/emotos", h.ListEmotos)
	r.GET("/emotos/:id", h.GetEmoto)
	r.POST("/emotos", h.CreateEmoto)
	r.GET("/messages", h.ListMessages)
	r.POST("/messages", h.PostMessage)
	r.GET("/messages/:id", h.GetMessage)

	env.router = r
	return env
}

// call performs a request; body may be nil, a string, or any JSON value.
func (e *testEnv) call(method, target, username string, body any, hdr ...string) *httptest.ResponseRecorder {
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if username != "" {
		req.Header.Set(middleware.HeaderUsername, username)
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// createProfile posts a profile and returns its status projection.
func (e *testEnv) createProfile(t *testing.T, username string) domain.ProfileStatus {
	t.Helper()
	w := e.call(http.MethodPost, "/profiles", "", map[string]any{
		"username": username, "latitude": 37.7749, "longitude": -122.4194,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create %s = %d body=%s", username, w.Code, w.Body.String())
	}
	var st domain.ProfileStatus
	decode(t, w, &st)
	return st
}

func (e *testEnv) seedEmoto(t *testing.T, name string, available bool) domain.Emoto {
	t.Helper()
	em := domain.Emoto{Name: name, ImagePath: "emotos/" + name + ".png", Available: available}
	if err := repo.CreateEmoto(context.Background(), e.db, &em); err != nil {
		t.Fatalf("seed emoto: %v", err)
	}
	return em
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("json: %v body=%s", err, w.Body.String())
	}
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var er ErrorResponse
	decode(t, w, &er)
	return er
}
