// Package services – ProfileService
//
// This file implements ProfileService, which owns the Profile lifecycle:
// creation defaults (pair code, presence timestamp, initial weather load),
// validation before every persist, presence and location updates, emoto
// selection, pairing, and the status projection clients read.
//
// Weather-derived fields are never written directly: they are read through
// the weather cache, and a refresh triggered by a read is written back with
// ProfileRepo.UpdateWeather.
//
// Observability: public methods are OpenTelemetry-instrumented; spans carry
// the username involved.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/emoto-backend/internal/domain"
	"github.com/tbourn/emoto-backend/internal/pairing"
	"github.com/tbourn/emoto-backend/internal/repo"
	"github.com/tbourn/emoto-backend/internal/weather"
)

// ProfileRepo defines the repository contract required by ProfileService.
// Every method receives the handle to run on, which may be a transaction.
type ProfileRepo interface {
	// CreateProfile inserts a fully populated profile.
	CreateProfile(ctx context.Context, db *gorm.DB, p *domain.Profile) error
	// GetProfile loads a profile by username (current emoto preloaded).
	GetProfile(ctx context.Context, db *gorm.DB, username string) (*domain.Profile, error)
	// GetProfileByPairCode loads the owner of an issued pair code.
	GetProfileByPairCode(ctx context.Context, db *gorm.DB, code string) (*domain.Profile, error)
	// ProfileExists reports whether username is already registered.
	ProfileExists(ctx context.Context, db *gorm.DB, username string) (bool, error)
	// PairCodeExists reports whether a code has been issued.
	PairCodeExists(ctx context.Context, db *gorm.DB, code string) (bool, error)
	// UpdateProfile writes selected columns for username.
	UpdateProfile(ctx context.Context, db *gorm.DB, username string, cols map[string]any) error
	// UpdateWeather writes only the weather columns for username.
	UpdateWeather(ctx context.Context, db *gorm.DB, username string, s domain.WeatherSnapshot) error
	// SetPartner sets or clears username's partner link.
	SetPartner(ctx context.Context, db *gorm.DB, username string, partner *string) error
	// ClearPartnerReferences clears every link pointing at username.
	ClearPartnerReferences(ctx context.Context, db *gorm.DB, username string) error
	// GetEmoto loads a catalog entry.
	GetEmoto(ctx context.Context, db *gorm.DB, id uint) (*domain.Emoto, error)
}

// Bounds holds the accepted absolute coordinate value per axis.
type Bounds struct {
	Latitude  float64
	Longitude float64
}

// DefaultBounds accepts [-180, 180] on both axes.
var DefaultBounds = Bounds{Latitude: 180, Longitude: 180}

const (
	maxUsernameRunes    = 100
	maxDeviceTokenRunes = 200
	defaultCodeAttempts = 8
)

// CreateProfileInput carries the caller-supplied fields of a new profile.
type CreateProfileInput struct {
	Username    string
	Latitude    decimal.Decimal
	Longitude   decimal.Decimal
	AvatarPath  *string
	DeviceToken *string
}

// ProfileService provides profile-level operations. It is safe for
// concurrent use once constructed.
type ProfileService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the profile repository used by this service.
	Repo ProfileRepo
	// Weather applies the read-with-refresh policy to snapshots.
	Weather *weather.Cache

	// Bounds limits accepted coordinates.
	Bounds Bounds
	// MediaBaseURL prefixes avatar and emoto image paths in projections.
	MediaBaseURL string

	// NewPairCode issues candidate pair codes.
	NewPairCode func() (string, error)
	// PairCodeAttempts bounds retries when a candidate is already taken.
	PairCodeAttempts int

	// Now is the service clock.
	Now func() time.Time
	// Log receives diagnostics when the request context carries no logger.
	Log zerolog.Logger
}

// NewProfileService constructs a ProfileService with default bounds, clock,
// and pair code generator.
func NewProfileService(db *gorm.DB, r ProfileRepo, wc *weather.Cache) *ProfileService {
	return &ProfileService{
		DB:               db,
		Repo:             r,
		Weather:          wc,
		Bounds:           DefaultBounds,
		NewPairCode:      pairing.Generate,
		PairCodeAttempts: defaultCodeAttempts,
		Now:              time.Now,
		Log:              zerolog.Nop(),
	}
}

func (s *ProfileService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// logger prefers the request-scoped logger stored in ctx.
func (s *ProfileService) logger(ctx context.Context) *zerolog.Logger {
	if lg := zerolog.Ctx(ctx); lg.GetLevel() != zerolog.Disabled {
		return lg
	}
	return &s.Log
}

// tx runs fn inside a transaction when a DB is configured.
func (s *ProfileService) tx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s.DB == nil {
		return fn(nil)
	}
	return s.DB.WithContext(ctx).Transaction(fn)
}

func (s *ProfileService) span(ctx context.Context, name, username string) (context.Context, trace.Span) {
	return otel.Tracer("services/ProfileService").Start(ctx, name,
		trace.WithAttributes(attribute.String("profile.username", username)),
	)
}

// Validate checks p against the profile invariants and returns the first
// violation as a *ValidationError: coordinates within bounds, a non-blank
// username, and no self-pairing.
func (s *ProfileService) Validate(p *domain.Profile) error {
	b := s.Bounds
	if b.Latitude <= 0 || b.Longitude <= 0 {
		b = DefaultBounds
	}
	if p.Latitude.Abs().GreaterThan(decimal.NewFromFloat(b.Latitude)) {
		return invalid(KindOutOfRange, "latitude", "latitude must be between %v and %v", -b.Latitude, b.Latitude)
	}
	if p.Longitude.Abs().GreaterThan(decimal.NewFromFloat(b.Longitude)) {
		return invalid(KindOutOfRange, "longitude", "longitude must be between %v and %v", -b.Longitude, b.Longitude)
	}
	if strings.TrimSpace(p.Username) == "" {
		return invalid(KindBlankField, "username", "username must not be blank")
	}
	if utf8.RuneCountInString(p.Username) > maxUsernameRunes {
		return invalid(KindTooLong, "username", "username must be at most %d characters", maxUsernameRunes)
	}
	if p.PartnerUsername != nil && *p.PartnerUsername == p.Username {
		return invalid(KindSelfPairing, "partner", "profile cannot pair with itself")
	}
	return nil
}

// Create validates in, issues a pair code, stamps the presence time, tries
// an initial weather load, and persists the profile. A failed weather load
// does not abort creation. A taken username yields ErrUsernameTaken before
// any weather lookup. A pair code that collides on insert is redrawn.
func (s *ProfileService) Create(ctx context.Context, in CreateProfileInput) (*domain.Profile, error) {
	username := strings.TrimSpace(in.Username)
	ctx, span := s.span(ctx, "Create", username)
	defer span.End()

	p := &domain.Profile{
		Username:    username,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		AvatarPath:  in.AvatarPath,
		DeviceToken: normalizeOptional(in.DeviceToken),
	}
	if err := s.Validate(p); err != nil {
		return nil, err
	}
	if p.DeviceToken != nil && utf8.RuneCountInString(*p.DeviceToken) > maxDeviceTokenRunes {
		return nil, invalid(KindTooLong, "device_token", "device token must be at most %d characters", maxDeviceTokenRunes)
	}
	p.Latitude = p.Latitude.Round(domain.CoordinatePlaces)
	p.Longitude = p.Longitude.Round(domain.CoordinatePlaces)

	if err := s.checkUsernameFree(ctx, username, repo.ErrDuplicate); err != nil {
		return nil, err
	}

	code, err := s.allocatePairCode(ctx)
	if err != nil {
		return nil, err
	}
	p.PairCode = &code
	p.PresenceTimestamp = s.now().Truncate(time.Second)

	if s.Weather != nil {
		s.Weather.Refresh(ctx, p)
	}

	for attempt := 1; ; attempt++ {
		err := s.Repo.CreateProfile(ctx, s.DB, p)
		if err == nil {
			break
		}
		if !isDuplicate(err) {
			return nil, err
		}
		// Lost a race on either the username or the pair code.
		if takenErr := s.checkUsernameFree(ctx, username, err); takenErr != nil {
			return nil, takenErr
		}
		if attempt >= s.codeAttempts() {
			return nil, ErrPairCodeExhausted
		}
		s.logger(ctx).Warn().Str("username", username).Msg("pair code collided on insert, redrawing")
		code, err := s.allocatePairCode(ctx)
		if err != nil {
			return nil, err
		}
		p.PairCode = &code
	}
	s.logger(ctx).Info().
		Str("username", p.Username).
		Bool("weather_loaded", !p.Weather.FetchedAt.IsZero()).
		Msg("profile created")
	return p, nil
}

// checkUsernameFree returns ErrUsernameTaken wrapped with cause when a
// profile already holds username.
func (s *ProfileService) checkUsernameFree(ctx context.Context, username string, cause error) error {
	taken, err := s.Repo.ProfileExists(ctx, s.DB, username)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: %w", ErrUsernameTaken, cause)
	}
	return nil
}

func (s *ProfileService) codeAttempts() int {
	if s.PairCodeAttempts <= 0 {
		return defaultCodeAttempts
	}
	return s.PairCodeAttempts
}

// allocatePairCode draws codes until one is unused or attempts run out.
func (s *ProfileService) allocatePairCode(ctx context.Context) (string, error) {
	gen := s.NewPairCode
	if gen == nil {
		gen = pairing.Generate
	}
	for i := 0; i < s.codeAttempts(); i++ {
		code, err := gen()
		if err != nil {
			return "", err
		}
		taken, err := s.Repo.PairCodeExists(ctx, s.DB, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrPairCodeExhausted
}

// Get returns the stored profile for username.
func (s *ProfileService) Get(ctx context.Context, username string) (*domain.Profile, error) {
	return s.load(ctx, s.DB, username)
}

func (s *ProfileService) load(ctx context.Context, db *gorm.DB, username string) (*domain.Profile, error) {
	p, err := s.Repo.GetProfile(ctx, db, strings.TrimSpace(username))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

// SetPresence records whether the user is present and stamps the time of
// the change at second precision.
func (s *ProfileService) SetPresence(ctx context.Context, username string, present bool) (*domain.Profile, error) {
	ctx, span := s.span(ctx, "SetPresence", username)
	defer span.End()
	span.SetAttributes(attribute.Bool("profile.present", present))

	p, err := s.load(ctx, s.DB, username)
	if err != nil {
		return nil, err
	}
	p.Present = present
	p.PresenceTimestamp = s.now().Truncate(time.Second)
	if err := s.Validate(p); err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateProfile(ctx, s.DB, p.Username, map[string]any{
		"present":            p.Present,
		"presence_timestamp": p.PresenceTimestamp,
	}); err != nil {
		return nil, s.mapWriteErr(err)
	}
	return p, nil
}

// UpdateLocation moves the profile. When the coordinates actually change,
// the weather snapshot is refreshed right away and persisted on success.
func (s *ProfileService) UpdateLocation(ctx context.Context, username string, lat, lon decimal.Decimal) (*domain.Profile, error) {
	ctx, span := s.span(ctx, "UpdateLocation", username)
	defer span.End()

	p, err := s.load(ctx, s.DB, username)
	if err != nil {
		return nil, err
	}
	prevLat, prevLon := p.Latitude, p.Longitude
	p.Latitude, p.Longitude = lat, lon
	if err := s.Validate(p); err != nil {
		return nil, err
	}
	p.Latitude = p.Latitude.Round(domain.CoordinatePlaces)
	p.Longitude = p.Longitude.Round(domain.CoordinatePlaces)
	moved := !prevLat.Equal(p.Latitude) || !prevLon.Equal(p.Longitude)
	if err := s.Repo.UpdateProfile(ctx, s.DB, p.Username, map[string]any{
		"latitude":  p.Latitude,
		"longitude": p.Longitude,
	}); err != nil {
		return nil, s.mapWriteErr(err)
	}
	if moved && s.Weather != nil && s.Weather.Refresh(ctx, p) {
		s.persistWeather(ctx, p)
	}
	return p, nil
}

// SetCurrentEmoto selects the emoto shown on the profile, or clears it when
// emotoID is nil. The emoto must exist and be available.
func (s *ProfileService) SetCurrentEmoto(ctx context.Context, username string, emotoID *uint) (*domain.Profile, error) {
	ctx, span := s.span(ctx, "SetCurrentEmoto", username)
	defer span.End()

	p, err := s.load(ctx, s.DB, username)
	if err != nil {
		return nil, err
	}

	var e *domain.Emoto
	if emotoID != nil {
		e, err = s.Repo.GetEmoto(ctx, s.DB, *emotoID)
		if err != nil {
			if isNotFound(err) {
				return nil, ErrEmotoNotFound
			}
			return nil, err
		}
		if !e.Available {
			return nil, ErrEmotoUnavailable
		}
	}

	p.CurrentEmotoID = emotoID
	p.CurrentEmoto = e
	if err := s.Validate(p); err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateProfile(ctx, s.DB, p.Username, map[string]any{"current_emoto_id": emotoID}); err != nil {
		return nil, s.mapWriteErr(err)
	}
	return p, nil
}

// SetDeviceToken stores the push token for the profile. A nil or blank
// token clears it.
func (s *ProfileService) SetDeviceToken(ctx context.Context, username string, token *string) (*domain.Profile, error) {
	ctx, span := s.span(ctx, "SetDeviceToken", username)
	defer span.End()

	token = normalizeOptional(token)
	if token != nil && utf8.RuneCountInString(*token) > maxDeviceTokenRunes {
		return nil, invalid(KindTooLong, "device_token", "device token must be at most %d characters", maxDeviceTokenRunes)
	}

	p, err := s.load(ctx, s.DB, username)
	if err != nil {
		return nil, err
	}
	p.DeviceToken = token
	if err := s.Validate(p); err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateProfile(ctx, s.DB, p.Username, map[string]any{"device_token": token}); err != nil {
		return nil, s.mapWriteErr(err)
	}
	return p, nil
}

// Pair links username with the owner of code, setting both partner links in
// one transaction. Pairing two profiles that are already partners is a
// no-op. Using one's own code is a self-pairing ValidationError.
func (s *ProfileService) Pair(ctx context.Context, username, code string) (*domain.Profile, error) {
	ctx, span := s.span(ctx, "Pair", username)
	defer span.End()

	code = pairing.Normalize(code)
	if !pairing.Valid(code) {
		return nil, invalid(KindInvalidFormat, "pair_code", "pair code must be %d letters or digits", pairing.Length)
	}

	var me *domain.Profile
	err := s.tx(ctx, func(tx *gorm.DB) error {
		var err error
		me, err = s.load(ctx, tx, username)
		if err != nil {
			return err
		}
		owner, err := s.Repo.GetProfileByPairCode(ctx, tx, code)
		if err != nil {
			if isNotFound(err) {
				return ErrPairCodeNotFound
			}
			return err
		}
		if owner.Username == me.Username {
			return invalid(KindSelfPairing, "partner", "profile cannot pair with itself")
		}

		if linkedTo(me, owner.Username) && linkedTo(owner, me.Username) {
			return nil
		}
		if (me.PartnerUsername != nil && !linkedTo(me, owner.Username)) ||
			(owner.PartnerUsername != nil && !linkedTo(owner, me.Username)) {
			return ErrAlreadyPaired
		}

		me.PartnerUsername = strPtr(owner.Username)
		owner.PartnerUsername = strPtr(me.Username)
		if err := s.Validate(me); err != nil {
			return err
		}
		if err := s.Validate(owner); err != nil {
			return err
		}
		if err := s.Repo.SetPartner(ctx, tx, me.Username, me.PartnerUsername); err != nil {
			return err
		}
		return s.Repo.SetPartner(ctx, tx, owner.Username, owner.PartnerUsername)
	})
	if err != nil {
		return nil, err
	}
	s.logger(ctx).Info().Str("username", me.Username).Str("partner", *me.PartnerUsername).Msg("profiles paired")
	return me, nil
}

// Unpair clears username's partner link and every link pointing back at it.
func (s *ProfileService) Unpair(ctx context.Context, username string) error {
	ctx, span := s.span(ctx, "Unpair", username)
	defer span.End()

	return s.tx(ctx, func(tx *gorm.DB) error {
		me, err := s.load(ctx, tx, username)
		if err != nil {
			return err
		}
		if me.PartnerUsername == nil {
			return ErrNotPaired
		}
		if err := s.Repo.SetPartner(ctx, tx, me.Username, nil); err != nil {
			return err
		}
		return s.Repo.ClearPartnerReferences(ctx, tx, me.Username)
	})
}

// Status loads username and returns its status projection.
func (s *ProfileService) Status(ctx context.Context, username string) (*domain.ProfileStatus, error) {
	ctx, span := s.span(ctx, "Status", username)
	defer span.End()

	p, err := s.load(ctx, s.DB, username)
	if err != nil {
		return nil, err
	}
	st := s.StatusSnapshot(ctx, p)
	return &st, nil
}

// PartnerStatus returns the status projection of username's partner. A
// dangling partner link is reported as ErrNotPaired.
func (s *ProfileService) PartnerStatus(ctx context.Context, username string) (*domain.ProfileStatus, error) {
	ctx, span := s.span(ctx, "PartnerStatus", username)
	defer span.End()

	me, err := s.load(ctx, s.DB, username)
	if err != nil {
		return nil, err
	}
	if me.PartnerUsername == nil {
		return nil, ErrNotPaired
	}
	partner, err := s.load(ctx, s.DB, *me.PartnerUsername)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, ErrNotPaired
		}
		return nil, err
	}
	st := s.StatusSnapshot(ctx, partner)
	return &st, nil
}

// StatusSnapshot builds the read-only projection of p. Weather fields go
// through the cache, with one expiry check per call; a refresh it triggers
// is persisted best-effort. The projection itself is never stored.
func (s *ProfileService) StatusSnapshot(ctx context.Context, p *domain.Profile) domain.ProfileStatus {
	snap := p.Weather
	if s.Weather != nil {
		var refreshed bool
		snap, refreshed = s.Weather.Snapshot(ctx, p)
		if refreshed {
			s.persistWeather(ctx, p)
		}
	}

	st := domain.ProfileStatus{
		Username:          p.Username,
		Present:           p.Present,
		PresenceTimestamp: p.PresenceTimestamp.UTC(),
		City:              snap.City,
		Latitude:          p.Latitude.InexactFloat64(),
		Longitude:         p.Longitude.InexactFloat64(),
		TimeZone:          snap.TimeZone,
		Weather:           snap.Description,
		Temperature:       snap.Temperature,
		WeatherIconURL:    snap.IconURL,
		PairCode:          p.PairCode,
	}
	if p.AvatarPath != nil && *p.AvatarPath != "" {
		u := domain.MediaURL(s.MediaBaseURL, *p.AvatarPath)
		st.AvatarURL = &u
	}
	if p.CurrentEmoto != nil {
		ej := p.CurrentEmoto.JSON(s.MediaBaseURL)
		st.CurrentEmoto = &ej
	}
	return st
}

// persistWeather writes p's weather columns; failures are logged only.
func (s *ProfileService) persistWeather(ctx context.Context, p *domain.Profile) {
	if err := s.Repo.UpdateWeather(ctx, s.DB, p.Username, p.Weather); err != nil {
		s.logger(ctx).Warn().Err(err).Str("username", p.Username).Msg("persist weather snapshot failed")
	}
}

func (s *ProfileService) mapWriteErr(err error) error {
	if isNotFound(err) {
		return ErrProfileNotFound
	}
	return err
}

func linkedTo(p *domain.Profile, username string) bool {
	return p.PartnerUsername != nil && *p.PartnerUsername == username
}

func strPtr(s string) *string { return &s }

// normalizeOptional trims v and maps blank to nil.
func normalizeOptional(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
