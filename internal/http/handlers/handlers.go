// Package handlers provides the HTTP handlers of the public API.
//
// This file declares the service contracts the handlers consume and the
// Handlers type that binds them. Handlers are transport-thin: they bind and
// check input, call a service, and project the result onto the wire shapes
// defined in the domain package.
package handlers

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tbourn/emoto-backend/internal/domain"
	"github.com/tbourn/emoto-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// ProfileService covers profile lifecycle, presence, and pairing.
type ProfileService interface {
	Create(ctx context.Context, in services.CreateProfileInput) (*domain.Profile, error)
	Status(ctx context.Context, username string) (*domain.ProfileStatus, error)
	PartnerStatus(ctx context.Context, username string) (*domain.ProfileStatus, error)
	StatusSnapshot(ctx context.Context, p *domain.Profile) domain.ProfileStatus
	SetPresence(ctx context.Context, username string, present bool) (*domain.Profile, error)
	UpdateLocation(ctx context.Context, username string, lat, lon decimal.Decimal) (*domain.Profile, error)
	SetCurrentEmoto(ctx context.Context, username string, emotoID *uint) (*domain.Profile, error)
	SetDeviceToken(ctx context.Context, username string, token *string) (*domain.Profile, error)
	Pair(ctx context.Context, username, code string) (*domain.Profile, error)
	Unpair(ctx context.Context, username string) error
}

// MessageService covers posting and listing messages.
type MessageService interface {
	Post(ctx context.Context, author, text string, emotoID *uint) (*domain.Message, error)
	Get(ctx context.Context, id uint) (*domain.Message, error)
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Message, int64, error)
	ListForPair(ctx context.Context, username string, page, pageSize int) ([]domain.Message, int64, error)
	PairAuthors(ctx context.Context, username string) ([]string, error)
}

// EmotoService covers the emoto catalog.
type EmotoService interface {
	List(ctx context.Context, onlyAvailable bool) ([]domain.Emoto, error)
	Get(ctx context.Context, id uint) (*domain.Emoto, error)
	Create(ctx context.Context, name, imagePath string) (*domain.Emoto, error)
}

//
// Handler wiring
//

// defaultIdempotencyTTL is how long a stored Idempotency-Key result replays.
const defaultIdempotencyTTL = 24 * time.Hour

// Handlers groups the HTTP endpoints.
type Handlers struct {
	profileSvc ProfileService
	msgSvc     MessageService
	emotoSvc   EmotoService

	mediaBase string
	idemTTL   time.Duration
}

// Option customizes Handlers.
type Option func(*Handlers)

// WithMediaBaseURL sets the prefix used to build avatar and emoto URLs.
func WithMediaBaseURL(base string) Option {
	return func(h *Handlers) { h.mediaBase = base }
}

// WithIdempotencyTTL sets how long stored message posts replay.
func WithIdempotencyTTL(ttl time.Duration) Option {
	return func(h *Handlers) {
		if ttl > 0 {
			h.idemTTL = ttl
		}
	}
}

// New binds the handlers to their services.
func New(profileSvc ProfileService, msgSvc MessageService, emotoSvc EmotoService, opts ...Option) *Handlers {
	h := &Handlers{
		profileSvc: profileSvc,
		msgSvc:     msgSvc,
		emotoSvc:   emotoSvc,
		idemTTL:    defaultIdempotencyTTL,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// messageDB exposes the database behind the concrete MessageService for
// ETags and idempotency records. Other implementations get nil and those
// features are skipped.
func (h *Handlers) messageDB() *gorm.DB {
	if svc, ok := h.msgSvc.(*services.MessageService); ok {
		return svc.DB
	}
	return nil
}

// emotoDB is messageDB for the catalog service.
func (h *Handlers) emotoDB() *gorm.DB {
	if svc, ok := h.emotoSvc.(*services.EmotoService); ok {
		return svc.DB
	}
	return nil
}
