// Package services – EmotoService
//
// This file implements EmotoService, which manages the emoto catalog: listing
// entries by name, fetching one, and adding new artwork. Names are cleaned
// and title-cased; bare upload filenames are placed under a timestamped
// emotos/ path.
package services

import (
	"context"
	"path"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/tbourn/emoto-backend/internal/domain"
	"github.com/tbourn/emoto-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	maxEmotoNameRunes = 200
	maxImagePathRunes = 500
)

// EmotoService provides catalog operations.
type EmotoService struct {
	DB *gorm.DB

	// NameLocale drives title-casing of names.
	NameLocale language.Tag
	// Now is the service clock.
	Now func() time.Time
}

// NewEmotoService constructs an EmotoService with English title-casing.
func NewEmotoService(db *gorm.DB) *EmotoService {
	return &EmotoService{DB: db, NameLocale: language.English, Now: time.Now}
}

// List returns the catalog ordered by name; onlyAvailable hides entries
// users cannot select.
func (s *EmotoService) List(ctx context.Context, onlyAvailable bool) ([]domain.Emoto, error) {
	tr := otel.Tracer("services/EmotoService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(attribute.Bool("emoto.only_available", onlyAvailable)),
	)
	defer span.End()

	return repo.ListEmotos(ctx, s.DB, onlyAvailable)
}

// Get returns one catalog entry.
func (s *EmotoService) Get(ctx context.Context, id uint) (*domain.Emoto, error) {
	e, err := repo.GetEmoto(ctx, s.DB, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrEmotoNotFound
		}
		return nil, err
	}
	return e, nil
}

// Create adds an available catalog entry. A bare filename is stored as
// emotos/<YYYYMMDDhhmmss><ext>; paths and absolute URLs are kept as given.
func (s *EmotoService) Create(ctx context.Context, name, imagePath string) (*domain.Emoto, error) {
	tr := otel.Tracer("services/EmotoService")
	ctx, span := tr.Start(ctx, "Create")
	defer span.End()

	name = s.normalizeName(name)
	imagePath = strings.TrimSpace(imagePath)
	switch {
	case name == "":
		return nil, invalid(KindBlankField, "name", "name must not be blank")
	case utf8.RuneCountInString(name) > maxEmotoNameRunes:
		return nil, invalid(KindTooLong, "name", "name must be at most %d characters", maxEmotoNameRunes)
	case imagePath == "":
		return nil, invalid(KindBlankField, "image_path", "image path must not be blank")
	case utf8.RuneCountInString(imagePath) > maxImagePathRunes:
		return nil, invalid(KindTooLong, "image_path", "image path must be at most %d characters", maxImagePathRunes)
	}
	if !strings.Contains(imagePath, "/") {
		imagePath = UploadPath(s.now(), imagePath)
	}

	e := &domain.Emoto{Name: name, ImagePath: imagePath, Available: true}
	if err := repo.CreateEmoto(ctx, s.DB, e); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("emoto.id", int64(e.ID)))
	return e, nil
}

func (s *EmotoService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// whitespaceRE collapses consecutive whitespace to a single space.
var whitespaceRE = regexp.MustCompile(`\s+`)

func (s *EmotoService) normalizeName(n string) string {
	n = whitespaceRE.ReplaceAllString(strings.TrimSpace(n), " ")
	if n == "" {
		return ""
	}
	return cases.Title(s.NameLocale).String(n)
}

// UploadPath names stored emoto artwork after the upload time, keeping the
// lower-cased extension of filename.
func UploadPath(at time.Time, filename string) string {
	return "emotos/" + at.UTC().Format("20060102150405") + strings.ToLower(path.Ext(filename))
}
