// Package services – MessageService
//
// This file implements MessageService, which owns the lifecycle of the short
// notes partners exchange. It normalizes and validates text, checks that the
// author and any attached emoto exist, stamps the creation time once, and
// lists messages in creation order.
//
// Observability: all public methods are OpenTelemetry-instrumented; spans
// include the author and pagination parameters where applicable.

package services

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/tbourn/emoto-backend/internal/domain"
	"github.com/tbourn/emoto-backend/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMaxTextRunes is the longest message text accepted.
const DefaultMaxTextRunes = 400

// MessageService coordinates message persistence and listing.
type MessageService struct {
	DB *gorm.DB

	// MaxTextRunes caps message length; DefaultMaxTextRunes when zero.
	MaxTextRunes int

	// Now is the service clock.
	Now func() time.Time
}

func (s *MessageService) maxRunes() int {
	if s.MaxTextRunes > 0 {
		return s.MaxTextRunes
	}
	return DefaultMaxTextRunes
}

// MaxRunes reports the effective text length limit.
func (s *MessageService) MaxRunes() int { return s.maxRunes() }

func (s *MessageService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// Post stores a message from author. Text is normalized and must be
// non-blank and within the length limit. An attached emoto must exist and
// be available. CreatedTime is set here, in UTC at second precision, and
// never changes afterwards.
func (s *MessageService) Post(ctx context.Context, author, text string, emotoID *uint) (*domain.Message, error) {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "Post",
		trace.WithAttributes(
			attribute.String("message.author", author),
		),
	)
	defer span.End()

	text = SanitizeText(text)
	if text == "" {
		return nil, invalid(KindBlankField, "text", "text must not be blank")
	}
	if n := s.maxRunes(); utf8.RuneCountInString(text) > n {
		return nil, invalid(KindTooLong, "text", "text must be at most %d characters", n)
	}

	var out *domain.Message
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetProfile(ctx, tx, strings.TrimSpace(author)); err != nil {
			if isNotFound(err) {
				return ErrProfileNotFound
			}
			return err
		}

		var emoto *domain.Emoto
		if emotoID != nil {
			e, err := repo.GetEmoto(ctx, tx, *emotoID)
			if err != nil {
				if isNotFound(err) {
					return ErrEmotoNotFound
				}
				return err
			}
			if !e.Available {
				return ErrEmotoUnavailable
			}
			emoto = e
		}

		m := &domain.Message{
			Text:           text,
			EmotoID:        emotoID,
			AuthorUsername: strings.TrimSpace(author),
			CreatedTime:    s.now().Truncate(time.Second),
		}
		if err := repo.CreateMessage(ctx, tx, m); err != nil {
			return err
		}
		m.Emoto = emoto
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("message.id", int64(out.ID)))
	return out, nil
}

// Get returns a message by id with its emoto preloaded.
func (s *MessageService) Get(ctx context.Context, id uint) (*domain.Message, error) {
	m, err := repo.GetMessage(ctx, s.DB, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return m, nil
}

// ListPage returns a page of all messages ordered by creation time.
func (s *MessageService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Message, int64, error) {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	return s.list(ctx, nil, page, pageSize)
}

// ListForPair returns a page of the messages written by username and, if
// paired, by its partner, ordered by creation time.
func (s *MessageService) ListForPair(ctx context.Context, username string, page, pageSize int) ([]domain.Message, int64, error) {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "ListForPair",
		trace.WithAttributes(
			attribute.String("profile.username", username),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	authors, err := s.PairAuthors(ctx, username)
	if err != nil {
		return nil, 0, err
	}
	return s.list(ctx, authors, page, pageSize)
}

// PairAuthors resolves username to itself plus its partner, if any.
func (s *MessageService) PairAuthors(ctx context.Context, username string) ([]string, error) {
	p, err := repo.GetProfile(ctx, s.DB, strings.TrimSpace(username))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	authors := []string{p.Username}
	if p.PartnerUsername != nil {
		authors = append(authors, *p.PartnerUsername)
	}
	return authors, nil
}

func (s *MessageService) list(ctx context.Context, authors []string, page, pageSize int) ([]domain.Message, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountMessages(ctx, s.DB, authors)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Message{}, 0, nil
	}

	items, err := repo.ListMessagesPage(ctx, s.DB, authors, offset, pageSize)
	return items, total, err
}

// nlCollapseRE collapses runs of 3+ newlines to two, preserving paragraphs.
var nlCollapseRE = regexp.MustCompile(`\n{3,}`)

// SanitizeText normalizes user text: CRLF/CR become LF, runs of three or
// more newlines collapse to two, and surrounding whitespace is trimmed.
func SanitizeText(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = nlCollapseRE.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
