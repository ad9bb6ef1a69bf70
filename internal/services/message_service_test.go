package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/emoto-backend/internal/domain"
	"github.com/tbourn/emoto-backend/internal/repo"
)

func seedUser(t *testing.T, db *gorm.DB, username string, partner *string) {
	t.Helper()
	code := strings.ToUpper((username + "XXXXXX")[:6])
	p := &domain.Profile{
		Username:          username,
		PartnerUsername:   partner,
		PairCode:          &code,
		PresenceTimestamp: time.Now().UTC(),
	}
	if err := repo.CreateProfile(context.Background(), db, p); err != nil {
		t.Fatalf("CreateProfile(%s): %v", username, err)
	}
}

func seedEmoto(t *testing.T, db *gorm.DB, name string, available bool) *domain.Emoto {
	t.Helper()
	e := &domain.Emoto{Name: name, ImagePath: strings.ToLower(name) + ".png", Available: available}
	if err := repo.CreateEmoto(context.Background(), db, e); err != nil {
		t.Fatalf("CreateEmoto: %v", err)
	}
	return e
}

func TestMessagePost_StampsAndNormalizes(t *testing.T) {
	db := newSvcDB(t)
	seedUser(t, db, "alice", nil)
	happy := seedEmoto(t, db, "Happy", true)

	at := time.Date(2024, 5, 1, 9, 30, 0, 750_000_000, time.FixedZone("PDT", -7*3600))
	svc := &MessageService{DB: db, Now: func() time.Time { return at }}

	m, err := svc.Post(context.Background(), "alice", "  hi\r\n\r\n\r\n\r\nthere  ", &happy.ID)
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if m.ID == 0 {
		t.Fatalf("expected id assigned")
	}
	if m.Text != "hi\n\nthere" {
		t.Fatalf("text = %q", m.Text)
	}
	want := time.Date(2024, 5, 1, 16, 30, 0, 0, time.UTC)
	if !m.CreatedTime.Equal(want) || m.CreatedTime.Location() != time.UTC {
		t.Fatalf("CreatedTime = %v, want %v UTC", m.CreatedTime, want)
	}
	if m.Emoto == nil || m.Emoto.Name != "Happy" {
		t.Fatalf("emoto not attached: %+v", m.Emoto)
	}

	got, err := svc.Get(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Emoto == nil || got.Emoto.ID != happy.ID || !got.CreatedTime.Equal(want) {
		t.Fatalf("Get = %+v", got)
	}
}

func TestMessagePost_Validation(t *testing.T) {
	db := newSvcDB(t)
	seedUser(t, db, "alice", nil)
	svc := &MessageService{DB: db, MaxTextRunes: 5}

	var ve *ValidationError
	if _, err := svc.Post(context.Background(), "alice", " \n\t ", nil); !errors.As(err, &ve) || ve.Kind != KindBlankField {
		t.Fatalf("expected BlankField, got %v", err)
	}
	if _, err := svc.Post(context.Background(), "alice", "123456", nil); !errors.As(err, &ve) || ve.Kind != KindTooLong {
		t.Fatalf("expected TooLong, got %v", err)
	}
	// Limit counts runes, not bytes.
	if _, err := svc.Post(context.Background(), "alice", "héllo", nil); err != nil {
		t.Fatalf("5 runes should fit: %v", err)
	}
	if svc.MaxRunes() != 5 || (&MessageService{}).MaxRunes() != DefaultMaxTextRunes {
		t.Fatalf("MaxRunes mismatch")
	}
}

func TestMessagePost_ReferenceErrors(t *testing.T) {
	db := newSvcDB(t)
	seedUser(t, db, "alice", nil)
	retired := seedEmoto(t, db, "Retired", false)
	svc := &MessageService{DB: db}
	ctx := context.Background()

	if _, err := svc.Post(ctx, "ghost", "hi", nil); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
	if _, err := svc.Post(ctx, "alice", "hi", &retired.ID); !errors.Is(err, ErrEmotoUnavailable) {
		t.Fatalf("expected ErrEmotoUnavailable, got %v", err)
	}
	missing := uint(404)
	if _, err := svc.Post(ctx, "alice", "hi", &missing); !errors.Is(err, ErrEmotoNotFound) {
		t.Fatalf("expected ErrEmotoNotFound, got %v", err)
	}

	var n int64
	db.Model(&domain.Message{}).Count(&n)
	if n != 0 {
		t.Fatalf("rejected posts must not persist, found %d", n)
	}

	if _, err := svc.Get(ctx, 12345); !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("expected ErrMessageNotFound, got %v", err)
	}
}

func TestMessageList_OrderAndPagination(t *testing.T) {
	db := newSvcDB(t)
	seedUser(t, db, "alice", sptr("bob"))
	seedUser(t, db, "bob", sptr("alice"))
	seedUser(t, db, "carol", nil)

	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	clk := &clock{t: base}
	svc := &MessageService{DB: db, Now: clk.Now}
	ctx := context.Background()

	for _, a := range []string{"bob", "carol", "alice", "bob"} {
		if _, err := svc.Post(ctx, a, "from "+a, nil); err != nil {
			t.Fatalf("Post: %v", err)
		}
		clk.Advance(time.Minute)
	}

	all, total, err := svc.ListPage(ctx, 1, 10)
	if err != nil || total != 4 || len(all) != 4 {
		t.Fatalf("ListPage = %d items, total=%d, err=%v", len(all), total, err)
	}
	for i := 1; i < len(all); i++ {
		if all[i].CreatedTime.Before(all[i-1].CreatedTime) {
			t.Fatalf("not ordered by creation time")
		}
	}

	pair, total, err := svc.ListForPair(ctx, "alice", 1, 2)
	if err != nil {
		t.Fatalf("ListForPair: %v", err)
	}
	if total != 3 || len(pair) != 2 || pair[0].AuthorUsername != "bob" || pair[1].AuthorUsername != "alice" {
		t.Fatalf("page 1 = %+v total=%d", pair, total)
	}
	pair, _, _ = svc.ListForPair(ctx, "alice", 2, 2)
	if len(pair) != 1 || pair[0].AuthorUsername != "bob" {
		t.Fatalf("page 2 = %+v", pair)
	}

	solo, total, err := svc.ListForPair(ctx, "carol", 0, 0)
	if err != nil || total != 1 || len(solo) != 1 {
		t.Fatalf("unpaired list = %d items total=%d err=%v", len(solo), total, err)
	}

	if _, _, err := svc.ListForPair(ctx, "ghost", 1, 10); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestMessageList_EmptyIsNonNil(t *testing.T) {
	svc := &MessageService{DB: newSvcDB(t)}
	items, total, err := svc.ListPage(context.Background(), 3, 10)
	if err != nil || total != 0 || items == nil || len(items) != 0 {
		t.Fatalf("got items=%v total=%d err=%v", items, total, err)
	}
}

func TestSanitizeText(t *testing.T) {
	cases := map[string]string{
		"  plain  ":         "plain",
		"a\r\nb":            "a\nb",
		"a\rb":              "a\nb",
		"a\n\n\n\n\nb":      "a\n\nb",
		"a\n\nb":            "a\n\nb",
		"\r\n\r\n  \r\n":    "",
		"emoji 🙂\n\n\n end": "emoji 🙂\n\n end",
	}
	for in, want := range cases {
		if got := SanitizeText(in); got != want {
			t.Errorf("SanitizeText(%q) = %q, want %q", in, got, want)
		}
	}
}
