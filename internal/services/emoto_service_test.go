package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestEmotoCreate_NormalizesNameAndPath(t *testing.T) {
	db := newSvcDB(t)
	svc := NewEmotoService(db)
	svc.Now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	ctx := context.Background()

	e, err := svc.Create(ctx, "  very   sleepy ", "Sleepy.PNG")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if e.Name != "Very Sleepy" {
		t.Fatalf("name = %q", e.Name)
	}
	if e.ImagePath != "emotos/20240102030405.png" {
		t.Fatalf("image path = %q", e.ImagePath)
	}
	if !e.Available || e.ID == 0 {
		t.Fatalf("expected available persisted entry: %+v", e)
	}

	kept, err := svc.Create(ctx, "happy", "custom/dir/h.png")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if kept.ImagePath != "custom/dir/h.png" {
		t.Fatalf("paths with a directory must be kept, got %q", kept.ImagePath)
	}

	got, err := svc.Get(ctx, e.ID)
	if err != nil || got.Name != "Very Sleepy" {
		t.Fatalf("Get = %+v, %v", got, err)
	}
}

func TestEmotoCreate_Validation(t *testing.T) {
	svc := NewEmotoService(newSvcDB(t))
	ctx := context.Background()

	cases := []struct {
		name, image string
		field       string
		kind        ValidationKind
	}{
		{"   ", "a.png", "name", KindBlankField},
		{strings.Repeat("n", 201), "a.png", "name", KindTooLong},
		{"Ok", "  ", "image_path", KindBlankField},
		{"Ok", "dir/" + strings.Repeat("p", 500), "image_path", KindTooLong},
	}
	for _, tc := range cases {
		_, err := svc.Create(ctx, tc.name, tc.image)
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != tc.field || ve.Kind != tc.kind {
			t.Errorf("Create(%q, %q) = %v, want %s/%s", tc.name, tc.image, err, tc.field, tc.kind)
		}
	}
}

func TestEmotoList_OrderAndAvailability(t *testing.T) {
	db := newSvcDB(t)
	svc := NewEmotoService(db)
	ctx := context.Background()

	seedEmoto(t, db, "Zany", true)
	seedEmoto(t, db, "Angry", false)
	seedEmoto(t, db, "Mellow", true)

	all, err := svc.List(ctx, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var names []string
	for _, e := range all {
		names = append(names, e.Name)
	}
	if strings.Join(names, ",") != "Angry,Mellow,Zany" {
		t.Fatalf("order = %v", names)
	}

	avail, err := svc.List(ctx, true)
	if err != nil || len(avail) != 2 || avail[0].Name != "Mellow" {
		t.Fatalf("available = %+v, %v", avail, err)
	}

	if _, err := svc.Get(ctx, 9999); !errors.Is(err, ErrEmotoNotFound) {
		t.Fatalf("expected ErrEmotoNotFound, got %v", err)
	}
}

func TestUploadPath(t *testing.T) {
	at := time.Date(2023, 12, 31, 23, 59, 58, 0, time.FixedZone("X", 3600))
	if got := UploadPath(at, "pic.JPEG"); got != "emotos/20231231225958.jpeg" {
		t.Fatalf("UploadPath = %q", got)
	}
	if got := UploadPath(at, "noext"); got != "emotos/20231231225958" {
		t.Fatalf("UploadPath no ext = %q", got)
	}
}
