package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type lookupCall struct {
	username, scope, key string
	now                  time.Time
}

func idemRouter(opts IdempotencyOptions, lookup IdempotencyLookup) (*gin.Engine, *struct {
	key    string
	replay bool
	bypass bool
}) {
	gin.SetMode(gin.TestMode)
	seen := &struct {
		key    string
		replay bool
		bypass bool
	}{}
	r := gin.New()
	r.Use(Identify(), IdempotencyValidator(opts, lookup))
	h := func(c *gin.Context) {
		seen.key, _ = GetIdempotencyKey(c)
		seen.replay = IsReplay(c)
		seen.bypass = IsRateBypass(c)
		c.Status(http.StatusCreated)
	}
	r.POST("/messages", h)
	r.GET("/messages", h)
	return r, seen
}

func TestIdempotency_NoHeaderPassesThrough(t *testing.T) {
	called := false
	r, seen := idemRouter(IdempotencyOptions{}, func(context.Context, string, string, string, time.Time) (bool, error) {
		called = true
		return true, nil
	})
	if w := serve(r, http.MethodPost, "/messages", nil); w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	if called || seen.key != "" || seen.replay {
		t.Fatalf("no header must not trigger lookup: %+v", seen)
	}
}

func TestIdempotency_SafeMethodsIgnored(t *testing.T) {
	r, seen := idemRouter(IdempotencyOptions{}, nil)
	w := serve(r, http.MethodGet, "/messages", map[string]string{HeaderIdempotencyKey: "bad key!"})
	if w.Code != http.StatusCreated || seen.key != "" {
		t.Fatalf("GET must ignore the header: code=%d seen=%+v", w.Code, seen)
	}
}

func TestIdempotency_InvalidKeyRejected(t *testing.T) {
	r, _ := idemRouter(IdempotencyOptions{MaxLen: 8}, nil)
	for _, key := range []string{"has space", "toolong-123", "semi;colon"} {
		w := serve(r, http.MethodPost, "/messages", map[string]string{HeaderIdempotencyKey: key})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("key %q: status = %d", key, w.Code)
		}
		var body map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body["code"] != "bad_idempotency_key" {
			t.Fatalf("key %q: body = %v", key, body)
		}
	}
}

func TestIdempotency_CustomPattern(t *testing.T) {
	r, seen := idemRouter(IdempotencyOptions{Pattern: regexp.MustCompile(`^[0-9]+$`)}, nil)
	if w := serve(r, http.MethodPost, "/messages", map[string]string{HeaderIdempotencyKey: "abc"}); w.Code != http.StatusBadRequest {
		t.Fatalf("custom pattern not applied: %d", w.Code)
	}
	serve(r, http.MethodPost, "/messages", map[string]string{HeaderIdempotencyKey: "123"})
	if seen.key != "123" || seen.replay {
		t.Fatalf("seen = %+v", seen)
	}
}

func TestIdempotency_ReplayDetected(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 9, 0, 0, 0, time.FixedZone("X", 3600))
	var calls []lookupCall
	lookup := func(_ context.Context, username, scope, key string, now time.Time) (bool, error) {
		calls = append(calls, lookupCall{username, scope, key, now})
		return key == "seen-key", nil
	}
	r, seen := idemRouter(IdempotencyOptions{Now: func() time.Time { return fixed }}, lookup)

	serve(r, http.MethodPost, "/messages", map[string]string{HeaderIdempotencyKey: "seen-key", HeaderUsername: "alice"})
	if !seen.replay || !seen.bypass || seen.key != "seen-key" {
		t.Fatalf("replay not flagged: %+v", seen)
	}
	serve(r, http.MethodPost, "/messages", map[string]string{HeaderIdempotencyKey: "fresh-key", HeaderUsername: "alice"})
	if seen.replay || seen.bypass || seen.key != "fresh-key" {
		t.Fatalf("fresh key flagged: %+v", seen)
	}

	if len(calls) != 2 {
		t.Fatalf("lookup calls = %d", len(calls))
	}
	c := calls[0]
	if c.username != "alice" || c.scope != "/messages" || c.key != "seen-key" || !c.now.Equal(fixed) || c.now.Location() != time.UTC {
		t.Fatalf("lookup args = %+v", c)
	}
}

func TestIdempotency_LookupErrorIsNotReplay(t *testing.T) {
	buf := captureLogger(t)
	r, seen := idemRouter(IdempotencyOptions{Scope: func(*gin.Context) string { return "messages" }},
		func(context.Context, string, string, string, time.Time) (bool, error) {
			return true, errors.New("db down")
		})
	w := serve(r, http.MethodPost, "/messages", map[string]string{HeaderIdempotencyKey: "k1"})
	if w.Code != http.StatusCreated || seen.replay || seen.bypass {
		t.Fatalf("lookup error must fall through: code=%d seen=%+v", w.Code, seen)
	}
	if !strings.Contains(buf.String(), "idempotency lookup failed") {
		t.Fatalf("expected warning log, got %s", buf.String())
	}
}

func TestIdempotencyHelpers_TypeSafety(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	if k, ok := GetIdempotencyKey(c); k != "" || ok {
		t.Fatalf("expected empty key")
	}
	c.Set(ctxKeyIdemKey, 123)
	if _, ok := GetIdempotencyKey(c); ok {
		t.Fatalf("non-string key must be absent")
	}
	c.Set(ctxKeyIdemReplay, "yes")
	if IsReplay(c) {
		t.Fatalf("non-bool replay must be false")
	}
	c.Set(ctxKeyRateBypass, true)
	if !IsRateBypass(c) {
		t.Fatalf("bypass flag not read")
	}
}
