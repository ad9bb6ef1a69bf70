package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func TestKeyByUsernameOrIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = net.JoinHostPort("203.0.113.9", "12345")
	c.Request = req

	if key := KeyByUsernameOrIP()(c); key != "ip:203.0.113.9" {
		t.Fatalf("expected ip-based key, got %q", key)
	}
	req.Header.Set(HeaderUsername, "alice")
	if key := KeyByUsernameOrIP()(c); key != "user:alice" {
		t.Fatalf("expected user-based key, got %q", key)
	}
	c.Params = gin.Params{{Key: "username", Value: "bob"}}
	if key := KeyByUsernameOrIP()(c); key != "user:bob" {
		t.Fatalf("path username should win, got %q", key)
	}
}

func TestNewRateLimiter_DefaultsAndReuse(t *testing.T) {
	rl := NewRateLimiter(2, 0, nil)
	if rl.burst != 1 || rl.keyFn == nil {
		t.Fatalf("defaults not applied: burst=%d", rl.burst)
	}
	lim := rl.limiterFor("k1")
	if rl.limiterFor("k1") != lim {
		t.Fatalf("expected same limiter instance")
	}
	if rl.size() != 1 {
		t.Fatalf("size = %d", rl.size())
	}
}

func TestRateLimiter_SweepsIdleBuckets(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1, nil)
	rl.now = func() time.Time { return now }
	rl.sweepEvery = 3

	rl.limiterFor("old")
	now = now.Add(rl.ttl)
	rl.limiterFor("new")
	rl.limiterFor("new")

	rl.mu.Lock()
	_, hasOld := rl.visitors["old"]
	_, hasNew := rl.visitors["new"]
	rl.mu.Unlock()
	if hasOld || !hasNew {
		t.Fatalf("sweep result old=%v new=%v", hasOld, hasNew)
	}
}

func TestRateLimiter_StaleBucketIsReplaced(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1, nil)
	rl.now = func() time.Time { return now }
	rl.sweepEvery = 1

	first := rl.limiterFor("k")
	now = now.Add(rl.ttl + time.Second)
	if rl.limiterFor("k") == first {
		t.Fatalf("expired bucket should have been swept and recreated")
	}
}

func TestRateLimiter_Handler429AndBypass(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(0.5, 2, nil)

	r := gin.New()
	r.Use(RequestID(), Identify())
	r.Use(func(c *gin.Context) {
		if c.GetHeader("X-Test-Replay") == "1" {
			c.Set(ctxKeyRateBypass, true)
		}
		c.Next()
	})
	r.Use(rl.Handler())
	r.GET("/profiles/:username", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		if w := serve(r, http.MethodGet, "/profiles/alice", nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: %d", i, w.Code)
		}
	}
	w := serve(r, http.MethodGet, "/profiles/alice", nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "2" {
		t.Fatalf("Retry-After = %q", w.Header().Get("Retry-After"))
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["code"] != "rate_limited" || body["request_id"] == "" {
		t.Fatalf("body = %v err=%v", body, err)
	}

	// Another user has an independent bucket.
	if w := serve(r, http.MethodGet, "/profiles/bob", nil); w.Code != http.StatusOK {
		t.Fatalf("bob limited: %d", w.Code)
	}
	// Replays are exempt.
	if w := serve(r, http.MethodGet, "/profiles/alice", map[string]string{"X-Test-Replay": "1"}); w.Code != http.StatusOK {
		t.Fatalf("replay limited: %d", w.Code)
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	cases := []struct {
		rps  float64
		want int
	}{{0, 1}, {10, 1}, {1, 1}, {0.25, 4}, {float64(rate.Inf), 1}}
	for _, tc := range cases {
		rl := NewRateLimiter(tc.rps, 1, nil)
		if got := rl.retryAfterSeconds(); got != tc.want {
			t.Errorf("rps=%v: got %d want %d", tc.rps, got, tc.want)
		}
	}
}
