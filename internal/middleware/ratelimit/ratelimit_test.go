package ratelimit

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	applog "carteira/internal/log"
)

func newTestLimiter(t *testing.T, perMinute int) (*Limiter, *time.Time) {
	t.Helper()
	logger := applog.New(applog.NewTextConfig(io.Discard, applog.ParseLevel("error"), applog.ComponentRateLimit))
	rl := NewLimiter(Config{RequestsPerMinute: perMinute, CleanupInterval: time.Hour}, logger)
	t.Cleanup(rl.Stop)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestAllowWindow(t *testing.T) {
	rl, now := newTestLimiter(t, 3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("alice") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("alice") {
		t.Fatal("fourth request in the window should be rejected")
	}
	if !rl.Allow("bob") {
		t.Fatal("keys are limited independently")
	}

	*now = now.Add(time.Minute)
	if !rl.Allow("alice") {
		t.Fatal("a new window should reset the counter")
	}

	m := rl.GetMetrics()
	if m.TotalHits != 1 || m.ClientCount != 2 {
		t.Fatalf("metrics = %+v", m)
	}
}

func TestRejectedRequestsDoNotExtendWindow(t *testing.T) {
	rl, now := newTestLimiter(t, 1)

	rl.Allow("alice")
	*now = now.Add(50 * time.Second)
	if rl.Allow("alice") {
		t.Fatal("expected rejection inside the window")
	}
	if got := rl.RetryAfter("alice"); got != 10*time.Second {
		t.Fatalf("RetryAfter = %v, want 10s", got)
	}
	*now = now.Add(10 * time.Second)
	if !rl.Allow("alice") {
		t.Fatal("window should reset one minute after it started")
	}
}

func TestCleanupStaleEntries(t *testing.T) {
	rl, now := newTestLimiter(t, 5)
	rl.Allow("old")
	*now = now.Add(11 * time.Minute)
	rl.Allow("fresh")

	rl.cleanupStaleEntries()
	if rl.ActiveClients() != 1 {
		t.Fatalf("expected only the fresh client, got %d", rl.ActiveClients())
	}
}

func TestMiddleware(t *testing.T) {
	rl, _ := newTestLimiter(t, 1)
	key := func(r *http.Request) string { return r.Header.Get("X-Owner") }
	h := rl.Middleware(key, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(owner string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/expenses", nil)
		req.Header.Set("X-Owner", owner)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := send("alice"); rec.Code != http.StatusNoContent {
		t.Fatalf("first request: %d", rec.Code)
	}
	rec := send("alice")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "61" {
		t.Fatalf("Retry-After = %q", rec.Header().Get("Retry-After"))
	}
	if rec := send("bob"); rec.Code != http.StatusNoContent {
		t.Fatalf("other owner: %d", rec.Code)
	}
}
