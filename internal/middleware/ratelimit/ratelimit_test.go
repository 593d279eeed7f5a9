package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter(t *testing.T, perMinute int) (*Limiter, *time.Time) {
	t.Helper()
	rl := NewLimiter(Config{RequestsPerMinute: perMinute, CleanupInterval: time.Hour})
	t.Cleanup(rl.Stop)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestLimiter_Allow(t *testing.T) {
	rl, now := newTestLimiter(t, 3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("fourth request in the window should be rejected")
	}
	if !rl.Allow("10.0.0.2") {
		t.Fatal("other clients have their own budget")
	}

	*now = now.Add(time.Minute)
	if !rl.Allow("10.0.0.1") {
		t.Fatal("a new window should reset the budget")
	}

	m := rl.GetMetrics()
	if m.Rejected != 1 || m.ClientCount != 2 {
		t.Fatalf("unexpected metrics %+v", m)
	}
}

func TestLimiter_CleanupStaleEntries(t *testing.T) {
	rl, now := newTestLimiter(t, 10)
	rl.Allow("10.0.0.1")

	*now = now.Add(11 * time.Minute)
	rl.Allow("10.0.0.2")
	rl.cleanupStaleEntries()

	if got := rl.GetMetrics().ClientCount; got != 1 {
		t.Fatalf("expected stale client to be removed, %d tracked", got)
	}
}

func TestLimiter_Middleware(t *testing.T) {
	rl, _ := newTestLimiter(t, 1)
	h := rl.Middleware(func(*http.Request) string { return "client" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusAccepted) }))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/message", nil))
	if rr.Code != http.StatusAccepted {
		t.Fatalf("first request status=%d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/message", nil))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status=%d", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "60" {
		t.Fatal("missing Retry-After header")
	}
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewLimiter(Config{})
	rl.Stop()
	rl.Stop()
	if rl.requestsPerMinute != DefaultConfig().RequestsPerMinute {
		t.Fatalf("expected default limit, got %d", rl.requestsPerMinute)
	}
}
