package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestLimiter(perMinute int) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)}
	rl := NewLimiter(Config{
		RequestsPerMinute: perMinute,
		Exempt:            func(r *http.Request) bool { return r.URL.Path == "/healthz" },
	})
	rl.now = clock.now
	return rl, clock
}

func TestAllowWindow(t *testing.T) {
	rl, clock := newTestLimiter(2)

	if !rl.Allow("1.1.1.1") || !rl.Allow("1.1.1.1") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("1.1.1.1") {
		t.Error("third request in the window should be limited")
	}
	if !rl.Allow("2.2.2.2") {
		t.Error("other clients have their own window")
	}

	clock.t = clock.t.Add(30 * time.Second)
	if got := rl.RetryAfter("1.1.1.1"); got != 30 {
		t.Errorf("RetryAfter() = %d, want 30", got)
	}
	if rl.Allow("1.1.1.1") {
		t.Error("steady traffic must not extend the window but must stay limited")
	}

	clock.t = clock.t.Add(31 * time.Second)
	if !rl.Allow("1.1.1.1") {
		t.Error("a new window should allow requests again")
	}

	m := rl.GetMetrics()
	if m.TotalHits != 6 || m.Limited != 2 || m.ClientCount != 2 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestCleanExpired(t *testing.T) {
	rl, clock := newTestLimiter(10)
	rl.Allow("1.1.1.1")
	clock.t = clock.t.Add(9 * time.Minute)
	rl.Allow("2.2.2.2")

	clock.t = clock.t.Add(2 * time.Minute)
	if got := rl.CleanExpired(); got != 1 {
		t.Errorf("CleanExpired() = %d, want 1", got)
	}
	if rl.ActiveClients() != 1 {
		t.Errorf("ActiveClients() = %d, want 1", rl.ActiveClients())
	}
}

func TestMiddleware(t *testing.T) {
	rl, _ := newTestLimiter(1)
	handler := rl.Middleware(
		func(*http.Request) string { return "9.9.9.9" },
		nil,
	)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/tasks", http.StatusNoContent},
		{"/tasks", http.StatusTooManyRequests},
		{"/healthz", http.StatusNoContent},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != tt.wantStatus {
			t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.wantStatus)
		}
		if rec.Code == http.StatusTooManyRequests && rec.Header().Get("Retry-After") != "60" {
			t.Errorf("Retry-After = %q, want 60", rec.Header().Get("Retry-After"))
		}
	}
}
