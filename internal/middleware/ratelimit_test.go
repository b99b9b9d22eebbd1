package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"portfolio/internal/models"
	"portfolio/internal/session"
)

func TestRateLimiterCommentLimit(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute, BySessionUser)
	defer rl.Stop()
	base := time.Now()

	for i := 0; i < 5; i++ {
		if !rl.allowAt("user:a", base) {
			t.Fatalf("comment %d should be allowed", i+1)
		}
	}
	if rl.allowAt("user:a", base) {
		t.Fatal("6th comment within the minute should be refused")
	}
	if !rl.allowAt("user:b", base) {
		t.Error("another user should have its own bucket")
	}

	// One token comes back every 12 seconds.
	if rl.allowAt("user:a", base.Add(11*time.Second)) {
		t.Error("token should not be back after 11s")
	}
	if !rl.allowAt("user:a", base.Add(13*time.Second)) {
		t.Error("token should be back after 13s")
	}
	if rl.allowAt("user:a", base.Add(13*time.Second)) {
		t.Error("only one token should have come back")
	}
}

func TestRateLimiterContactLimit(t *testing.T) {
	rl := NewRateLimiter(3, 10*time.Minute, ByRemoteAddr)
	defer rl.Stop()
	base := time.Now()

	for i := 0; i < 3; i++ {
		if !rl.allowAt("203.0.113.7", base.Add(time.Duration(i)*time.Second)) {
			t.Fatalf("message %d should be allowed", i+1)
		}
	}
	if rl.allowAt("203.0.113.7", base.Add(3*time.Minute)) {
		t.Error("4th message after 3 minutes should be refused")
	}
	if !rl.allowAt("203.0.113.7", base.Add(10*time.Minute)) {
		t.Error("a message should be allowed once the window has refilled a token")
	}
}

func TestRateLimiterIgnoresForwardedFor(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, ByRemoteAddr)
	defer rl.Stop()

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	codes := make([]int, 0, 3)
	for _, xff := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Forwarded-For", xff)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	want := []int{http.StatusCreated, http.StatusTooManyRequests, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d: got status %d, want %d", i+1, codes[i], want[i])
		}
	}
}

func TestRateLimiterMiddlewareRetryAfter(t *testing.T) {
	rl := NewRateLimiter(3, 10*time.Minute, nil)
	defer rl.Stop()

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var rr *httptest.ResponseRecorder
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		rr = httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
	}
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("got status %d, want 429", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got != "200" {
		t.Errorf("Retry-After = %q, want 200", got)
	}
}

func TestBySessionUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "192.168.1.1:1234"
	if got := BySessionUser(req); got != "addr:192.168.1.1" {
		t.Errorf("anonymous key = %q", got)
	}

	id := uuid.New()
	ctx := WithSession(req.Context(), &session.Data{UserID: id, Role: models.RoleAuthor})
	if got := BySessionUser(req.WithContext(ctx)); got != "user:"+id.String() {
		t.Errorf("session key = %q", got)
	}
}

func TestByRemoteAddr(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		want       string
	}{
		{"ipv4 with port", "192.168.1.1:1234", "192.168.1.1"},
		{"ipv6 with port", "[2001:db8::1]:443", "2001:db8::1"},
		{"resolved by RealIP", "10.0.0.1", "10.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			req.Header.Set("X-Forwarded-For", "6.6.6.6")
			if got := ByRemoteAddr(req); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute, nil)
	defer rl.Stop()
	base := time.Now()

	rl.allowAt("idle", base)
	rl.allowAt("busy", base)
	rl.allowAt("busy", base.Add(50*time.Second))

	rl.cleanup(base.Add(time.Minute))

	rl.mu.Lock()
	_, idle := rl.limiters["idle"]
	_, busy := rl.limiters["busy"]
	rl.mu.Unlock()

	if idle {
		t.Error("idle bucket should have been dropped")
	}
	if !busy {
		t.Error("recently used bucket should be kept")
	}
}
