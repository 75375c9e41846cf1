package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimitBlocksAfterLimit(t *testing.T) {
	handler := RateLimit(2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	status := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := status("198.51.100.1:1000"); got != http.StatusOK {
		t.Fatalf("first request status = %d", got)
	}
	if got := status("198.51.100.1:1001"); got != http.StatusOK {
		t.Fatalf("second request status = %d", got)
	}
	if got := status("198.51.100.1:1002"); got != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", got)
	}
	if got := status("198.51.100.2:1000"); got != http.StatusOK {
		t.Fatalf("other client status = %d, want 200", got)
	}
}
