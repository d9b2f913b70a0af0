package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestCronAuth(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		header     string
		value      string
		wantStatus int
	}{
		{"bearer accepted", "s3cret", "Authorization", "Bearer s3cret", http.StatusOK},
		{"cron key accepted", "s3cret", "X-Cron-Key", "s3cret", http.StatusOK},
		{"wrong bearer rejected", "s3cret", "Authorization", "Bearer nope", http.StatusUnauthorized},
		{"wrong cron key rejected", "s3cret", "X-Cron-Key", "nope", http.StatusUnauthorized},
		{"missing credentials rejected", "s3cret", "", "", http.StatusUnauthorized},
		{"empty configured secret rejects all", "", "Authorization", "Bearer ", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := CronAuth(tt.secret)(okHandler)
			req := httptest.NewRequest(http.MethodGet, "/notifications/dispatch/prayer", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestServiceAuthIgnoresCronKeyHeader(t *testing.T) {
	handler := ServiceAuth("s3cret")(okHandler)
	req := httptest.NewRequest(http.MethodGet, "/users/u1/preferences", nil)
	req.Header.Set("X-Cron-Key", "s3cret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServiceAuthBearer(t *testing.T) {
	handler := ServiceAuth("s3cret")(okHandler)
	req := httptest.NewRequest(http.MethodGet, "/users/u1/preferences", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTimingMiddleware(t *testing.T) {
	handler := TimingMiddleware(okHandler)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Process-Time"))
}

func TestRateLimitMiddleware(t *testing.T) {
	// 4 requests per minute gives a burst of 2: the third immediate request
	// from the same IP must be rejected.
	handler := RateLimitMiddleware(4, time.Minute)(okHandler)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// A different IP has its own bucket.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
