package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(10, time.Minute, setupTestLogger())

	assert.NotNil(t, limiter)
	assert.Equal(t, 10, limiter.rate)
	assert.Equal(t, time.Minute, limiter.window)
	assert.NotNil(t, limiter.buckets)

	limiter.Stop()
	// Повторная остановка не паникует
	assert.NotPanics(t, limiter.Stop)
}

func TestRateLimiter_Allow(t *testing.T) {
	t.Run("requests within limit are allowed", func(t *testing.T) {
		limiter := NewRateLimiter(5, time.Minute, setupTestLogger())
		defer limiter.Stop()

		for i := 0; i < 5; i++ {
			assert.True(t, limiter.Allow("192.168.1.1"), fmt.Sprintf("request %d should be allowed", i+1))
		}
		assert.False(t, limiter.Allow("192.168.1.1"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		limiter := NewRateLimiter(1, time.Minute, setupTestLogger())
		defer limiter.Stop()

		assert.True(t, limiter.Allow("10.0.0.1"))
		assert.False(t, limiter.Allow("10.0.0.1"))
		assert.True(t, limiter.Allow("10.0.0.2"))
	})

	t.Run("bucket refills after window", func(t *testing.T) {
		limiter := NewRateLimiter(1, 50*time.Millisecond, setupTestLogger())
		defer limiter.Stop()

		assert.True(t, limiter.Allow("10.0.0.3"))
		assert.False(t, limiter.Allow("10.0.0.3"))

		time.Sleep(60 * time.Millisecond)
		assert.True(t, limiter.Allow("10.0.0.3"))
	})
}

func TestRateLimiter_CleanupOldBuckets(t *testing.T) {
	limiter := NewRateLimiter(5, time.Minute, setupTestLogger())
	defer limiter.Stop()

	limiter.Allow("10.0.0.1")
	assert.Len(t, limiter.buckets, 1)

	limiter.cleanupOldBuckets(time.Now())
	assert.Len(t, limiter.buckets, 1)

	limiter.cleanupOldBuckets(time.Now().Add(3 * time.Minute))
	assert.Empty(t, limiter.buckets)
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute, setupTestLogger())
	defer limiter.Stop()

	handler := RateLimitMiddleware(limiter, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "192.0.2.1:12345"
		// Без trustProxy заголовок игнорируется
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", time.Now().UnixNano()%200))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send().Code)
	assert.Equal(t, http.StatusOK, send().Code)

	w := send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		headers    map[string]string
		name       string
		remoteAddr string
		want       string
		trustProxy bool
	}{
		{name: "remote addr with port", remoteAddr: "192.0.2.1:1234", want: "192.0.2.1"},
		{name: "remote addr without port", remoteAddr: "192.0.2.1", want: "192.0.2.1"},
		{name: "ipv6", remoteAddr: "[2001:db8::1]:443", want: "2001:db8::1"},
		{
			name:       "xff ignored without trust",
			remoteAddr: "192.0.2.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.5"},
			want:       "192.0.2.1",
		},
		{
			name:       "xff first hop",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.2"},
			trustProxy: true,
			want:       "203.0.113.5",
		},
		{
			name:       "x-real-ip",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Real-IP": "203.0.113.7"},
			trustProxy: true,
			want:       "203.0.113.7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req, tt.trustProxy))
		})
	}
}
