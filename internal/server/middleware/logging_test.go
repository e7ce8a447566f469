package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		handler        http.HandlerFunc
		name           string
		method         string
		path           string
		expectedLevel  string
		expectedStatus int
	}{
		{
			name:   "GET request with 200 OK",
			method: http.MethodGet,
			path:   "/api/villas",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("success"))
			},
			expectedStatus: http.StatusOK,
			expectedLevel:  "INFO",
		},
		{
			name:   "POST request with 201 Created",
			method: http.MethodPost,
			path:   "/api/bookings",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
			},
			expectedStatus: http.StatusCreated,
			expectedLevel:  "INFO",
		},
		{
			name:   "Request with 404 Not Found",
			method: http.MethodGet,
			path:   "/api/villas/missing",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedLevel:  "WARN",
		},
		{
			name:   "Request with 500 Internal Server Error",
			method: http.MethodPost,
			path:   "/api/bookings",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			expectedStatus: http.StatusInternalServerError,
			expectedLevel:  "ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := LoggingMiddleware(jsonLogger(&buf))(tt.handler)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, "HTTP request", entry["msg"])
			assert.Equal(t, tt.expectedLevel, entry["level"])
			assert.Equal(t, tt.method, entry["method"])
			assert.Equal(t, tt.path, entry["path"])
			assert.Equal(t, float64(tt.expectedStatus), entry["status"])
		})
	}
}

func TestLoggingMiddleware_DoesNotLogSecrets(t *testing.T) {
	var buf bytes.Buffer
	handler := LoggingMiddleware(jsonLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"password":"secret-pass"}`))
	req.Header.Set("Authorization", "Bearer A1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.NotContains(t, buf.String(), "secret-pass")
	assert.NotContains(t, buf.String(), "Bearer A1")
}

// Query может содержать персональные данные фильтров, в лог идет только путь
func TestLoggingMiddleware_OmitsQuery(t *testing.T) {
	var buf bytes.Buffer
	handler := LoggingMiddleware(jsonLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/villas?location=nice&guests=4", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "/api/villas", entry["path"])
	assert.NotContains(t, buf.String(), "location=nice")
}

func TestLoggingWithSkip(t *testing.T) {
	var buf bytes.Buffer
	handler := LoggingWithSkip(jsonLogger(&buf), []string{"/api/health"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Empty(t, buf.String())

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/villas", nil))
	assert.Contains(t, buf.String(), "/api/villas")
}

func TestResponseWriter_CapturesFirstStatusAndBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusAccepted)
	rw.WriteHeader(http.StatusTeapot)
	n, err := rw.Write([]byte("hello"))
	require.NoError(t, err)

	assert.Equal(t, 5, n)
	assert.Equal(t, http.StatusAccepted, rw.statusCode)
	assert.Equal(t, int64(5), rw.written)
	assert.Same(t, http.ResponseWriter(rec), rw.Unwrap())
}
