package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/villabook/pkg/api"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler_Health(t *testing.T) {
	h := NewHealthHandler(discardLogger(), pingerFunc(func(context.Context) error { return nil }), "1.2.3")

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	env := decodeBody[api.HealthResponse](t, w)
	assert.True(t, env.Success)
	assert.Equal(t, "ok", env.Data.Status)
	assert.Equal(t, "1.2.3", env.Data.Version)
}

func TestHealthHandler_DatabaseDown(t *testing.T) {
	h := NewHealthHandler(discardLogger(), pingerFunc(func(context.Context) error {
		return errors.New("database is closed")
	}), "dev")

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decodeError(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "Database unavailable", resp.Message)
}
