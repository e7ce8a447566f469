package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/iudanet/villabook/internal/server/respond"
	"github.com/iudanet/villabook/pkg/api"
)

// Pinger проверяет доступность хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler обрабатывает health check запросы
type HealthHandler struct {
	logger  *slog.Logger
	db      Pinger
	version string
}

// NewHealthHandler создает новый handler для health check
func NewHealthHandler(logger *slog.Logger, db Pinger, version string) *HealthHandler {
	return &HealthHandler{
		logger:  logger,
		db:      db,
		version: version,
	}
}

// Health обрабатывает GET /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.ErrorContext(ctx, "health check: database unavailable", slog.Any("error", err))
		respond.Error(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	respond.JSON(w, http.StatusOK, "OK", api.HealthResponse{
		Status:  "ok",
		Version: h.version,
	})
}
