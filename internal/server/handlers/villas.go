package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/iudanet/villabook/internal/models"
	"github.com/iudanet/villabook/internal/server/respond"
	"github.com/iudanet/villabook/internal/server/storage"
	"github.com/iudanet/villabook/pkg/api"
)

// VillaHandler обрабатывает каталог вилл
type VillaHandler struct {
	logger       *slog.Logger
	villaStorage storage.VillaStorage
}

// NewVillaHandler создает handler каталога
func NewVillaHandler(logger *slog.Logger, villaStorage storage.VillaStorage) *VillaHandler {
	return &VillaHandler{
		logger:       logger,
		villaStorage: villaStorage,
	}
}

// List обрабатывает GET /api/villas?location=&guests=
func (h *VillaHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := models.VillaFilter{Location: q.Get("location")}
	if g := q.Get("guests"); g != "" {
		guests, err := strconv.Atoi(g)
		if err != nil || guests < 1 {
			respond.Error(w, http.StatusBadRequest, "guests must be a positive integer")
			return
		}
		filter.MinGuests = guests
	}

	villas, err := h.villaStorage.ListVillas(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list villas", slog.Any("error", err))
		respond.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]api.Villa, 0, len(villas))
	for _, v := range villas {
		out = append(out, v.ToAPI())
	}

	respond.JSON(w, http.StatusOK, "Success", out)
}

// Get обрабатывает GET /api/villas/{id}
func (h *VillaHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	villa, err := h.villaStorage.GetVilla(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrVillaNotFound) {
			respond.Error(w, http.StatusNotFound, "Villa not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get villa", slog.Any("error", err))
		respond.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respond.JSON(w, http.StatusOK, "Success", villa.ToAPI())
}
