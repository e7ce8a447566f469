package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/villabook/internal/models"
	"github.com/iudanet/villabook/internal/server/middleware"
	"github.com/iudanet/villabook/internal/server/respond"
	"github.com/iudanet/villabook/internal/server/storage"
	"github.com/iudanet/villabook/internal/validation"
	"github.com/iudanet/villabook/pkg/api"
)

// maxNotesLen ограничивает комментарий к бронированию
const maxNotesLen = 500

// BookingHandler обрабатывает бронирования
type BookingHandler struct {
	logger         *slog.Logger
	villaStorage   storage.VillaStorage
	bookingStorage storage.BookingStorage
	now            func() time.Time
}

// NewBookingHandler создает handler бронирований
func NewBookingHandler(logger *slog.Logger, villaStorage storage.VillaStorage, bookingStorage storage.BookingStorage) *BookingHandler {
	return &BookingHandler{
		logger:         logger,
		villaStorage:   villaStorage,
		bookingStorage: bookingStorage,
		now:            time.Now,
	}
}

// List обрабатывает GET /api/bookings
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := middleware.UserIDFromContext(ctx)

	bookings, err := h.bookingStorage.ListUserBookings(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list bookings", slog.Any("error", err))
		respond.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]api.Booking, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, b.ToAPI())
	}

	respond.JSON(w, http.StatusOK, "Success", out)
}

// Create обрабатывает POST /api/bookings
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := middleware.UserIDFromContext(ctx)

	var req api.CreateBookingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode booking request", slog.Any("error", err))
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.VillaID) == "" {
		respond.Error(w, http.StatusBadRequest, "villaId is required")
		return
	}
	if len(req.Notes) > maxNotesLen {
		respond.Error(w, http.StatusBadRequest, "notes are too long")
		return
	}

	now := h.now()
	checkIn, checkOut, err := validation.ParseStay(req.CheckIn, req.CheckOut, now.UTC())
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	villa, err := h.villaStorage.GetVilla(ctx, req.VillaID)
	if err != nil {
		h.villaError(w, r, err)
		return
	}

	if err := validation.ValidateGuests(req.Guests, villa.MaxGuests); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	nights := models.NightsBetween(checkIn, checkOut)
	booking := &models.Booking{
		ID:         uuid.New().String(),
		UserID:     userID,
		VillaID:    villa.ID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     req.Guests,
		TotalPrice: int64(nights) * villa.PricePerNight,
		Status:     api.BookingStatusConfirmed,
		Notes:      strings.TrimSpace(req.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.bookingStorage.CreateBooking(ctx, booking); err != nil {
		if errors.Is(err, storage.ErrBookingConflict) {
			h.logger.InfoContext(ctx, "booking conflict",
				slog.String("villa_id", villa.ID),
				slog.String("check_in", req.CheckIn),
				slog.String("check_out", req.CheckOut))
			respond.Error(w, http.StatusConflict, "Villa is not available for the selected dates")
			return
		}
		h.villaError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "booking created",
		slog.String("booking_id", booking.ID),
		slog.String("user_id", userID),
		slog.Int("nights", nights))

	respond.JSON(w, http.StatusCreated, "Booking confirmed", booking.ToAPI())
}

// Cancel обрабатывает POST /api/bookings/{id}/cancel.
// Чужие брони отменяет только администратор.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := middleware.UserIDFromContext(ctx)

	booking, err := h.bookingStorage.GetBooking(ctx, r.PathValue("id"))
	if err != nil {
		h.bookingError(w, r, err)
		return
	}

	if booking.UserID != userID && middleware.RoleFromContext(ctx) != models.RoleAdmin {
		respond.Error(w, http.StatusNotFound, "Booking not found")
		return
	}

	if booking.Status == api.BookingStatusCancelled {
		respond.Error(w, http.StatusConflict, "Booking is already cancelled")
		return
	}

	now := h.now()
	if err := h.bookingStorage.CancelBooking(ctx, booking.ID, now); err != nil {
		h.bookingError(w, r, err)
		return
	}

	booking.Status = api.BookingStatusCancelled
	booking.UpdatedAt = now

	h.logger.InfoContext(ctx, "booking cancelled",
		slog.String("booking_id", booking.ID),
		slog.String("user_id", userID))

	respond.JSON(w, http.StatusOK, "Booking cancelled", booking.ToAPI())
}

func (h *BookingHandler) villaError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, storage.ErrVillaNotFound) {
		respond.Error(w, http.StatusNotFound, "Villa not found")
		return
	}
	h.logger.ErrorContext(r.Context(), "booking storage error", slog.Any("error", err))
	respond.Error(w, http.StatusInternalServerError, "Internal server error")
}

func (h *BookingHandler) bookingError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, storage.ErrBookingNotFound) {
		respond.Error(w, http.StatusNotFound, "Booking not found")
		return
	}
	h.logger.ErrorContext(r.Context(), "booking storage error", slog.Any("error", err))
	respond.Error(w, http.StatusInternalServerError, "Internal server error")
}
