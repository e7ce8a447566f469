package storage

import (
	"context"
	"time"

	"github.com/iudanet/villabook/internal/models"
)

// BookingStorage defines interface for booking persistence
type BookingStorage interface {
	// CreateBooking inserts a confirmed booking.
	// Returns ErrBookingConflict if the villa has a confirmed booking
	// overlapping [CheckIn, CheckOut), ErrVillaNotFound if villa is missing.
	CreateBooking(ctx context.Context, booking *models.Booking) error

	// ListUserBookings returns user's bookings, newest check-in first
	ListUserBookings(ctx context.Context, userID string) ([]*models.Booking, error)

	// GetBooking retrieves booking by ID
	// Returns ErrBookingNotFound if booking doesn't exist
	GetBooking(ctx context.Context, id string) (*models.Booking, error)

	// CancelBooking sets status to cancelled
	// Returns ErrBookingNotFound if booking doesn't exist
	CancelBooking(ctx context.Context, id string, updatedAt time.Time) error
}
