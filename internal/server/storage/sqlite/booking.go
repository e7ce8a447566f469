package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/villabook/internal/models"
	"github.com/iudanet/villabook/internal/server/storage"
	"github.com/iudanet/villabook/pkg/api"
)

const bookingColumns = `id, user_id, villa_id, check_in, check_out, guests, total_price, status, notes, created_at, updated_at`

// CreateBooking inserts a booking after checking the villa calendar.
// Проверка пересечения и вставка выполняются в одной транзакции.
func (s *Storage) CreateBooking(ctx context.Context, booking *models.Booking) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM villas WHERE id = ?`, booking.VillaID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrVillaNotFound
		}
		return fmt.Errorf("failed to check villa: %w", err)
	}

	// Даты в формате YYYY-MM-DD сравниваются лексикографически.
	// День выезда одной брони может совпадать с днем заезда следующей.
	var conflicts int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE villa_id = ? AND status = ? AND check_in < ? AND ? < check_out
	`,
		booking.VillaID,
		api.BookingStatusConfirmed,
		booking.CheckOut.Format(api.DateLayout),
		booking.CheckIn.Format(api.DateLayout),
	).Scan(&conflicts)
	if err != nil {
		return fmt.Errorf("failed to check availability: %w", err)
	}
	if conflicts > 0 {
		return storage.ErrBookingConflict
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		booking.ID,
		booking.UserID,
		booking.VillaID,
		booking.CheckIn.Format(api.DateLayout),
		booking.CheckOut.Format(api.DateLayout),
		booking.Guests,
		booking.TotalPrice,
		booking.Status,
		booking.Notes,
		toUnix(booking.CreatedAt),
		toUnix(booking.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking: %w", err)
	}

	return nil
}

// ListUserBookings returns user's bookings, newest check-in first
func (s *Storage) ListUserBookings(ctx context.Context, userID string) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = ? ORDER BY check_in DESC, created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	bookings := make([]*models.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return bookings, nil
}

// GetBooking retrieves booking by ID
func (s *Storage) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`

	booking, err := scanBooking(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return booking, nil
}

// CancelBooking marks booking as cancelled
func (s *Storage) CancelBooking(ctx context.Context, id string, updatedAt time.Time) error {
	query := `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, api.BookingStatusCancelled, toUnix(updatedAt), id)
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}

	return expectAffected(result, storage.ErrBookingNotFound)
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	booking := &models.Booking{}
	var (
		checkIn, checkOut    string
		createdAt, updatedAt int64
	)

	if err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.VillaID,
		&checkIn,
		&checkOut,
		&booking.Guests,
		&booking.TotalPrice,
		&booking.Status,
		&booking.Notes,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if booking.CheckIn, err = time.Parse(api.DateLayout, checkIn); err != nil {
		return nil, fmt.Errorf("invalid check_in %q: %w", checkIn, err)
	}
	if booking.CheckOut, err = time.Parse(api.DateLayout, checkOut); err != nil {
		return nil, fmt.Errorf("invalid check_out %q: %w", checkOut, err)
	}
	booking.CreatedAt = fromUnix(createdAt)
	booking.UpdatedAt = fromUnix(updatedAt)

	return booking, nil
}
