package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/iudanet/villabook/pkg/api"
)

// ListBookings returns the bookings of the authenticated user.
func (c *Client) ListBookings(ctx context.Context) ([]api.Booking, error) {
	env, err := Get[[]api.Booking](ctx, c, "/bookings", nil)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	bookings, err := dataOf("GET /bookings", env)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// CreateBooking бронирует виллу на указанные даты
func (c *Client) CreateBooking(ctx context.Context, req api.CreateBookingRequest) (*api.Booking, error) {
	env, err := Post[api.Booking](ctx, c, "/bookings", req, nil)
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	booking, err := dataOf("POST /bookings", env)
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	return &booking, nil
}

// CancelBooking отменяет бронирование
func (c *Client) CancelBooking(ctx context.Context, id string) (*api.Booking, error) {
	path := "/bookings/" + url.PathEscape(id) + "/cancel"
	env, err := Post[api.Booking](ctx, c, path, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("cancel booking %s: %w", id, err)
	}
	booking, err := dataOf("POST "+path, env)
	if err != nil {
		return nil, fmt.Errorf("cancel booking %s: %w", id, err)
	}
	return &booking, nil
}
