package api

import "time"

// DateLayout формат дат заезда/выезда в API
const DateLayout = "2006-01-02"

// Статусы бронирования
const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Villa describes a bookable property. Prices are in minor currency units.
type Villa struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Location      string `json:"location"`
	Description   string `json:"description,omitempty"`
	PricePerNight int64  `json:"pricePerNight"`
	MaxGuests     int    `json:"maxGuests"`
	Bedrooms      int    `json:"bedrooms"`
}

// Booking is a reservation of a villa for a date range.
type Booking struct {
	CreatedAt  time.Time `json:"createdAt"`
	ID         string    `json:"id"`
	VillaID    string    `json:"villaId"`
	UserID     string    `json:"userId"`
	CheckIn    string    `json:"checkIn"`  // YYYY-MM-DD
	CheckOut   string    `json:"checkOut"` // YYYY-MM-DD
	Status     string    `json:"status"`
	Notes      string    `json:"notes,omitempty"`
	Guests     int       `json:"guests"`
	TotalPrice int64     `json:"totalPrice"`
}

// CreateBookingRequest представляет запрос на бронирование
type CreateBookingRequest struct {
	VillaID  string `json:"villaId"`
	CheckIn  string `json:"checkIn"`
	CheckOut string `json:"checkOut"`
	Notes    string `json:"notes,omitempty"`
	Guests   int    `json:"guests"`
}
