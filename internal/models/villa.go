package models

import (
	"time"

	"github.com/iudanet/villabook/pkg/api"
)

// Villa представляет виллу, доступную для бронирования
type Villa struct {
	CreatedAt     time.Time
	ID            string
	Name          string
	Location      string
	Description   string
	PricePerNight int64 // в минимальных единицах валюты
	MaxGuests     int
	Bedrooms      int
}

// ToAPI returns the wire representation of the villa.
func (v *Villa) ToAPI() api.Villa {
	return api.Villa{
		ID:            v.ID,
		Name:          v.Name,
		Location:      v.Location,
		Description:   v.Description,
		PricePerNight: v.PricePerNight,
		MaxGuests:     v.MaxGuests,
		Bedrooms:      v.Bedrooms,
	}
}

// VillaFilter ограничивает выборку вилл
type VillaFilter struct {
	Location  string // подстрока, без учета регистра
	MinGuests int
}

// Booking представляет бронирование виллы
type Booking struct {
	CheckIn    time.Time
	CheckOut   time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ID         string
	UserID     string
	VillaID    string
	Status     string
	Notes      string
	Guests     int
	TotalPrice int64
}

// Nights returns the number of nights between check-in and check-out.
func (b *Booking) Nights() int {
	return NightsBetween(b.CheckIn, b.CheckOut)
}

// NightsBetween counts whole nights in [checkIn, checkOut).
func NightsBetween(checkIn, checkOut time.Time) int {
	return int(checkOut.Sub(checkIn).Hours() / 24)
}

// Overlaps reports whether the booking intersects [checkIn, checkOut).
// Check-out day of one stay may equal check-in day of the next.
func (b *Booking) Overlaps(checkIn, checkOut time.Time) bool {
	return b.CheckIn.Before(checkOut) && checkIn.Before(b.CheckOut)
}

// ToAPI returns the wire representation of the booking.
func (b *Booking) ToAPI() api.Booking {
	return api.Booking{
		ID:         b.ID,
		VillaID:    b.VillaID,
		UserID:     b.UserID,
		CheckIn:    b.CheckIn.Format(api.DateLayout),
		CheckOut:   b.CheckOut.Format(api.DateLayout),
		Status:     b.Status,
		Notes:      b.Notes,
		Guests:     b.Guests,
		TotalPrice: b.TotalPrice,
		CreatedAt:  b.CreatedAt,
	}
}
