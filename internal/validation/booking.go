package validation

import (
	"fmt"
	"time"
)

// DateLayout формат дат заезда/выезда
const DateLayout = "2006-01-02"

// MaxStayNights ограничивает длину одного бронирования
const MaxStayNights = 90

// ParseStay разбирает даты заезда и выезда и проверяет диапазон.
// today - текущая дата; заезд в прошлом не допускается.
func ParseStay(checkIn, checkOut string, today time.Time) (time.Time, time.Time, error) {
	in, err := time.Parse(DateLayout, checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("check-in date must be in YYYY-MM-DD format")
	}

	out, err := time.Parse(DateLayout, checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("check-out date must be in YYYY-MM-DD format")
	}

	if !out.After(in) {
		return time.Time{}, time.Time{}, fmt.Errorf("check-out date must be after check-in date")
	}

	y, m, d := today.Date()
	if in.Before(time.Date(y, m, d, 0, 0, 0, 0, time.UTC)) {
		return time.Time{}, time.Time{}, fmt.Errorf("check-in date cannot be in the past")
	}

	if out.Sub(in) > MaxStayNights*24*time.Hour {
		return time.Time{}, time.Time{}, fmt.Errorf("stay must not exceed %d nights", MaxStayNights)
	}

	return in, out, nil
}

// ValidateGuests проверяет количество гостей относительно вместимости виллы
func ValidateGuests(guests, maxGuests int) error {
	if guests < 1 {
		return fmt.Errorf("at least one guest is required")
	}

	if maxGuests > 0 && guests > maxGuests {
		return fmt.Errorf("villa accommodates at most %d guests", maxGuests)
	}

	return nil
}
