package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this email already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrTokenNotFound indicates that refresh token was not found
	ErrTokenNotFound = errors.New("refresh token not found")

	// ErrVillaNotFound indicates that villa was not found
	ErrVillaNotFound = errors.New("villa not found")

	// ErrBookingNotFound indicates that booking was not found
	ErrBookingNotFound = errors.New("booking not found")

	// ErrBookingConflict indicates that the dates overlap a confirmed booking
	ErrBookingConflict = errors.New("villa is already booked for these dates")
)
