// Package crypto содержит хеширование паролей и генерацию токенов.
package crypto

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch возвращается, если пароль не совпадает с хешем
var ErrPasswordMismatch = errors.New("password does not match")

// HashPassword хеширует пароль через bcrypt
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}

// CheckPassword сравнивает пароль с bcrypt-хешем
func CheckPassword(hash, password string) error {
	if hash == "" {
		return fmt.Errorf("password hash cannot be empty")
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	if err != nil {
		return fmt.Errorf("failed to compare password: %w", err)
	}

	return nil
}
