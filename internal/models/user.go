package models

import (
	"time"

	"github.com/iudanet/villabook/pkg/api"
)

// Роли пользователей
const (
	RoleGuest = "guest"
	RoleAdmin = "admin"
)

// User представляет пользователя в системе
type User struct {
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	ID           string     `json:"id"`            // UUID пользователя
	Name         string     `json:"name"`          // отображаемое имя
	Email        string     `json:"email"`         // уникальный email (lowercase)
	Phone        string     `json:"phone"`         // телефон, опционально
	PasswordHash string     `json:"password_hash"` // bcrypt хеш пароля
	Role         string     `json:"role"`
}

// ToAPI returns the public representation of the user.
func (u *User) ToAPI() *api.User {
	return &api.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken представляет refresh token пользователя.
// В хранилище лежит только SHA256 хеш токена.
type RefreshToken struct {
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	TokenHash string    `json:"token_hash"`
	UserID    string    `json:"user_id"`
}

// Expired reports whether the token is past its expiry at the given moment.
func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
