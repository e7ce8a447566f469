// Package storage declares the persistence contracts of the API server.
// Implementations live in subpackages (sqlite).
package storage

import (
	"context"
	"time"

	"github.com/iudanet/villabook/internal/models"
)

// UserStorage хранит аккаунты. Email хранится в нормализованном виде.
type UserStorage interface {
	// CreateUser fails with ErrUserAlreadyExists on a taken email.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	// UpdateUser перезаписывает только name, phone и updated_at
	UpdateUser(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, userID string, lastLogin time.Time) error
}

// TokenStorage хранит refresh tokens по SHA-256 хешу, сырое значение в базу не попадает.
// Lookups and deletes of a missing hash return ErrTokenNotFound; the Get*
// methods of UserStorage return ErrUserNotFound likewise.
type TokenStorage interface {
	SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, tokenHash string) error
	// DeleteUserTokens завершает все сессии пользователя (logout)
	DeleteUserTokens(ctx context.Context, userID string) (int, error)
	// DeleteExpiredTokens is run by the janitor; returns the number of removed rows.
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int, error)
}
