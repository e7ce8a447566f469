package auth

import (
	"context"

	pkgapi "github.com/iudanet/villabook/pkg/api"
)

//go:generate moq -out service_mock.go . Service

// Service defines the authentication flows of the client.
// It owns the persisted session and keeps the API client's held token in sync with it.
type Service interface {
	// Register создает аккаунт и сразу открывает сессию
	Register(ctx context.Context, name, email, password string) (*pkgapi.User, error)

	// Login выполняет аутентификацию и сохраняет токены
	Login(ctx context.Context, email, password string) (*pkgapi.User, error)

	// Logout уведомляет сервер (best effort) и всегда удаляет локальную сессию
	Logout(ctx context.Context) error

	// Restore загружает сохраненную сессию при старте и передает токен клиенту.
	// Отсутствие сессии не является ошибкой.
	Restore(ctx context.Context) (*Status, error)

	// Status returns the persisted session state without touching the network.
	Status(ctx context.Context) (*Status, error)
}

// APIClient is the subset of the HTTP client used by the auth flows.
type APIClient interface {
	Register(ctx context.Context, req pkgapi.RegisterRequest) (*pkgapi.AuthResponse, error)
	Login(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.AuthResponse, error)
	Logout(ctx context.Context) error
	SetAuthToken(token string)
	ClearAuthToken()
}

// Status describes the local session.
type Status struct {
	User          *pkgapi.User
	Authenticated bool
}
