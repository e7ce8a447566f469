package api

import (
	"context"
	"fmt"

	"github.com/iudanet/villabook/pkg/api"
)

// Эндпоинты входа не проходят через обновление токена: 401 здесь
// означает неверные учетные данные.
var noRefresh = &RequestConfig{SkipAuthRefresh: true}

// Register регистрирует нового пользователя
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error) {
	env, err := Post[api.AuthResponse](ctx, c, "/auth/register", req, noRefresh)
	if err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	auth, err := dataOf("POST /auth/register", env)
	if err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &auth, nil
}

// Login выполняет аутентификацию пользователя
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error) {
	env, err := Post[api.AuthResponse](ctx, c, "/auth/login", req, noRefresh)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	auth, err := dataOf("POST /auth/login", env)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &auth, nil
}

// Logout revokes the refresh tokens of the current user on the server.
func (c *Client) Logout(ctx context.Context) error {
	if _, err := Post[struct{}](ctx, c, "/auth/logout", nil, noRefresh); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}
