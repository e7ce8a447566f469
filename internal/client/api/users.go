package api

import (
	"context"
	"fmt"

	"github.com/iudanet/villabook/pkg/api"
)

// Me returns the profile of the authenticated user.
func (c *Client) Me(ctx context.Context) (*api.User, error) {
	env, err := Get[api.User](ctx, c, "/users/me", nil)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	user, err := dataOf("GET /users/me", env)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &user, nil
}

// UpdateProfile изменяет имя и телефон текущего пользователя
func (c *Client) UpdateProfile(ctx context.Context, req api.UpdateProfileRequest) (*api.User, error) {
	env, err := Patch[api.User](ctx, c, "/users/me", req, nil)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	user, err := dataOf("PATCH /users/me", env)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &user, nil
}
