package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/villabook/internal/server/jwt"
	"github.com/iudanet/villabook/internal/server/respond"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	roleKey   contextKey = "role"
)

// TokenValidator validates access tokens. *jwt.Service implements it.
type TokenValidator interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// WithUser кладет пользователя в контекст запроса
func WithUser(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}

// UserIDFromContext returns the authenticated user ID.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// RoleFromContext returns the role claim of the authenticated user.
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(roleKey).(string)
	return role
}

// AuthMiddleware создает middleware для проверки JWT токена.
// На любую проблему с токеном отвечает 401: клиент по нему запускает обновление.
func AuthMiddleware(logger *slog.Logger, validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// Извлекаем токен из заголовка Authorization
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.DebugContext(ctx, "missing Authorization header")
				respond.Error(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			// Ожидаем формат: "Bearer <token>"
			scheme, token, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				logger.WarnContext(ctx, "invalid Authorization header format")
				respond.Error(w, http.StatusUnauthorized, "Invalid authorization header")
				return
			}

			claims, err := validator.ValidateAccessToken(strings.TrimSpace(token))
			if errors.Is(err, jwt.ErrTokenExpired) {
				logger.DebugContext(ctx, "access token expired")
				respond.Error(w, http.StatusUnauthorized, "Token expired")
				return
			}
			if err != nil {
				logger.WarnContext(ctx, "invalid access token", slog.Any("error", err))
				respond.Error(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			logger.DebugContext(ctx, "user authenticated", slog.String("user_id", claims.UserID()))

			next.ServeHTTP(w, r.WithContext(WithUser(ctx, claims.UserID(), claims.Role)))
		})
	}
}
