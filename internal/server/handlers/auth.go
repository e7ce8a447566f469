package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/villabook/internal/crypto"
	"github.com/iudanet/villabook/internal/models"
	"github.com/iudanet/villabook/internal/server/middleware"
	"github.com/iudanet/villabook/internal/server/respond"
	"github.com/iudanet/villabook/internal/server/storage"
	"github.com/iudanet/villabook/internal/validation"
	"github.com/iudanet/villabook/pkg/api"
)

// TokenIssuer выпускает access token. *jwt.Service implements it.
type TokenIssuer interface {
	GenerateAccessToken(userID, role string) (string, int64, error)
}

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	logger       *slog.Logger
	userStorage  storage.UserStorage
	tokenStorage storage.TokenStorage
	issuer       TokenIssuer
	now          func() time.Time
	refreshTTL   time.Duration
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(
	logger *slog.Logger,
	userStorage storage.UserStorage,
	tokenStorage storage.TokenStorage,
	issuer TokenIssuer,
	refreshTTL time.Duration,
) *AuthHandler {
	return &AuthHandler{
		logger:       logger,
		userStorage:  userStorage,
		tokenStorage: tokenStorage,
		issuer:       issuer,
		refreshTTL:   refreshTTL,
		now:          time.Now,
	}
}

// Register обрабатывает POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode register request", slog.Any("error", err))
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	email := validation.NormalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)

	for _, err := range []error{
		validation.ValidateName(name),
		validation.ValidateEmail(email),
		validation.ValidatePassword(req.Password),
	} {
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		respond.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleGuest,
		CreatedAt:    h.now(),
	}

	if err := h.userStorage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			h.logger.WarnContext(ctx, "user already exists")
			respond.Error(w, http.StatusConflict, "Email is already registered")
			return
		}
		h.logger.ErrorContext(ctx, "failed to create user", slog.Any("error", err))
		respond.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	resp, err := h.issueTokens(r, user)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.logger.InfoContext(ctx, "user registered successfully", slog.String("user_id", user.ID))

	respond.JSON(w, http.StatusCreated, "User registered successfully", resp)
}

// Login обрабатывает POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request", slog.Any("error", err))
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	email := validation.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.userStorage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "login failed: user not found")
			respond.Error(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		respond.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := crypto.CheckPassword(user.PasswordHash, req.Password); err != nil {
		if !errors.Is(err, crypto.ErrPasswordMismatch) {
			h.logger.ErrorContext(ctx, "failed to check password", slog.Any("error", err))
		}
		h.logger.WarnContext(ctx, "login failed: invalid password", slog.String("user_id", user.ID))
		respond.Error(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	resp, err := h.issueTokens(r, user)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Не критичная ошибка, логируем но не прерываем
	if err := h.userStorage.UpdateLastLogin(ctx, user.ID, h.now()); err != nil {
		h.logger.WarnContext(ctx, "failed to update last login", slog.Any("error", err))
	}

	h.logger.InfoContext(ctx, "user logged in successfully", slog.String("user_id", user.ID))

	respond.JSON(w, http.StatusOK, "Login successful", resp)
}

// RefreshToken обрабатывает POST /api/auth/refresh-token.
// Refresh token одноразовый: старый удаляется, выдается новая пара.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RefreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode refresh request", slog.Any("error", err))
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.RefreshToken == "" {
		respond.Error(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	tokenHash := crypto.HashToken(req.RefreshToken)

	stored, err := h.tokenStorage.GetRefreshToken(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			h.logger.WarnContext(ctx, "refresh token not found")
			respond.Error(w, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get refresh token", slog.Any("error", err))
		respond.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Удаляем старый токен до выдачи нового. Если его уже удалил
	// параллельный запрос, этот запрос проигрывает.
	if err := h.tokenStorage.DeleteRefreshToken(ctx, tokenHash); err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			respond.Error(w, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		h.logger.ErrorContext(ctx, "failed to delete refresh token", slog.Any("error", err))
		respond.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if stored.Expired(h.now()) {
		h.logger.WarnContext(ctx, "refresh token expired", slog.String("user_id", stored.UserID))
		respond.Error(w, http.StatusUnauthorized, "Refresh token expired")
		return
	}

	user, err := h.userStorage.GetUserByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			respond.Error(w, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		respond.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	resp, err := h.issueTokens(r, user)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.logger.InfoContext(ctx, "tokens refreshed successfully", slog.String("user_id", user.ID))

	respond.JSON(w, http.StatusOK, "Token refreshed", resp)
}

// Logout обрабатывает POST /api/auth/logout.
// Удаляет все refresh tokens пользователя (выход на всех устройствах).
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	deleted, err := h.tokenStorage.DeleteUserTokens(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to delete user tokens", slog.Any("error", err))
		respond.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.logger.InfoContext(ctx, "user logged out successfully",
		slog.String("user_id", userID),
		slog.Int("tokens_deleted", deleted))

	respond.JSON[any](w, http.StatusOK, "Logged out successfully", nil)
}

// issueTokens выпускает пару access/refresh и сохраняет хеш refresh token.
// Ошибки логируются здесь.
func (h *AuthHandler) issueTokens(r *http.Request, user *models.User) (*api.AuthResponse, error) {
	ctx := r.Context()

	accessToken, expiresIn, err := h.issuer.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate access token", slog.Any("error", err))
		return nil, err
	}

	refreshToken, err := crypto.GenerateToken()
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate refresh token", slog.Any("error", err))
		return nil, err
	}

	now := h.now()
	token := &models.RefreshToken{
		TokenHash: crypto.HashToken(refreshToken),
		UserID:    user.ID,
		ExpiresAt: now.Add(h.refreshTTL),
		CreatedAt: now,
	}

	if err := h.tokenStorage.SaveRefreshToken(ctx, token); err != nil {
		h.logger.ErrorContext(ctx, "failed to save refresh token", slog.Any("error", err))
		return nil, err
	}

	return &api.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
		User:         user.ToAPI(),
	}, nil
}
