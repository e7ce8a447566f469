package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/villabook/internal/server/middleware"
	"github.com/iudanet/villabook/internal/server/respond"
	"github.com/iudanet/villabook/internal/server/storage"
	"github.com/iudanet/villabook/internal/validation"
	"github.com/iudanet/villabook/pkg/api"
)

// UserHandler обрабатывает запросы профиля
type UserHandler struct {
	logger      *slog.Logger
	userStorage storage.UserStorage
}

// NewUserHandler создает handler профиля пользователя
func NewUserHandler(logger *slog.Logger, userStorage storage.UserStorage) *UserHandler {
	return &UserHandler{
		logger:      logger,
		userStorage: userStorage,
	}
}

// Me обрабатывает GET /api/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := middleware.UserIDFromContext(ctx)

	user, err := h.userStorage.GetUserByID(ctx, userID)
	if err != nil {
		h.storageError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, "Success", user.ToAPI())
}

// UpdateMe обрабатывает PATCH /api/users/me.
// Пустые поля запроса не меняются.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := middleware.UserIDFromContext(ctx)

	var req api.UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode profile update", slog.Any("error", err))
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	phone := strings.TrimSpace(req.Phone)
	if name == "" && phone == "" {
		respond.Error(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	user, err := h.userStorage.GetUserByID(ctx, userID)
	if err != nil {
		h.storageError(w, r, err)
		return
	}

	if name != "" {
		if err := validation.ValidateName(name); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		user.Name = name
	}
	if phone != "" {
		if err := validation.ValidatePhone(phone); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		user.Phone = phone
	}

	if err := h.userStorage.UpdateUser(ctx, user); err != nil {
		h.storageError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "profile updated", slog.String("user_id", userID))

	respond.JSON(w, http.StatusOK, "Profile updated", user.ToAPI())
}

func (h *UserHandler) storageError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, storage.ErrUserNotFound) {
		// токен валиден, но пользователь удален
		respond.Error(w, http.StatusNotFound, "User not found")
		return
	}
	h.logger.ErrorContext(r.Context(), "user storage error", slog.Any("error", err))
	respond.Error(w, http.StatusInternalServerError, "Internal server error")
}
