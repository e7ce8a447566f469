package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/villabook/internal/client/storage"
	"github.com/iudanet/villabook/internal/validation"
	pkgapi "github.com/iudanet/villabook/pkg/api"
)

// AuthService implements Service on top of the API client and credential storage.
type AuthService struct {
	client APIClient
	store  storage.CredentialStore
	logger *slog.Logger
}

var _ Service = (*AuthService)(nil)

// NewService создает новый сервис авторизации
func NewService(client APIClient, store storage.CredentialStore, logger *slog.Logger) *AuthService {
	return &AuthService{
		client: client,
		store:  store,
		logger: logger.With(slog.String("component", "auth")),
	}
}

// Register регистрирует нового пользователя
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*pkgapi.User, error) {
	email = validation.NormalizeEmail(email)

	// Валидация входных данных
	if err := validation.ValidateName(name); err != nil {
		return nil, fmt.Errorf("invalid name: %w", err)
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	resp, err := s.client.Register(ctx, pkgapi.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	if err := s.open(ctx, resp); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "registered", slog.String("email", email))
	return resp.User, nil
}

// Login выполняет аутентификацию пользователя
func (s *AuthService) Login(ctx context.Context, email, password string) (*pkgapi.User, error) {
	email = validation.NormalizeEmail(email)

	if err := validation.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}
	if password == "" {
		return nil, fmt.Errorf("invalid password: password cannot be empty")
	}

	resp, err := s.client.Login(ctx, pkgapi.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	if err := s.open(ctx, resp); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "logged in", slog.String("email", email))
	return resp.User, nil
}

// open сохраняет пару токенов и передает access token клиенту
func (s *AuthService) open(ctx context.Context, resp *pkgapi.AuthResponse) error {
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		return fmt.Errorf("server response does not contain tokens")
	}

	err := s.store.SaveCredentials(ctx, &storage.Credentials{
		User:         resp.User,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	})
	if err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	s.client.SetAuthToken(resp.AccessToken)
	return nil
}

// Logout выполняет выход из системы
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.client.Logout(ctx); err != nil {
		// Сервер недоступен или сессия уже истекла: локальные данные удаляем все равно
		s.logger.WarnContext(ctx, "server logout failed", slog.Any("error", err))
	}

	s.client.ClearAuthToken()

	if err := s.store.DeleteCredentials(ctx); err != nil {
		return fmt.Errorf("failed to delete credentials: %w", err)
	}
	return nil
}

// Restore загружает сохраненную сессию
func (s *AuthService) Restore(ctx context.Context) (*Status, error) {
	st, creds, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if st.Authenticated {
		s.client.SetAuthToken(creds.AccessToken)
	}
	return st, nil
}

// Status returns the persisted session state.
func (s *AuthService) Status(ctx context.Context) (*Status, error) {
	st, _, err := s.load(ctx)
	return st, err
}

func (s *AuthService) load(ctx context.Context) (*Status, *storage.Credentials, error) {
	creds, err := s.store.GetCredentials(ctx)
	if errors.Is(err, storage.ErrAuthNotFound) {
		return &Status{}, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	return &Status{Authenticated: true, User: creds.User}, creds, nil
}
