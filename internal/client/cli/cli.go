// Package cli implements the villabook command-line client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/iudanet/villabook/internal/client/api"
	"github.com/iudanet/villabook/internal/client/auth"
	"github.com/iudanet/villabook/internal/client/events"
	"github.com/iudanet/villabook/internal/client/iocli"
	"github.com/iudanet/villabook/internal/client/locale"
	"github.com/iudanet/villabook/internal/client/storage"
)

// PasswordEnv переменная окружения с паролем для неинтерактивного входа
const PasswordEnv = "VILLABOOK_PASSWORD"

var errNotAuthenticated = errors.New("not authenticated. Please run 'villabook login' first")

// Cli содержит зависимости команд
type Cli struct {
	io          iocli.IO
	apiClient   *api.Client
	authService auth.Service
	prefs       storage.PreferenceStore
	resolver    *locale.Resolver
	logger      *slog.Logger
	lang        string
}

// New creates the command runner. lang is the already resolved locale.
func New(
	io iocli.IO,
	apiClient *api.Client,
	authService auth.Service,
	prefs storage.PreferenceStore,
	resolver *locale.Resolver,
	logger *slog.Logger,
	lang string,
) *Cli {
	return &Cli{
		io:          io,
		apiClient:   apiClient,
		authService: authService,
		prefs:       prefs,
		resolver:    resolver,
		logger:      logger,
		lang:        lang,
	}
}

// Locale returns the active UI locale.
func (c *Cli) Locale() string {
	return c.lang
}

// Navigate показывает точку входа вместо браузерного редиректа
func (c *Cli) Navigate(path string) {
	c.io.Println()
	c.io.Printf("Login page: %s\n", path)
	c.io.Println("Run 'villabook login' to sign in again.")
}

// onAuthFailure вызывается шиной событий при невосстановимой ошибке авторизации
func (c *Cli) onAuthFailure(ev events.Event) {
	c.logger.Debug("auth failure event", slog.String("reason", ev.Reason))
	c.io.Println()
	c.io.Println("⚠️  Your session has expired and local credentials were removed.")
}

// requireSession проверяет наличие сохраненной сессии
func (c *Cli) requireSession(ctx context.Context) error {
	st, err := c.authService.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to check authentication: %w", err)
	}
	if !st.Authenticated {
		return errNotAuthenticated
	}
	return nil
}

// PasswordSource описывает источники пароля
type PasswordSource struct {
	FromFile string
}

// readPassword получает пароль с приоритетом:
// 1. Переменная окружения VILLABOOK_PASSWORD
// 2. Файл из --password-file
// 3. Интерактивный ввод
func (c *Cli) readPassword(src PasswordSource, prompt string) (string, error) {
	if envPassword := os.Getenv(PasswordEnv); envPassword != "" {
		return envPassword, nil
	}

	if src.FromFile != "" {
		content, err := os.ReadFile(src.FromFile)
		if err != nil {
			return "", fmt.Errorf("failed to read password file: %w", err)
		}
		// Убираем trailing newline/whitespace
		password := strings.TrimSpace(string(content))
		if password == "" {
			return "", fmt.Errorf("password file is empty")
		}
		return password, nil
	}

	password, err := c.io.ReadPassword(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	return password, nil
}

// promptIfEmpty запрашивает значение, если оно не передано флагом
func (c *Cli) promptIfEmpty(value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	v, err := c.io.ReadInput(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return v, nil
}

// formatPrice печатает сумму в минимальных единицах как 123.45
func formatPrice(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

// describeError делает ошибки API понятными в терминале
func describeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, api.ErrAuthRefresh):
		return fmt.Errorf("session expired: %w", err)
	case errors.Is(err, api.ErrTimeout):
		return fmt.Errorf("server did not respond in time: %w", err)
	case errors.Is(err, api.ErrNetwork):
		return fmt.Errorf("cannot reach server: %w", err)
	default:
		return err
	}
}

func passwordFromEnv() bool {
	return os.Getenv(PasswordEnv) != ""
}
