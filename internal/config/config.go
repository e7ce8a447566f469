// Package config loads client and server settings from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// MinJWTSecretLen минимальная длина секрета подписи HS256
const MinJWTSecretLen = 32

// Client holds the settings of the villabook CLI.
type Client struct {
	// Base URL of the API including the /api prefix.
	ServerURL string `env:"VILLABOOK_SERVER_URL" envDefault:"http://localhost:8080/api"`
	// Path to the bbolt file with credentials and preferences.
	// Defaults to ~/.villabook/client.db.
	DBPath string `env:"VILLABOOK_DB"`
	// Explicitly preferred UI locale.
	Lang string `env:"VILLABOOK_LANG"`
	// System locale, lowest priority locale source.
	SystemLang string `env:"LANG"`
	// Environment: production переключает логи CLI в JSON
	Environment    string        `env:"ENVIRONMENT" envDefault:"development"`
	RequestTimeout time.Duration `env:"VILLABOOK_REQUEST_TIMEOUT" envDefault:"30s"`
}

// Server holds the settings of the API server.
type Server struct {
	ListenAddr  string `env:"VILLABOOK_LISTEN_ADDR" envDefault:":8080"`
	DBPath      string `env:"VILLABOOK_SERVER_DB" envDefault:"villabook.db"`
	JWTSecret   string `env:"VILLABOOK_JWT_SECRET"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	// Version reported by /api/health
	Version              string        `env:"VILLABOOK_VERSION" envDefault:"dev"`
	AccessTTL            time.Duration `env:"VILLABOOK_ACCESS_TTL" envDefault:"15m"`
	RefreshTTL           time.Duration `env:"VILLABOOK_REFRESH_TTL" envDefault:"720h"`
	TokenCleanupInterval time.Duration `env:"VILLABOOK_TOKEN_CLEANUP_INTERVAL" envDefault:"1h"`
	// Requests per minute per IP on /api/auth/*
	AuthRateLimit int `env:"VILLABOOK_AUTH_RATE_LIMIT" envDefault:"10"`
	// Доверять X-Forwarded-For (сервер за reverse proxy)
	TrustProxy bool `env:"VILLABOOK_TRUST_PROXY" envDefault:"false"`
}

// LoadClient reads client configuration from environment variables.
// It first attempts to load a .env file if present.
func LoadClient() (*Client, error) {
	_ = godotenv.Load()

	cfg := &Client{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.DBPath == "" {
		path, err := defaultClientDBPath()
		if err != nil {
			return nil, err
		}
		cfg.DBPath = path
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate проверяет значения; вызывается повторно после применения флагов CLI
func (c *Client) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("VILLABOOK_SERVER_URL is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("VILLABOOK_SERVER_URL must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("VILLABOOK_SERVER_URL must include a host")
	}

	if c.DBPath == "" {
		return fmt.Errorf("VILLABOOK_DB must not be empty")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("VILLABOOK_REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}

	return nil
}

func defaultClientDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".villabook", "client.db"), nil
}

// LoadServer reads server configuration from environment variables.
func LoadServer() (*Server, error) {
	_ = godotenv.Load()

	cfg := &Server{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Server) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("VILLABOOK_JWT_SECRET is required")
	}
	if len(c.JWTSecret) < MinJWTSecretLen {
		return fmt.Errorf("VILLABOOK_JWT_SECRET must be at least %d bytes", MinJWTSecretLen)
	}

	if c.ListenAddr == "" {
		return fmt.Errorf("VILLABOOK_LISTEN_ADDR must not be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("VILLABOOK_SERVER_DB must not be empty")
	}

	if c.AccessTTL <= 0 {
		return fmt.Errorf("VILLABOOK_ACCESS_TTL must be positive")
	}
	if c.RefreshTTL <= c.AccessTTL {
		return fmt.Errorf("VILLABOOK_REFRESH_TTL must be longer than VILLABOOK_ACCESS_TTL")
	}
	if c.TokenCleanupInterval <= 0 {
		return fmt.Errorf("VILLABOOK_TOKEN_CLEANUP_INTERVAL must be positive")
	}
	if c.AuthRateLimit <= 0 {
		return fmt.Errorf("VILLABOOK_AUTH_RATE_LIMIT must be positive")
	}

	return nil
}
