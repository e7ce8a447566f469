// Package jwt issues and validates HS256 access tokens.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer записывается в claim iss и проверяется при валидации
const Issuer = "villabook"

var (
	// ErrTokenExpired access token просрочен; клиент должен обновить его
	ErrTokenExpired = errors.New("token expired")
	// ErrInvalidToken подпись, формат или claims неверны
	ErrInvalidToken = errors.New("invalid token")
)

// Claims represents JWT claims of an access token. Subject holds the user ID.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the subject of the token.
func (c *Claims) UserID() string {
	return c.Subject
}

// Service provides JWT token generation and validation
type Service struct {
	now       func() time.Time
	secret    []byte
	accessTTL time.Duration
}

// NewService creates a new JWT service
// secret should be a cryptographically secure random string
func NewService(secret string, accessTTL time.Duration) *Service {
	return &Service{
		secret:    []byte(secret),
		accessTTL: accessTTL,
		now:       time.Now,
	}
}

// AccessTTL returns the lifetime of issued access tokens.
func (s *Service) AccessTTL() time.Duration {
	return s.accessTTL
}

// GenerateAccessToken создает новый JWT access token.
// Возвращает токен и время жизни в секундах.
func (s *Service) GenerateAccessToken(userID, role string) (string, int64, error) {
	now := s.now()

	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, int64(s.accessTTL.Seconds()), nil
}

// ValidateAccessToken валидирует и парсит JWT access token
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
