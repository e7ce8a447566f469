package storage

import (
	"context"

	"github.com/iudanet/villabook/pkg/api"
)

// CredentialStore defines interface for persisting the client's credential pair.
// Implementations must write a credential pair atomically: readers never observe
// a new access token together with a stale refresh token.
type CredentialStore interface {
	// GetCredentials retrieves the stored credential pair.
	// Returns ErrAuthNotFound if nothing is stored.
	GetCredentials(ctx context.Context) (*Credentials, error)

	// SaveCredentials replaces the stored credential pair and user profile.
	SaveCredentials(ctx context.Context, creds *Credentials) error

	// DeleteCredentials removes all credential keys. Deleting missing
	// credentials is not an error.
	DeleteCredentials(ctx context.Context) error
}

// PreferenceStore хранит пользовательские настройки клиента (например, locale)
type PreferenceStore interface {
	// GetPreference returns ErrPreferenceNotFound if key is not set
	GetPreference(ctx context.Context, key string) (string, error)
	SetPreference(ctx context.Context, key, value string) error
}

// Credentials represents the persisted session of the client.
// Stored under the keys accessToken, refreshToken and user.
type Credentials struct {
	User         *api.User `json:"user,omitempty"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
}
