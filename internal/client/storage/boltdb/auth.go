package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/villabook/internal/client/storage"
	"github.com/iudanet/villabook/pkg/api"
)

var (
	keyAccessToken  = []byte("accessToken")
	keyRefreshToken = []byte("refreshToken")
	keyUser         = []byte("user")
)

// SaveCredentials stores the credential pair and user in a single transaction
func (s *Storage) SaveCredentials(ctx context.Context, creds *storage.Credentials) error {
	if creds == nil {
		return fmt.Errorf("credentials are nil")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketAuth)
		if bucket == nil {
			return fmt.Errorf("auth bucket not found")
		}

		if err := bucket.Put(keyAccessToken, []byte(creds.AccessToken)); err != nil {
			return fmt.Errorf("failed to save access token: %w", err)
		}
		if err := bucket.Put(keyRefreshToken, []byte(creds.RefreshToken)); err != nil {
			return fmt.Errorf("failed to save refresh token: %w", err)
		}

		// Без профиля удаляем прежний, чтобы он не остался рядом с новой парой
		if creds.User == nil {
			if err := bucket.Delete(keyUser); err != nil {
				return fmt.Errorf("failed to delete user: %w", err)
			}
			return nil
		}
		data, err := json.Marshal(creds.User)
		if err != nil {
			return fmt.Errorf("failed to marshal user: %w", err)
		}
		if err := bucket.Put(keyUser, data); err != nil {
			return fmt.Errorf("failed to save user: %w", err)
		}

		return nil
	})
}

// GetCredentials retrieves stored credentials
func (s *Storage) GetCredentials(ctx context.Context) (*storage.Credentials, error) {
	var creds *storage.Credentials

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketAuth)
		if bucket == nil {
			return fmt.Errorf("auth bucket not found")
		}

		access := bucket.Get(keyAccessToken)
		refresh := bucket.Get(keyRefreshToken)
		if len(access) == 0 && len(refresh) == 0 {
			return storage.ErrAuthNotFound
		}

		// bbolt отдает слайсы, валидные только внутри транзакции: копируем через string()
		creds = &storage.Credentials{
			AccessToken:  string(access),
			RefreshToken: string(refresh),
		}

		if data := bucket.Get(keyUser); data != nil {
			var user api.User
			if err := json.Unmarshal(data, &user); err != nil {
				return fmt.Errorf("failed to unmarshal user: %w", err)
			}
			creds.User = &user
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return creds, nil
}

// DeleteCredentials removes stored credentials (logout)
func (s *Storage) DeleteCredentials(ctx context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketAuth)
		if bucket == nil {
			return fmt.Errorf("auth bucket not found")
		}

		for _, key := range [][]byte{keyAccessToken, keyRefreshToken, keyUser} {
			if err := bucket.Delete(key); err != nil {
				return fmt.Errorf("failed to delete %s: %w", key, err)
			}
		}

		return nil
	})
}
