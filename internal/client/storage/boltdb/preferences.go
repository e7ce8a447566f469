package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/villabook/internal/client/storage"
)

// SetPreference saves a client preference value
func (s *Storage) SetPreference(ctx context.Context, key, value string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketPreferences)
		if bucket == nil {
			return fmt.Errorf("preferences bucket not found")
		}

		if err := bucket.Put([]byte(key), []byte(value)); err != nil {
			return fmt.Errorf("failed to save preference %q: %w", key, err)
		}

		return nil
	})
}

// GetPreference retrieves a client preference value
func (s *Storage) GetPreference(ctx context.Context, key string) (string, error) {
	var value string

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketPreferences)
		if bucket == nil {
			return fmt.Errorf("preferences bucket not found")
		}

		data := bucket.Get([]byte(key))
		if data == nil {
			return storage.ErrPreferenceNotFound
		}
		value = string(data)
		return nil
	})
	if err != nil {
		return "", err
	}

	return value, nil
}
