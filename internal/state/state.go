// Package state persists the small, independently keyed records the
// switcher keeps between runs: the latest backup, the backup history, the
// active bar pointer, the auto-backup flag and stored OAuth tokens.
//
// Values are stored as JSON. Three backends are provided: [MemoryStore] for
// tests, [FileStore] (one file per key) for the CLI, and [RedisStore] for
// sharing state between machines.
package state

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// Well-known record keys.
const (
	KeyLocalBackup        = "localBackup"
	KeyLocalBackupHistory = "localBackupHistory"
	KeyActiveBar          = "activeBar"
	KeyDriveAutoBackup    = "driveAutoBackup"
	KeyGoogleAuth         = "googleAuth"
)

// ErrInvalidKey is returned for keys that cannot be stored.
var ErrInvalidKey = errors.New("invalid state key")

// Store is a keyed JSON record store.
type Store interface {
	// Get decodes the record at key into v. The bool is false when the key
	// is absent, in which case v is untouched.
	Get(ctx context.Context, key string, v any) (bool, error)
	// Set replaces the record at key.
	Set(ctx context.Context, key string, v any) error
	// SetMany replaces several records in one call.
	SetMany(ctx context.Context, values map[string]any) error
	// Delete removes the record at key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// GetBool reads a boolean flag, treating an absent key as false.
func GetBool(ctx context.Context, s Store, key string) (bool, error) {
	var v bool
	if _, err := s.Get(ctx, key, &v); err != nil {
		return false, err
	}
	return v, nil
}

func encode(key string, v any) ([]byte, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrapf(err, "encoding %s", key)
	}
	return data, nil
}

func decode(key string, data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "decoding %s", key)
	}
	return nil
}

func validKey(key string) error {
	if key == "" {
		return errors.Wrap(ErrInvalidKey, "empty key")
	}
	for _, r := range key {
		ok := r == '-' || r == '_' || r == '.' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !ok {
			return errors.Wrapf(ErrInvalidKey, "%q", key)
		}
	}
	if key == "." || key == ".." {
		return errors.Wrapf(ErrInvalidKey, "%q", key)
	}
	return nil
}
