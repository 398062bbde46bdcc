package session

import (
	"fmt"

	"github.com/99designs/keyring"
)

const (
	serviceName = "sacco-admin"
	tokenKey    = "auth-token"
)

// KeyringStore persists the bearer token in the system keyring, falling
// back to an encrypted file where no native backend is available.
type KeyringStore struct{}

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/sacco-admin/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("sacco-admin-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Load retrieves the persisted token. A missing entry is an error; New
// treats any load failure as "signed out".
func (KeyringStore) Load() (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(tokenKey)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", tokenKey, err)
	}

	return string(item.Data), nil
}

// Save stores the token in the keyring.
func (KeyringStore) Save(token string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  tokenKey,
		Data: []byte(token),
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", tokenKey, err)
	}

	return nil
}

// Clear removes the token from the keyring. A missing entry is not an
// error: sign-out must succeed even when nothing was persisted.
func (KeyringStore) Clear() error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	if err := ring.Remove(tokenKey); err != nil {
		if err == keyring.ErrKeyNotFound {
			return nil
		}
		return fmt.Errorf("deleting credential %q: %w", tokenKey, err)
	}

	return nil
}
