// Package secrets stores the domain-search API key in the OS keychain so it
// does not have to live in the environment or a .env file.
package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService groups the app's secrets in the OS keychain.
	KeyringService = "contactfinder"

	keyringAccount = "hunter-api-key"
)

// ErrNoAPIKey is returned by ResolveAPIKey when neither source has a key.
var ErrNoAPIKey = errors.New("API key not found in environment or keychain")

// ResolveAPIKey returns envKey when set, otherwise the keychain entry.
// A missing keychain entry, or a keychain that is unavailable, yields ErrNoAPIKey.
func ResolveAPIKey(envKey string) (string, error) {
	if k := strings.TrimSpace(envKey); k != "" {
		return k, nil
	}

	k, err := keyring.Get(KeyringService, keyringAccount)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNoAPIKey
		}
		return "", fmt.Errorf("%w: %v", ErrNoAPIKey, err)
	}
	if strings.TrimSpace(k) == "" {
		return "", ErrNoAPIKey
	}
	return strings.TrimSpace(k), nil
}

// SetAPIKey writes key to the keychain, replacing any previous value.
func SetAPIKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("API key is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, strings.TrimSpace(key))
}

// DeleteAPIKey removes the keychain entry. Deleting a missing entry is not an error.
func DeleteAPIKey() error {
	err := keyring.Delete(KeyringService, keyringAccount)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
