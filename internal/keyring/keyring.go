// Package keyring persists the static password prefix in the system
// keychain, keyed by VPN configuration name.
package keyring

import (
	"errors"
	"fmt"

	zkeyring "github.com/zalando/go-keyring"
)

// servicePrefix is the keychain service naming scheme. The configuration
// name is embedded so each configuration owns a separate entry.
const servicePrefix = "tunnelblick_vpn_"

// accountName is the fixed sub-key under which the prefix is stored.
const accountName = "prefix"

// ErrPrefixNotFound is returned when no prefix is stored for a configuration.
var ErrPrefixNotFound = errors.New("password prefix not found")

// PrefixStore defines the interface for password-prefix storage.
type PrefixStore interface {
	// Save stores the password prefix for the given configuration.
	Save(configName, prefix string) error
	// Get retrieves the password prefix for the given configuration.
	Get(configName string) (string, error)
	// Delete removes the stored prefix for the given configuration.
	Delete(configName string) error
}

// SystemKeyring implements PrefixStore using the system keychain.
type SystemKeyring struct{}

// NewSystemKeyring creates a new SystemKeyring instance.
func NewSystemKeyring() *SystemKeyring {
	return &SystemKeyring{}
}

// Save stores the password prefix under the configuration's keychain entry.
func (s *SystemKeyring) Save(configName, prefix string) error {
	if err := zkeyring.Set(serviceName(configName), accountName, prefix); err != nil {
		return fmt.Errorf("failed to store password prefix: %w", err)
	}
	return nil
}

// Get retrieves the stored password prefix for the configuration.
// Returns ErrPrefixNotFound if none has been stored.
func (s *SystemKeyring) Get(configName string) (string, error) {
	prefix, err := zkeyring.Get(serviceName(configName), accountName)
	if err != nil {
		if errors.Is(err, zkeyring.ErrNotFound) {
			return "", ErrPrefixNotFound
		}
		return "", fmt.Errorf("failed to retrieve password prefix: %w", err)
	}
	return prefix, nil
}

// Delete removes the stored prefix for the configuration.
// This operation is idempotent - a missing entry is not an error.
func (s *SystemKeyring) Delete(configName string) error {
	if err := zkeyring.Delete(serviceName(configName), accountName); err != nil {
		if errors.Is(err, zkeyring.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete password prefix: %w", err)
	}
	return nil
}

func serviceName(configName string) string {
	return servicePrefix + configName
}
