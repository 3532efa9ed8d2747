package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "casekit"

// KeyringStorage implements Storage using the system keyring, one entry
// per system.
type KeyringStorage struct {
	service string
}

// NewKeyringStorage creates a keyring-based storage.
func NewKeyringStorage() *KeyringStorage {
	return &KeyringStorage{service: keyringService}
}

// NewKeyringStorageWithService creates a keyring-based storage under a
// custom service name.
func NewKeyringStorageWithService(service string) *KeyringStorage {
	return &KeyringStorage{service: service}
}

func (k *KeyringStorage) Save(ctx context.Context, system System, creds *Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	if err := keyring.Set(k.service, string(system), string(data)); err != nil {
		return fmt.Errorf("failed to save %s credentials to keyring: %w", system, err)
	}
	return nil
}

func (k *KeyringStorage) Get(ctx context.Context, system System) (*Credentials, error) {
	data, err := keyring.Get(k.service, string(system))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s credentials from keyring: %w", system, err)
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(data), &creds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s credentials: %w", system, err)
	}
	return &creds, nil
}

func (k *KeyringStorage) Delete(ctx context.Context, system System) error {
	err := keyring.Delete(k.service, string(system))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete %s credentials from keyring: %w", system, err)
	}
	return nil
}
