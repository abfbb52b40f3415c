package storage

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/99designs/keyring"
)

// KeyringItem is the key under which the whole mapping is stored.
const KeyringItem = "entries"

// KeyringBackend keeps the mapping as a single item in the OS keyring.
type KeyringBackend struct {
	ring keyring.Keyring
}

// NewKeyringBackend opens the OS keyring. The file fallback of the keyring
// library lives under dataDir.
func NewKeyringBackend(dataDir string) (*KeyringBackend, error) {
	cfg := keyring.Config{
		ServiceName:              ServiceName,
		KeychainTrustApplication: true,
		FileDir:                  filepath.Join(dataDir, "keyring"),
		FilePasswordFunc:         keyring.TerminalPrompt,
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}
	return NewKeyringBackendWith(ring), nil
}

// NewKeyringBackendWith wraps an already opened keyring.
func NewKeyringBackendWith(ring keyring.Keyring) *KeyringBackend {
	return &KeyringBackend{ring: ring}
}

// Location describes the keyring item.
func (b *KeyringBackend) Location() string {
	return "keyring:" + ServiceName + "/" + KeyringItem
}

// Load reads the mapping. A missing item is an empty store.
func (b *KeyringBackend) Load() (map[string]string, error) {
	item, err := b.ring.Get(KeyringItem)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("keyring get failed: %w", err)
	}
	if len(item.Data) == 0 {
		return make(map[string]string), nil
	}
	return Decode(item.Data)
}

// Save replaces the mapping.
func (b *KeyringBackend) Save(entries map[string]string) error {
	data, err := Encode(entries)
	if err != nil {
		return err
	}
	item := keyring.Item{
		Key:         KeyringItem,
		Data:        data,
		Label:       ServiceName + " TOTP entries",
		Description: "one-time passcode secrets",
	}
	if err := b.ring.Set(item); err != nil {
		return fmt.Errorf("keyring set failed: %w", err)
	}
	return nil
}
