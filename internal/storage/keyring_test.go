package storage

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyringBackendRoundTrip(t *testing.T) {
	b := NewKeyringBackendWith(keyring.NewArrayKeyring(nil))

	entries, err := b.Load()
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, b.Save(map[string]string{"a": "S1"}))

	loaded, err := b.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "S1"}, loaded)
	assert.Equal(t, "keyring:auth/entries", b.Location())
}

func TestKeyringBackendRejectsMalformedItem(t *testing.T) {
	ring := keyring.NewArrayKeyring([]keyring.Item{
		{Key: KeyringItem, Data: []byte(`{"a": {"name": "a"}}`)},
	})

	_, err := NewKeyringBackendWith(ring).Load()
	assert.ErrorIs(t, err, ErrMalformed)
}
