// Package storage persists the name-to-secret mapping.
//
// The on-disk document is a JSON object keyed by entry name whose values
// repeat the name next to the secret:
//
//	{"github": {"name": "github", "secret": "JBSWY3DPEHPK3PXP"}}
//
// Secrets are stored in cleartext. Import and export files use the same
// format.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/yosuke-furukawa/json5/encoding/json5"
)

// Backend loads and saves the whole mapping.
type Backend interface {
	Load() (map[string]string, error)
	Save(entries map[string]string) error
	// Location describes where the mapping lives, for messages.
	Location() string
}

var (
	// ErrMalformed is returned for documents that do not parse or that hold
	// an entry without a name or secret.
	ErrMalformed = errors.New("malformed entries document")
	// ErrLocked is returned when another process holds the store lock.
	ErrLocked = errors.New("entries file is locked by another process")
)

type record struct {
	Name   string `json:"name"`
	Secret string `json:"secret"`
}

// Encode serialises entries in the persisted format.
func Encode(entries map[string]string) ([]byte, error) {
	doc := make(map[string]record, len(entries))
	for name, secret := range entries {
		doc[name] = record{Name: name, Secret: secret}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize entries: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a persisted document. The object key is the entry's
// identity; a record whose inner name disagrees with its key is rejected.
// JSON5 is accepted so hand-edited import files may carry comments.
func Decode(data []byte) (map[string]string, error) {
	var doc map[string]record
	if err := json5.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	entries := make(map[string]string, len(doc))
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		rec := doc[key]
		switch {
		case key == "":
			return nil, fmt.Errorf("%w: entry with empty name", ErrMalformed)
		case rec.Name != "" && rec.Name != key:
			return nil, fmt.Errorf("%w: entry %q is named %q", ErrMalformed, key, rec.Name)
		case rec.Secret == "":
			return nil, fmt.Errorf("%w: entry %q has no secret", ErrMalformed, key)
		}
		entries[key] = rec.Secret
	}
	return entries, nil
}
