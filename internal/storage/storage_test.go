package storage

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDuplicatesNameInsideRecord(t *testing.T) {
	data, err := Encode(map[string]string{"github": "JBSWY3DPEHPK3PXP"})
	require.NoError(t, err)

	var doc map[string]map[string]string
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, map[string]map[string]string{
		"github": {"name": "github", "secret": "JBSWY3DPEHPK3PXP"},
	}, doc)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  map[string]string
		malformed bool
		wantErr   bool
	}{
		{
			name:     "records",
			input:    `{"a": {"name": "a", "secret": "S1"}, "b": {"secret": "S2", "name": "b"}}`,
			expected: map[string]string{"a": "S1", "b": "S2"},
		},
		{
			name:     "missing inner name falls back to key",
			input:    `{"a": {"secret": "S1"}}`,
			expected: map[string]string{"a": "S1"},
		},
		{
			name:     "json5 comments and trailing commas",
			input:    "{\n  // work account\n  \"a\": {\"name\": \"a\", \"secret\": \"S1\"},\n}",
			expected: map[string]string{"a": "S1"},
		},
		{name: "empty object", input: `{}`, expected: map[string]string{}},
		{name: "name mismatch", input: `{"a": {"name": "b", "secret": "S"}}`, malformed: true},
		{name: "empty secret", input: `{"a": {"name": "a", "secret": ""}}`, malformed: true},
		{name: "empty key", input: `{"": {"secret": "S"}}`, malformed: true},
		{name: "not json", input: `entries: nope`, wantErr: true},
		{name: "wrong shape", input: `["a", "b"]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := Decode([]byte(tt.input))
			switch {
			case tt.malformed:
				assert.ErrorIs(t, err, ErrMalformed)
			case tt.wantErr:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.expected, entries)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	entries := map[string]string{
		"github":          "JBSWY3DPEHPK3PXP",
		"aws:root":        "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ",
		"name \"quoted\"": "raw secret with spaces",
	}

	data, err := Encode(entries)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, entries, decoded)
}
