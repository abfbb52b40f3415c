package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		s        string
		width    int
		expected string
	}{
		{name: "shorter than width", s: "github", width: 10, expected: "github"},
		{name: "equal to width", s: "github", width: 6, expected: "github"},
		{name: "longer than width", s: "Example:alice@example.com", width: 8, expected: "Example…"},
		{name: "width one", s: "github", width: 1, expected: "…"},
		{name: "multibyte runes", s: "café-läden", width: 5, expected: "café…"},
		{name: "empty string", s: "", width: 5, expected: ""},
		{name: "no limit", s: "github", width: 0, expected: "github"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Truncate(tt.s, tt.width))
		})
	}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	columns := []Column{{Name: "NAME", Key: "Name", Width: 8}, {Name: "CODE", Key: "Code", Alert: "invalid"}}
	rows := []map[string]string{
		{"Name": "github", "Code": "282760"},
		{"Name": "a-very-long-name", "Code": "invalid"},
	}

	RenderTable(&buf, columns, rows, false)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, lines[1], "282760")
	assert.Contains(t, lines[2], "a-very-…")
	assert.Contains(t, lines[2], "invalid")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestRenderTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	RenderTable(&buf, []Column{{Name: "NAME", Key: "Name"}}, nil, false)
	assert.Empty(t, buf.String())
}
