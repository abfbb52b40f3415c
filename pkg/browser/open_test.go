package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand(t *testing.T) {
	tests := []struct {
		goos string
		name string
		args []string
	}{
		{goos: "darwin", name: "open", args: []string{"/tmp/qr.png"}},
		{goos: "linux", name: "xdg-open", args: []string{"/tmp/qr.png"}},
		{goos: "windows", name: "rundll32", args: []string{"url.dll,FileProtocolHandler", "/tmp/qr.png"}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args, err := Command(tt.goos, "/tmp/qr.png")
			require.NoError(t, err)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestCommandUnsupported(t *testing.T) {
	_, _, err := Command("plan9", "/tmp/qr.png")
	assert.ErrorIs(t, err, ErrUnsupported)
}
