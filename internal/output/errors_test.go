package output

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCLIError(t *testing.T) {
	err := NewCLIError(ExitNotFound, "entry not found")
	assert.Equal(t, ExitNotFound, err.ExitCode)
	assert.Equal(t, "entry not found", err.Message)
	assert.Empty(t, err.Hint)
}

func TestCLIErrorError(t *testing.T) {
	err := &CLIError{Message: "something broke"}
	assert.Equal(t, "something broke", err.Error())
}

func TestCLIErrorWithHint(t *testing.T) {
	err := NewCLIError(ExitNotFound, "no entry named github")
	result := err.WithHint("Run: auth list")

	// Fluent builder returns same pointer
	assert.Same(t, err, result)
	assert.Equal(t, "Run: auth list", err.Hint)
}

func TestCLIErrorImplementsError(t *testing.T) {
	var err error = NewCLIError(ExitGeneral, "test")
	assert.Equal(t, "test", err.Error())
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(ExitIO, cause)

	assert.Equal(t, "disk full", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitOK},
		{name: "plain error", err: errors.New("x"), want: ExitGeneral},
		{name: "cli error", err: NewCLIError(ExitConflict, "dup"), want: ExitConflict},
		{name: "wrapped cli error", err: fmt.Errorf("outer: %w", NewCLIError(ExitIO, "io")), want: ExitIO},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestExitWithErrorPrintsHint(t *testing.T) {
	var stdout, stderr bytes.Buffer
	f := NewWithWriters("plain", &stdout, &stderr)

	ExitWithError(f, NewCLIError(ExitNotFound, "no entry named x").WithHint("Run: auth list"))

	assert.Equal(t, "error: no entry named x\nhint: Run: auth list\n", stderr.String())
	assert.Empty(t, stdout.String())
}
