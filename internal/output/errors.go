package output

import (
	"errors"
	"fmt"
)

// Exit codes following sysexits.h convention
const (
	ExitOK            = 0  // Success
	ExitGeneral       = 1  // General error
	ExitUsage         = 2  // Invalid usage / bad arguments
	ExitNotFound      = 4  // Entry not found
	ExitConflict      = 5  // Conflict (entry already exists)
	ExitInvalidSecret = 7  // Secret cannot be decoded
	ExitConfigError   = 10 // Configuration error
	ExitIO            = 12 // Entries file could not be read or written
)

// CLIError represents a structured error with exit code and optional hint
type CLIError struct {
	ExitCode int
	Message  string
	Hint     string
	Err      error
}

// Error implements the error interface
func (e *CLIError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error, if any.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError
func NewCLIError(code int, msg string) *CLIError {
	return &CLIError{
		ExitCode: code,
		Message:  msg,
	}
}

// Wrap creates a CLIError whose message is err's.
func Wrap(code int, err error) *CLIError {
	return &CLIError{ExitCode: code, Message: err.Error(), Err: err}
}

// WithHint adds a user-facing hint to the error
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.ExitCode
	}
	return ExitGeneral
}

// ExitWithError prints the error via the formatter. The os.Exit call stays
// in main.go.
func ExitWithError(formatter Formatter, err error) {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		formatter.PrintError(cliErr)
		if cliErr.Hint != "" {
			formatter.PrintHint(cliErr.Hint)
		}
		return
	}

	formatter.PrintError(fmt.Errorf("error: %v", err))
}
