package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/semmy-space/auth/internal/codec"
	"github.com/semmy-space/auth/internal/otpauth"
	"github.com/semmy-space/auth/internal/output"
	"github.com/semmy-space/auth/internal/storage"
	"github.com/semmy-space/auth/internal/vault"
)

// now is the clock used for codes.
var now = time.Now

// resolveName maps an entry reference to a name. An exact name wins;
// otherwise "#N" or "N" selects the Nth entry of the sorted listing.
func resolveName(store *vault.Store, ref string) (string, error) {
	if _, ok := store.Get(ref); ok {
		return ref, nil
	}

	if idx, err := strconv.Atoi(strings.TrimPrefix(ref, "#")); err == nil {
		names := store.Names()
		if idx >= 1 && idx <= len(names) {
			return names[idx-1], nil
		}
		return "", (&output.CLIError{
			Message:  fmt.Sprintf("No entry at position %d (%d entries)", idx, len(names)),
			ExitCode: output.ExitNotFound,
		}).WithHint("Run: auth list")
	}

	return "", (&output.CLIError{
		Message:  fmt.Sprintf("No entry named %q", ref),
		ExitCode: output.ExitNotFound,
	}).WithHint("Run: auth list")
}

// errorFor converts a domain error into a CLIError with the matching exit
// code.
func errorFor(err error) error {
	if err == nil {
		return nil
	}
	var cliErr *output.CLIError
	if errors.As(err, &cliErr) {
		return err
	}
	var pathErr *fs.PathError

	switch {
	case errors.Is(err, vault.ErrDuplicateName):
		return output.Wrap(output.ExitConflict, err).WithHint("Pick another name or remove the existing entry")
	case errors.Is(err, vault.ErrNotFound):
		return output.Wrap(output.ExitNotFound, err).WithHint("Run: auth list")
	case errors.Is(err, vault.ErrInvalidEntry):
		return output.Wrap(output.ExitUsage, err)
	case errors.Is(err, codec.ErrInvalidEncoding):
		return output.Wrap(output.ExitInvalidSecret, err)
	case errors.Is(err, otpauth.ErrUnsupported):
		return output.Wrap(output.ExitUsage, err)
	case errors.Is(err, storage.ErrLocked), errors.Is(err, storage.ErrMalformed):
		return output.Wrap(output.ExitIO, err)
	case errors.As(err, &pathErr):
		return output.Wrap(output.ExitIO, err)
	default:
		return output.Wrap(output.ExitGeneral, err)
	}
}

// checkSecret rejects a secret that cannot produce codes under mode, unless
// force is set.
func checkSecret(secret string, mode codec.Mode, force bool) error {
	if force {
		return nil
	}
	if _, err := codec.Decode(secret, mode); err != nil {
		return (&output.CLIError{
			Message:  fmt.Sprintf("Secret cannot be decoded as %s: %v", mode, err),
			ExitCode: output.ExitInvalidSecret,
			Err:      err,
		}).WithHint("Use --force to store it anyway")
	}
	return nil
}

// readSecret returns arg, or a line read from stdin when arg is "-".
func readSecret(arg string, globals *Globals, fp *FormatterProvider) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	if globals.NoInput {
		return "", &output.CLIError{Message: "Cannot read secret from stdin with --no-input", ExitCode: output.ExitUsage}
	}
	return prompt(bufio.NewReader(stdin), fp, "Secret: "), nil
}

// confirm asks a yes/no question on stderr. --force answers yes;
// --no-input without --force is an error.
func confirm(globals *Globals, fp *FormatterProvider, question string) (bool, error) {
	if globals.Force {
		return true, nil
	}
	if globals.NoInput {
		return false, &output.CLIError{
			Message:  question + " (refusing without --force when prompts are disabled)",
			ExitCode: output.ExitUsage,
		}
	}
	answer := strings.ToLower(prompt(bufio.NewReader(stdin), fp, question+" [y/N]: "))
	return answer == "y" || answer == "yes", nil
}

// prompt prints a prompt and reads a line of input
func prompt(reader *bufio.Reader, fp *FormatterProvider, text string) string {
	fmt.Fprint(fp.Err, text)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

// maskSecret masks sensitive values, showing only last 4 characters
func maskSecret(value string) string {
	if value == "" {
		return ""
	}
	runes := []rune(value)
	if len(runes) <= 4 {
		return "****"
	}
	return "****" + string(runes[len(runes)-4:])
}

// unixNow returns the current Unix time in seconds.
func unixNow() uint64 {
	sec := now().Unix()
	if sec < 0 {
		return 0
	}
	return uint64(sec)
}
