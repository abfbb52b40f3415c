// Package browser hands files to the desktop's default viewer.
package browser

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
)

// ErrUnsupported is returned on platforms without a known opener.
var ErrUnsupported = errors.New("opening files is not supported on this platform")

// Command returns the opener invocation for target on goos.
func Command(goos, target string) (name string, args []string, err error) {
	switch goos {
	case "darwin":
		return "open", []string{target}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{target}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}, nil
	default:
		return "", nil, fmt.Errorf("%w: %s", ErrUnsupported, goos)
	}
}

// Open starts the default viewer for target and does not wait for it.
func Open(target string) error {
	name, args, err := Command(runtime.GOOS, target)
	if err != nil {
		return err
	}
	if err := exec.Command(name, args...).Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", target, err)
	}
	return nil
}
