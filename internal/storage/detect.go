package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ServiceName identifies this tool in the keyring.
const ServiceName = "auth"

// Backend kinds accepted by NewBackend.
const (
	KindFile    = "file"
	KindKeyring = "keyring"
	KindAuto    = "auto"
)

const warningMarker = ".keyring-fallback-warning-shown"

// NewBackend creates the backend named by kind. "auto" prefers the keyring
// and falls back to the entries file on WSL, headless hosts, or when the
// keyring cannot be opened; the fallback is announced once per data dir on
// warn.
func NewBackend(kind, dataDir string, warn io.Writer) (Backend, error) {
	switch kind {
	case KindFile, "":
		return NewFileBackend(dataDir)
	case KindKeyring:
		return NewKeyringBackend(dataDir)
	case KindAuto:
		if IsWSL() || IsHeadless() {
			warnOnce(warn, dataDir, "Detected WSL/headless environment, storing entries in a file")
			return NewFileBackend(dataDir)
		}
		ring, err := NewKeyringBackend(dataDir)
		if err != nil {
			warnOnce(warn, dataDir, fmt.Sprintf("Keyring unavailable (%v), storing entries in a file", err))
			return NewFileBackend(dataDir)
		}
		return ring, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", kind)
	}
}

// warnOnce prints msg the first time it is called for dataDir. Set
// AUTH_QUIET=1 to suppress it entirely.
func warnOnce(w io.Writer, dataDir, msg string) {
	if w == nil || quietMode() {
		return
	}
	marker := filepath.Join(dataDir, warningMarker)
	if _, err := os.Stat(marker); err == nil {
		return
	}
	fmt.Fprintln(w, msg)
	if err := os.MkdirAll(dataDir, 0700); err == nil {
		_ = os.WriteFile(marker, []byte("1"), 0600)
	}
}

func quietMode() bool {
	v := os.Getenv("AUTH_QUIET")
	return v == "1" || v == "true"
}

// IsWSL returns true if running under Windows Subsystem for Linux.
func IsWSL() bool {
	if runtime.GOOS != "linux" {
		return false
	}

	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return false
	}

	version := strings.ToLower(string(data))
	return strings.Contains(version, "microsoft") || strings.Contains(version, "wsl")
}

// IsHeadless returns true on Linux hosts without an X11 or Wayland display.
func IsHeadless() bool {
	if runtime.GOOS != "linux" {
		return false
	}
	return os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == ""
}
