package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// AppName names the XDG subdirectories.
const AppName = "auth"

// ConfigDir returns the XDG-compliant config directory
// Typically ~/.config/auth/ on Linux
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ConfigPath returns the full path to the config file
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json5")
}

// DataDir returns the XDG-compliant data directory, home of entries.json
// Typically ~/.local/share/auth/ on Linux
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// StateDir returns the XDG-compliant state directory
// Typically ~/.local/state/auth/ on Linux
func StateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// LogPath returns the log file used while the watch view owns the terminal.
func LogPath() string {
	return filepath.Join(StateDir(), "auth.log")
}
