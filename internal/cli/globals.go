package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/semmy-space/auth/internal/config"
	"github.com/semmy-space/auth/internal/logging"
)

// Globals holds global flags available to all commands
type Globals struct {
	Output     string `help:"Output format" default:"auto" enum:"json,plain,rich,auto" short:"o" env:"AUTH_OUTPUT"`
	Verbose    bool   `help:"Verbose output" short:"v" env:"AUTH_VERBOSE"`
	LogFormat  string `help:"Log format" default:"text" enum:"text,json" name:"log-format" env:"AUTH_LOG_FORMAT"`
	NoInput    bool   `help:"Disable interactive prompts (fail instead)" env:"AUTH_NO_INPUT"`
	Force      bool   `help:"Skip confirmation prompts for destructive operations" env:"AUTH_FORCE"`
	ConfigPath string `help:"Config file path" name:"config" type:"path" env:"AUTH_CONFIG"`
	DataDir    string `help:"Directory holding entries.json" name:"data-dir" type:"path"`
}

// ResolvedOutput returns the effective output mode: the flag, then the
// configured default, then TTY detection (rich on a terminal, plain
// otherwise).
func (g *Globals) ResolvedOutput(cfg *config.Config) string {
	mode := g.Output
	if mode == "" || mode == "auto" {
		mode = cfg.DefaultOutput
	}
	if mode != "" && mode != "auto" {
		return mode
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		return "rich"
	}

	return "plain"
}

// newLogger builds the command logger. Logs go to stderr at the configured
// level, or debug with --verbose.
func (g *Globals) newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if g.Verbose {
		level = slog.LevelDebug
	}
	return logging.New(w, logging.Options{Level: level, JSON: g.LogFormat == "json"}), nil
}
