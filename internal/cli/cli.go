package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/willabides/kongplete"

	"github.com/semmy-space/auth/internal/config"
	"github.com/semmy-space/auth/internal/output"
)

// FormatterProvider wraps the formatter interface for Kong binding
type FormatterProvider struct {
	Formatter output.Formatter
	// Mode is the resolved output mode: json, plain or rich.
	Mode string
	Out  io.Writer
	Err  io.Writer
}

// CLI is the root command structure
type CLI struct {
	Globals

	Add    AddCmd    `cmd:"" help:"Add an entry"`
	List   ListCmd   `cmd:"" aliases:"ls" help:"List entries with their current codes"`
	Code   CodeCmd   `cmd:"" help:"Print the code for an entry"`
	Verify VerifyCmd `cmd:"" help:"Check a code against an entry"`
	Remove RemoveCmd `cmd:"" aliases:"rm" help:"Remove an entry"`
	Rename RenameCmd `cmd:"" aliases:"mv" help:"Rename an entry"`
	Update UpdateCmd `cmd:"" help:"Replace the secret of an entry"`
	Info   InfoCmd   `cmd:"" help:"Show entry details"`
	Import ImportCmd `cmd:"" help:"Merge entries from a file"`
	Export ExportCmd `cmd:"" help:"Write all entries to a file"`
	Wipe   WipeCmd   `cmd:"" help:"Remove every entry"`
	URI    URICmd    `cmd:"" name:"uri" help:"Print the otpauth URI for an entry"`
	QR     QRCmd     `cmd:"" name:"qr" help:"Show the QR code for an entry"`
	Watch  WatchCmd  `cmd:"" help:"Show live codes"`

	Config      ConfigCmd                     `cmd:"" help:"Configuration commands"`
	Completions kongplete.InstallCompletions `cmd:"" help:"Install shell completions"`
	Schema      SchemaCmd                     `cmd:"" help:"Print the command tree as JSON"`
	Version     VersionCmd                    `cmd:"" help:"Show version information"`
}

// AfterApply hook runs once flags are applied, before any command executes.
// It loads config, applies environment and flag overrides, creates the
// formatter, and binds dependencies.
func (c *CLI) AfterApply(ctx *kong.Context) error {
	file, err := c.loadConfig()
	if err != nil {
		return &output.CLIError{
			Message:  err.Error(),
			ExitCode: output.ExitConfigError,
			Hint:     "Run: auth config path",
		}
	}

	cfg, err := file.WithEnv()
	if err != nil {
		return &output.CLIError{Message: err.Error(), ExitCode: output.ExitConfigError}
	}
	if c.DataDir != "" {
		cfg.DataDir = c.DataDir
	}

	mode := c.ResolvedOutput(cfg)
	fp := &FormatterProvider{
		Formatter: output.NewWithWriters(mode, ctx.Stdout, ctx.Stderr),
		Mode:      mode,
		Out:       ctx.Stdout,
		Err:       ctx.Stderr,
	}

	logger, err := c.newLogger(cfg, ctx.Stderr)
	if err != nil {
		return &output.CLIError{Message: err.Error(), ExitCode: output.ExitConfigError}
	}

	// Bind dependencies to kong context
	ctx.Bind(cfg)
	ctx.Bind(fp)
	ctx.Bind(&c.Globals)
	ctx.Bind(&ConfigFile{Config: file})
	ctx.Bind(NewVaultProvider(cfg, logger, ctx.Stderr))
	ctx.Bind(logger)

	return nil
}

func (c *CLI) loadConfig() (*config.Config, error) {
	if c.ConfigPath != "" {
		return config.LoadFile(c.ConfigPath)
	}
	return config.Load()
}

// ConfigFile is the config as stored on disk, without environment or flag
// overrides. The config subcommands edit it.
type ConfigFile struct {
	*config.Config
}

// ConfigCmd holds configuration subcommands
type ConfigCmd struct {
	Get   ConfigGetCmd        `cmd:"" help:"Get a configuration value"`
	Set   ConfigSetCmd        `cmd:"" help:"Set a configuration value"`
	Unset ConfigUnsetCmd      `cmd:"" help:"Remove a configuration value"`
	List  ConfigListConfigCmd `cmd:"" name:"list" help:"List all configuration values"`
	Path  ConfigPathCmd       `cmd:"" help:"Show config file path"`
}

// VersionCmd shows version information
type VersionCmd struct{}

func (cmd *VersionCmd) Run(ctx *kong.Context) error {
	version := ctx.Model.Vars()["version"]
	fmt.Fprintln(ctx.Stdout, "auth version "+version)
	return nil
}

// stdin is read by interactive prompts.
var stdin io.Reader = os.Stdin
