package main

import (
	"errors"
	"os"

	"github.com/alecthomas/kong"
	"github.com/posener/complete"
	"github.com/willabides/kongplete"

	"github.com/semmy-space/auth/internal/cli"
	"github.com/semmy-space/auth/internal/output"
)

var (
	version = "dev"
)

func main() {
	cliInstance := &cli.CLI{}
	parser := kong.Must(cliInstance,
		kong.Name("auth"),
		kong.Description("Keep TOTP secrets and show their current codes"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)

	// Answers shell completion requests and exits when one is in progress.
	kongplete.Complete(parser,
		kongplete.WithPredictor("entry", cli.EntryPredictor()),
		kongplete.WithPredictor("file", complete.PredictFiles("*")),
	)

	ctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		var cliErr *output.CLIError
		if !errors.As(err, &cliErr) {
			var parseErr *kong.ParseError
			if errors.As(err, &parseErr) && parseErr.Context != nil {
				_ = parseErr.Context.PrintUsage(true)
			}
			err = output.Wrap(output.ExitUsage, err)
		}
		fail(err)
	}

	// Run command with bound dependencies
	if err := ctx.Run(); err != nil {
		fail(err)
	}
}

func fail(err error) {
	output.ExitWithError(output.New("plain"), err)
	os.Exit(output.ExitCode(err))
}
