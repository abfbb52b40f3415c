package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/semmy-space/auth/internal/config"
	"github.com/semmy-space/auth/internal/logging"
	"github.com/semmy-space/auth/internal/reconcile"
	"github.com/semmy-space/auth/internal/scheduler"
	"github.com/semmy-space/auth/internal/tui"
)

// WatchCmd shows live codes. On a terminal it opens the interactive view;
// otherwise, or with --plain, it prints a line whenever a code changes.
type WatchCmd struct {
	Plain    bool          `help:"Print code changes as lines instead of the live view"`
	Interval time.Duration `help:"Refresh interval" default:"1s"`
}

func (cmd *WatchCmd) Run(fp *FormatterProvider, vp *VaultProvider, cfg *config.Config, g *Globals, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cmd.Plain || fp.Mode != "rich" || !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return cmd.runPlain(ctx, fp, vp, logger)
	}
	return cmd.runLive(ctx, fp, vp, cfg, g)
}

func (cmd *WatchCmd) runLive(ctx context.Context, fp *FormatterProvider, vp *VaultProvider, cfg *config.Config, g *Globals) error {
	// The live view owns the terminal, so logs go to a file.
	logFile, err := logging.OpenFile(config.LogPath())
	if err != nil {
		return errorFor(err)
	}
	defer logFile.Close()

	logger, err := g.newLogger(cfg, logFile)
	if err != nil {
		return errorFor(err)
	}
	vp.SetLogger(logger)

	store, err := vp.Writable(fp)
	if err != nil {
		return err
	}

	err = tui.Run(ctx, tui.RunOptions{
		Options: tui.Options{
			Store:     store,
			Events:    vp.Events(),
			Mode:      vp.Mode(),
			Clipboard: os.Stderr,
		},
		Interval: cmd.Interval,
		Logger:   logger,
	})
	if err != nil {
		return errorFor(err)
	}
	return vp.Persisted()
}

type codeChange struct {
	Name      string `json:"name"`
	Code      string `json:"code,omitempty"`
	Remaining uint64 `json:"remaining,omitempty"`
	Removed   bool   `json:"removed,omitempty"`
}

func (cmd *WatchCmd) runPlain(ctx context.Context, fp *FormatterProvider, vp *VaultProvider, logger *slog.Logger) error {
	store, err := vp.Store(fp)
	if err != nil {
		return err
	}

	printer := newChangePrinter(fp)
	sched := scheduler.New(store, printer.print,
		scheduler.WithInterval(cmd.Interval),
		scheduler.WithLogger(logger),
	)

	logger.Debug("watching", "interval", sched.Interval())
	err = sched.Run(ctx)
	logger.Debug("watch stopped", "rows", len(sched.Rows()))
	if err != nil && !errors.Is(err, context.Canceled) {
		return errorFor(err)
	}
	return nil
}

// changePrinter writes a line for each code that differs from the last one
// printed for its name.
type changePrinter struct {
	fp   *FormatterProvider
	enc  *json.Encoder
	last map[string]string
}

func newChangePrinter(fp *FormatterProvider) *changePrinter {
	p := &changePrinter{fp: fp, last: make(map[string]string)}
	if fp.Mode == "json" {
		p.enc = json.NewEncoder(fp.Out)
	}
	return p
}

func (p *changePrinter) print(ops []reconcile.Op) {
	for _, op := range ops {
		var change codeChange
		switch op.Kind {
		case reconcile.Upsert:
			if p.last[op.Name] == op.Code {
				continue
			}
			p.last[op.Name] = op.Code
			change = codeChange{Name: op.Name, Code: op.Code, Remaining: op.Remaining}
		case reconcile.Remove:
			if _, seen := p.last[op.Name]; !seen {
				continue
			}
			delete(p.last, op.Name)
			change = codeChange{Name: op.Name, Removed: true}
		default:
			continue
		}
		p.write(change)
	}
}

func (p *changePrinter) write(c codeChange) {
	if p.enc != nil {
		_ = p.enc.Encode(c)
		return
	}
	if c.Removed {
		fmt.Fprintf(p.fp.Out, "%s\tremoved\n", c.Name)
		return
	}
	fmt.Fprintf(p.fp.Out, "%s\t%s\t%ds\n", c.Name, c.Code, c.Remaining)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
