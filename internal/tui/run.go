package tui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/semmy-space/auth/internal/logging"
	"github.com/semmy-space/auth/internal/reconcile"
	"github.com/semmy-space/auth/internal/scheduler"
)

// RunOptions adds the program level settings to Options.
type RunOptions struct {
	Options
	Interval time.Duration
	Logger   *slog.Logger
}

// Run shows the live view until the user quits or ctx is cancelled. The
// scheduler runs on its own goroutine and hands its batches to the program
// as messages, so the model is only ever touched by the event loop.
func Run(ctx context.Context, opts RunOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	m := New(opts.Options)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	sched := scheduler.New(opts.Store, func(ops []reconcile.Op) {
		p.Send(OpsMsg(ops))
	},
		scheduler.WithInterval(opts.Interval),
		scheduler.WithClock(m.now),
		scheduler.WithLogger(logger),
	)

	logger.Debug("live view started", "interval", sched.Interval())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("scheduler stopped", "error", err)
		}
	}()

	_, err := p.Run()
	cancel()
	<-done

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
