// Package scheduler drives periodic refreshes of a code view.
package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/semmy-space/auth/internal/reconcile"
)

// DefaultInterval is the refresh period. Codes roll over on 30 second
// boundaries and the countdown is shown in whole seconds.
const DefaultInterval = time.Second

// Source produces row operations for a view currently showing rendered.
type Source interface {
	Reconcile(rendered []string, now time.Time) []reconcile.Op
}

// Sink receives each non-empty batch of operations. It must not block for
// long: the next tick waits for it.
type Sink func(ops []reconcile.Op)

// Scheduler refreshes on a fixed interval. It keeps a mirror of the rows it
// has emitted so stale rows are removed by name without asking the UI what
// it renders.
type Scheduler struct {
	src      Source
	sink     Sink
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger

	mu     sync.Mutex
	mirror *reconcile.View
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithInterval overrides DefaultInterval.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// New returns a Scheduler that pulls from src and pushes to sink.
func New(src Source, sink Sink, opts ...Option) *Scheduler {
	s := &Scheduler{
		src:      src,
		sink:     sink,
		interval: DefaultInterval,
		now:      time.Now,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		mirror:   reconcile.NewView(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Interval returns the refresh period.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Tick runs a single refresh at now and returns the operations it emitted.
// Repeating a tick at the same instant emits the same Upserts and no
// further Removes.
func (s *Scheduler) Tick(now time.Time) []reconcile.Op {
	s.mu.Lock()
	defer s.mu.Unlock()

	ops := s.src.Reconcile(s.mirror.Names(), now)
	s.mirror.Apply(ops)
	if len(ops) > 0 && s.sink != nil {
		s.sink(ops)
	}
	return ops
}

// Rows returns the rows as of the last tick.
func (s *Scheduler) Rows() []reconcile.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mirror.Rows()
}

// Run ticks once immediately and then every interval until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Debug("scheduler started", "interval", s.interval)
	s.Tick(s.now())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.Tick(s.now())
		}
	}
}
