// Package vault is the credential store: the single owner of the
// name-to-secret mapping and of the set of entries under rename.
//
// Every operation, including reads and reconciliation, runs under one
// mutex, so a refresh that follows a mutation always observes it. Each
// successful mutation is written through to the Backend before the call
// returns. A failed write is reported as an Event and logged but does not
// roll back the in-memory change: the live view stays available and the
// next successful save persists the full mapping again.
package vault

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/semmy-space/auth/internal/reconcile"
	"github.com/semmy-space/auth/internal/storage"
	"github.com/semmy-space/auth/internal/totp"
)

// Backend persists the mapping.
type Backend interface {
	Load() (map[string]string, error)
	Save(entries map[string]string) error
	Location() string
}

// Store is the credential store coordinator.
type Store struct {
	mu      sync.Mutex
	entries map[string]string
	editing map[string]struct{}

	backend Backend
	codes   reconcile.CodeSource
	notify  Notifier
	logger  *slog.Logger
	now     func() time.Time

	// decodeWarn throttles per-entry decode failure logs, which would
	// otherwise repeat on every refresh.
	decodeWarn map[string]*rate.Sometimes
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for store events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithNotifier sets the event callback.
func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notify = n }
}

// WithCodeSource sets how codes are derived during reconciliation.
func WithCodeSource(src reconcile.CodeSource) Option {
	return func(s *Store) { s.codes = src }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns an empty Store persisting to backend. Call Load to read the
// persisted mapping.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		entries:    make(map[string]string),
		editing:    make(map[string]struct{}),
		backend:    backend,
		codes:      totp.Generator{},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:        time.Now,
		decodeWarn: make(map[string]*rate.Sometimes),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory mapping with the persisted one. Persisted
// entries that fail Validate are skipped and logged, as Merge does. On
// failure the store is left empty and the error is returned and reported.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]string)
	s.editing = make(map[string]struct{})

	entries, err := s.backend.Load()
	if err != nil {
		err = fmt.Errorf("failed to load entries: %w", err)
		s.emit(Event{Kind: EventLoadFailed, Op: "load", Path: s.backend.Location(), Err: err})
		return err
	}
	for name, secret := range entries {
		if err := (Entry{Name: name, Secret: secret}).Validate(); err != nil {
			s.logger.Warn("skipping entry", "op", "load", "name", name, "error", err)
			continue
		}
		s.entries[name] = secret
	}
	s.emit(Event{Kind: EventLoaded, Op: "load", Path: s.backend.Location(), Count: len(s.entries)})
	return nil
}

// Add inserts a new entry.
func (s *Store) Add(name, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(name, secret)
}

func (s *Store) add(name, secret string) error {
	if err := (Entry{Name: name, Secret: secret}).Validate(); err != nil {
		return err
	}
	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	s.entries[name] = secret
	s.persist("add")
	return nil
}

// Remove deletes name and releases any rename in progress on it. It reports
// whether an entry was removed; removing an absent name is a no-op.
func (s *Store) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(name)
}

func (s *Store) remove(name string) bool {
	if _, exists := s.entries[name]; !exists {
		return false
	}
	delete(s.entries, name)
	delete(s.editing, name)
	delete(s.decodeWarn, name)
	s.persist("remove")
	return true
}

// Rename moves the secret stored under oldName to newName. Renaming to the
// same name is a no-op. A completed rename releases oldName from the
// editing set.
func (s *Store) Rename(oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rename(oldName, newName)
}

func (s *Store) rename(oldName, newName string) error {
	secret, exists := s.entries[oldName]
	if !exists {
		return fmt.Errorf("%w: %q", ErrNotFound, oldName)
	}
	if newName == oldName {
		delete(s.editing, oldName)
		return nil
	}
	if err := (Entry{Name: newName, Secret: secret}).Validate(); err != nil {
		return err
	}
	if _, taken := s.entries[newName]; taken {
		return fmt.Errorf("%w: %q", ErrDuplicateName, newName)
	}
	delete(s.entries, oldName)
	delete(s.editing, oldName)
	delete(s.decodeWarn, oldName)
	s.entries[newName] = secret
	s.persist("rename")
	return nil
}

// UpdateSecret replaces the secret of an existing entry.
func (s *Store) UpdateSecret(name, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateSecret(name, secret)
}

func (s *Store) updateSecret(name, secret string) error {
	if _, exists := s.entries[name]; !exists {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err := (Entry{Name: name, Secret: secret}).Validate(); err != nil {
		return err
	}
	s.entries[name] = secret
	delete(s.decodeWarn, name)
	s.persist("update")
	return nil
}

// Merge inserts every incoming entry, overwriting on name collision, and
// persists once. Invalid incoming entries are skipped and logged. It
// returns the number of entries applied.
func (s *Store) Merge(entries map[string]string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.merge(entries, "merge")
}

func (s *Store) merge(entries map[string]string, op string) int {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	applied := 0
	for _, name := range names {
		secret := entries[name]
		if err := (Entry{Name: name, Secret: secret}).Validate(); err != nil {
			s.logger.Warn("skipping entry", "op", op, "name", name, "error", err)
			continue
		}
		s.entries[name] = secret
		delete(s.decodeWarn, name)
		applied++
	}
	if applied > 0 {
		s.persist(op)
	}
	return applied
}

// Import reads path and merges its entries into the store.
func (s *Store) Import(path string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.importFile(path)
}

func (s *Store) importFile(path string) (int, error) {
	incoming, err := storage.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("import failed: %w", err)
		s.emit(Event{Kind: EventImportFailed, Op: "import", Path: path, Err: err})
		return 0, err
	}
	n := s.merge(incoming, "import")
	s.emit(Event{Kind: EventImported, Op: "import", Path: path, Count: n})
	return n, nil
}

// Export writes the full mapping to path. The store is not modified either
// way.
func (s *Store) Export(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exportFile(path)
}

func (s *Store) exportFile(path string) error {
	if err := storage.WriteFile(path, s.entries); err != nil {
		err = fmt.Errorf("export failed: %w", err)
		s.emit(Event{Kind: EventExportFailed, Op: "export", Path: path, Err: err})
		return err
	}
	s.emit(Event{Kind: EventExported, Op: "export", Path: path, Count: len(s.entries)})
	return nil
}

// Wipe removes every entry and persists the empty mapping.
func (s *Store) Wipe() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wipe()
}

func (s *Store) wipe() int {
	n := len(s.entries)
	s.entries = make(map[string]string)
	s.editing = make(map[string]struct{})
	s.decodeWarn = make(map[string]*rate.Sometimes)
	s.persist("wipe")
	return n
}

// Snapshot returns a copy of the mapping.
func (s *Store) Snapshot() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.entries)
}

// Get returns the secret stored under name.
func (s *Store) Get(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	secret, ok := s.entries[name]
	return secret, ok
}

// Names returns the entry names in sorted order.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// BeginEdit marks name as under rename. Refreshes leave its row alone until
// EndEdit, Rename, or Remove releases it.
func (s *Store) BeginEdit(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[name]; !exists {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	s.editing[name] = struct{}{}
	return nil
}

// EndEdit releases name without renaming it.
func (s *Store) EndEdit(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.editing, name)
}

// Editing reports whether name is under rename.
func (s *Store) Editing(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.editing[name]
	return ok
}

// Reconcile returns the row operations that bring a view showing rendered
// up to date at now.
func (s *Store) Reconcile(rendered []string, now time.Time) []reconcile.Op {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconcile(rendered, now)
}

func (s *Store) reconcile(rendered []string, now time.Time) []reconcile.Op {
	ops := reconcile.Diff(s.entries, rendered, s.editing, unixSeconds(now), s.codes)
	for _, op := range ops {
		if op.Err == nil {
			continue
		}
		warn, ok := s.decodeWarn[op.Name]
		if !ok {
			warn = &rate.Sometimes{First: 1, Interval: time.Minute}
			s.decodeWarn[op.Name] = warn
		}
		warn.Do(func() {
			s.logger.Warn("cannot derive code", "name", op.Name, "error", op.Err)
		})
	}
	return ops
}

func (s *Store) persist(op string) {
	snapshot := maps.Clone(s.entries)
	if err := s.backend.Save(snapshot); err != nil {
		s.emit(Event{Kind: EventSaveFailed, Op: op, Path: s.backend.Location(), Count: len(snapshot), Err: err})
		return
	}
	s.emit(Event{Kind: EventSaved, Op: op, Path: s.backend.Location(), Count: len(snapshot)})
}

func (s *Store) emit(ev Event) {
	attrs := []any{"op", ev.Op, "path", ev.Path, "count", ev.Count}
	switch {
	case ev.Err != nil:
		s.logger.Error(ev.Kind.String(), append(attrs, "error", ev.Err)...)
	default:
		s.logger.Debug(ev.Kind.String(), attrs...)
	}
	if s.notify != nil {
		s.notify(ev)
	}
}

func unixSeconds(t time.Time) uint64 {
	sec := t.Unix()
	if sec < 0 {
		return 0
	}
	return uint64(sec)
}
