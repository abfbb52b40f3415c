package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/semmy-space/auth/internal/codec"
	"github.com/semmy-space/auth/internal/config"
	"github.com/semmy-space/auth/internal/output"
	"github.com/semmy-space/auth/internal/storage"
	"github.com/semmy-space/auth/internal/totp"
	"github.com/semmy-space/auth/internal/vault"
)

// VaultProvider lazily opens the credential store on first use, so
// commands that never touch entries (config, version) never read them.
type VaultProvider struct {
	cfg    *config.Config
	logger *slog.Logger
	warn   io.Writer
	events vault.EventLog

	once    sync.Once
	store   *vault.Store
	backend storage.Backend
	mode    codec.Mode
	loadErr error
	openErr error
}

// NewVaultProvider creates a VaultProvider with the given config.
func NewVaultProvider(cfg *config.Config, logger *slog.Logger, warn io.Writer) *VaultProvider {
	return &VaultProvider{cfg: cfg, logger: logger, warn: warn}
}

func (vp *VaultProvider) open() {
	vp.once.Do(func() {
		mode, err := vp.cfg.ResolvedDecodeMode()
		if err != nil {
			vp.openErr = &output.CLIError{Message: err.Error(), ExitCode: output.ExitConfigError}
			return
		}
		vp.mode = mode

		backend, err := storage.NewBackend(vp.cfg.ResolvedBackend(), vp.cfg.ResolvedDataDir(), vp.warn)
		if err != nil {
			vp.openErr = &output.CLIError{
				Message:  fmt.Sprintf("Failed to open entries store: %v", err),
				ExitCode: output.ExitIO,
			}
			return
		}

		vp.backend = backend
		vp.store = vault.New(backend,
			vault.WithLogger(vp.logger),
			vault.WithNotifier(vp.events.Notify),
			vault.WithCodeSource(totp.NewGenerator(mode)),
		)
		vp.loadErr = vp.store.Load()
	})
}

// SetLogger replaces the store logger. It has no effect once the store is
// open.
func (vp *VaultProvider) SetLogger(l *slog.Logger) {
	vp.logger = l
}

// Store returns the store for read-only use. A load failure is reported as
// a warning and the empty store is returned.
func (vp *VaultProvider) Store(fp *FormatterProvider) (*vault.Store, error) {
	vp.open()
	if vp.openErr != nil {
		return nil, vp.openErr
	}
	if vp.loadErr != nil {
		fp.Formatter.PrintHint(fmt.Sprintf("entries could not be loaded, showing an empty store: %v", vp.loadErr))
	}
	return vp.store, nil
}

// Writable returns the store for a mutation. After a failed load it only
// proceeds on the file backend, which sets the unreadable file aside before
// its first save; any other backend would be overwritten with entries that
// were never read.
func (vp *VaultProvider) Writable(fp *FormatterProvider) (*vault.Store, error) {
	vp.open()
	if vp.openErr != nil {
		return nil, vp.openErr
	}
	if vp.loadErr == nil {
		return vp.store, nil
	}
	if fb, ok := vp.backend.(*storage.FileBackend); ok && errors.Is(vp.loadErr, storage.ErrMalformed) {
		fp.Formatter.PrintHint(fmt.Sprintf("entries could not be loaded; the unreadable file will be moved to %s%s", fb.Location(), storage.CorruptSuffix))
		return vp.store, nil
	}
	return nil, (&output.CLIError{
		Message:  vp.loadErr.Error(),
		ExitCode: output.ExitIO,
		Err:      vp.loadErr,
	}).WithHint("Fix the entries store and retry; nothing was changed")
}

// Mode returns the configured decode mode. It is valid after Store or
// Writable succeeded.
func (vp *VaultProvider) Mode() codec.Mode {
	return vp.mode
}

// Generator returns a code generator for the configured decode mode.
func (vp *VaultProvider) Generator() totp.Generator {
	return totp.NewGenerator(vp.mode)
}

// Events returns the store event log.
func (vp *VaultProvider) Events() *vault.EventLog {
	return &vp.events
}

// Persisted reports a save that failed since the store was opened. The
// in-memory change stands, but a one-shot command has no session left in
// which it would matter, so the failure becomes the command's result.
func (vp *VaultProvider) Persisted() error {
	failures := vp.events.Failures()
	for _, ev := range failures {
		if ev.Kind == vault.EventSaveFailed {
			return &output.CLIError{
				Message:  fmt.Sprintf("Change was not saved to %s: %v", ev.Path, ev.Err),
				ExitCode: output.ExitIO,
				Err:      ev.Err,
			}
		}
	}
	return nil
}
