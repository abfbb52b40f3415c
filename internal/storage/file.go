package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// FileName is the name of the entries file inside the data directory.
const FileName = "entries.json"

// CorruptSuffix is appended to an unparsable entries file before it is
// replaced.
const CorruptSuffix = ".corrupt"

const lockTimeout = 5 * time.Second

// FileBackend keeps the mapping in a JSON file guarded by an advisory lock,
// so a CLI invocation and a running watch session never interleave writes.
type FileBackend struct {
	path     string
	lockPath string

	mu sync.Mutex
	// quarantine is set when Load found a file it could not parse. The next
	// Save moves that file aside instead of overwriting it.
	quarantine bool
}

// NewFileBackend creates a backend storing FileName inside dir.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	path := filepath.Join(dir, FileName)
	return &FileBackend{
		path:     path,
		lockPath: path + ".lock",
	}, nil
}

// Location returns the entries file path.
func (b *FileBackend) Location() string {
	return b.path
}

// Load reads the entries file. A missing file is an empty store.
func (b *FileBackend) Load() (map[string]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	unlock, err := b.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("failed to read entries file: %w", err)
	}
	if len(data) == 0 {
		return make(map[string]string), nil
	}

	entries, err := Decode(data)
	if err != nil {
		b.quarantine = true
		return nil, fmt.Errorf("%s: %w", b.path, err)
	}
	return entries, nil
}

// Save overwrites the entries file with entries.
func (b *FileBackend) Save(entries map[string]string) error {
	data, err := Encode(entries)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	unlock, err := b.lock()
	if err != nil {
		return err
	}
	defer unlock()

	if b.quarantine {
		if err := os.Rename(b.path, b.path+CorruptSuffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to set aside unreadable entries file: %w", err)
		}
		b.quarantine = false
	}

	return writeAtomic(b.path, data)
}

func (b *FileBackend) lock() (func(), error) {
	lock := flock.New(b.lockPath)
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}
	return func() { _ = lock.Unlock() }, nil
}

// writeAtomic replaces path with data via a temp file in the same directory,
// so readers see either the old or the new document.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write entries: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync entries: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close entries file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace entries file: %w", err)
	}
	return nil
}

// ReadFile reads an import file in the persisted format.
func ReadFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	entries, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// WriteFile writes entries to path in the persisted format, replacing any
// existing file.
func WriteFile(path string, entries map[string]string) error {
	data, err := Encode(entries)
	if err != nil {
		return err
	}
	if err := writeAtomic(path, data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
