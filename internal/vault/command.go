package vault

import (
	"fmt"

	"github.com/semmy-space/auth/internal/reconcile"
)

// Command is an intent issued by a view. Views never touch the mapping
// directly; they dispatch a Command and apply the returned diff.
type Command interface {
	command() string
}

type (
	// AddEntry adds a new entry.
	AddEntry struct{ Name, Secret string }
	// RemoveEntry removes an entry.
	RemoveEntry struct{ Name string }
	// RenameEntry moves an entry to a new name.
	RenameEntry struct{ Old, New string }
	// UpdateSecret replaces an entry's secret.
	UpdateSecret struct{ Name, Secret string }
	// ImportFile merges entries read from Path.
	ImportFile struct{ Path string }
	// ExportFile writes all entries to Path.
	ExportFile struct{ Path string }
	// BeginEdit marks Name as under rename.
	BeginEdit struct{ Name string }
	// EndEdit releases Name without renaming.
	EndEdit struct{ Name string }
	// WipeAll removes every entry.
	WipeAll struct{}
	// Refresh mutates nothing and only reconciles.
	Refresh struct{}
)

func (AddEntry) command() string     { return "add" }
func (RemoveEntry) command() string  { return "remove" }
func (RenameEntry) command() string  { return "rename" }
func (UpdateSecret) command() string { return "update" }
func (ImportFile) command() string   { return "import" }
func (ExportFile) command() string   { return "export" }
func (BeginEdit) command() string    { return "begin-edit" }
func (EndEdit) command() string      { return "end-edit" }
func (WipeAll) command() string      { return "wipe" }
func (Refresh) command() string      { return "refresh" }

// CommandName returns the short name of cmd, as used in events and logs.
func CommandName(cmd Command) string {
	return cmd.command()
}

// Result is the outcome of a dispatched command.
type Result struct {
	// Err is the command's own failure (duplicate name, not found, bad
	// import file). Persistence failures arrive as events instead.
	Err error
	// Count is the number of entries imported, exported or wiped.
	Count int
	// Ops brings the caller's view up to date with the store after the
	// command.
	Ops []reconcile.Op
}

// Dispatch applies cmd and reconciles against rendered, all under one
// acquisition of the store lock.
func (s *Store) Dispatch(cmd Command, rendered []string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Debug("dispatch", "command", CommandName(cmd))
	var res Result
	switch c := cmd.(type) {
	case AddEntry:
		res.Err = s.add(c.Name, c.Secret)
	case RemoveEntry:
		if s.remove(c.Name) {
			res.Count = 1
		}
	case RenameEntry:
		res.Err = s.rename(c.Old, c.New)
	case UpdateSecret:
		res.Err = s.updateSecret(c.Name, c.Secret)
	case ImportFile:
		res.Count, res.Err = s.importFile(c.Path)
	case ExportFile:
		res.Err = s.exportFile(c.Path)
		if res.Err == nil {
			res.Count = len(s.entries)
		}
	case BeginEdit:
		if _, exists := s.entries[c.Name]; !exists {
			res.Err = fmt.Errorf("%w: %q", ErrNotFound, c.Name)
			break
		}
		s.editing[c.Name] = struct{}{}
	case EndEdit:
		delete(s.editing, c.Name)
	case WipeAll:
		res.Count = s.wipe()
	case Refresh:
	default:
		res.Err = fmt.Errorf("unsupported command %T", cmd)
	}

	res.Ops = s.reconcile(rendered, s.now())
	return res
}
