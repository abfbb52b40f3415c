package cli

import (
	"fmt"
	"os"

	"github.com/semmy-space/auth/internal/codec"
	"github.com/semmy-space/auth/internal/config"
	"github.com/semmy-space/auth/internal/otpauth"
	"github.com/semmy-space/auth/internal/output"
	"github.com/semmy-space/auth/internal/reconcile"
	"github.com/semmy-space/auth/internal/totp"
)

// AddCmd adds an entry from a name and secret, or from an otpauth URI
type AddCmd struct {
	Name   string `arg:"" optional:"" help:"Entry name"`
	Secret string `arg:"" optional:"" help:"Base32 secret, or - to read it from stdin"`
	URI    string `help:"otpauth:// URI to import (name defaults to issuer:account)" name:"uri"`
}

// Run executes the add command
func (cmd *AddCmd) Run(cfg *config.Config, fp *FormatterProvider, globals *Globals, vp *VaultProvider) error {
	store, err := vp.Writable(fp)
	if err != nil {
		return err
	}

	name, secret := cmd.Name, cmd.Secret
	if cmd.URI != "" {
		if secret != "" {
			return &output.CLIError{Message: "Pass either a secret or --uri, not both", ExitCode: output.ExitUsage}
		}
		parsed, err := otpauth.ParseURI(cmd.URI, cfg.ResolvedIssuer())
		if err != nil {
			return errorFor(err)
		}
		secret = parsed.Secret
		if name == "" {
			name = parsed.Name
		}
	}
	if name == "" || secret == "" {
		return (&output.CLIError{
			Message:  "Name and secret are required",
			ExitCode: output.ExitUsage,
		}).WithHint("Run: auth add NAME SECRET, or auth add --uri 'otpauth://...'")
	}

	secret, err = readSecret(secret, globals, fp)
	if err != nil {
		return err
	}
	secret = codec.Sanitize(secret, vp.Mode())
	if err := checkSecret(secret, vp.Mode(), globals.Force); err != nil {
		return err
	}

	if err := store.Add(name, secret); err != nil {
		return errorFor(err)
	}
	if err := vp.Persisted(); err != nil {
		return err
	}

	fp.Formatter.PrintStatus(fmt.Sprintf("Added %s", name))
	return nil
}

// codeRow is one line of the list command
type codeRow struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	Remaining uint64 `json:"remaining"`
	Valid     bool   `json:"valid"`
}

// ListCmd lists every entry with its current code
type ListCmd struct{}

// Run executes the list command
func (cmd *ListCmd) Run(fp *FormatterProvider, vp *VaultProvider) error {
	store, err := vp.Store(fp)
	if err != nil {
		return err
	}

	view := reconcile.NewView()
	view.Apply(store.Reconcile(nil, now()))

	rows := make([]codeRow, 0, view.Len())
	for i, row := range view.Rows() {
		rows = append(rows, codeRow{
			Index:     i + 1,
			Name:      row.Name,
			Code:      row.Code,
			Remaining: row.Remaining,
			Valid:     !row.Invalid,
		})
	}

	if len(rows) == 0 && fp.Mode != "json" {
		fp.Formatter.PrintHint("No entries yet. Run: auth add NAME SECRET")
		return nil
	}

	cols := []output.Column{
		{Name: "#", Key: "Index"},
		{Name: "NAME", Key: "Name", Width: 40},
		{Name: "CODE", Key: "Code", Alert: reconcile.InvalidCode},
		{Name: "LEFT", Key: "Remaining"},
	}
	return fp.Formatter.PrintList(rows, cols)
}

// CodeCmd prints the code for one entry
type CodeCmd struct {
	Ref    string `arg:"" help:"Entry name or #position" predictor:"entry"`
	Window string `help:"Which window to print" default:"current" enum:"prev,current,next,all" short:"w"`
}

type codeResult struct {
	Name      string `json:"name"`
	Previous  string `json:"previous"`
	Current   string `json:"current"`
	Next      string `json:"next"`
	Remaining uint64 `json:"remaining"`
}

// Run executes the code command
func (cmd *CodeCmd) Run(fp *FormatterProvider, vp *VaultProvider) error {
	store, err := vp.Store(fp)
	if err != nil {
		return err
	}
	name, err := resolveName(store, cmd.Ref)
	if err != nil {
		return err
	}
	secret, _ := store.Get(name)

	w, err := vp.Generator().Window(secret, unixNow())
	if err != nil {
		return errorFor(err)
	}

	if fp.Mode == "json" {
		return fp.Formatter.Print(codeResult{
			Name:      name,
			Previous:  w.Previous,
			Current:   w.Current,
			Next:      w.Next,
			Remaining: w.Remaining,
		})
	}

	fmt.Fprintln(fp.Out, pickWindow(w, cmd.Window))
	return nil
}

func pickWindow(w totp.Window, which string) string {
	switch which {
	case "prev":
		return w.Previous
	case "next":
		return w.Next
	case "all":
		return w.Codes()
	default:
		return w.Current
	}
}

// VerifyCmd checks a code against an entry, allowing one window of skew
type VerifyCmd struct {
	Ref  string `arg:"" help:"Entry name or #position" predictor:"entry"`
	Code string `arg:"" help:"Six digit code"`
}

// Run executes the verify command
func (cmd *VerifyCmd) Run(fp *FormatterProvider, vp *VaultProvider) error {
	store, err := vp.Store(fp)
	if err != nil {
		return err
	}
	name, err := resolveName(store, cmd.Ref)
	if err != nil {
		return err
	}
	secret, _ := store.Get(name)

	ok, err := otpauth.Verify(secret, vp.Mode(), cmd.Code, now())
	if err != nil {
		return errorFor(err)
	}
	if !ok {
		return &output.CLIError{Message: fmt.Sprintf("Code rejected for %s", name), ExitCode: output.ExitGeneral}
	}
	fp.Formatter.PrintStatus(fmt.Sprintf("Code accepted for %s", name))
	return nil
}

// RemoveCmd removes an entry
type RemoveCmd struct {
	Ref string `arg:"" help:"Entry name or #position" predictor:"entry"`
}

// Run executes the remove command
func (cmd *RemoveCmd) Run(fp *FormatterProvider, vp *VaultProvider) error {
	store, err := vp.Writable(fp)
	if err != nil {
		return err
	}
	name, err := resolveName(store, cmd.Ref)
	if err != nil {
		return err
	}

	store.Remove(name)
	if err := vp.Persisted(); err != nil {
		return err
	}

	fp.Formatter.PrintStatus(fmt.Sprintf("Removed %s", name))
	return nil
}

// RenameCmd renames an entry
type RenameCmd struct {
	Ref string `arg:"" help:"Entry name or #position" predictor:"entry"`
	New string `arg:"" help:"New name"`
}

// Run executes the rename command
func (cmd *RenameCmd) Run(fp *FormatterProvider, vp *VaultProvider) error {
	store, err := vp.Writable(fp)
	if err != nil {
		return err
	}
	name, err := resolveName(store, cmd.Ref)
	if err != nil {
		return err
	}

	if err := store.Rename(name, cmd.New); err != nil {
		return errorFor(err)
	}
	if err := vp.Persisted(); err != nil {
		return err
	}

	fp.Formatter.PrintStatus(fmt.Sprintf("Renamed %s to %s", name, cmd.New))
	return nil
}

// UpdateCmd replaces an entry's secret
type UpdateCmd struct {
	Ref    string `arg:"" help:"Entry name or #position" predictor:"entry"`
	Secret string `arg:"" help:"New secret, or - to read it from stdin"`
}

// Run executes the update command
func (cmd *UpdateCmd) Run(fp *FormatterProvider, globals *Globals, vp *VaultProvider) error {
	store, err := vp.Writable(fp)
	if err != nil {
		return err
	}
	name, err := resolveName(store, cmd.Ref)
	if err != nil {
		return err
	}

	secret, err := readSecret(cmd.Secret, globals, fp)
	if err != nil {
		return err
	}
	secret = codec.Sanitize(secret, vp.Mode())
	if err := checkSecret(secret, vp.Mode(), globals.Force); err != nil {
		return err
	}

	if err := store.UpdateSecret(name, secret); err != nil {
		return errorFor(err)
	}
	if err := vp.Persisted(); err != nil {
		return err
	}

	fp.Formatter.PrintStatus(fmt.Sprintf("Updated secret of %s", name))
	return nil
}

// InfoCmd shows details about an entry
type InfoCmd struct {
	Ref        string `arg:"" help:"Entry name or #position" predictor:"entry"`
	ShowSecret bool   `help:"Print the secret unmasked" name:"show-secret"`
}

type entryInfo struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
	Secret   string `json:"secret"`
	Mode     string `json:"decode_mode"`
	KeyBytes int    `json:"key_bytes"`
	Valid    bool   `json:"valid"`
	Problem  string `json:"problem,omitempty"`
}

// Run executes the info command
func (cmd *InfoCmd) Run(fp *FormatterProvider, vp *VaultProvider) error {
	store, err := vp.Store(fp)
	if err != nil {
		return err
	}
	name, err := resolveName(store, cmd.Ref)
	if err != nil {
		return err
	}
	secret, _ := store.Get(name)

	info := entryInfo{
		Name:   name,
		Secret: maskSecret(secret),
		Mode:   string(vp.Mode()),
		Valid:  true,
	}
	if cmd.ShowSecret {
		info.Secret = secret
	}
	for i, n := range store.Names() {
		if n == name {
			info.Position = i + 1
			break
		}
	}
	key, err := codec.Decode(secret, vp.Mode())
	if err != nil {
		info.Valid = false
		info.Problem = err.Error()
	} else {
		info.KeyBytes = len(key)
	}

	return fp.Formatter.Print(info)
}

// ImportCmd merges entries from a file; existing names are overwritten
type ImportCmd struct {
	File string `arg:"" type:"existingfile" help:"File in the entries.json format" predictor:"file"`
}

// Run executes the import command
func (cmd *ImportCmd) Run(fp *FormatterProvider, vp *VaultProvider) error {
	store, err := vp.Writable(fp)
	if err != nil {
		return err
	}

	n, err := store.Import(cmd.File)
	if err != nil {
		return errorFor(err)
	}
	if err := vp.Persisted(); err != nil {
		return err
	}

	fp.Formatter.PrintStatus(fmt.Sprintf("Imported %d entries from %s", n, cmd.File))
	return nil
}

// ExportCmd writes every entry to a file
type ExportCmd struct {
	File string `arg:"" type:"path" help:"Destination file" predictor:"file"`
}

// Run executes the export command
func (cmd *ExportCmd) Run(fp *FormatterProvider, globals *Globals, vp *VaultProvider) error {
	store, err := vp.Store(fp)
	if err != nil {
		return err
	}

	if _, err := os.Stat(cmd.File); err == nil {
		ok, err := confirm(globals, fp, fmt.Sprintf("Overwrite %s?", cmd.File))
		if err != nil {
			return err
		}
		if !ok {
			return &output.CLIError{Message: "Export cancelled", ExitCode: output.ExitGeneral}
		}
	}

	if err := store.Export(cmd.File); err != nil {
		return errorFor(err)
	}

	fp.Formatter.PrintStatus(fmt.Sprintf("Exported %d entries to %s (secrets are stored in cleartext)", store.Len(), cmd.File))
	return nil
}

// WipeCmd removes every entry
type WipeCmd struct{}

// Run executes the wipe command
func (cmd *WipeCmd) Run(fp *FormatterProvider, globals *Globals, vp *VaultProvider) error {
	store, err := vp.Writable(fp)
	if err != nil {
		return err
	}

	ok, err := confirm(globals, fp, fmt.Sprintf("Remove all %d entries?", store.Len()))
	if err != nil {
		return err
	}
	if !ok {
		return &output.CLIError{Message: "Wipe cancelled", ExitCode: output.ExitGeneral}
	}

	n := store.Wipe()
	if err := vp.Persisted(); err != nil {
		return err
	}

	fp.Formatter.PrintStatus(fmt.Sprintf("Removed %d entries", n))
	return nil
}
