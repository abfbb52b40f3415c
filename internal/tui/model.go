// Package tui is the live code view: a bubbletea program that keeps its own
// name-indexed rows and applies the operations it receives from the
// refresh scheduler and from the store after each command.
package tui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	osc52 "github.com/aymanbagabas/go-osc52/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/semmy-space/auth/internal/codec"
	"github.com/semmy-space/auth/internal/reconcile"
	"github.com/semmy-space/auth/internal/totp"
	"github.com/semmy-space/auth/internal/vault"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeRename
	modeConfirmDelete
	modeImport
	modeExport
)

func (m mode) String() string {
	switch m {
	case modeList:
		return "list"
	case modeAdd:
		return "add"
	case modeRename:
		return "rename"
	case modeConfirmDelete:
		return "delete"
	case modeImport:
		return "import"
	case modeExport:
		return "export"
	default:
		return "unknown"
	}
}

// DefaultExportPath is offered by the export prompt.
const DefaultExportPath = "auth-backup.json"

// OpsMsg carries a batch of row operations from the refresh scheduler.
type OpsMsg []reconcile.Op

type copiedMsg struct {
	name string
	err  error
}

// Options configures the live view.
type Options struct {
	Store *vault.Store
	// Events is the log the store notifies; failures show on the status
	// line.
	Events *vault.EventLog
	Mode   codec.Mode
	// Clipboard receives OSC 52 sequences. Defaults to stderr.
	Clipboard io.Writer
	Now       func() time.Time
}

// Model is the bubbletea model of the live view.
type Model struct {
	store      *vault.Store
	events     *vault.EventLog
	secretMode codec.Mode
	gen        totp.Generator
	clipboard  io.Writer
	now        func() time.Time
	theme      theme

	view   *reconcile.View
	cursor int
	state  mode
	// target is the row being renamed or deleted.
	target string
	// fields holds prompt input; only the add form uses both.
	fields    [2]string
	focus     int
	status    string
	statusErr bool
	// persistFailed is set when the last dispatch reported a failed save.
	persistFailed bool
	width         int
}

// New builds the model and fills the view from the store.
func New(opts Options) Model {
	m := Model{
		store:      opts.Store,
		events:     opts.Events,
		secretMode: opts.Mode,
		gen:        totp.NewGenerator(opts.Mode),
		clipboard:  opts.Clipboard,
		now:        opts.Now,
		theme:      defaultTheme(),
		view:       reconcile.NewView(),
	}
	if m.clipboard == nil {
		m.clipboard = os.Stderr
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.events == nil {
		m.events = &vault.EventLog{}
	}
	m, _ = m.dispatch(vault.Refresh{})
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch t := msg.(type) {
	case OpsMsg:
		m.view.Apply(t)
		m = m.drainEvents()
		m = m.clampCursor()
		return m, nil
	case copiedMsg:
		if t.err != nil {
			return m.setError(fmt.Sprintf("copy failed: %v", t.err)), nil
		}
		return m.setStatus(fmt.Sprintf("Copied codes for %s", t.name)), nil
	case tea.WindowSizeMsg:
		m.width = t.Width
		return m, nil
	case tea.KeyMsg:
		if t.Type == tea.KeyCtrlC {
			return m.quit()
		}
		switch m.state {
		case modeList:
			return m.updateList(t)
		case modeAdd:
			return m.updateAdd(t)
		case modeRename:
			return m.updateRename(t)
		case modeConfirmDelete:
			return m.updateConfirmDelete(t)
		case modeImport, modeExport:
			return m.updatePath(t)
		}
	}
	return m, nil
}

func (m Model) updateList(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < m.view.Len()-1 {
			m.cursor++
		}
	case "a":
		m = m.openPrompt(modeAdd, "")
	case "r":
		name, ok := m.selected()
		if !ok {
			return m, nil
		}
		var res vault.Result
		m, res = m.dispatch(vault.BeginEdit{Name: name})
		if res.Err != nil {
			return m.setError(res.Err.Error()), nil
		}
		m = m.openPrompt(modeRename, name)
		m.target = name
	case "d":
		name, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.state = modeConfirmDelete
		m.target = name
	case "i":
		m = m.openPrompt(modeImport, "")
	case "b":
		m = m.openPrompt(modeExport, DefaultExportPath)
	case "c", "enter":
		return m.copySelected()
	case "q", "esc":
		return m.quit()
	}
	return m, nil
}

func (m Model) updateAdd(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.Type {
	case tea.KeyEsc:
		return m.closePrompt(), nil
	case tea.KeyTab, tea.KeyShiftTab:
		m.focus = 1 - m.focus
		return m, nil
	case tea.KeyEnter:
		if m.focus == 0 {
			m.focus = 1
			return m, nil
		}
		name := strings.TrimSpace(m.fields[0])
		secret := codec.Sanitize(m.fields[1], m.secretMode)
		var res vault.Result
		m, res = m.dispatch(vault.AddEntry{Name: name, Secret: secret})
		if res.Err != nil {
			return m.setError(res.Err.Error()), nil
		}
		m = m.closePrompt().selectName(name)
		if _, err := codec.Decode(secret, m.secretMode); err != nil && !m.persistFailed {
			return m.setError(fmt.Sprintf("Added %s, but its secret cannot be decoded", name)), nil
		}
		return m.done(fmt.Sprintf("Added %s", name)), nil
	}
	return m.editField(k), nil
}

func (m Model) updateRename(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.Type {
	case tea.KeyEsc:
		m, _ = m.dispatch(vault.EndEdit{Name: m.target})
		return m.closePrompt().selectName(m.target), nil
	case tea.KeyEnter:
		newName := strings.TrimSpace(m.fields[0])
		var res vault.Result
		m, res = m.dispatch(vault.RenameEntry{Old: m.target, New: newName})
		if res.Err != nil {
			// The row stays under edit so the input survives the next tick.
			return m.setError(res.Err.Error()), nil
		}
		old := m.target
		m = m.closePrompt().selectName(newName)
		if old == newName {
			return m, nil
		}
		return m.done(fmt.Sprintf("Renamed %s to %s", old, newName)), nil
	}
	return m.editField(k), nil
}

func (m Model) updateConfirmDelete(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	name := m.target
	m.state = modeList
	m.target = ""
	if k.String() != "y" && k.String() != "Y" {
		return m.setStatus("Delete cancelled"), nil
	}
	m, _ = m.dispatch(vault.RemoveEntry{Name: name})
	return m.done(fmt.Sprintf("Removed %s", name)), nil
}

func (m Model) updatePath(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.Type {
	case tea.KeyEsc:
		return m.closePrompt(), nil
	case tea.KeyEnter:
		path := strings.TrimSpace(m.fields[0])
		if path == "" {
			return m.setError("a file path is required"), nil
		}
		importing := m.state == modeImport
		var cmd vault.Command = vault.ExportFile{Path: path}
		if importing {
			cmd = vault.ImportFile{Path: path}
		}
		var res vault.Result
		m, res = m.dispatch(cmd)
		if res.Err != nil {
			return m.setError(res.Err.Error()), nil
		}
		m = m.closePrompt()
		if importing {
			return m.done(fmt.Sprintf("Imported %d entries from %s", res.Count, path)), nil
		}
		return m.done(fmt.Sprintf("Exported %d entries to %s", res.Count, path)), nil
	}
	return m.editField(k), nil
}

func (m Model) copySelected() (tea.Model, tea.Cmd) {
	name, ok := m.selected()
	if !ok {
		return m, nil
	}
	secret, ok := m.store.Get(name)
	if !ok {
		return m, nil
	}
	w, err := m.gen.Window(secret, unixSeconds(m.now()))
	if err != nil {
		return m.setError(fmt.Sprintf("cannot copy %s: %v", name, err)), nil
	}
	return m, copyCmd(m.clipboard, name, w.Codes())
}

func copyCmd(w io.Writer, name, text string) tea.Cmd {
	return func() tea.Msg {
		_, err := osc52.New(text).WriteTo(w)
		return copiedMsg{name: name, err: err}
	}
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.state == modeRename {
		m, _ = m.dispatch(vault.EndEdit{Name: m.target})
		m = m.closePrompt()
	}
	return m, tea.Quit
}

// dispatch sends cmd to the store and applies the returned operations.
func (m Model) dispatch(cmd vault.Command) (Model, vault.Result) {
	res := m.store.Dispatch(cmd, m.view.Names())
	m.view.Apply(res.Ops)
	m.persistFailed = false
	m = m.drainEvents()
	m = m.clampCursor()
	return m, res
}

func (m Model) drainEvents() Model {
	for _, ev := range m.events.Drain() {
		if ev.Failed() {
			m = m.setError(fmt.Sprintf("%s: %v", ev.Kind, ev.Err))
			m.persistFailed = true
		}
	}
	return m
}

func (m Model) openPrompt(s mode, initial string) Model {
	m.state = s
	m.fields = [2]string{initial, ""}
	m.focus = 0
	return m
}

func (m Model) closePrompt() Model {
	m.state = modeList
	m.target = ""
	m.fields = [2]string{}
	m.focus = 0
	return m
}

func (m Model) editField(k tea.KeyMsg) Model {
	switch k.Type {
	case tea.KeyRunes:
		m.fields[m.focus] += string(k.Runes)
	case tea.KeySpace:
		m.fields[m.focus] += " "
	case tea.KeyBackspace:
		r := []rune(m.fields[m.focus])
		if len(r) > 0 {
			m.fields[m.focus] = string(r[:len(r)-1])
		}
	}
	return m
}

func (m Model) selected() (string, bool) {
	names := m.view.Names()
	if m.cursor < 0 || m.cursor >= len(names) {
		return "", false
	}
	return names[m.cursor], true
}

func (m Model) selectName(name string) Model {
	for i, n := range m.view.Names() {
		if n == name {
			m.cursor = i
			break
		}
	}
	return m
}

func (m Model) clampCursor() Model {
	if n := m.view.Len(); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	return m
}

func (m Model) setStatus(s string) Model {
	m.status = s
	m.statusErr = false
	return m
}

// done reports a successful command unless its save failed, in which case
// the failure stays on the status line.
func (m Model) done(s string) Model {
	if m.persistFailed {
		return m
	}
	return m.setStatus(s)
}

func (m Model) setError(s string) Model {
	m.status = s
	m.statusErr = true
	return m
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.Header.Render("auth"))
	b.WriteString(m.theme.Muted.Render(fmt.Sprintf("  %d entries", m.view.Len())))
	b.WriteString("\n\n")

	rows := m.view.Rows()
	if len(rows) == 0 {
		b.WriteString(m.theme.Muted.Render("  No entries. Press a to add one."))
		b.WriteString("\n")
	}

	limit := 32
	if m.width > 0 {
		limit = max(min(limit, m.width-30), 8)
	}
	nameWidth := 8
	for _, row := range rows {
		nameWidth = max(nameWidth, min(lipgloss.Width(row.Name), limit))
	}
	for i, row := range rows {
		b.WriteString(m.renderRow(row, i == m.cursor, nameWidth))
		b.WriteString("\n")
	}

	if p := m.renderPrompt(); p != "" {
		b.WriteString("\n")
		b.WriteString(p)
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		if m.statusErr {
			b.WriteString(m.theme.Danger.Render(m.status))
		} else {
			b.WriteString(m.theme.Success.Render(m.status))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.Muted.Render(m.help()))
	return b.String()
}

func (m Model) renderRow(row reconcile.Row, selected bool, nameWidth int) string {
	marker := "  "
	name := truncate(row.Name, nameWidth)
	nameStyle := lipgloss.NewStyle()
	if selected {
		marker = m.theme.Selected.Render("> ")
		nameStyle = m.theme.Selected
	}
	if m.state == modeRename && row.Name == m.target {
		name = truncate(m.fields[0], nameWidth-1) + "▏"
		nameStyle = m.theme.Editing
	}
	cell := nameStyle.Render(name) + strings.Repeat(" ", max(nameWidth-lipgloss.Width(name), 0))

	if row.Invalid {
		return marker + cell + "  " + m.theme.Invalid.Render(reconcile.InvalidCode)
	}

	countdown := fmt.Sprintf("%2ds", row.Remaining)
	if row.Remaining <= 5 {
		countdown = m.theme.Urgent.Render(countdown)
	}
	return marker + cell + "  " + m.theme.Code.Render(groupCode(row.Code)) + "  " + progress(row.Remaining) + " " + countdown
}

func (m Model) renderPrompt() string {
	var body string
	switch m.state {
	case modeAdd:
		body = "Add entry\n" + m.field("Name", 0) + "\n" + m.field("Secret", 1)
	case modeRename:
		body = "Rename " + m.target + " (enter to save, esc to cancel)"
	case modeConfirmDelete:
		body = fmt.Sprintf("Delete %s? (y/N)", m.target)
	case modeImport:
		body = "Import entries from\n" + m.field("File", 0)
	case modeExport:
		body = "Export entries to (cleartext)\n" + m.field("File", 0)
	default:
		return ""
	}
	return m.theme.Prompt.Render(body)
}

func (m Model) field(label string, idx int) string {
	value := m.fields[idx]
	if label == "Secret" {
		value = strings.Repeat("•", len([]rune(value)))
	}
	cursor := " "
	if m.focus == idx {
		cursor = "▏"
	}
	return fmt.Sprintf("%-7s %s%s", label+":", value, cursor)
}

func (m Model) help() string {
	switch m.state {
	case modeList:
		return "a add  r rename  d delete  c copy  i import  b export  q quit"
	case modeAdd:
		return "tab switch field  enter save  esc cancel"
	case modeConfirmDelete:
		return "y confirm  any other key cancels"
	default:
		return "enter confirm  esc cancel"
	}
}

// groupCode splits a six digit code for readability: "123 456".
func groupCode(code string) string {
	if len(code) != totp.Digits {
		return code
	}
	return code[:3] + " " + code[3:]
}

// progress draws the share of the window that is left.
func progress(remaining uint64) string {
	const cells = 10
	filled := int(remaining * cells / totp.Period)
	return strings.Repeat("▮", filled) + strings.Repeat("▯", cells-filled)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 {
		return ""
	}
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}

func unixSeconds(t time.Time) uint64 {
	sec := t.Unix()
	if sec < 0 {
		return 0
	}
	return uint64(sec)
}
