package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/termenv"
)

// Formatter is the interface for output formatting
type Formatter interface {
	Print(data any) error
	PrintList(items any, columns []Column) error
	PrintError(err error)
	PrintHint(msg string)
	// PrintStatus reports a completed action on stderr.
	PrintStatus(msg string)
}

// Column defines a column for table/list output
type Column struct {
	Name  string // Display name
	Key   string // Struct field name or map key
	Width int    // Width for rich mode (0 = auto)
	// Alert is a cell value that rich mode highlights, e.g. "invalid".
	Alert string
}

// New creates a formatter for the specified mode writing to stdout/stderr
func New(mode string) Formatter {
	return NewWithWriters(mode, os.Stdout, os.Stderr)
}

// NewWithWriters creates a formatter for mode writing to out and errOut
func NewWithWriters(mode string, out, errOut io.Writer) Formatter {
	switch mode {
	case "json":
		return &jsonFormatter{out: out, errOut: errOut}
	case "rich":
		return &richFormatter{out: out, errOut: errOut, profile: termenv.ColorProfile()}
	default:
		return &plainFormatter{out: out, errOut: errOut}
	}
}

// jsonFormatter outputs JSON
type jsonFormatter struct {
	out, errOut io.Writer
}

func (f *jsonFormatter) Print(data any) error {
	enc := json.NewEncoder(f.out)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (f *jsonFormatter) PrintList(items any, columns []Column) error {
	v := reflect.Indirect(reflect.ValueOf(items))

	count := 0
	if v.Kind() == reflect.Slice {
		count = v.Len()
	}

	envelope := map[string]any{
		"data":  items,
		"count": count,
	}

	return f.Print(envelope)
}

func (f *jsonFormatter) PrintError(err error) {
	errObj := map[string]string{"error": err.Error()}
	enc := json.NewEncoder(f.errOut)
	enc.SetIndent("", "  ")
	_ = enc.Encode(errObj)
}

// Hints and status lines are for humans; JSON consumers only see data and
// errors.
func (f *jsonFormatter) PrintHint(string)   {}
func (f *jsonFormatter) PrintStatus(string) {}

// plainFormatter outputs tab-separated values
type plainFormatter struct {
	out, errOut io.Writer
}

func (f *plainFormatter) Print(data any) error {
	fields, ok := structFields(data)
	if !ok {
		fmt.Fprintf(f.out, "%v\n", data)
		return nil
	}
	for _, fld := range fields {
		fmt.Fprintf(f.out, "%s\t%s\n", fld.label, fld.value)
	}
	return nil
}

func (f *plainFormatter) PrintList(items any, columns []Column) error {
	rows, err := listRows(items, columns)
	if err != nil {
		return err
	}

	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.Name
	}
	fmt.Fprintf(f.out, "%s\n", strings.Join(headers, "\t"))

	for _, row := range rows {
		values := make([]string, len(columns))
		for j, col := range columns {
			values[j] = row[col.Key]
		}
		fmt.Fprintf(f.out, "%s\n", strings.Join(values, "\t"))
	}

	return nil
}

func (f *plainFormatter) PrintError(err error) {
	fmt.Fprintf(f.errOut, "error: %v\n", err)
}

func (f *plainFormatter) PrintHint(msg string) {
	fmt.Fprintf(f.errOut, "hint: %v\n", msg)
}

func (f *plainFormatter) PrintStatus(msg string) {
	fmt.Fprintln(f.errOut, msg)
}

// richFormatter outputs styled content for terminal
type richFormatter struct {
	out, errOut io.Writer
	profile     termenv.Profile
}

func (f *richFormatter) Print(data any) error {
	fields, ok := structFields(data)
	if !ok {
		fmt.Fprintf(f.out, "%v\n", data)
		return nil
	}

	width := 0
	for _, fld := range fields {
		width = max(width, len(fld.label))
	}
	keyStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33")).Width(width + 1)
	for _, fld := range fields {
		fmt.Fprintf(f.out, "%s %s\n", keyStyle.Render(fld.label+":"), fld.value)
	}
	return nil
}

func (f *richFormatter) PrintList(items any, columns []Column) error {
	rows, err := listRows(items, columns)
	if err != nil {
		return err
	}
	RenderTable(f.out, columns, rows, f.profile != termenv.Ascii)
	return nil
}

func (f *richFormatter) PrintError(err error) {
	errorStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("9"))

	fmt.Fprintf(f.errOut, "%s\n", errorStyle.Render("error: "+err.Error()))
}

func (f *richFormatter) PrintHint(msg string) {
	hintStyle := lipgloss.NewStyle().
		Faint(true).
		Foreground(lipgloss.Color("8"))

	fmt.Fprintf(f.errOut, "%s\n", hintStyle.Render("hint: "+msg))
}

func (f *richFormatter) PrintStatus(msg string) {
	okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	fmt.Fprintf(f.errOut, "%s %s\n", okStyle.Render("✓"), msg)
}

type field struct {
	label string
	value string
}

// structFields lists the exported fields of a struct by their JSON names,
// so every output mode labels values the same way. Fields tagged "-" are
// skipped.
func structFields(data any) ([]field, bool) {
	v := reflect.Indirect(reflect.ValueOf(data))
	if v.Kind() != reflect.Struct {
		return nil, false
	}

	t := v.Type()
	fields := make([]field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if tag == "-" {
			continue
		}
		label := sf.Name
		if tag != "" {
			label = tag
		}
		fields = append(fields, field{label: label, value: fmt.Sprintf("%v", v.Field(i).Interface())})
	}
	return fields, true
}

// listRows flattens a slice of structs or maps into column-keyed strings.
func listRows(items any, columns []Column) ([]map[string]string, error) {
	v := reflect.Indirect(reflect.ValueOf(items))
	if v.Kind() != reflect.Slice {
		return nil, fmt.Errorf("PrintList requires a slice")
	}

	rows := make([]map[string]string, v.Len())
	for i := 0; i < v.Len(); i++ {
		item := reflect.Indirect(v.Index(i))

		row := make(map[string]string, len(columns))
		for _, col := range columns {
			var val reflect.Value
			switch item.Kind() {
			case reflect.Map:
				val = item.MapIndex(reflect.ValueOf(col.Key))
			case reflect.Struct:
				val = item.FieldByName(col.Key)
			}
			if val.IsValid() {
				row[col.Key] = fmt.Sprintf("%v", val.Interface())
			}
		}
		rows[i] = row
	}
	return rows, nil
}
