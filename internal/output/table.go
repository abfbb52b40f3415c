package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/rodaine/table"
)

// RenderTable writes rows as aligned columns. With styled set, headers are
// bold and cells matching their column's Alert value are drawn in red.
func RenderTable(w io.Writer, columns []Column, rows []map[string]string, styled bool) {
	if len(rows) == 0 {
		return
	}

	headers := make([]any, len(columns))
	for i, col := range columns {
		headers[i] = col.Name
	}
	tbl := table.New(headers...).WithWriter(w)

	alert := lipgloss.NewStyle()
	if styled {
		header := lipgloss.NewStyle().Bold(true).Underline(true)
		tbl = tbl.WithHeaderFormatter(func(format string, vals ...any) string {
			return header.Render(fmt.Sprintf(format, vals...))
		})
		alert = alert.Foreground(lipgloss.Color("9"))
	}

	for _, row := range rows {
		cells := make([]any, len(columns))
		for i, col := range columns {
			value := Truncate(row[col.Key], col.Width)
			if styled && col.Alert != "" && value == col.Alert {
				value = alert.Render(value)
			}
			cells[i] = value
		}
		tbl.AddRow(cells...)
	}
	tbl.Print()
}

// Truncate shortens s to width runes, ending in "…" when cut. A width of
// zero or less leaves s unchanged.
func Truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
