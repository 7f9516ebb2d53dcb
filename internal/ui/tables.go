package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Table renders rows under fixed headers with auto-sized columns.
type Table struct {
	headers []string
	rows    [][]string
	out     io.Writer
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers, out: os.Stdout}
}

// AddRow appends a row. Missing cells render empty, extra cells are
// dropped.
func (t *Table) AddRow(values ...string) {
	row := make([]string, len(t.headers))
	for i := range t.headers {
		if i < len(values) {
			row[i] = values[i]
		}
	}
	t.rows = append(t.rows, row)
}

// Len returns the number of rows added so far.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render prints the table.
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
		for _, row := range t.rows {
			if len(row[i]) > widths[i] {
				widths[i] = len(row[i])
			}
		}
	}

	var line strings.Builder
	for i, h := range t.headers {
		fmt.Fprintf(&line, "%-*s", widths[i], h)
		if i < len(t.headers)-1 {
			line.WriteString("  ")
		}
	}
	fmt.Fprintln(t.out, line.String())

	line.Reset()
	for i, w := range widths {
		line.WriteString(strings.Repeat("─", w))
		if i < len(widths)-1 {
			line.WriteString("  ")
		}
	}
	fmt.Fprintln(t.out, line.String())

	for _, row := range t.rows {
		line.Reset()
		for i, cell := range row {
			fmt.Fprintf(&line, "%-*s", widths[i], truncate(cell, 80))
			if i < len(row)-1 {
				line.WriteString("  ")
			}
		}
		fmt.Fprintln(t.out, line.String())
	}
}

// truncate shortens a string to maxLen with an ellipsis.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
