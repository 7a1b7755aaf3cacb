// =============================================================================
// internal/output/table.go - Box drawn tables for terminal output
// =============================================================================
package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Table collects rows and renders them with aligned columns
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable creates a new table with the given headers
func NewTable(headers []string) *Table {
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = utf8.RuneCountInString(header)
	}
	return &Table{headers: headers, widths: widths}
}

// AddRow adds a row, padding or cutting it to the header count
func (t *Table) AddRow(row []string) {
	cells := make([]string, len(t.headers))
	copy(cells, row)

	for i, cell := range cells {
		if n := utf8.RuneCountInString(cell); n > t.widths[i] {
			t.widths[i] = n
		}
	}
	t.rows = append(t.rows, cells)
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) border(left, mid, right string) string {
	parts := make([]string, len(t.widths))
	for i, w := range t.widths {
		parts[i] = strings.Repeat("─", w+2)
	}
	return left + strings.Join(parts, mid) + right + "\n"
}

func (t *Table) line(cells []string) string {
	var b strings.Builder
	b.WriteString("│")
	for i, cell := range cells {
		pad := t.widths[i] - utf8.RuneCountInString(cell)
		b.WriteString(" " + cell + strings.Repeat(" ", pad) + " │")
	}
	b.WriteString("\n")
	return b.String()
}

// Render writes the table to writer
func (t *Table) Render(writer io.Writer) error {
	if len(t.headers) == 0 {
		return nil
	}

	w := bufio.NewWriter(writer)
	fmt.Fprint(w, t.border("┌", "┬", "┐"))
	fmt.Fprint(w, t.line(t.headers))
	fmt.Fprint(w, t.border("├", "┼", "┤"))
	for _, row := range t.rows {
		fmt.Fprint(w, t.line(row))
	}
	fmt.Fprint(w, t.border("└", "┴", "┘"))
	return w.Flush()
}
