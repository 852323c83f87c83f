package format

import (
	"strings"
	"unicode/utf8"
)

// Align selects how a column pads its cells
type Align int

const (
	Left Align = iota
	Right
)

// Column is a table header with its alignment
type Column struct {
	Header string
	Align  Align
}

// Table renders rows under a header and a dashed rule, each column padded
// to its widest cell.
type Table struct {
	Columns []Column
	rows    [][]string
}

// NewTable creates a table with the given columns
func NewTable(columns ...Column) *Table {
	return &Table{Columns: columns}
}

// AddRow appends a row. Missing cells render empty; extra cells are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.rows)
}

// String renders the table
func (t *Table) String() string {
	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = utf8.RuneCountInString(c.Header)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], utf8.RuneCountInString(cell))
		}
	}

	var b strings.Builder
	header := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Header
	}
	t.writeRow(&b, header, widths)

	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}
	b.WriteString(strings.Join(rule, "  "))
	b.WriteByte('\n')

	for _, row := range t.rows {
		t.writeRow(&b, row, widths)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (t *Table) writeRow(b *strings.Builder, cells []string, widths []int) {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		pad := strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell))
		if t.Columns[i].Align == Right {
			parts[i] = pad + cell
		} else {
			parts[i] = cell + pad
		}
	}
	b.WriteString(strings.TrimRight(strings.Join(parts, "  "), " "))
	b.WriteByte('\n')
}
