package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column.
type Column struct {
	Title string
	Width int
}

// Row is a slice of cell values.
type Row []string

// Table renders a fixed-width table.
type Table struct {
	Columns []Column
	Rows    []Row
}

// NewTable creates a new table.
func NewTable(cols []Column) *Table {
	return &Table{Columns: cols}
}

// AddRow appends a row.
func (t *Table) AddRow(r Row) {
	t.Rows = append(t.Rows, r)
}

// Render returns the table as a string. Cells are padded by visible width,
// so pre-styled cells line up too.
func (t *Table) Render() string {
	var sb strings.Builder
	header := lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)

	line := func(cells []string) {
		parts := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = pad(cell, col.Width)
		}
		sb.WriteString(strings.TrimRight(strings.Join(parts, " "), " "))
		sb.WriteString("\n")
	}

	titles := make([]string, len(t.Columns))
	rules := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		titles[i] = header.Render(col.Title)
		rules[i] = StyleMeta.Render(strings.Repeat("─", col.Width))
	}
	line(titles)
	line(rules)
	for _, r := range t.Rows {
		line(r)
	}
	return sb.String()
}

// pad left-aligns s within width visible columns, truncating plain text
// that does not fit.
func pad(s string, width int) string {
	w := lipgloss.Width(s)
	if w > width && w == len(s) {
		return s[:width]
	}
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// KeyValueBlock renders a set of key-value pairs in a bordered box.
func KeyValueBlock(title string, pairs [][2]string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title))
		sb.WriteString("\n")
	}
	for _, p := range pairs {
		key := StyleMeta.Render(fmt.Sprintf("%-12s", p[0]+":"))
		sb.WriteString(key + " " + StyleValue.Render(p[1]) + "\n")
	}
	return StyleBorder.Render(strings.TrimRight(sb.String(), "\n"))
}
