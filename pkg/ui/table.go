package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column describes one table column.
type Column struct {
	Header string
	Width  int
	Align  string // "left", "right", "center"
}

// Table is a plain-text data table with styled headers and zebra rows.
type Table struct {
	Columns []Column
	Rows    [][]string
}

// NewTable creates a table with the given columns.
func NewTable(columns []Column) *Table {
	return &Table{
		Columns: columns,
		Rows:    [][]string{},
	}
}

// AddRow appends a row.
func (t *Table) AddRow(cells []string) {
	t.Rows = append(t.Rows, cells)
}

// Render renders the table as a string.
func (t *Table) Render() string {
	if len(t.Columns) == 0 {
		return ""
	}

	var builder strings.Builder

	// Column widths grow to fit headers and content, floored at Width.
	colWidths := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		colWidths[i] = len(col.Header)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(colWidths) && len(cell) > colWidths[i] {
				colWidths[i] = len(cell)
			}
		}
	}
	for i, col := range t.Columns {
		if col.Width > colWidths[i] {
			colWidths[i] = col.Width
		}
	}

	headerParts := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		headerParts[i] = pad(col.Header, colWidths[i], "left")
	}
	builder.WriteString(StyleTableHeader.Render(strings.Join(headerParts, "  ")))
	builder.WriteString("\n")

	separatorParts := make([]string, len(t.Columns))
	for i := range t.Columns {
		separatorParts[i] = strings.Repeat("─", colWidths[i])
	}
	builder.WriteString(StyleTableBorder.Render(strings.Join(separatorParts, "  ")))
	builder.WriteString("\n")

	for idx, row := range t.Rows {
		rowParts := make([]string, len(t.Columns))
		for i, cell := range row {
			if i < len(t.Columns) {
				align := t.Columns[i].Align
				if align == "" {
					align = "left"
				}
				rowParts[i] = pad(cell, colWidths[i], align)
			}
		}

		var rowStyle lipgloss.Style
		if idx%2 == 0 {
			rowStyle = StyleTableRow
		} else {
			rowStyle = StyleTableRowAlt
		}

		builder.WriteString(rowStyle.Render(strings.Join(rowParts, "  ")))
		builder.WriteString("\n")
	}

	return builder.String()
}

func pad(s string, width int, align string) string {
	if len(s) >= width {
		return s
	}

	padding := width - len(s)

	switch align {
	case "right":
		return strings.Repeat(" ", padding) + s
	case "center":
		leftPad := padding / 2
		rightPad := padding - leftPad
		return strings.Repeat(" ", leftPad) + s + strings.Repeat(" ", rightPad)
	default:
		return s + strings.Repeat(" ", padding)
	}
}

// KeyValue renders a styled key-value pair.
func KeyValue(key, value string) string {
	return fmt.Sprintf("%s: %s", StyleAccent.Render(key), value)
}

// List renders a simple bulleted list.
func List(items []string) string {
	var builder strings.Builder
	for _, item := range items {
		builder.WriteString(StyleInfo.Render("  • "))
		builder.WriteString(item)
		builder.WriteString("\n")
	}
	return builder.String()
}
