package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column. Width is the preferred width; with Weight
// set the column also takes a share of spare width. Columns with the lowest
// Priority are hidden first when the table does not fit.
type Column struct {
	Title    string
	Width    int
	Weight   float64
	Priority int
	Align    lipgloss.Position
}

const cellSeparator = " | "

// Table is a scrolling, selectable table.
type Table struct {
	columns     []Column
	rows        [][]string
	selected    int
	offset      int
	visibleRows int
	focused     bool
	styles      Styles

	currentPage int
	totalPages  int
	totalRows   int
}

// NewTable creates a new table with the given columns.
func NewTable(columns []Column, styles Styles) *Table {
	return &Table{
		columns:     columns,
		visibleRows: 10,
		styles:      styles,
	}
}

// SetRows replaces the table data, keeping the selection in range.
func (t *Table) SetRows(rows [][]string) {
	t.rows = rows
	if t.selected >= len(rows) {
		t.selected = len(rows) - 1
	}
	if t.selected < 0 {
		t.selected = 0
	}
	t.clampOffset()
}

// SetPagination sets the footer page info.
func (t *Table) SetPagination(page, totalPages, totalRows int) {
	t.currentPage = page
	t.totalPages = totalPages
	t.totalRows = totalRows
}

// SetVisibleRows sets the number of rows drawn at once.
func (t *Table) SetVisibleRows(n int) {
	if n < 1 {
		n = 1
	}
	t.visibleRows = n
	t.clampOffset()
}

// Focus sets the table focus state. Only a focused table highlights its
// selection.
func (t *Table) Focus(focused bool) {
	t.focused = focused
}

// Selected returns the selected row index.
func (t *Table) Selected() int {
	return t.selected
}

// SelectedRow returns the selected row data.
func (t *Table) SelectedRow() []string {
	if t.selected >= 0 && t.selected < len(t.rows) {
		return t.rows[t.selected]
	}
	return nil
}

// MoveUp moves the selection up.
func (t *Table) MoveUp() {
	if t.selected > 0 {
		t.selected--
		t.clampOffset()
	}
}

// MoveDown moves the selection down.
func (t *Table) MoveDown() {
	if t.selected < len(t.rows)-1 {
		t.selected++
		t.clampOffset()
	}
}

// GoToTop selects the first row.
func (t *Table) GoToTop() {
	t.selected = 0
	t.offset = 0
}

// GoToBottom selects the last row.
func (t *Table) GoToBottom() {
	if len(t.rows) > 0 {
		t.selected = len(t.rows) - 1
		t.clampOffset()
	}
}

func (t *Table) clampOffset() {
	if t.selected < t.offset {
		t.offset = t.selected
	}
	if t.selected >= t.offset+t.visibleRows {
		t.offset = t.selected - t.visibleRows + 1
	}
	if t.offset < 0 {
		t.offset = 0
	}
}

// Empty returns true if the table has no rows.
func (t *Table) Empty() bool {
	return len(t.rows) == 0
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	return len(t.rows)
}

// Render draws the table at the columns' preferred widths.
func (t *Table) Render() string {
	widths := make([]int, len(t.columns))
	for i, c := range t.columns {
		widths[i] = c.Width
	}
	return t.render(widths)
}

// RenderResponsive draws the table fitted to width, hiding low priority
// columns when needed.
func (t *Table) RenderResponsive(width int) string {
	specs := make([]ColumnSpec, len(t.columns))
	for i, c := range t.columns {
		specs[i] = ColumnSpec{MinWidth: c.Width, Weight: c.Weight, Priority: c.Priority}
		if c.Weight == 0 {
			specs[i].Fixed = c.Width
		}
	}
	return t.render(CalculateColumnWidths(specs, width, len(cellSeparator)))
}

func (t *Table) render(widths []int) string {
	var b strings.Builder

	total := 0
	visible := 0
	for _, w := range widths {
		if w > 0 {
			total += w
			visible++
		}
	}
	if visible > 1 {
		total += (visible - 1) * len(cellSeparator)
	}
	rule := t.styles.Border.Render(strings.Repeat("─", total+2))

	headers := make([]string, len(t.columns))
	for i, c := range t.columns {
		headers[i] = c.Title
	}
	b.WriteString(t.renderRow(headers, widths, t.styles.Header))
	b.WriteString("\n")
	b.WriteString(rule)
	b.WriteString("\n")

	end := t.offset + t.visibleRows
	if end > len(t.rows) {
		end = len(t.rows)
	}
	for i := t.offset; i < end; i++ {
		style := t.styles.Row
		switch {
		case i == t.selected && t.focused:
			style = t.styles.Selected
		case (i-t.offset)%2 == 1:
			style = t.styles.RowAlt
		}
		b.WriteString(t.renderRow(t.rows[i], widths, style))
		b.WriteString("\n")
	}

	if t.totalPages > 0 {
		b.WriteString(rule)
		b.WriteString("\n")
		b.WriteString(t.styles.Muted.Render(fmt.Sprintf("Page %d/%d | %d total", t.currentPage, t.totalPages, t.totalRows)))
	}
	return b.String()
}

func (t *Table) renderRow(cells []string, widths []int, style lipgloss.Style) string {
	var parts []string
	for i, c := range t.columns {
		w := widths[i]
		if w <= 0 {
			continue
		}
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		parts = append(parts, style.Render(fit(cell, w, c.Align)))
	}
	return " " + strings.Join(parts, cellSeparator) + " "
}

// fit truncates or pads s to exactly w cells.
func fit(s string, w int, align lipgloss.Position) string {
	r := []rune(s)
	if len(r) > w {
		if w == 1 {
			return "…"
		}
		return string(r[:w-1]) + "…"
	}
	pad := w - len(r)
	switch align {
	case lipgloss.Right:
		return strings.Repeat(" ", pad) + s
	case lipgloss.Center:
		left := pad / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
	default:
		return s + strings.Repeat(" ", pad)
	}
}
