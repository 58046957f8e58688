// Package components provides reusable TUI components.
package components

import "github.com/charmbracelet/lipgloss"

// Styles is the set of styles components and views render with. The tui
// package builds one from the active colour scheme.
type Styles struct {
	Title    lipgloss.Style
	Section  lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Accent   lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Success  lipgloss.Style
	Help     lipgloss.Style
	Header   lipgloss.Style
	Row      lipgloss.Style
	RowAlt   lipgloss.Style
	Selected lipgloss.Style
	Border   lipgloss.Style
}

// NewStyles builds Styles from a palette.
func NewStyles(primary, secondary, accent, background, muted, errorColor, warningColor, successColor lipgloss.Color) Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Foreground(accent).Bold(true),
		Section:  lipgloss.NewStyle().Foreground(primary).Bold(true),
		Label:    lipgloss.NewStyle().Foreground(secondary),
		Value:    lipgloss.NewStyle().Foreground(primary),
		Accent:   lipgloss.NewStyle().Foreground(accent),
		Muted:    lipgloss.NewStyle().Foreground(muted),
		Error:    lipgloss.NewStyle().Foreground(errorColor),
		Warning:  lipgloss.NewStyle().Foreground(warningColor),
		Success:  lipgloss.NewStyle().Foreground(successColor),
		Help:     lipgloss.NewStyle().Foreground(secondary),
		Header:   lipgloss.NewStyle().Foreground(accent).Bold(true),
		Row:      lipgloss.NewStyle().Foreground(primary),
		RowAlt:   lipgloss.NewStyle().Foreground(secondary),
		Selected: lipgloss.NewStyle().Foreground(background).Background(primary),
		Border:   lipgloss.NewStyle().Foreground(secondary),
	}
}

// DefaultStyles returns the control room palette.
func DefaultStyles() Styles {
	return NewStyles(
		lipgloss.Color("#7FDBFF"),
		lipgloss.Color("#3A9AB8"),
		lipgloss.Color("#E0F7FF"),
		lipgloss.Color("#001018"),
		lipgloss.Color("#2B5563"),
		lipgloss.Color("#FF4136"),
		lipgloss.Color("#FFDC00"),
		lipgloss.Color("#2ECC40"),
	)
}

// Field renders "label value" with the label padded to width.
func (s Styles) Field(label string, width int, value string) string {
	return s.Label.Width(width).Render(label) + " " + s.Value.Render(value)
}
