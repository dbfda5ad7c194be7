// Package atoms provides low-level TUI building blocks.
package atoms

import "github.com/charmbracelet/lipgloss"

// StyledLabel renders a short label (priority, status) with the given style.
func StyledLabel(text string, style lipgloss.Style) string {
	return style.Render(text)
}

// Badge renders text as a bracketed tag, e.g. "[High]".
func Badge(text string, style lipgloss.Style) string {
	return style.Render("[" + text + "]")
}

// KeyHint renders a "key action" pair for help lines.
func KeyHint(key, action string, keyStyle lipgloss.Style) string {
	return keyStyle.Render(key) + " " + action
}
