// Package tui provides a terminal user interface for taskboard.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dohr-michael/taskboard/clients/tui/organisms"
)

// Adaptive colors (light/dark terminal detection).
var (
	ColorAccent   = lipgloss.AdaptiveColor{Light: "#0070F3", Dark: "#79C0FF"}
	ColorHigh     = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#FF6B6B"}
	ColorMedium   = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FACC15"}
	ColorLow      = lipgloss.AdaptiveColor{Light: "#065F46", Dark: "#7EE2B8"}
	ColorError    = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#FF6B6B"}
	ColorMuted    = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	ColorStatusBg = lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#1F2937"}
	ColorStatusFg = lipgloss.AdaptiveColor{Light: "#374151", Dark: "#D1D5DB"}
	ColorBorder   = lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#374151"}
)

// Component styles.
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	StatusBarStyle = lipgloss.NewStyle().
			Background(ColorStatusBg).
			Foreground(ColorStatusFg).
			Padding(0, 1)

	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Padding(0, 1)
)

// ListStyles is the task list palette.
func ListStyles() organisms.TaskListStyles {
	return organisms.TaskListStyles{
		Title:       lipgloss.NewStyle().Bold(true),
		Description: lipgloss.NewStyle(),
		Dimmed:      lipgloss.NewStyle().Foreground(ColorMuted).Faint(true),
		Cursor:      lipgloss.NewStyle().Foreground(ColorAccent).Bold(true),
		Row: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(ColorBorder).
			PaddingLeft(1),
		Selected: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(ColorAccent).
			PaddingLeft(1),
		High:   lipgloss.NewStyle().Foreground(ColorHigh).Bold(true),
		Medium: lipgloss.NewStyle().Foreground(ColorMedium).Bold(true),
		Low:    lipgloss.NewStyle().Foreground(ColorLow).Bold(true),
		Empty:  MutedStyle,
	}
}
