// Package tui provides Bubble Tea views for the gopherline CLI.
//
// TUI is opt-in (--tui) and read-only. It renders the same payload as the
// non-TUI formats; nothing is shown that json or yaml output lacks.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/pithecene-io/gopherline/item"
)

// Color palette.
var (
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	successColor   = lipgloss.Color("#10B981") // Green
	warningColor   = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#EF4444") // Red
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	highlightColor = lipgloss.Color("#3B82F6") // Blue
)

// Styles for TUI components.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(12)

	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	HelpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)

	StatBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(highlightColor).
			Padding(0, 2).
			Width(18).
			Align(lipgloss.Center)

	StatLabelStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Align(lipgloss.Center)

	StatValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Align(lipgloss.Center)
)

// familyColor colors a kind by what selecting it would do: navigate,
// fetch, read or connect.
func familyColor(kindName string) lipgloss.Color {
	k, ok := item.ParseKind(kindName)
	if !ok {
		return mutedColor
	}
	switch {
	case k == item.KindDirectory:
		return highlightColor
	case k == item.KindError:
		return errorColor
	case k.Family() == item.FamilyMessage:
		return mutedColor
	case k.Family() == item.FamilyTelnet:
		return warningColor
	default:
		return successColor
	}
}

// KindStyle returns the style for a kind name column.
func KindStyle(kindName string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(familyColor(kindName))
}
