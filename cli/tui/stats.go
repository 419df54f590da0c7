package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// StatsModel shows listing totals and per-kind counts.
type StatsModel struct {
	data     *ListingData
	back     *ListingModel
	width    int
	height   int
	quitting bool
}

// NewStatsModel creates a stats view over data.
func NewStatsModel(data *ListingData) StatsModel {
	return StatsModel{data: data}
}

// Init implements tea.Model.
func (m StatsModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Stats):
			if m.back != nil {
				return *m.back, nil
			}
			return NewListingModel(m.data), nil
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m StatsModel) View() string {
	if m.quitting {
		return ""
	}

	sum := m.data.Summary
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Listing Stats"))
	b.WriteString("\n")

	terminated, termColor := "yes", successColor
	if !sum.Terminated {
		terminated, termColor = "no", warningColor
	}
	droppedColor := successColor
	if sum.Dropped > 0 {
		droppedColor = errorColor
	}
	boxes := []string{
		renderStatBox("Entries", fmt.Sprintf("%d", sum.Entries), highlightColor),
		renderStatBox("Dropped", fmt.Sprintf("%d", sum.Dropped), droppedColor),
		renderStatBox("Terminated", terminated, termColor),
		renderStatBox("Duration", sum.Duration.String(), mutedColor),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	b.WriteString("\n\n")

	if len(m.data.ItemsByKind) > 0 {
		b.WriteString(TitleStyle.Render("By Kind"))
		b.WriteString("\n")
		b.WriteString(renderCounts(m.data.ItemsByKind, true))
	}
	if len(sum.DroppedByKind) > 0 {
		b.WriteString(TitleStyle.Render("Dropped By Error"))
		b.WriteString("\n")
		b.WriteString(renderCounts(sum.DroppedByKind, false))
	}

	b.WriteString(HelpStyle.Render("s listing • q quit"))
	return b.String()
}

func renderStatBox(label, value string, color lipgloss.Color) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		StatLabelStyle.Render(label),
		StatValueStyle.Foreground(color).Render(value),
	)
	return StatBoxStyle.BorderForeground(color).Render(content)
}

// renderCounts lists counts largest first, ties by name.
func renderCounts(counts map[string]int64, colorKinds bool) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	var b strings.Builder
	for _, name := range names {
		label := LabelStyle.Width(20).Render(name)
		if colorKinds {
			label = KindStyle(name).Width(20).Render(name)
		}
		fmt.Fprintf(&b, "  %s %s\n", label, ValueStyle.Render(fmt.Sprintf("%d", counts[name])))
	}
	return b.String() + "\n"
}

// RenderStatsStatic renders the stats view without starting a program.
func RenderStatsStatic(data *ListingData) string {
	m := NewStatsModel(data)
	m.width = 80
	m.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(m.View())
}
