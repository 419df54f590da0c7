package tui

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pithecene-io/gopherline/types"
)

// Views that support TUI mode.
const (
	ViewListing = "listing"
	ViewStats   = "listing_stats"
)

// ListingData is the payload shared by both views.
type ListingData struct {
	Summary types.ListingSummary
	Entries []types.EntryView
	// ItemsByKind counts decoded entries per kind name.
	ItemsByKind map[string]int64
}

// SupportedTUIViews returns the view names that support TUI.
func SupportedTUIViews() []string {
	return []string{ViewListing, ViewStats}
}

// IsTUISupported reports whether view supports TUI mode.
func IsTUISupported(view string) bool {
	return slices.Contains(SupportedTUIViews(), view)
}

// Run starts the TUI for view and blocks until the user quits.
func Run(view string, data *ListingData) error {
	model, err := NewModel(view, data)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// NewModel returns the Bubble Tea model for view.
func NewModel(view string, data *ListingData) (tea.Model, error) {
	if !IsTUISupported(view) {
		return nil, fmt.Errorf("TUI mode is not supported for %s", view)
	}
	if data == nil {
		return nil, fmt.Errorf("TUI view %s: no data", view)
	}
	if view == ViewStats {
		return NewStatsModel(data), nil
	}
	return NewListingModel(data), nil
}

type keyMap struct {
	Quit   key.Binding
	Detail key.Binding
	Stats  key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Detail: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "toggle detail"),
	),
	Stats: key.NewBinding(
		key.WithKeys("s", "tab"),
		key.WithHelp("s", "switch view"),
	),
}
