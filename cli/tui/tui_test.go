package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pithecene-io/gopherline/types"
)

func testData() *ListingData {
	return &ListingData{
		Summary: types.ListingSummary{
			ListingID:     "listing-42",
			Source:        "floodgap",
			Entries:       3,
			Dropped:       1,
			DroppedByKind: map[string]int64{"unknown_item_type": 1},
			Terminated:    true,
			Duration:      12 * time.Millisecond,
		},
		Entries: []types.EntryView{
			{Kind: "info", Char: "i", Display: "Welcome", Text: "Welcome"},
			{Kind: "directory", Char: "1", Display: "Software", Selector: "/software"},
			{Kind: "telnet", Char: "8", Display: "BBS", Host: "bbs.example", Port: 23, LoginName: "guest"},
		},
		ItemsByKind: map[string]int64{"info": 1, "directory": 1, "telnet": 1},
	}
}

func TestIsTUISupported(t *testing.T) {
	tests := []struct {
		view string
		want bool
	}{
		{ViewListing, true},
		{ViewStats, true},
		{"encode", false},
		{"version", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.view, func(t *testing.T) {
			if got := IsTUISupported(tt.view); got != tt.want {
				t.Errorf("IsTUISupported(%q) = %v, want %v", tt.view, got, tt.want)
			}
		})
	}
	for _, v := range SupportedTUIViews() {
		if !IsTUISupported(v) {
			t.Errorf("SupportedTUIViews() returned %q but IsTUISupported is false", v)
		}
	}
}

func TestNewModel_Errors(t *testing.T) {
	if _, err := NewModel("encode", testData()); err == nil {
		t.Error("expected error for unsupported view")
	}
	if _, err := NewModel(ViewListing, nil); err == nil {
		t.Error("expected error for nil data")
	}
	if err := Run("version", testData()); err == nil {
		t.Error("Run should reject unsupported view before starting a program")
	}
}

func TestTarget(t *testing.T) {
	data := testData()
	want := []string{"Welcome", "/software", "telnet://guest@bbs.example:23"}
	for i, e := range data.Entries {
		if got := Target(e); got != want[i] {
			t.Errorf("Target(%s) = %q, want %q", e.Kind, got, want[i])
		}
	}
}

func TestListingModel_Navigation(t *testing.T) {
	var m tea.Model = NewListingModel(testData())

	sel := func() types.EntryView {
		t.Helper()
		lm, ok := m.(ListingModel)
		if !ok {
			t.Fatalf("model is %T, want ListingModel", m)
		}
		e, _ := lm.Selected()
		return e
	}

	if got := sel().Display; got != "Welcome" {
		t.Fatalf("initial selection = %q, want Welcome", got)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if got := sel().Display; got != "Software" {
		t.Errorf("after down = %q, want Software", got)
	}

	view := m.View()
	for _, want := range []string{"listing-42", "Software", "/software"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
	if m.View() != "" {
		t.Error("view should be empty after quitting")
	}
}

func TestListingModel_SwitchToStats(t *testing.T) {
	var m tea.Model = NewListingModel(testData())
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if _, ok := m.(StatsModel); !ok {
		t.Fatalf("s should switch to stats, got %T", m)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	lm, ok := m.(ListingModel)
	if !ok {
		t.Fatalf("s should switch back, got %T", m)
	}
	if e, _ := lm.Selected(); e.Display != "Software" {
		t.Errorf("cursor lost across views: selected %q", e.Display)
	}
}

func TestListingModel_Empty(t *testing.T) {
	m := NewListingModel(&ListingData{Summary: types.ListingSummary{ListingID: "empty"}})
	if _, ok := m.Selected(); ok {
		t.Error("empty listing should have no selection")
	}
	if !strings.Contains(m.View(), "(no entries)") {
		t.Error("empty listing view should say so")
	}
}

func TestRenderStatsStatic(t *testing.T) {
	out := RenderStatsStatic(testData())
	for _, want := range []string{"Listing Stats", "Entries", "Dropped", "directory", "unknown_item_type"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats view missing %q", want)
		}
	}
}
