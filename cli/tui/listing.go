package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pithecene-io/gopherline/types"
)

// chromeHeight is the rows taken by title, detail box and help.
const chromeHeight = 12

// ListingModel browses decoded entries in a table with a detail pane.
type ListingModel struct {
	data       *ListingData
	table      table.Model
	showDetail bool
	width      int
	height     int
	quitting   bool
}

// NewListingModel creates a listing browser over data.
func NewListingModel(data *ListingData) ListingModel {
	columns := []table.Column{
		{Title: "#", Width: 5},
		{Title: "Kind", Width: 10},
		{Title: "Display", Width: 40},
		{Title: "Target", Width: 40},
	}
	rows := make([]table.Row, len(data.Entries))
	for i, e := range data.Entries {
		rows[i] = table.Row{strconv.Itoa(i + 1), e.Kind, e.Display, Target(e)}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(min(max(len(rows), 1), 20)),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(mutedColor).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(primaryColor)
	t.SetStyles(s)

	return ListingModel{data: data, table: t, showDetail: true}
}

// Target is the one-line destination of an entry: selector, text or
// telnet address.
func Target(e types.EntryView) string {
	switch {
	case e.Host != "":
		target := fmt.Sprintf("%s:%d", e.Host, e.Port)
		if e.LoginName != "" {
			target = e.LoginName + "@" + target
		}
		return "telnet://" + target
	case e.Text != "":
		return e.Text
	default:
		return e.Selector
	}
}

// Init implements tea.Model.
func (m ListingModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ListingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if h := msg.Height - chromeHeight; h > 0 {
			m.table.SetHeight(h)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Detail):
			m.showDetail = !m.showDetail
			return m, nil
		case key.Matches(msg, keys.Stats):
			stats := NewStatsModel(m.data)
			stats.back = &m
			return stats, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// Selected returns the entry under the cursor.
func (m ListingModel) Selected() (types.EntryView, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.data.Entries) {
		return types.EntryView{}, false
	}
	return m.data.Entries[i], true
}

// View implements tea.Model.
func (m ListingModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	title := fmt.Sprintf("Listing %s (%d entries)", m.data.Summary.ListingID, len(m.data.Entries))
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n")

	if len(m.data.Entries) == 0 {
		b.WriteString(ValueStyle.Render("(no entries)"))
		b.WriteString("\n")
	} else {
		b.WriteString(BoxStyle.Render(m.table.View()))
		b.WriteString("\n")
	}

	if e, ok := m.Selected(); ok && m.showDetail {
		b.WriteString(renderDetail(e))
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render("↑/↓ move • enter detail • s stats • q quit"))
	return b.String()
}

func renderDetail(e types.EntryView) string {
	rows := [][2]string{
		{"Kind", KindStyle(e.Kind).Render(fmt.Sprintf("%s (%s)", e.Kind, e.Char))},
		{"Display", ValueStyle.Render(e.Display)},
	}
	switch {
	case e.Host != "":
		rows = append(rows,
			[2]string{"Host", ValueStyle.Render(e.Host)},
			[2]string{"Port", ValueStyle.Render(strconv.Itoa(e.Port))},
			[2]string{"Login", ValueStyle.Render(e.LoginName)},
		)
	case e.Text != "":
		rows = append(rows, [2]string{"Text", ValueStyle.Render(e.Text)})
	default:
		rows = append(rows, [2]string{"Selector", ValueStyle.Render(e.Selector)})
	}

	var b strings.Builder
	for _, row := range rows {
		fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render(row[0]+":"), row[1])
	}
	return BoxStyle.Render(strings.TrimSuffix(b.String(), "\n"))
}
