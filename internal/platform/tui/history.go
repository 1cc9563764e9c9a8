package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/casim/internal/grid"
	"github.com/vovakirdan/casim/internal/storage"
)

// History layout constants
const (
	minWidthForPreview = 90 // Minimum width to show the grid preview
	ruleColumnWidth    = 24
	maxPreviewLines    = 30
)

// HistoryModel is the Bubble Tea model browsing recorded runs.
type HistoryModel struct {
	runs        []storage.Run
	table       table.Model
	help        help.Model
	keys        HistoryKeyMap
	theme       Theme
	glyphs      string
	width       int
	height      int
	showPreview bool
	quitting    bool
}

// NewHistoryModel creates a new history model over runs, newest first.
func NewHistoryModel(runs []storage.Run, glyphs string, width, height int) HistoryModel {
	if glyphs == "" {
		glyphs = DefaultGlyphs
	}
	m := HistoryModel{
		runs:        runs,
		help:        help.New(),
		keys:        DefaultHistoryKeyMap(),
		theme:       DefaultTheme(),
		glyphs:      glyphs,
		width:       width,
		height:      height,
		showPreview: width >= minWidthForPreview,
	}
	m.table = m.createTable()
	m.updateTableRows()
	return m
}

// createTable creates a new table with appropriate columns.
func (m *HistoryModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Rule", Width: ruleColumnWidth},
		{Title: "Mode", Width: 5},
		{Title: "Size", Width: 9},
		{Title: "Steps", Width: 7},
		{Title: "Stable", Width: 6},
		{Title: "Date", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)), // Leave room for header, help, and margins
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// updateTableRows fills the table with the runs.
func (m *HistoryModel) updateTableRows() {
	rows := make([]table.Row, len(m.runs))
	for i, r := range m.runs {
		stable := "no"
		if r.Stable {
			stable = "yes"
		}
		rows[i] = table.Row{
			fmt.Sprintf("%d", r.ID),
			truncate(r.Rule, ruleColumnWidth),
			r.Mode,
			fmt.Sprintf("%dx%d", r.Width, r.Height),
			fmt.Sprintf("%d", r.Steps),
			stable,
			r.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Init initializes the history model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history screen.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showPreview = m.width >= minWidthForPreview
		cursor := m.table.Cursor()
		m.table = m.createTable()
		m.updateTableRows()
		m.table.SetCursor(cursor)
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// Selected returns the run under the cursor, or nil if there are none.
func (m HistoryModel) Selected() *storage.Run {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.runs) {
		return nil
	}
	return &m.runs[i]
}

// View renders the history screen.
func (m HistoryModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.theme.Title.Render(fmt.Sprintf("RUN HISTORY (%d)", len(m.runs))))
	b.WriteString("\n\n")

	if len(m.runs) == 0 {
		b.WriteString(m.theme.Empty.Render("No runs recorded yet.\nUse casim run --record to store one."))
	} else if m.showPreview {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			m.theme.Frame.Render(m.table.View()), "  ", m.theme.Frame.Render(m.preview())))
	} else {
		b.WriteString(m.theme.Frame.Render(m.table.View()))
	}

	b.WriteString("\n")
	b.WriteString(m.theme.Help.Render(m.help.View(m.keys)))
	return b.String()
}

// preview renders the final grid of the selected run.
func (m HistoryModel) preview() string {
	r := m.Selected()
	if r == nil {
		return ""
	}
	g, err := grid.ParseText(r.FinalGrid, 0)
	if err != nil {
		return m.theme.Sentinel.Render("unreadable grid: " + err.Error())
	}
	lines := strings.Split(RenderGrid(g, m.glyphs, m.theme), "\n")
	if len(lines) > maxPreviewLines {
		lines = append(lines[:maxPreviewLines], "...")
	}
	return strings.Join(lines, "\n")
}

// truncate shortens s to n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "."
}

// RunHistory runs the history screen.
func RunHistory(runs []storage.Run, glyphs string, width, height int) error {
	p := tea.NewProgram(
		NewHistoryModel(runs, glyphs, width, height),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
