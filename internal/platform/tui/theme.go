package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// DefaultGlyphs draws states 0..9 with increasing density.
const DefaultGlyphs = " .:-=+*#%@"

// Theme contains the visual styles of casim screens.
type Theme struct {
	// States are cycled for states past the end
	States   []lipgloss.Style
	Sentinel lipgloss.Style // Cells outside the rule's state range

	Title  lipgloss.Style
	Status lipgloss.Style
	Help   lipgloss.Style
	Frame  lipgloss.Style
	Empty  lipgloss.Style
}

// DefaultTheme returns the default visual theme.
func DefaultTheme() Theme {
	colors := []string{"238", "51", "46", "226", "208", "205", "135", "196", "15", "245"}
	states := make([]lipgloss.Style, len(colors))
	for i, c := range colors {
		states[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(c))
	}
	return Theme{
		States:   states,
		Sentinel: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		Empty: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4),
	}
}

// style returns the style of state v.
func (t Theme) style(v int) lipgloss.Style {
	if v < 0 {
		return t.Sentinel
	}
	if len(t.States) == 0 {
		return lipgloss.NewStyle()
	}
	return t.States[v%len(t.States)]
}
