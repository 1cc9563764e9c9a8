package tui

import (
	"strings"

	"github.com/vovakirdan/casim/internal/grid"
)

// Glyph returns the rune drawing state v. States past the end of glyphs are
// drawn as their last decimal digit, negative states as '?'.
func Glyph(glyphs []rune, v int) rune {
	switch {
	case v < 0:
		return '?'
	case v < len(glyphs):
		return glyphs[v]
	}
	return rune('0' + v%10)
}

// RenderGrid converts the interior of g to a styled string for display.
// Groups adjacent cells with the same state to minimize ANSI escape sequences.
func RenderGrid(g *grid.Grid, glyphs string, theme Theme) string {
	runes := []rune(glyphs)
	dim := g.Dim()
	values := g.Values()

	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(dim.W*dim.H*2 + dim.H)

	for y := range dim.H {
		if y > 0 {
			sb.WriteRune('\n')
		}
		row := values[y*dim.W : (y+1)*dim.W]

		// Group consecutive cells with the same state
		x := 0
		for x < dim.W {
			state := row[x]
			var run strings.Builder
			for x < dim.W && row[x] == state {
				run.WriteRune(Glyph(runes, state))
				x++
			}
			sb.WriteString(theme.style(state).Render(run.String()))
		}
	}
	return sb.String()
}
