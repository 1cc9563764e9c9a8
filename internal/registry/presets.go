package registry

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/casim/internal/ca"
	"github.com/vovakirdan/casim/internal/ca/equation"
	"github.com/vovakirdan/casim/internal/geom"
	"github.com/vovakirdan/casim/internal/sandpile"
)

// neighborTerms formats one term per offset of n, center excluded.
func neighborTerms(n ca.Neighborhood, format string) []string {
	var terms []string
	for _, d := range n.Offsets() {
		if d == (geom.Point{}) {
			continue
		}
		terms = append(terms, fmt.Sprintf(format, d.X, d.Y))
	}
	return terms
}

// countEquals counts the neighbors of n holding state s.
func countEquals(n ca.Neighborhood, s int) string {
	return "(" + strings.Join(neighborTerms(n, fmt.Sprintf("(a[%%d,%%d] == %d ? 1 : 0)", s)), " + ") + ")"
}

// equationPreset registers a preset compiled from an equation.
func equationPreset(id, title, desc, source string, states int, stability ca.Stability, dead ...int) {
	Register(id, Preset{
		Title:       title,
		Description: desc,
		NumStates:   states,
		Stability:   stability,
		New: func() (ca.Rule, error) {
			return equation.Parse(source,
				equation.WithNumStates(states),
				equation.WithStability(stability),
				equation.WithDeadStates(dead...))
		},
	})
}

// Equations of the built-in presets.
var (
	LifeEquation = fmt.Sprintf("%[1]s == 3 || (v == 1 && %[1]s == 2)", countEquals(ca.Moore(1), 1))

	BriansBrainEquation = fmt.Sprintf("v == 1 ? 2 : (v == 2 ? 0 : (%s == 2 ? 1 : 0))", countEquals(ca.Moore(1), 1))

	MajorityEquation = fmt.Sprintf("%s ? v : (v + %s >= 3 ? 1 : 0)",
		strings.Join(neighborTerms(ca.VonNeumann(1), "a[%d,%d] < 0"), " || "),
		strings.Join(neighborTerms(ca.VonNeumann(1), "a[%d,%d]"), " + "))

	SpreadEquation = fmt.Sprintf("v == 1 || %s ? 1 : v",
		strings.Join(neighborTerms(ca.Moore(1), "a[%d,%d] == 1"), " || "))

	ParityEquation = fmt.Sprintf("%s ? v : (%s) %% 2",
		strings.Join(neighborTerms(ca.VonNeumann(1), "a[%d,%d] < 0"), " || "),
		strings.Join(neighborTerms(ca.VonNeumann(1), "a[%d,%d]"), " + "))
)

func init() {
	Register("sandpile", Preset{
		Title:       "Abelian Sandpile",
		Description: "cells with 4 or more grains topple one grain onto each von Neumann neighbor",
		Stability:   ca.StabilityAlways,
		New:         func() (ca.Rule, error) { return sandpile.Rule(), nil },
	})
	Register("topple", Preset{
		Title:       "Sandpile (footprint)",
		Description: "sandpile whose toppling writes its neighbors, safe in async mode",
		Stability:   ca.StabilityAlways,
		New:         func() (ca.Rule, error) { return sandpile.ToppleRule(), nil },
	})

	equationPreset("life", "Game of Life", "B3/S23 on the Moore neighborhood",
		LifeEquation, 2, ca.StabilityUnknown)
	equationPreset("briansbrain", "Brian's Brain", "off cells with exactly two firing neighbors fire; firing cells die",
		BriansBrainEquation, 3, ca.StabilityUnknown)
	equationPreset("majority", "Majority Vote", "cell takes the majority of itself and its von Neumann neighbors",
		MajorityEquation, 2, ca.StabilityUnknown)
	equationPreset("spread", "Spread", "cell becomes 1 if any Moore neighbor is 1",
		SpreadEquation, 2, ca.StabilityAlways, 1)
	equationPreset("invert", "Invert", "every cell flips between 0 and 1",
		"1-a[0,0]", 2, ca.StabilityNever)
	equationPreset("parity", "Parity", "cell becomes the parity of its von Neumann neighbors",
		ParityEquation, 2, ca.StabilityUnknown)
}
