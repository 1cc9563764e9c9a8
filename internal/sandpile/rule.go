// Package sandpile implements the abelian sandpile on a bordered grid, where
// the border acts as the sink, and super-stabilization of configurations.
package sandpile

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/casim/internal/ca"
	"github.com/vovakirdan/casim/internal/ca/equation"
	"github.com/vovakirdan/casim/internal/geom"
)

// Threshold is the height at which a cell topples.
const Threshold = 4

// neighbors are the four cells receiving a grain when a cell topples.
var neighbors = []geom.Point{{X: 0, Y: -1}, {X: -1, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}

// Equation returns the single-cell toppling equation: a cell loses
// Threshold grains if it topples and gains one from each toppling neighbor.
func Equation() string {
	gains := make([]string, 0, len(neighbors))
	for _, d := range neighbors {
		gains = append(gains, fmt.Sprintf("(a[%d,%d] >= %d ? 1 : 0)", d.X, d.Y, Threshold))
	}
	return fmt.Sprintf("v - (v >= %d ? %d : 0) + %s", Threshold, Threshold, strings.Join(gains, " + "))
}

// ToppleEquation returns the toppling equation that writes the grains into
// the neighbors itself. It conserves grains under any update order.
func ToppleEquation() string {
	stmts := []string{fmt.Sprintf("v := v >= %d ? v - %d : v", Threshold, Threshold)}
	for _, d := range neighbors {
		stmts = append(stmts, fmt.Sprintf("v[%d,%d] := v >= %d ? a[%d,%d] + 1 : a[%d,%d]",
			d.X, d.Y, Threshold, d.X, d.Y, d.X, d.Y))
	}
	return strings.Join(stmts, "; ")
}

// Rule returns the single-cell toppling rule for synchronous stepping.
func Rule() ca.Rule {
	return equation.MustParse(Equation(), equation.WithStability(ca.StabilityAlways))
}

// ToppleRule returns the footprint toppling rule, safe for asynchronous
// stepping.
func ToppleRule() ca.Rule {
	return equation.MustParse(ToppleEquation(), equation.WithStability(ca.StabilityAlways))
}

// InputEquation is applied to a cell when a grain is dropped on it.
const InputEquation = "v + 1"
