package registry

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/casim/internal/ca"
	"github.com/vovakirdan/casim/internal/ca/equation"
	"github.com/vovakirdan/casim/internal/ca/table"
	"github.com/vovakirdan/casim/internal/rng"
)

// Rule spec prefixes.
const (
	TablePrefix  = "table:"
	PresetPrefix = "preset:"
)

// ResolveOptions apply to rules built from raw equations.
type ResolveOptions struct {
	NumStates int
	Stability ca.Stability
	Seed      int64 // Seed for rand() in equations
}

// Resolve turns a rule spec into a rule: "table:<path>" loads a table file,
// "preset:<id>" creates a registered preset, anything else is parsed as an
// equation.
func Resolve(spec string, opts ResolveOptions) (ca.Rule, error) {
	switch {
	case strings.HasPrefix(spec, TablePrefix):
		return table.Load(strings.TrimPrefix(spec, TablePrefix))
	case strings.HasPrefix(spec, PresetPrefix):
		return Create(strings.TrimPrefix(spec, PresetPrefix))
	case strings.TrimSpace(spec) == "":
		return nil, fmt.Errorf("registry: empty rule")
	}
	return equation.Parse(spec,
		equation.WithNumStates(opts.NumStates),
		equation.WithStability(opts.Stability),
		equation.WithRNG(rng.New(opts.Seed)))
}

// Kind names the rule variant of a spec: "table", "preset" or "equation".
func Kind(spec string) string {
	switch {
	case strings.HasPrefix(spec, TablePrefix):
		return "table"
	case strings.HasPrefix(spec, PresetPrefix):
		return "preset"
	}
	return "equation"
}
