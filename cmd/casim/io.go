package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/casim/internal/ca"
	"github.com/vovakirdan/casim/internal/geom"
	"github.com/vovakirdan/casim/internal/grid"
	"github.com/vovakirdan/casim/internal/registry"
	"github.com/vovakirdan/casim/internal/sim"
)

// ruleFlags are shared by the commands resolving a rule.
type ruleFlags struct {
	numStates int
	stability string
}

func (f *ruleFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.numStates, "states", 0, "Number of states of an equation rule (0 = unknown)")
	cmd.Flags().StringVar(&f.stability, "stable", "unknown", "Whether an equation rule settles: always, never, unknown")
}

// resolve turns a rule spec into a rule.
func (f *ruleFlags) resolve(spec string, seed int64) (ca.Rule, error) {
	stability, err := ca.ParseStability(f.stability)
	if err != nil {
		return nil, err
	}
	return registry.Resolve(spec, registry.ResolveOptions{
		NumStates: f.numStates,
		Stability: stability,
		Seed:      seed,
	})
}

// readGrid loads a grid from path, or from the command's input for "-".
func readGrid(cmd *cobra.Command, path string, bw int) (*grid.Grid, error) {
	if path == grid.StdIO || path == "" {
		return grid.Read(cmd.InOrStdin(), bw)
	}
	return grid.LoadFile(path, bw)
}

// writeGrid saves g to path, or to the command's output for "-".
func writeGrid(cmd *cobra.Command, path string, g *grid.Grid) error {
	if path == grid.StdIO || path == "" {
		return grid.Write(cmd.OutOrStdout(), g)
	}
	return grid.SaveFile(path, g)
}

// parsePoint parses "x,y".
func parsePoint(s string) (geom.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return geom.Point{}, fmt.Errorf("invalid point %q, expected x,y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return geom.Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return geom.Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	return geom.Pt(x, y), nil
}

// parseRect parses "x,y,w,h".
func parseRect(s string) (geom.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geom.Rect{}, fmt.Errorf("invalid region %q, expected x,y,w,h", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return geom.Rect{}, fmt.Errorf("invalid region %q: %w", s, err)
		}
		v[i] = n
	}
	return geom.NewRect(v[0], v[1], v[2], v[3]), nil
}

// modeOf picks the simulator mode from the --async flag.
func modeOf(async bool) sim.Mode {
	if async {
		return sim.ModeAsync
	}
	return sim.ModeSync
}

func isTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// terminalSize returns the size of stdout, or 80x24.
func terminalSize() (int, int) {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}
	return width, height
}
