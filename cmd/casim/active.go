package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/casim/internal/ca"
	"github.com/vovakirdan/casim/internal/grid"
)

func newActiveCmd(a *app) *cobra.Command {
	var (
		rf   ruleFlags
		in   string
		list bool
	)
	cmd := &cobra.Command{
		Use:   "active <rule>",
		Short: "Print the cells a rule would change",
		Long: `Evaluate a rule once on every cell of a grid and print a 0/1 map of
the cells whose footprint would change. Nothing is written back.

Examples:
  casim active preset:sandpile --in pile.txt
  casim active "1-v" --in grid.txt --list`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rule, err := rf.resolve(args[0], a.cfg.Simulation.Seed)
			if err != nil {
				return err
			}
			g, err := readGrid(cmd, in, rule.BorderWidth())
			if err != nil {
				return err
			}
			if err := ca.CheckGrid(rule, g); err != nil {
				return err
			}

			if !list {
				return grid.Write(cmd.OutOrStdout(), ca.ActiveMap(rule, g))
			}
			active := ca.ActiveCells(rule, g)
			for _, p := range active {
				fmt.Fprintf(cmd.OutOrStdout(), "%d,%d\n", p.X, p.Y)
			}
			a.logger.Debug("active cells", "count", len(active))
			return nil
		},
	}
	rf.register(cmd)
	cmd.Flags().StringVar(&in, "in", grid.StdIO, "Input grid file (- for stdin)")
	cmd.Flags().BoolVar(&list, "list", false, "Print x,y of each active cell instead of a map")
	return cmd
}
