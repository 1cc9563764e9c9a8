package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/casim/internal/ca/table"
)

func newTableCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Build and inspect rule tables",
	}
	cmd.AddCommand(newTableBuildCmd(a), newTableInfoCmd(a))
	return cmd
}

func newTableBuildCmd(a *app) *cobra.Command {
	var (
		rf         ruleFlags
		out        string
		maxEntries int
	)
	cmd := &cobra.Command{
		Use:   "build <rule>",
		Short: "Precompute a rule into a table file",
		Long: `Evaluate a rule on every configuration of its inputs and save the
results as a table file loadable with table:<path>.

The rule must not depend on x or y. Equation rules need --states.

Examples:
  casim table build preset:life --out life.tbl
  casim table build "(v + a[1,0]) % 3" --states 3 --out add.tbl`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return errors.New("--out is required")
			}
			if !cmd.Flags().Changed("max-entries") {
				maxEntries = a.cfg.Table.MaxEntries
			}
			rule, err := rf.resolve(args[0], a.cfg.Simulation.Seed)
			if err != nil {
				return err
			}
			states := rule.NumStates()
			if states <= 0 {
				return errors.New("rule has no state count; pass --states")
			}

			t, err := table.FromRule(rule, states, maxEntries)
			if err != nil {
				return err
			}
			if err := table.Save(out, t); err != nil {
				return err
			}
			a.logger.Info("table written", "path", out, "entries", t.Len(), "bits", t.Bits())
			return nil
		},
	}
	rf.register(cmd)
	cmd.Flags().StringVar(&out, "out", "", "Table file to write")
	cmd.Flags().IntVar(&maxEntries, "max-entries", 0, "Refuse tables longer than this")
	return cmd
}

func newTableInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Describe a table file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := table.Load(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "n_in:        %v\n", t.NIn())
			fmt.Fprintf(w, "n_out:       %v\n", t.NOut())
			fmt.Fprintf(w, "border:      %d\n", t.BorderWidth())
			fmt.Fprintf(w, "states:      %d\n", t.NumStates())
			fmt.Fprintf(w, "field bits:  %d\n", t.Bits())
			fmt.Fprintf(w, "entries:     %d\n", t.Len())
			fmt.Fprintf(w, "dead states: %v\n", t.DeadStates())
			return nil
		},
	}
}
