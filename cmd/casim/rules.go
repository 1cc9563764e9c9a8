package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/casim/internal/registry"
)

func newRulesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List rule presets",
		Long:  `Shows the built-in rules usable as preset:<id>.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRules(cmd)
		},
	}
}

func runRules(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	rules := registry.List()

	if len(rules) == 0 {
		fmt.Fprintln(out, "No presets available.")
		return nil
	}

	fmt.Fprintln(out, "Available presets:")
	fmt.Fprintln(out)

	// Calculate column widths
	maxIDLen, maxTitleLen := 2, 5 // "ID", "Title" headers
	for _, r := range rules {
		maxIDLen = max(maxIDLen, len(r.ID))
		maxTitleLen = max(maxTitleLen, len(r.Title))
	}

	fmt.Fprintf(out, "  %-*s  %-*s  %-8s  %s\n", maxIDLen, "ID", maxTitleLen, "Title", "Stable", "Description")
	fmt.Fprintf(out, "  %-*s  %-*s  %-8s  %s\n", maxIDLen, "--", maxTitleLen, "-----", "------", "-----------")

	for _, r := range rules {
		fmt.Fprintf(out, "  %-*s  %-*s  %-8s  %s\n", maxIDLen, r.ID, maxTitleLen, r.Title, r.Stability, r.Description)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Run 'casim run preset:<id> --in <grid>' to simulate one.")
	return nil
}
