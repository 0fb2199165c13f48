package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Simplici0/facecost/internal/engine"
	"github.com/Simplici0/facecost/internal/restaurant"
)

func compareCmd(g *globals) *cobra.Command {
	var input, output string
	var workers int

	c := &cobra.Command{
		Use:   "compare",
		Short: "Calculate several scenarios in parallel and pick the cheapest",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			var scenarios []restaurant.Request
			if err := readDocument(input, cmd.InOrStdin(), &scenarios); err != nil {
				return fail(out, err)
			}
			if len(scenarios) == 0 {
				return fail(out, engine.DecodeError(errors.New("expected a non-empty list of scenarios")))
			}

			if workers > 0 {
				g.cfg.CompareWorkers = workers
			}
			a, err := g.open(cmd.Context())
			if err != nil {
				return fail(out, err)
			}
			defer a.Close()

			report := a.Runner.Run(cmd.Context(), scenarios)
			if err := writeJSON(out, output, report); err != nil {
				return err
			}
			if len(report.Results) == 0 {
				return errReported
			}
			return nil
		},
	}

	c.Flags().StringVarP(&input, "input", "i", "", "JSON or YAML list of scenarios (default: stdin)")
	c.Flags().StringVarP(&output, "output", "o", "", "write the report to this file instead of stdout")
	c.Flags().IntVarP(&workers, "workers", "w", 0, "override COMPARE_WORKERS")
	return c
}
