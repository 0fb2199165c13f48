package cli

import (
	"github.com/spf13/cobra"

	"github.com/Simplici0/facecost/internal/restaurant"
)

func calculateCmd(g *globals) *cobra.Command {
	var input, output string
	var validateOnly, summaryOnly bool

	c := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate the annual costs of one restaurant scenario",
		Long: "Reads a scenario as JSON (or YAML for .yaml/.yml files) from --input or stdin\n" +
			"and prints the cost breakdown as JSON. Errors are printed as a JSON payload\n" +
			"and exit with status 1.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			var req restaurant.Request
			if err := readDocument(input, cmd.InOrStdin(), &req); err != nil {
				return fail(out, err)
			}

			a, err := g.open(cmd.Context())
			if err != nil {
				return fail(out, err)
			}
			defer a.Close()

			switch {
			case validateOnly:
				report := a.Engine.Validate(req)
				if err := writeJSON(out, output, report); err != nil {
					return err
				}
				if !report.IsValid {
					return errReported
				}
				return nil

			case summaryOnly:
				summary, err := a.Engine.Summarize(req)
				if err != nil {
					return fail(out, err)
				}
				return writeJSON(out, output, summary)
			}

			res, err := a.Engine.Calculate(cmd.Context(), req)
			if err != nil {
				return fail(out, err)
			}
			return writeJSON(out, output, res)
		},
	}

	c.Flags().StringVarP(&input, "input", "i", "", "scenario file (default: stdin)")
	c.Flags().StringVarP(&output, "output", "o", "", "write the result to this file instead of stdout")
	c.Flags().BoolVar(&validateOnly, "validate-only", false, "only validate the scenario")
	c.Flags().BoolVar(&summaryOnly, "summary-only", false, "only print the input summary")
	c.MarkFlagsMutuallyExclusive("validate-only", "summary-only")
	return c
}
