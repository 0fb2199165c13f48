package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Simplici0/facecost/internal/costing"
	"github.com/Simplici0/facecost/internal/engine"
	"github.com/Simplici0/facecost/internal/factors"
	"github.com/Simplici0/facecost/internal/restaurant"
	"github.com/Simplici0/facecost/internal/seed"
)

func factorsCmd(g *globals) *cobra.Command {
	c := &cobra.Command{
		Use:   "factors",
		Short: "Inspect cost factors",
	}
	c.AddCommand(factorsListCmd(g), factorsResolveCmd(g))
	return c
}

func factorsListCmd(g *globals) *cobra.Command {
	var category, format string

	c := &cobra.Command{
		Use:   "list",
		Short: "List stored factors (built-in tables with --no-db)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			var rows []factors.CostFactor
			switch {
			case a.Catalog == nil:
				for _, f := range costing.BuiltinFactors() {
					if category == "" || f.Category == category {
						rows = append(rows, f)
					}
				}
			case category != "":
				rows, err = a.Catalog.ListByCategory(cmd.Context(), category)
			default:
				rows, err = a.Catalog.List(cmd.Context())
			}
			if err != nil {
				return err
			}

			switch strings.ToLower(format) {
			case "yaml":
				return seed.Export(cmd.OutOrStdout(), rows)
			case "json":
				return writeJSON(cmd.OutOrStdout(), "", map[string]any{"factors": rows})
			default:
				return engine.UsageError(fmt.Errorf("unknown format %q, expected json or yaml", format))
			}
		},
	}

	c.Flags().StringVarP(&category, "category", "c", "", "only list one category (staff, equipment, location, operations)")
	c.Flags().StringVar(&format, "format", "json", "output format: json or yaml (yaml is accepted by seed --file)")
	return c
}

type resolution struct {
	Name        string  `json:"factor_name"`
	Theme       string  `json:"restaurant_theme,omitempty"`
	RevenueSize string  `json:"revenue_size,omitempty"`
	Default     float64 `json:"default"`
	Value       float64 `json:"value"`
}

func factorsResolveCmd(g *globals) *cobra.Command {
	var theme, revenue string
	var def float64

	c := &cobra.Command{
		Use:   "resolve NAME",
		Short: "Resolve a factor through the scope fallback chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			t, size := restaurant.Theme(theme), restaurant.RevenueSize(revenue)
			if theme != "" && !t.Valid() {
				return engine.UsageError(fmt.Errorf("unknown theme %q", theme))
			}
			if revenue != "" && !size.Valid() {
				return engine.UsageError(fmt.Errorf("unknown revenue size %q", revenue))
			}

			if !cmd.Flags().Changed("default") {
				def, _ = costing.BuiltinValue(name, t, size)
			}

			a, err := g.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			v, err := a.Resolver.Resolve(cmd.Context(), name, t, size, def)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), "", resolution{
				Name:        name,
				Theme:       theme,
				RevenueSize: revenue,
				Default:     def,
				Value:       v,
			})
		},
	}

	c.Flags().StringVarP(&theme, "theme", "t", "", "restaurant theme")
	c.Flags().StringVarP(&revenue, "revenue", "r", "", "revenue size")
	c.Flags().Float64Var(&def, "default", 0, "value when no scope matches (default: built-in table)")
	return c
}
