package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/Simplici0/facecost/internal/app"
	"github.com/Simplici0/facecost/internal/engine"
	"github.com/Simplici0/facecost/internal/factors"
	"github.com/Simplici0/facecost/internal/migrations"
	"github.com/Simplici0/facecost/internal/seed"
)

var errNoDatabase = engine.UsageError(errors.New("this command needs a database; drop --no-db"))

func migrateCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if g.noDB {
				return errNoDatabase
			}

			database, err := app.Open(g.cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			version, err := migrations.Version(database.DB, g.cfg.DBDriver)
			if err != nil {
				return err
			}
			g.logger.Info("migrate.completed", "driver", g.cfg.DBDriver, "version", version)
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
			return nil
		},
	}
}

func seedCmd(g *globals) *cobra.Command {
	var file string

	c := &cobra.Command{
		Use:   "seed",
		Short: "Insert the built-in cost factors, then apply overrides from a YAML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if g.noDB {
				return errNoDatabase
			}

			// Validate the file before touching the database.
			var overrides []factors.CostFactor
			if file != "" {
				var err error
				if overrides, err = seed.LoadFile(file); err != nil {
					if errors.Is(err, fs.ErrNotExist) {
						return err
					}
					return engine.DecodeError(err)
				}
			}

			database, err := app.Open(g.cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			builtin, err := seed.Run(cmd.Context(), database)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "built-in factors: %d inserted\n", builtin.Inserts)

			if len(overrides) > 0 {
				stats, err := seed.Apply(cmd.Context(), database, overrides)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d inserted, %d updated\n", file, stats.Inserts, stats.Updates)
			}
			return nil
		},
	}

	c.Flags().StringVarP(&file, "file", "f", "", "YAML file of factor overrides")
	return c
}
