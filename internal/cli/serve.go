package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func serveCmd(g *globals) *cobra.Command {
	var port string

	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := g.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if port == "" {
				port = g.cfg.Port
			}
			return a.Serve(ctx, ":"+port)
		},
	}

	c.Flags().StringVarP(&port, "port", "p", "", "override PORT")
	return c
}
