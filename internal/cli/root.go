package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Simplici0/facecost/internal/app"
	"github.com/Simplici0/facecost/internal/config"
	"github.com/Simplici0/facecost/internal/engine"
	"github.com/Simplici0/facecost/internal/logger"
)

// errReported means the command already wrote its error payload.
var errReported = errors.New("error reported")

// Execute runs the command line from os.Args and exits with its status.
func Execute() {
	os.Exit(Run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// Run executes the command line and returns the process exit code. A panic
// is turned into an unexpected_error payload.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (code int) {
	defer func() {
		if v := recover(); v != nil {
			_ = writeJSON(stdout, "", &engine.Error{Kind: engine.KindUnexpected, Message: fmt.Sprintf("panic: %v", v)})
			code = 1
		}
	}()

	g := &globals{}
	cmd := newRootCmd(g)
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errReported) {
			return 1
		}
		// Flag and argument errors are raised before the pre-run hook.
		var ee *engine.Error
		if !g.started && !errors.As(err, &ee) {
			err = engine.UsageError(err)
		}
		fmt.Fprintln(stderr, "Error:", err)
		_ = writeJSON(stdout, "", engine.Classify(err))
		return 1
	}
	return 0
}

type globals struct {
	envFile  string
	noDB     bool
	logLevel string

	cfg     config.Config
	logger  *slog.Logger
	started bool
}

// open builds the app for commands that calculate.
func (g *globals) open(ctx context.Context) (*app.App, error) {
	return app.New(ctx, g.cfg, g.logger, app.Options{NoDatabase: g.noDB})
}

func newRootCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "facecost",
		Short:         "Annual operating cost estimator for restaurant concepts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// cobra checks flag groups after this hook; check them here so
			// they report as usage errors.
			if err := cmd.ValidateRequiredFlags(); err != nil {
				return engine.UsageError(err)
			}
			if err := cmd.ValidateFlagGroups(); err != nil {
				return engine.UsageError(err)
			}
			g.started = true

			cfg, err := config.LoadFrom(g.envFile)
			if err != nil {
				return engine.ConfigError(err)
			}
			if g.logLevel != "" {
				cfg.LogLevel = g.logLevel
			}

			l, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: cmd.ErrOrStderr()})
			if err != nil {
				return engine.ConfigError(err)
			}
			for _, w := range cfg.Warnings {
				l.Warn("config.warning", "message", w)
			}

			g.cfg, g.logger = cfg, l
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&g.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	cmd.PersistentFlags().BoolVar(&g.noDB, "no-db", false, "use the built-in factor tables and store nothing")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")

	cmd.AddCommand(
		calculateCmd(g),
		compareCmd(g),
		serveCmd(g),
		migrateCmd(g),
		seedCmd(g),
		factorsCmd(g),
	)
	return cmd
}
