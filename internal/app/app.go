package app

import (
	"context"
	"fmt"
	"os"

	"github.com/mesa-rpg/mesa/internal/app/action"
	"github.com/mesa-rpg/mesa/internal/app/logger"
	"github.com/urfave/cli/v3"
)

const appName = "mesa"

func NewApp(version, commit, buildDate string) {
	app := &cli.Command{
		Name: appName,
		Version: fmt.Sprintf(
			"%s (revision: %s) built on %s",
			version,
			vcsRevision(commit, "0000000")[:7],
			buildDate,
		),
	}

	// Root flags
	app.Flags = append(app.Flags,
		&cli.StringFlag{
			Name:  "log-level",
			Value: "info",
			Usage: "Log level (debug, info, warn, error)",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Value: "text",
			Usage: "Log format (text, json)",
		},
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "Log file path",
		},
		&cli.BoolFlag{
			Name:  "no-color",
			Usage: "Disable colors in log output",
		},
	)

	// Setup function
	var closers []logger.CleanupFunc
	app.Before = func(ctx context.Context, c *cli.Command) (context.Context, error) {
		closer, err := logger.InitDefaultLogger(c)
		if err != nil {
			return ctx, err
		}
		closers = append(closers, closer)
		return ctx, nil
	}

	// Cleanup function
	app.After = func(_ context.Context, _ *cli.Command) error {
		for _, closer := range closers {
			_ = closer()
		}
		return nil
	}

	// Assign commands
	app.Commands = append(app.Commands,
		action.ServeCommand(),
	)

	// Start the app
	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
