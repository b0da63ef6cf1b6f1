package action

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mesa-rpg/mesa/internal/app/logger/logging"
	"github.com/mesa-rpg/mesa/internal/database"
	"github.com/mesa-rpg/mesa/internal/server"
	"github.com/urfave/cli/v3"
)

func ServeCommand() *cli.Command {
	cmd := &cli.Command{
		Name:        "serve",
		Description: "Start the table server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "bind-addr",
				Value: defaultBindAddr,
				Usage: "Address for the table server",
			},
			&cli.StringSliceFlag{
				Name:  "cors-origin",
				Usage: "Allowed CORS origins",
			},
			&cli.StringFlag{
				Name:    "jwt-secret",
				Usage:   "Secret used to sign and verify access tokens",
				Sources: cli.EnvVars("MESA_JWT_SECRET"),
			},
			&cli.StringFlag{
				Name:    "mestre-user",
				Value:   "mestre",
				Usage:   "Username of the game master account",
				Sources: cli.EnvVars("MESA_MESTRE_USER"),
			},
			&cli.StringFlag{
				Name:    "mestre-password",
				Usage:   "Password of the game master account (GM login is disabled when empty)",
				Sources: cli.EnvVars("MESA_MESTRE_PASSWORD"),
			},
			&cli.StringFlag{
				Name:  "upload-dir",
				Value: defaultUploadDir,
				Usage: "Directory where uploaded audio files are stored",
			},
			&cli.StringFlag{
				Name:  "database-type",
				Value: "memory",
				Usage: "Database type (memory, sqlite)",
			},
			&cli.StringFlag{
				Name:  "sqlite-path",
				Value: defaultSQLitePath,
				Usage: "Path to sqlite database file",
			},
		},
	}

	cmd.Action = func(ctx context.Context, c *cli.Command) error {
		var (
			db  *database.SQLite
			err error
		)
		switch c.String("database-type") {
		case "memory":
			db, err = database.NewMemory()
			if err != nil {
				return err
			}
		case "sqlite":
			db, err = database.NewLocal(c.String("sqlite-path"))
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown database type: %q", c.String("database-type"))
		}
		defer func() {
			if err := db.Close(); err != nil {
				slog.Error("Failed to close database", logging.Error(err))
			}
		}()

		jwtSecret := c.String("jwt-secret")
		if jwtSecret == "" {
			jwtSecret = uuid.NewString()
			slog.Warn("No JWT secret provided, using an ephemeral one; issued tokens will not survive a restart")
		}

		opts := []server.Option{
			server.WithBindAddr(c.String("bind-addr")),
			server.WithJWTSecret(jwtSecret),
			server.WithGMCredentials(c.String("mestre-user"), c.String("mestre-password")),
			server.WithUploadDir(c.String("upload-dir")),
			server.WithVersion(c.Root().Version),
		}
		if origins := c.StringSlice("cors-origin"); len(origins) > 0 {
			opts = append(opts, server.WithCORSAllowedOrigins(origins))
		}
		srv := server.NewServer(db, opts...)

		start, shutdown := srv.Handlers()
		return srv.Graceful(ctx, start, shutdown)
	}

	return cmd
}
