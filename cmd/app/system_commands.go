package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/idcore/cmd/app/commands"
	"github.com/allisson/idcore/internal/app"
	"github.com/allisson/idcore/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			},
		},
		{
			Name:  "clean-expired-tokens",
			Usage: "Delete tokens that expired more than the given number of days ago",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "days",
					Aliases: []string{"d"},
					Value:   0,
					Usage:   "Keep tokens that expired less than this many days ago",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				tokenUseCase, err := container.TokenUseCase()
				if err != nil {
					return err
				}

				return commands.RunCleanExpiredTokens(
					ctx,
					tokenUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					int(cmd.Int("days")),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "verify-audit-events",
			Usage: "Verify the signatures of audit events in a time range",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "start-date",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Start of the range (YYYY-MM-DD or YYYY-MM-DD HH:MM:SS, UTC)",
				},
				&cli.StringFlag{
					Name:     "end-date",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "End of the range, exclusive",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				auditUseCase, err := container.AuditUseCase()
				if err != nil {
					return err
				}

				return commands.RunVerifyAuditEvents(
					ctx,
					auditUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("start-date"),
					cmd.String("end-date"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "clean-audit-events",
			Usage: "Delete audit events older than the given number of days",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "days",
					Aliases: []string{"d"},
					Value:   90,
					Usage:   "Keep audit events newer than this many days",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				auditUseCase, err := container.AuditUseCase()
				if err != nil {
					return err
				}

				return commands.RunCleanAuditEvents(
					ctx,
					auditUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					int(cmd.Int("days")),
					cmd.String("format"),
				)
			},
		},
	}
}
