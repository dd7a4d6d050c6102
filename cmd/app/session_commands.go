package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/idcore/cmd/app/commands"
	"github.com/allisson/idcore/internal/app"
	"github.com/allisson/idcore/internal/config"
)

func getSessionCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-auth-session",
			Usage: "Open an SSO session for a subject and print its cookie",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "application-id",
					Aliases:  []string{"a"},
					Required: true,
					Usage:    "Application ID (UUID)",
				},
				&cli.StringFlag{
					Name:     "subject",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Subject (user) ID",
				},
				&cli.StringFlag{
					Name:  "scopes",
					Value: "openid",
					Usage: "Granted scopes, space or comma separated",
				},
				&cli.StringFlag{
					Name:  "redirect-uri",
					Usage: "Redirect URI recorded on the session",
				},
				&cli.StringFlag{
					Name:  "device-fingerprint",
					Usage: "Bind the session to this device fingerprint header value",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				sessionUseCase, err := container.SessionUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateAuthSession(
					ctx,
					sessionUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					commands.CreateAuthSessionInput{
						ApplicationID:     cmd.String("application-id"),
						SubjectID:         cmd.String("subject"),
						Scopes:            cmd.String("scopes"),
						RedirectURI:       cmd.String("redirect-uri"),
						DeviceFingerprint: cmd.String("device-fingerprint"),
						Format:            cmd.String("format"),
					},
				)
			},
		},
	}
}
