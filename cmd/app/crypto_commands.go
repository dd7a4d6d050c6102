package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/idcore/cmd/app/commands"
	"github.com/allisson/idcore/internal/app"
	"github.com/allisson/idcore/internal/config"
)

func kmsKeyURIFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "kms-key-uri",
		Sources: cli.EnvVars("KMS_KEY_URI"),
		Usage:   "KMS key URI sealing the master password (e.g., base64key://, gcpkms://..., awskms://...)",
	}
}

func getCryptoCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-master-password",
			Usage: "Generate a new master password for the envelope store",
			Flags: []cli.Flag{kmsKeyURIFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunCreateMasterPassword(
					ctx,
					container.KMSService(),
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("kms-key-uri"),
				)
			},
		},
		{
			Name:  "rotate-master-password",
			Usage: "Rewrap every stored key material under a new master password",
			Flags: []cli.Flag{
				kmsKeyURIFlag(),
				&cli.StringFlag{
					Name:    "resume-password",
					Sources: cli.EnvVars("NEW_MASTER_PASSWORD"),
					Usage:   "New master password printed by an interrupted rotation",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				currentPassword, err := container.MasterPassword()
				if err != nil {
					return err
				}

				masterPasswordUseCase, err := container.MasterPasswordUseCase()
				if err != nil {
					return err
				}

				return commands.RunRotateMasterPassword(
					ctx,
					masterPasswordUseCase,
					container.KMSService(),
					currentPassword,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("kms-key-uri"),
					cmd.String("resume-password"),
				)
			},
		},
	}
}
