package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/idcore/cmd/app/commands"
	"github.com/allisson/idcore/internal/app"
	"github.com/allisson/idcore/internal/config"
)

func getRegistryCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-certificate",
			Usage: "Upload a PEM or PKCS#12 certificate bundle for an organization",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "organization-id",
					Aliases:  []string{"o"},
					Required: true,
					Usage:    "Owning organization ID (UUID)",
				},
				&cli.StringFlag{
					Name:    "type",
					Aliases: []string{"t"},
					Value:   "public_key",
					Usage:   "Certificate type: organization_signing or public_key",
				},
				&cli.StringFlag{
					Name:     "file",
					Required: true,
					Usage:    "Path to the PEM or PKCS#12 bundle",
				},
				&cli.StringFlag{
					Name:    "password",
					Sources: cli.EnvVars("CERTIFICATE_PASSWORD"),
					Usage:   "PKCS#12 bundle password",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				certificateUseCase, err := container.CertificateUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateCertificate(
					ctx,
					certificateUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("organization-id"),
					cmd.String("type"),
					cmd.String("file"),
					cmd.String("password"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "update-certificate-status",
			Usage: "Change the status of a certificate",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "id",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Certificate ID (UUID)",
				},
				&cli.StringFlag{
					Name:     "status",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "New status: active, suspended, expired or inactive",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				certificateUseCase, err := container.CertificateUseCase()
				if err != nil {
					return err
				}

				return commands.RunUpdateCertificateStatus(
					ctx,
					certificateUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("id"),
					cmd.String("status"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "create-secret-credential",
			Usage: "Generate a client_secret_jwt credential for an application",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "application-id",
					Aliases:  []string{"a"},
					Required: true,
					Usage:    "Application ID (UUID)",
				},
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Credential name, unique among live credentials",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				credentialUseCase, err := container.CredentialUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateSecretCredential(
					ctx,
					credentialUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("application-id"),
					cmd.String("name"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "create-private-key-credential",
			Usage: "Bind a private_key_jwt credential to a public key certificate",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "application-id",
					Aliases:  []string{"a"},
					Required: true,
					Usage:    "Application ID (UUID)",
				},
				&cli.StringFlag{
					Name:     "certificate-id",
					Aliases:  []string{"c"},
					Required: true,
					Usage:    "Active public key certificate ID (UUID)",
				},
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Credential name, unique among live credentials",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				credentialUseCase, err := container.CredentialUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreatePrivateKeyCredential(
					ctx,
					credentialUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("application-id"),
					cmd.String("certificate-id"),
					cmd.String("name"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "update-credential-status",
			Usage: "Activate, deactivate or disable a credential",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "id",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Credential ID (UUID)",
				},
				&cli.StringFlag{
					Name:     "status",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "New status: active, inactive or disabled",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				credentialUseCase, err := container.CredentialUseCase()
				if err != nil {
					return err
				}

				return commands.RunUpdateCredentialStatus(
					ctx,
					credentialUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("id"),
					cmd.String("status"),
					cmd.String("format"),
				)
			},
		},
	}
}
