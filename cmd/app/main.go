// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/familyvault/vault/cmd/app/commands"
	"github.com/familyvault/vault/internal/app"
	"github.com/familyvault/vault/internal/config"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "vault",
		Usage:   "Personal document vault with envelope encryption",
		Version: version,
		Commands: []*cli.Command{
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
					return commands.RunMigrations()
				},
			},
			{
				Name:  "encrypt-fields",
				Usage: "Encrypt legacy plaintext sensitive fields in place",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					container := app.NewContainer(config.Load())
					logger := container.Logger()
					defer func() {
						if err := container.Shutdown(context.Background()); err != nil {
							logger.Error("failed to shutdown container", slog.Any("error", err))
						}
					}()

					migrationUseCase, err := container.FieldMigrationUseCase(ctx)
					if err != nil {
						return err
					}
					return commands.RunEncryptFields(ctx, migrationUseCase, logger)
				},
			},
			{
				Name:  "create-org",
				Usage: "Create an organization owned by an existing user",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "owner-email",
						Aliases:  []string{"e"},
						Required: true,
						Usage:    "Email address of the owner account",
					},
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Required: true,
						Usage:    "Display name for the organization",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					container := app.NewContainer(config.Load())
					logger := container.Logger()
					defer func() {
						if err := container.Shutdown(context.Background()); err != nil {
							logger.Error("failed to shutdown container", slog.Any("error", err))
						}
					}()

					orgUseCase, err := container.OrgUseCase(ctx)
					if err != nil {
						return err
					}
					userRepo, err := container.UserRepository()
					if err != nil {
						return err
					}
					return commands.RunCreateOrg(
						ctx,
						orgUseCase,
						userRepo,
						logger,
						cmd.String("owner-email"),
						cmd.String("name"),
					)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
