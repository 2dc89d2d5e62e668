package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pseudomuto/cirrus/pkg/config"
	"github.com/pseudomuto/cirrus/pkg/consts"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type (
	Params struct {
		fx.In

		Args       []string
		Commands   []*cli.Command `group:"commands"`
		Config     *config.Config
		Ctx        context.Context
		Lifecycle  fx.Lifecycle
		Shutdowner fx.Shutdowner
		Version    *Version
	}

	Version struct {
		Version   string
		Commit    string
		Timestamp string
	}
)

// Run builds the cirrus CLI and starts it once the fx application has started,
// shutting the application down with exit code 1 when the command fails.
//
// Global flags are applied to the shared *config.Config before any command
// runs, so commands always see the merged configuration:
//   - --config, -c: configuration file (env CIRRUS_CONFIG, default cirrus.yaml)
//   - --location, -l: migration location, repeatable; replaces config locations
//   - --concurrency: number of migrations loaded in parallel
//   - --strict: reject mismatched forward/rollback statement counts
//   - --aws-access-key-id, --aws-secret-access-key: S3 credentials
//     (env AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY)
//   - --debug: enable debug logging
//
// Example usage:
//
//	cirrus --location s3://acme-migrations/core list
//	cirrus -c ./cirrus.yaml plan
func Run(p Params) {
	cli.VersionPrinter = func(cmd *cli.Command) {
		fmt.Fprintln(cmd.Writer, "Version:", p.Version.Version)
		fmt.Fprintln(cmd.Writer, "Commit:", p.Version.Commit)
		fmt.Fprintln(cmd.Writer, "Date:", p.Version.Timestamp)
	}

	app := newApp(p.Config, p.Version.Version, p.Commands)

	// fx bounds start hooks with a timeout; the command must not block it.
	p.Lifecycle.Append(fx.StartHook(func() {
		go func() {
			if err := app.Run(p.Ctx, p.Args); err != nil {
				slog.Error("Error running command", "err", err)
				_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
				return
			}

			_ = p.Shutdowner.Shutdown(fx.ExitCode(0))
		}()
	}))
}

func newApp(cfg *config.Config, version string, commands []*cli.Command) *cli.Command {
	return &cli.Command{
		Name:  "cirrus",
		Usage: "Inspect SQL migrations stored in S3, Azure Blob Storage or on disk",
		Description: `cirrus discovers SQL migrations in one or more locations, parses their
directives and rollback files, and resolves the dependencies between them.

Locations may be s3://bucket/prefix, azblob://container/prefix, file:///dir
or plain directory paths.`,
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "the cirrus config file",
				Sources: cli.EnvVars(config.EnvConfigFile),
				Value:   consts.DefaultConfigFile,
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			&cli.StringSliceFlag{
				Name:    "location",
				Aliases: []string{"l"},
				Usage:   "a migration location (repeatable, replaces the configured locations)",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "number of migrations loaded in parallel",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "reject migrations whose forward and rollback statement counts differ",
			},
			&cli.StringFlag{
				Name:    "aws-access-key-id",
				Usage:   "AWS access key ID for s3:// locations",
				Sources: cli.EnvVars("AWS_ACCESS_KEY_ID"),
			},
			&cli.StringFlag{
				Name:    "aws-secret-access-key",
				Usage:   "AWS secret access key for s3:// locations",
				Sources: cli.EnvVars("AWS_SECRET_ACCESS_KEY"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Before:   configure(cfg),
		Commands: commands,
	}
}

// configure merges the global flags into cfg.
func configure(cfg *config.Config) func(context.Context, *cli.Command) (context.Context, error) {
	return func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
		if cmd.Bool("debug") {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}

		if path := cmd.String("config"); cmd.IsSet("config") && path != "" {
			loaded, err := config.LoadConfigFile(path)
			if err != nil {
				return ctx, err
			}
			*cfg = *loaded
		}

		if locations := cmd.StringSlice("location"); len(locations) > 0 {
			cfg.Locations = locations
		}

		if cmd.IsSet("concurrency") {
			cfg.Concurrency = cmd.Int("concurrency")
		}

		if cmd.Bool("strict") {
			cfg.StrictPairing = true
		}

		if v := cmd.String("aws-access-key-id"); v != "" {
			cfg.S3.AccessKeyID = v
		}

		if v := cmd.String("aws-secret-access-key"); v != "" {
			cfg.S3.SecretAccessKey = v
		}

		return ctx, cfg.Validate()
	}
}
