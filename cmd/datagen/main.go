package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/datagen/internal"
)

const defaultCatalog = "datagen.db"

// browseConfig is baseConfig for the commands that always read through a catalog.
func browseConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg, err := baseConfig(cmd)
	if err != nil {
		return nil, err
	}
	cfg.Archive.Root = cmd.String("root")
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = defaultCatalog
	}
	return cfg, nil
}

// baseConfig builds the application config shared by every command.
func baseConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := cfg.App.LogLevel.UnmarshalText([]byte(cmd.String("log-level"))); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	cfg.Catalog.Path = cmd.String("catalog")
	return cfg, nil
}

func generate(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 2 {
		return cli.Exit(fmt.Sprintf("expected <config> and <output> arguments, got %d\n\nUsage: %s %s",
			cmd.NArg(), cmd.Name, cmd.ArgsUsage), 2)
	}

	cfg, err := baseConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Generation.Blueprint = cmd.Args().Get(0)
	cfg.Archive.Root = cmd.Args().Get(1)
	cfg.Generation.Seed = uint64(cmd.Uint("seed"))

	if err := internal.Generate(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	return nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := browseConfig(cmd)
	if err != nil {
		return err
	}
	cfg.HTTP.Port = int(cmd.Int("port"))

	if err := internal.Serve(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := browseConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.ServeMCP(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("mcp: %w", err)
	}
	return nil
}

func rootFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "root",
		Aliases:  []string{"r"},
		Usage:    "Archive root directory produced by a previous run",
		Required: true,
		Sources:  cli.EnvVars("DATAGEN_ROOT"),
	}
}

func main() {
	cmd := &cli.Command{
		Name:      "datagen",
		Usage:     "Generates a fake directory structure with fictive company documents",
		Version:   "1.0",
		ArgsUsage: "<config> <output>",
		Action:    generate,
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:    "seed",
				Usage:   "Seed for reproducible output (0 picks a random seed)",
				Sources: cli.EnvVars("DATAGEN_SEED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level: debug, info, warn or error",
				Value:   "info",
				Sources: cli.EnvVars("DATAGEN_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "catalog",
				Usage:   "SQLite catalog path (serve and mcp default to " + defaultCatalog + ")",
				Sources: cli.EnvVars("DATAGEN_CATALOG"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Browse a generated archive over HTTP",
				Action: serve,
				Flags: []cli.Flag{
					rootFlag(),
					&cli.IntFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "HTTP port",
						Value:   8080,
						Sources: cli.EnvVars("DATAGEN_PORT"),
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve archive tools to MCP clients over stdio",
				Action: serveMCP,
				Flags:  []cli.Flag{rootFlag()},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
