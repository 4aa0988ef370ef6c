package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/starford/docpages/internal"
	pkgconfig "github.com/starford/docpages/pkg/config"
)

// Version is set at build time via ldflags.
var Version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	return internal.RunMCP(ctx,
		internal.WithConfig(cfg),
		internal.WithLogOutput(os.Stderr),
		internal.WithVersion(Version),
	)
}

func render(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("render: a request path is required, e.g. /docs/intro")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	return internal.Render(ctx, os.Stdout, path, cmd.Bool("toc"),
		internal.WithConfig(cfg),
		internal.WithLogOutput(os.Stderr),
	)
}

func main() {
	// maxprocs.Set only fails on an invalid GOMAXPROCS env; runtime defaults apply then.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	cmd := &cli.Command{
		Name:    "docpages",
		Usage:   "Serve a markdown documentation site described by a configured page tree",
		Version: Version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "mcp",
				Usage:  "Serve page tools over the Model Context Protocol on stdio",
				Action: serveMCP,
			},
			{
				Name:      "render",
				Usage:     "Render one page to stdout",
				ArgsUsage: "<path>",
				Action:    render,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "toc",
						Usage: "Print the heading list instead of HTML",
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
