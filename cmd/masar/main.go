// Package main provides the masar command line tool for creating, generating
// and running workflow guides from the terminal.
package main

import (
	"context"
	"os"

	"github.com/masarflow/masar/pkg/log"
	cli "github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:                  "masar",
		Usage:                 "Create, generate and run workflow guides",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Database connection URL (postgres://, sqlite:// or a directory path)",
				Value:   "./data",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "generate",
				Aliases:   []string{"g"},
				Usage:     "Generate a workflow guide from a prompt",
				ArgsUsage: "<prompt>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "model",
						Aliases: []string{"m"},
						Usage:   "Registered model ID to use (defaults to the default model)",
					},
					&cli.StringFlag{
						Name:    "language",
						Aliases: []string{"l"},
						Usage:   "Output language (en or ar)",
					},
					&cli.BoolFlag{
						Name:  "save",
						Usage: "Save the generated workflow to the library",
					},
					&cli.BoolFlag{
						Name:  "private",
						Usage: "Mark the saved workflow as private",
					},
					&cli.BoolFlag{
						Name:  "no-search",
						Usage: "Disable search grounding",
					},
					&cli.BoolFlag{
						Name:  "no-media",
						Usage: "Skip image resolution for media steps",
					},
					&cli.StringFlag{
						Name:    "redis-url",
						Usage:   "Redis URL for the image URL cache (optional)",
						Sources: cli.EnvVars("REDIS_URL"),
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runGenerate(ctx, cmd)
				},
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List workflow guides in the library",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "search",
						Aliases: []string{"s"},
						Usage:   "Filter by a case-insensitive title substring",
					},
					&cli.BoolFlag{
						Name:  "private",
						Usage: "Show only private workflows",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runList(ctx, cmd)
				},
			},
			{
				Name:      "run",
				Aliases:   []string{"r"},
				Usage:     "Walk through a workflow guide step by step",
				ArgsUsage: "<workflow-id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runWorkflow(ctx, cmd)
				},
			},
			{
				Name:    "models",
				Aliases: []string{"m"},
				Usage:   "Manage registered AI models",
				Commands: []*cli.Command{
					{
						Name:  "list",
						Usage: "List registered AI models",
						Action: func(ctx context.Context, cmd *cli.Command) error {
							return runModelsList(ctx, cmd)
						},
					},
					{
						Name:  "add",
						Usage: "Register an AI model",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "name",
								Usage:    "Display name",
								Required: true,
							},
							&cli.StringFlag{
								Name:     "provider",
								Usage:    "Provider (gemini, openai, anthropic or deepseek)",
								Required: true,
							},
							&cli.StringFlag{
								Name:     "model-name",
								Usage:    "Provider model identifier (e.g. gemini-2.5-flash)",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "api-key",
								Usage: "Provider API key",
							},
							&cli.BoolFlag{
								Name:  "default",
								Usage: "Make this the default model",
							},
						},
						Action: func(ctx context.Context, cmd *cli.Command) error {
							return runModelsAdd(ctx, cmd)
						},
					},
					{
						Name:      "default",
						Usage:     "Set the default AI model",
						ArgsUsage: "<model-id>",
						Action: func(ctx context.Context, cmd *cli.Command) error {
							return runModelsDefault(ctx, cmd)
						},
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.WithModule("cli").Error("Command failed", "error", err)
		os.Exit(1)
	}
}
