package main

import (
	"context"
	"fmt"

	"github.com/masarflow/masar/pkg/cmd"
	"github.com/masarflow/masar/pkg/generation"
	"github.com/masarflow/masar/pkg/models"
	"github.com/masarflow/masar/pkg/services"
	"github.com/masarflow/masar/pkg/settings"
	cli "github.com/urfave/cli/v3"
)

func runGenerate(ctx context.Context, command *cli.Command) error {
	prompt := command.Args().First()
	if prompt == "" {
		return fmt.Errorf("usage: masar generate <prompt>")
	}

	e := newEnv(ctx, command)
	defer e.close(ctx)

	settingsService := settings.NewService(e.persistence.SettingsRepository(), e.logger)
	workflowService := services.NewWorkflow(e.persistence, nil, e.logger)
	searcherFor := cmd.NewImageSearcherFactory(command.String("redis-url"), e.logger)
	generationService := services.NewGeneration(settingsService, workflowService, searcherFor, nil, e.logger)

	options := generation.DefaultOptions()
	options.UseSearch = !command.Bool("no-search")
	options.IncludeMedia = !command.Bool("no-media")

	workflow, err := generationService.Generate(ctx, services.GenerateRequest{
		Prompt:    prompt,
		ModelID:   command.String("model"),
		Language:  models.Language(command.String("language")),
		Options:   options,
		Save:      command.Bool("save"),
		IsPrivate: command.Bool("private"),
	})
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", workflow.Title)

	if workflow.Description != "" {
		fmt.Printf("%s\n", workflow.Description)
	}

	for i, step := range workflow.Steps {
		printStep(i+1, len(workflow.Steps), step)
	}

	if command.Bool("save") {
		fmt.Printf("\nSaved as workflow %d\n", workflow.ID)
	}

	return nil
}
