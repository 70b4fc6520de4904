package main

import (
	"context"
	"fmt"

	"github.com/masarflow/masar/pkg/models"
	"github.com/masarflow/masar/pkg/settings"
	cli "github.com/urfave/cli/v3"
)

func runModelsList(ctx context.Context, command *cli.Command) error {
	e := newEnv(ctx, command)
	defer e.close(ctx)

	settingsService := settings.NewService(e.persistence.SettingsRepository(), e.logger)

	appSettings, err := settingsService.Get(ctx)
	if err != nil {
		return err
	}

	if len(appSettings.AIModels) == 0 {
		fmt.Println("No models registered. Add one with: masar models add")

		return nil
	}

	for _, model := range appSettings.AIModels {
		marker := " "
		if model.IsDefault {
			marker = "*"
		}

		configured := "missing API key"
		if model.Configured() {
			configured = "configured"
		}

		fmt.Printf("%s %s  %s (%s/%s, %s)\n", marker, model.ID, model.Name, model.Provider, model.ModelName, configured)
	}

	return nil
}

func runModelsAdd(ctx context.Context, command *cli.Command) error {
	e := newEnv(ctx, command)
	defer e.close(ctx)

	settingsService := settings.NewService(e.persistence.SettingsRepository(), e.logger)

	added, err := settingsService.AddAIModel(ctx, &models.AIModel{
		Name:      command.String("name"),
		Provider:  models.AIProvider(command.String("provider")),
		ModelName: command.String("model-name"),
		APIKey:    command.String("api-key"),
		IsDefault: command.Bool("default"),
	})
	if err != nil {
		return err
	}

	fmt.Printf("Registered %s as %s\n", added.Name, added.ID)

	return nil
}

func runModelsDefault(ctx context.Context, command *cli.Command) error {
	id := command.Args().First()
	if id == "" {
		return fmt.Errorf("usage: masar models default <model-id>")
	}

	e := newEnv(ctx, command)
	defer e.close(ctx)

	settingsService := settings.NewService(e.persistence.SettingsRepository(), e.logger)

	ok, err := settingsService.SetDefaultAIModel(ctx, id)
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("no model with id %q", id)
	}

	fmt.Printf("Default model set to %s\n", id)

	return nil
}
