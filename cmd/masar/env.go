package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/masarflow/masar/pkg/cmd"
	"github.com/masarflow/masar/pkg/log"
	"github.com/masarflow/masar/pkg/models"
	"github.com/masarflow/masar/pkg/persistence"
	cli "github.com/urfave/cli/v3"
)

// env bundles the pieces every subcommand needs.
type env struct {
	logger      *slog.Logger
	persistence persistence.Persistence
}

func newEnv(ctx context.Context, command *cli.Command) *env {
	log.Setup(command.String("log-level"))

	logger := log.WithModule("cli")

	return &env{
		logger:      logger,
		persistence: cmd.NewPersistence(ctx, logger, command.String("database-url")),
	}
}

func (e *env) close(ctx context.Context) {
	if err := e.persistence.Close(ctx); err != nil {
		e.logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
	}
}

func printStep(number, total int, step *models.Step) {
	fmt.Printf("\n[%d/%d] %s\n", number, total, step.Title)

	switch step.Type {
	case models.StepTypeGPS:
		fmt.Printf("  location: %s\n", step.Content)
	case models.StepTypeChecklist:
		for i, item := range step.ChecklistItems {
			mark := " "
			if item.Checked {
				mark = "x"
			}

			fmt.Printf("  %d. [%s] %s\n", i+1, mark, item.Label)
		}
	case models.StepTypeMedia:
		fmt.Printf("  image: %s\n", step.Content)
	default:
		if step.Content != "" {
			fmt.Printf("  %s\n", step.Content)
		}
	}
}
