package main

import (
	"context"
	"fmt"

	"github.com/masarflow/masar/pkg/services"
	cli "github.com/urfave/cli/v3"
)

func runList(ctx context.Context, command *cli.Command) error {
	e := newEnv(ctx, command)
	defer e.close(ctx)

	workflowService := services.NewWorkflow(e.persistence, nil, e.logger)

	req := services.ListWorkflowsRequest{Search: command.String("search")}

	if command.Bool("private") {
		isPrivate := true
		req.IsPrivate = &isPrivate
	}

	workflows, err := workflowService.List(ctx, req)
	if err != nil {
		return err
	}

	if len(workflows) == 0 {
		fmt.Println("No workflows found")

		return nil
	}

	for _, workflow := range workflows {
		visibility := ""
		if workflow.IsPrivate {
			visibility = " (private)"
		}

		fmt.Printf("%4d  %s%s  [%d steps]\n", workflow.ID, workflow.Title, visibility, len(workflow.Steps))
	}

	return nil
}
