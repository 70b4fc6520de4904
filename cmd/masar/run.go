package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/masarflow/masar/pkg/runner"
	"github.com/masarflow/masar/pkg/services"
	cli "github.com/urfave/cli/v3"
)

func runWorkflow(ctx context.Context, command *cli.Command) error {
	id, err := strconv.ParseInt(command.Args().First(), 10, 64)
	if err != nil {
		return fmt.Errorf("usage: masar run <workflow-id>")
	}

	e := newEnv(ctx, command)
	defer e.close(ctx)

	workflowService := services.NewWorkflow(e.persistence, nil, e.logger)

	workflow, err := workflowService.FetchByID(ctx, id)
	if err != nil {
		return err
	}

	run, err := runner.NewRun(workflow, e.persistence.WorkflowRepository())
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", workflow.Title)

	if workflow.Description != "" {
		fmt.Printf("%s\n", workflow.Description)
	}

	fmt.Println("\nCommands: n(ext), b(ack), t <item> to toggle a checklist entry, q(uit)")

	scanner := bufio.NewScanner(os.Stdin)

	for {
		printStep(run.StepNumber(), run.TotalSteps(), run.Current())
		fmt.Printf("progress: %.0f%%\n> ", run.Progress()*100)

		if !scanner.Scan() {
			break
		}

		input := strings.Fields(strings.TrimSpace(scanner.Text()))
		if len(input) == 0 {
			continue
		}

		switch input[0] {
		case "n", "next":
			if !run.Advance() {
				fmt.Println("You reached the last step.")
			}
		case "b", "back":
			run.Retreat()
		case "t", "toggle":
			if err := toggleItem(ctx, run, input); err != nil {
				fmt.Println(err)
			}
		case "q", "quit":
			return nil
		default:
			fmt.Printf("Unknown command %q\n", input[0])
		}
	}

	return scanner.Err()
}

// toggleItem flips the checklist entry addressed by its 1-based position in
// the current step.
func toggleItem(ctx context.Context, run *runner.Run, input []string) error {
	if len(input) < 2 {
		return fmt.Errorf("usage: t <item number>")
	}

	step := run.Current()
	if len(step.ChecklistItems) == 0 {
		return fmt.Errorf("the current step has no checklist")
	}

	position, err := strconv.Atoi(input[1])
	if err != nil || position < 1 || position > len(step.ChecklistItems) {
		return fmt.Errorf("item number must be between 1 and %d", len(step.ChecklistItems))
	}

	item := step.ChecklistItems[position-1]

	return run.ToggleChecklistItem(ctx, item.ID, !item.Checked)
}
