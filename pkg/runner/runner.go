// Package runner walks a workflow guide step by step, the way someone
// following it in the field would: one step visible at a time, back and
// forward navigation, checklist ticks persisted as they happen.
package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/masarflow/masar/pkg/models"
	"github.com/masarflow/masar/pkg/persistence"
)

// ErrNoSteps is returned when a workflow without steps cannot be run.
var ErrNoSteps = errors.New("workflow has no steps")

// Run is one in-progress walk through a workflow. The cursor is session
// state; only checklist ticks touch the repository.
type Run struct {
	workflow *models.Workflow
	repo     persistence.WorkflowRepository
	cursor   int
}

// NewRun starts a run at the first step.
func NewRun(workflow *models.Workflow, repo persistence.WorkflowRepository) (*Run, error) {
	if len(workflow.Steps) == 0 {
		return nil, ErrNoSteps
	}

	return &Run{workflow: workflow, repo: repo}, nil
}

// Current returns the step under the cursor.
func (r *Run) Current() *models.Step {
	return r.workflow.Steps[r.cursor]
}

// StepNumber is the 1-based position shown to the user.
func (r *Run) StepNumber() int {
	return r.cursor + 1
}

// TotalSteps is the number of steps in the workflow.
func (r *Run) TotalSteps() int {
	return len(r.workflow.Steps)
}

// Done reports whether the cursor sits on the last step.
func (r *Run) Done() bool {
	return r.cursor == len(r.workflow.Steps)-1
}

// Advance moves to the next step and reports whether the cursor moved.
// Advancing past the last step is a no-op.
func (r *Run) Advance() bool {
	if r.Done() {
		return false
	}

	r.cursor++

	return true
}

// Retreat moves to the previous step and reports whether the cursor moved.
func (r *Run) Retreat() bool {
	if r.cursor == 0 {
		return false
	}

	r.cursor--

	return true
}

// Progress is the fraction of steps behind the cursor, in [0, 1). It reads
// "how far in am I", so it stays below 1 even on the last step.
func (r *Run) Progress() float64 {
	return float64(r.cursor) / float64(len(r.workflow.Steps))
}

// ToggleChecklistItem sets the checked state of one item on the current step
// and persists the whole steps sequence. Unknown item ids and steps without a
// checklist are silent no-ops, matching how a stale UI event should land.
func (r *Run) ToggleChecklistItem(ctx context.Context, itemID string, checked bool) error {
	current := r.Current()
	if current.ChecklistItems == nil {
		return nil
	}

	if current.ChecklistItemByID(itemID) == nil {
		return nil
	}

	steps := r.workflow.CloneSteps()
	for _, step := range steps {
		if step.ID != current.ID {
			continue
		}

		item := step.ChecklistItemByID(itemID)
		if item != nil {
			item.Checked = checked
		}
	}

	err := r.repo.UpdateSteps(ctx, r.workflow.ID, steps)
	if err != nil {
		return fmt.Errorf("failed to persist checklist state: %w", err)
	}

	r.workflow.Steps = steps

	return nil
}
