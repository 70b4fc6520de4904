package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/masarflow/masar/pkg/eventbus"
	"github.com/masarflow/masar/pkg/events"
	"github.com/masarflow/masar/pkg/models"
	"github.com/masarflow/masar/pkg/persistence"
)

// Workflow is the library service: create, browse, update and delete guides,
// and flip checklist state outside a run. Lifecycle events are published
// best-effort; a broken bus never fails the operation.
type Workflow struct {
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	validator   *validator.Validate
	logger      *slog.Logger
}

// NewWorkflow creates a new workflow service. The event bus may be nil.
func NewWorkflow(persistence persistence.Persistence, eventBus eventbus.EventBus, logger *slog.Logger) *Workflow {
	return &Workflow{
		persistence: persistence,
		eventBus:    eventBus,
		validator:   validator.New(),
		logger:      logger,
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// ListWorkflowsRequest contains options for listing workflows.
type ListWorkflowsRequest struct {
	// IsPrivate filters by visibility when set.
	IsPrivate *bool

	// Search is a case-insensitive title substring filter.
	Search string
}

// List retrieves workflows, newest first.
func (w *Workflow) List(ctx context.Context, req ListWorkflowsRequest) ([]*models.Workflow, error) {
	workflows, err := w.persistence.WorkflowRepository().List(ctx, persistence.ListWorkflowsOptions{
		IsPrivate: req.IsPrivate,
		Search:    req.Search,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	return workflows, nil
}

// FetchByID retrieves a workflow by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id int64) (*models.Workflow, error) {
	workflow, err := w.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if workflow == nil {
		return nil, ErrWorkflowNotFound
	}

	return workflow, nil
}

// Create adds a new hand-written workflow to the library.
func (w *Workflow) Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	return w.create(ctx, workflow, "manual")
}

// CreateGenerated adds an AI-generated workflow to the library.
func (w *Workflow) CreateGenerated(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	return w.create(ctx, workflow, "ai")
}

func (w *Workflow) create(ctx context.Context, workflow *models.Workflow, source string) (*models.Workflow, error) {
	workflow.CreatedAt = time.Now().UTC()
	if workflow.Steps == nil {
		workflow.Steps = make([]*models.Step, 0)
	}

	err := w.validator.Struct(workflow)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWorkflow, err)
	}

	_, err = w.persistence.WorkflowRepository().Create(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	w.publish(ctx, workflow.ID, events.WorkflowCreated{
		BaseEvent: events.NewBaseEvent(events.WorkflowCreatedEvent, workflow.ID),
		Title:     workflow.Title,
		StepCount: len(workflow.Steps),
		Source:    source,
	})

	return workflow, nil
}

// WorkflowUpdate carries the fields of a partial update; nil fields keep
// their stored value. Steps replace the whole sequence when non-nil.
type WorkflowUpdate struct {
	Title       *string
	Description *string
	IsPrivate   *bool
	Steps       []*models.Step
}

// Update modifies an existing workflow by its ID.
func (w *Workflow) Update(ctx context.Context, id int64, update WorkflowUpdate) (*models.Workflow, error) {
	existing, err := w.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		existing.Title = *update.Title
	}

	if update.Description != nil {
		existing.Description = *update.Description
	}

	if update.IsPrivate != nil {
		existing.IsPrivate = *update.IsPrivate
	}

	if update.Steps != nil {
		existing.Steps = update.Steps
	}

	err = w.validator.Struct(existing)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWorkflow, err)
	}

	err = w.persistence.WorkflowRepository().Update(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	return existing, nil
}

// Delete removes a workflow by its ID.
func (w *Workflow) Delete(ctx context.Context, id int64) error {
	existing, err := w.FetchByID(ctx, id)
	if err != nil {
		return err
	}

	err = w.persistence.WorkflowRepository().Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	w.publish(ctx, id, events.WorkflowDeleted{
		BaseEvent: events.NewBaseEvent(events.WorkflowDeletedEvent, id),
		Title:     existing.Title,
	})

	return nil
}

// ToggleChecklistItem sets the checked state of one checklist item and
// persists the workflow's steps.
func (w *Workflow) ToggleChecklistItem(ctx context.Context, workflowID int64, stepID, itemID string, checked bool) (*models.Workflow, error) {
	workflow, err := w.FetchByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	step := workflow.StepByID(stepID)
	if step == nil {
		return nil, ErrStepNotFound
	}

	if step.Type != models.StepTypeChecklist || len(step.ChecklistItems) == 0 {
		return nil, ErrStepHasNoChecklist
	}

	item := step.ChecklistItemByID(itemID)
	if item == nil {
		return nil, ErrChecklistItemNotFound
	}

	item.Checked = checked

	err = w.persistence.WorkflowRepository().UpdateSteps(ctx, workflowID, workflow.Steps)
	if err != nil {
		return nil, fmt.Errorf("failed to persist checklist state: %w", err)
	}

	w.publish(ctx, workflowID, events.ChecklistToggled{
		BaseEvent: events.NewBaseEvent(events.ChecklistToggledEvent, workflowID),
		StepID:    stepID,
		ItemID:    itemID,
		Checked:   checked,
	})

	return workflow, nil
}

func (w *Workflow) publish(ctx context.Context, workflowID int64, event eventbus.Event) {
	if w.eventBus == nil {
		return
	}

	err := w.eventBus.Publish(ctx, fmt.Sprintf("workflow-%d", workflowID), event)
	if err != nil {
		w.logger.WarnContext(ctx, "failed to publish event", "event_type", event.GetType(), "error", err)
	}
}
