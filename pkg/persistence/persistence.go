// Package persistence provides the data storage abstraction for workflows and
// the app settings record.
package persistence

import (
	"context"

	"github.com/masarflow/masar/pkg/models"
)

// ListWorkflowsOptions filters the workflow listing. A nil IsPrivate matches
// both private and public workflows; Search is a case-insensitive substring
// match on the title. Results are always newest first.
type ListWorkflowsOptions struct {
	IsPrivate *bool
	Search    string
}

// WorkflowRepository is the durable collection of workflow records.
type WorkflowRepository interface {
	// List returns matching workflows in reverse insertion order.
	List(ctx context.Context, opts ListWorkflowsOptions) ([]*models.Workflow, error)

	// GetByID returns the workflow or (nil, nil) when it does not exist.
	GetByID(ctx context.Context, id int64) (*models.Workflow, error)

	// Create assigns the next unused numeric id, persists the workflow and
	// returns the assigned id.
	Create(ctx context.Context, workflow *models.Workflow) (int64, error)

	// Update persists the full record under its existing id.
	Update(ctx context.Context, workflow *models.Workflow) error

	// UpdateSteps replaces the steps sequence of one workflow.
	UpdateSteps(ctx context.Context, id int64, steps []*models.Step) error

	// Delete removes the workflow. Deleting a missing workflow is not an error.
	Delete(ctx context.Context, id int64) error
}

// SettingsRepository stores the singleton app settings record.
type SettingsRepository interface {
	// Get returns the persisted record, ErrSettingsNotFound when none exists,
	// or ErrSettingsCorrupt when the stored value cannot be decoded.
	Get(ctx context.Context) (*models.AppSettings, error)

	// Save replaces the record as a whole and stamps UpdatedAt.
	Save(ctx context.Context, settings *models.AppSettings) error
}

type Persistence interface {
	WorkflowRepository() WorkflowRepository
	SettingsRepository() SettingsRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
