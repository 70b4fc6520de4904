// Package services provides the application service layer: workflow library
// operations and AI guide generation, with standardized error types.
package services

import (
	"errors"

	"github.com/masarflow/masar/pkg/generation"
	"github.com/masarflow/masar/pkg/persistence"
)

var (
	// ErrWorkflowNotFound is returned when a workflow is not found.
	ErrWorkflowNotFound = persistence.ErrWorkflowNotFound

	// ErrStepNotFound is returned when a step id does not exist in a workflow.
	ErrStepNotFound = errors.New("step not found")

	// ErrChecklistItemNotFound is returned when a checklist item id does not
	// exist in a step.
	ErrChecklistItemNotFound = errors.New("checklist item not found")

	// ErrStepHasNoChecklist is returned when toggling an item on a step that
	// is not a checklist.
	ErrStepHasNoChecklist = errors.New("step has no checklist")

	// ErrInvalidWorkflow is returned when a workflow fails validation.
	ErrInvalidWorkflow = errors.New("invalid workflow")

	// ErrEmptyPrompt is returned when generation is requested without a prompt.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")
)

// IsNotFoundError checks if an error should map to HTTP 404.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound) ||
		errors.Is(err, ErrStepNotFound) ||
		errors.Is(err, ErrChecklistItemNotFound)
}

// IsValidationError checks if an error is a client mistake that should map to
// HTTP 400 rather than a server failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidWorkflow) ||
		errors.Is(err, ErrStepHasNoChecklist) ||
		errors.Is(err, ErrEmptyPrompt) ||
		generation.IsConfigurationError(err)
}
