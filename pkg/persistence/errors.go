// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrWorkflowNotFound indicates a workflow was not found by the given id.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrSettingsNotFound indicates no settings record has been persisted yet.
	ErrSettingsNotFound = errors.New("settings not found")

	// ErrSettingsCorrupt indicates the persisted settings record could not be decoded.
	ErrSettingsCorrupt = errors.New("settings record corrupt")
)

// WorkflowError wraps workflow-related errors with additional context.
type WorkflowError struct {
	Op         string // Operation being performed (e.g. "GetByID", "Save")
	WorkflowID int64
	Err        error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s operation failed for workflow %d: %v", e.Op, e.WorkflowID, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

func (e *WorkflowError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewWorkflowError creates a new workflow error with context.
func NewWorkflowError(op string, workflowID int64, err error) *WorkflowError {
	return &WorkflowError{
		Op:         op,
		WorkflowID: workflowID,
		Err:        err,
	}
}

// IsWorkflowNotFound checks if an error indicates a workflow was not found.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsSettingsNotFound checks if an error indicates the settings record is absent.
func IsSettingsNotFound(err error) bool {
	return errors.Is(err, ErrSettingsNotFound)
}

// IsSettingsCorrupt checks if an error indicates an undecodable settings record.
func IsSettingsCorrupt(err error) bool {
	return errors.Is(err, ErrSettingsCorrupt)
}
