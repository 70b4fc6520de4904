// Package models defines the core domain models for step-by-step workflow guides.
package models

import "time"

// Workflow is a titled, ordered sequence of steps a user follows.
//
// The ID is numeric and assigned by the store on first persist; a workflow
// built in memory carries ID == 0 until then.
type Workflow struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"       validate:"required,min=3"`
	Description string    `json:"description"`
	IsPrivate   bool      `json:"is_private"`
	CreatedAt   time.Time `json:"created_at"`
	Steps       []*Step   `json:"steps"       validate:"dive"`
}

// StepByID returns the step with the given id, or nil.
func (w *Workflow) StepByID(id string) *Step {
	for _, step := range w.Steps {
		if step.ID == id {
			return step
		}
	}

	return nil
}

// CloneSteps returns a deep copy of the workflow's steps. Mutations during a
// run are applied to a copy and persisted as a whole, never to the loaded
// record in place.
func (w *Workflow) CloneSteps() []*Step {
	steps := make([]*Step, len(w.Steps))
	for i, step := range w.Steps {
		steps[i] = step.Clone()
	}

	return steps
}
