// Package events defines event types and structures for guide lifecycle
// notifications.
package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/masarflow/masar/pkg/models"
)

type EventType string

// Topic carries all guide lifecycle events.
const Topic = "masar.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	WorkflowCreatedEvent   EventType = "workflow.created"
	WorkflowGeneratedEvent EventType = "workflow.generated"
	WorkflowDeletedEvent   EventType = "workflow.deleted"
	ChecklistToggledEvent  EventType = "workflow.checklist_toggled"
)

type BaseEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	WorkflowID int64     `json:"workflow_id"`
}

// NewBaseEvent stamps a fresh event envelope for one workflow.
func NewBaseEvent(eventType EventType, workflowID int64) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
	}
}

// WorkflowCreated fires when a guide lands in the library, whether written by
// hand or saved from a generation run.
type WorkflowCreated struct {
	BaseEvent

	Title     string `json:"title"`
	StepCount int    `json:"step_count"`
	Source    string `json:"source"` // "manual" or "ai"
}

func (w WorkflowCreated) GetType() EventType {
	return WorkflowCreatedEvent
}

// WorkflowGenerated fires after a successful generation run, before the
// result is necessarily saved.
type WorkflowGenerated struct {
	BaseEvent

	Provider   models.AIProvider `json:"provider"`
	ModelName  string            `json:"model_name"`
	Prompt     string            `json:"prompt"`
	StepCount  int               `json:"step_count"`
	DurationMs int64             `json:"duration_ms"`
}

func (w WorkflowGenerated) GetType() EventType {
	return WorkflowGeneratedEvent
}

// WorkflowDeleted fires when a guide is removed from the library.
type WorkflowDeleted struct {
	BaseEvent

	Title string `json:"title"`
}

func (w WorkflowDeleted) GetType() EventType {
	return WorkflowDeletedEvent
}

// ChecklistToggled fires on every persisted checklist tick during a run.
type ChecklistToggled struct {
	BaseEvent

	StepID  string `json:"step_id"`
	ItemID  string `json:"item_id"`
	Checked bool   `json:"checked"`
}

func (c ChecklistToggled) GetType() EventType {
	return ChecklistToggledEvent
}
