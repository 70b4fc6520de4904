package models

// StepType discriminates how a step's content is interpreted.
type StepType string

const (
	StepTypeText      StepType = "text"      // Free-form instruction text
	StepTypeMedia     StepType = "media"     // Image URL, or a keyword until media resolution replaces it
	StepTypeGPS       StepType = "gps"       // "lat,lng" coordinate pair
	StepTypeChecklist StepType = "checklist" // Items live in ChecklistItems, Content is unused
)

// Step is one unit of a workflow. Content is polymorphic by Type.
// ChecklistItems is non-nil only for checklist steps; it may be empty but is
// never serialized as null for them.
type Step struct {
	ID             string           `json:"id"                        validate:"required"`
	Title          string           `json:"title"                     validate:"required"`
	Type           StepType         `json:"type"                      validate:"required,oneof=text media gps checklist"`
	Content        string           `json:"content"`
	ChecklistItems []*ChecklistItem `json:"checklist_items,omitempty" validate:"dive"`
	Completed      bool             `json:"completed,omitempty"`
}

// ChecklistItem is a single checkable entry of a checklist step. It is created
// at authoring or generation time and mutated in place during a run.
type ChecklistItem struct {
	ID      string `json:"id"      validate:"required"`
	Label   string `json:"label"   validate:"required"`
	Checked bool   `json:"checked"`
}

// Clone returns a deep copy of the step.
func (s *Step) Clone() *Step {
	clone := *s

	if s.ChecklistItems != nil {
		clone.ChecklistItems = make([]*ChecklistItem, len(s.ChecklistItems))
		for i, item := range s.ChecklistItems {
			itemCopy := *item
			clone.ChecklistItems[i] = &itemCopy
		}
	}

	return &clone
}

// ChecklistItemByID returns the checklist item with the given id, or nil.
func (s *Step) ChecklistItemByID(id string) *ChecklistItem {
	for _, item := range s.ChecklistItems {
		if item.ID == id {
			return item
		}
	}

	return nil
}
