// Package file provides file-based persistence for workflows and settings.
// Each workflow is one JSON document under workflows/; the settings record is
// a single settings.json at the root.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/masarflow/masar/pkg/persistence"
)

// Persistence implements persistence.Persistence on the local file system.
type Persistence struct {
	root         string
	workflowRepo *WorkflowRepository
	settingsRepo *SettingsRepository
}

// NewPersistence creates a file persistence layer rooted at the given
// directory. A "file://" prefix is accepted and stripped.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:         cleanRoot,
		workflowRepo: NewWorkflowRepository(cleanRoot),
		settingsRepo: NewSettingsRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is
// nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return fp.workflowRepo
}

func (fp *Persistence) SettingsRepository() persistence.SettingsRepository {
	return fp.settingsRepo
}
