package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/masarflow/masar/pkg/models"
	"github.com/masarflow/masar/pkg/persistence"
)

// WorkflowRepository handles workflow-related file operations. Records are
// stored as workflows/<id>.json.
type WorkflowRepository struct {
	root string
	mu   sync.Mutex // serializes id assignment on Create
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(root string) *WorkflowRepository {
	return &WorkflowRepository{root: root}
}

func (wr *WorkflowRepository) workflowsDir() string {
	return path.Join(wr.root, "workflows")
}

// List returns filtered workflows, newest first.
func (wr *WorkflowRepository) List(ctx context.Context, opts persistence.ListWorkflowsOptions) ([]*models.Workflow, error) {
	ids, err := wr.ids()
	if err != nil {
		return nil, err
	}

	workflows := make([]*models.Workflow, 0, len(ids))

	for _, id := range ids {
		workflow, err := wr.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load workflow %d: %w", id, err)
		}

		if workflow == nil {
			continue
		}

		if opts.IsPrivate != nil && workflow.IsPrivate != *opts.IsPrivate {
			continue
		}

		if opts.Search != "" && !strings.Contains(strings.ToLower(workflow.Title), strings.ToLower(opts.Search)) {
			continue
		}

		workflows = append(workflows, workflow)
	}

	// Reverse insertion order: newest id first. CreatedAt alone is not a
	// stable tiebreaker for records created in the same instant.
	sort.Slice(workflows, func(i, j int) bool {
		return workflows[i].ID > workflows[j].ID
	})

	return workflows, nil
}

// GetByID retrieves a workflow by its id, or (nil, nil) when absent.
func (wr *WorkflowRepository) GetByID(_ context.Context, id int64) (*models.Workflow, error) {
	filePath := filepath.Clean(path.Join(wr.workflowsDir(), strconv.FormatInt(id, 10)+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, persistence.NewWorkflowError("GetByID", id, err)
	}

	var workflow models.Workflow

	err = json.Unmarshal(body, &workflow)
	if err != nil {
		return nil, persistence.NewWorkflowError("GetByID", id, err)
	}

	return &workflow, nil
}

// Create assigns the next unused numeric id and persists the workflow.
func (wr *WorkflowRepository) Create(ctx context.Context, workflow *models.Workflow) (int64, error) {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	ids, err := wr.ids()
	if err != nil {
		return 0, err
	}

	var next int64 = 1

	for _, id := range ids {
		if id >= next {
			next = id + 1
		}
	}

	workflow.ID = next
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = time.Now().UTC()
	}

	if err := wr.write(workflow); err != nil {
		return 0, persistence.NewWorkflowError("Create", next, err)
	}

	return next, nil
}

// Update persists the full record under its existing id.
func (wr *WorkflowRepository) Update(ctx context.Context, workflow *models.Workflow) error {
	existing, err := wr.GetByID(ctx, workflow.ID)
	if err != nil {
		return err
	}

	if existing == nil {
		return persistence.NewWorkflowError("Update", workflow.ID, persistence.ErrWorkflowNotFound)
	}

	if err := wr.write(workflow); err != nil {
		return persistence.NewWorkflowError("Update", workflow.ID, err)
	}

	return nil
}

// UpdateSteps replaces the steps sequence of one workflow.
func (wr *WorkflowRepository) UpdateSteps(ctx context.Context, id int64, steps []*models.Step) error {
	workflow, err := wr.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if workflow == nil {
		return persistence.NewWorkflowError("UpdateSteps", id, persistence.ErrWorkflowNotFound)
	}

	workflow.Steps = steps

	if err := wr.write(workflow); err != nil {
		return persistence.NewWorkflowError("UpdateSteps", id, err)
	}

	return nil
}

// Delete removes a workflow by its id.
func (wr *WorkflowRepository) Delete(_ context.Context, id int64) error {
	filePath := path.Join(wr.workflowsDir(), strconv.FormatInt(id, 10)+".json")

	err := os.Remove(filePath)
	if err != nil && os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		return persistence.NewWorkflowError("Delete", id, err)
	}

	return nil
}

func (wr *WorkflowRepository) write(workflow *models.Workflow) error {
	err := os.MkdirAll(wr.workflowsDir(), 0750)
	if err != nil {
		return fmt.Errorf("failed to create workflows directory: %w", err)
	}

	data, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal workflow: %w", err)
	}

	filePath := path.Join(wr.workflowsDir(), strconv.FormatInt(workflow.ID, 10)+".json")

	return os.WriteFile(filePath, data, 0600)
}

func (wr *WorkflowRepository) ids() ([]int64, error) {
	root := os.DirFS(wr.workflowsDir())

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow files: %w", err)
	}

	ids := make([]int64, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id, err := strconv.ParseInt(strings.TrimSuffix(file, ".json"), 10, 64)
		if err != nil {
			continue // foreign file in the workflows directory
		}

		ids = append(ids, id)
	}

	return ids, nil
}
