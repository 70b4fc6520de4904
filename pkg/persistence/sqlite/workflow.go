package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/masarflow/masar/pkg/models"
	"github.com/masarflow/masar/pkg/persistence"
)

// WorkflowRepository handles workflow-related database operations. Timestamps
// are stored as unix milliseconds, steps as one JSON document per workflow.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

// List returns filtered workflows, newest first.
func (r *WorkflowRepository) List(ctx context.Context, opts persistence.ListWorkflowsOptions) ([]*models.Workflow, error) {
	query := `
		SELECT id, title, description, is_private, steps, created_at
		FROM workflows
	`

	conditions := make([]string, 0, 2)
	args := make([]any, 0, 2)

	if opts.IsPrivate != nil {
		conditions = append(conditions, "is_private = ?")
		args = append(args, *opts.IsPrivate)
	}

	if opts.Search != "" {
		conditions = append(conditions, "LOWER(title) LIKE '%' || LOWER(?) || '%'")
		args = append(args, opts.Search)
	}

	for i, condition := range conditions {
		if i == 0 {
			query += " WHERE " + condition
		} else {
			query += " AND " + condition
		}
	}

	query += " ORDER BY id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		workflows = append(workflows, workflow)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	return workflows, nil
}

// GetByID returns a workflow by its id, or (nil, nil) when absent.
func (r *WorkflowRepository) GetByID(ctx context.Context, id int64) (*models.Workflow, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, description, is_private, steps, created_at
		FROM workflows
		WHERE id = ?
	`, id)

	workflow, err := scanWorkflow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, persistence.NewWorkflowError("GetByID", id, err)
	}

	return workflow, nil
}

// Create inserts the workflow and returns the database-assigned id.
func (r *WorkflowRepository) Create(ctx context.Context, workflow *models.Workflow) (int64, error) {
	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	stepsJSON, err := marshalSteps(workflow.Steps)
	if err != nil {
		return 0, persistence.NewWorkflowError("Create", 0, err)
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO workflows (title, description, is_private, steps, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		workflow.Title,
		workflow.Description,
		workflow.IsPrivate,
		stepsJSON,
		workflow.CreatedAt.UnixMilli(),
		now.UnixMilli(),
	)
	if err != nil {
		return 0, persistence.NewWorkflowError("Create", 0, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, persistence.NewWorkflowError("Create", 0, err)
	}

	workflow.ID = id

	return id, nil
}

// Update persists the full record under its existing id.
func (r *WorkflowRepository) Update(ctx context.Context, workflow *models.Workflow) error {
	stepsJSON, err := marshalSteps(workflow.Steps)
	if err != nil {
		return persistence.NewWorkflowError("Update", workflow.ID, err)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE workflows
		SET title = ?, description = ?, is_private = ?, steps = ?, updated_at = ?
		WHERE id = ?
	`,
		workflow.Title,
		workflow.Description,
		workflow.IsPrivate,
		stepsJSON,
		time.Now().UTC().UnixMilli(),
		workflow.ID,
	)
	if err != nil {
		return persistence.NewWorkflowError("Update", workflow.ID, err)
	}

	return checkAffected(result, "Update", workflow.ID)
}

// UpdateSteps replaces the steps sequence of one workflow.
func (r *WorkflowRepository) UpdateSteps(ctx context.Context, id int64, steps []*models.Step) error {
	stepsJSON, err := marshalSteps(steps)
	if err != nil {
		return persistence.NewWorkflowError("UpdateSteps", id, err)
	}

	result, err := r.db.ExecContext(ctx,
		"UPDATE workflows SET steps = ?, updated_at = ? WHERE id = ?",
		stepsJSON, time.Now().UTC().UnixMilli(), id,
	)
	if err != nil {
		return persistence.NewWorkflowError("UpdateSteps", id, err)
	}

	return checkAffected(result, "UpdateSteps", id)
}

// Delete removes a workflow. Deleting a missing workflow is not an error.
func (r *WorkflowRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM workflows WHERE id = ?", id)
	if err != nil {
		return persistence.NewWorkflowError("Delete", id, err)
	}

	return nil
}

func checkAffected(result sql.Result, op string, id int64) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewWorkflowError(op, id, err)
	}

	if affected == 0 {
		return persistence.NewWorkflowError(op, id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

func marshalSteps(steps []*models.Step) (string, error) {
	if steps == nil {
		steps = make([]*models.Step, 0)
	}

	data, err := json.Marshal(steps)
	if err != nil {
		return "", fmt.Errorf("failed to marshal steps: %w", err)
	}

	return string(data), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var (
		workflow      models.Workflow
		stepsJSON     string
		createdMillis int64
	)

	err := row.Scan(
		&workflow.ID,
		&workflow.Title,
		&workflow.Description,
		&workflow.IsPrivate,
		&stepsJSON,
		&createdMillis,
	)
	if err != nil {
		return nil, err
	}

	workflow.CreatedAt = time.UnixMilli(createdMillis).UTC()

	err = json.Unmarshal([]byte(stepsJSON), &workflow.Steps)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal steps: %w", err)
	}

	return &workflow, nil
}
