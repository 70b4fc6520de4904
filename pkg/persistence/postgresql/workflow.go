package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/masarflow/masar/pkg/models"
	"github.com/masarflow/masar/pkg/persistence"
)

// WorkflowRepository handles workflow-related database operations. Steps are
// stored as one JSONB document per workflow; the core always reads and writes
// the sequence as a whole.
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
		SELECT
			id
		  , title
		  , description
		  , is_private
		  , steps
		  , created_at
		FROM workflows
	`

	conditions := make([]string, 0, 2)
	args := make([]any, 0, 2)

	if opts.IsPrivate != nil {
		args = append(args, *opts.IsPrivate)
		conditions = append(conditions, "is_private = $"+strconv.Itoa(len(args)))
	}

	if opts.Search != "" {
		args = append(args, "%"+opts.Search+"%")
		conditions = append(conditions, "title ILIKE $"+strconv.Itoa(len(args)))
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
	query := `
		SELECT
			id
		  , title
		  , description
		  , is_private
		  , steps
		  , created_at
		FROM workflows
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)

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

	query := `
		INSERT INTO workflows (title, description, is_private, steps, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64

	err = r.db.QueryRowContext(ctx, query,
		workflow.Title,
		workflow.Description,
		workflow.IsPrivate,
		stepsJSON,
		workflow.CreatedAt,
		now,
	).Scan(&id)
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

	query := `
		UPDATE workflows
		SET title = $2, description = $3, is_private = $4, steps = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		workflow.ID,
		workflow.Title,
		workflow.Description,
		workflow.IsPrivate,
		stepsJSON,
		time.Now().UTC(),
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
		"UPDATE workflows SET steps = $2, updated_at = $3 WHERE id = $1",
		id, stepsJSON, time.Now().UTC(),
	)
	if err != nil {
		return persistence.NewWorkflowError("UpdateSteps", id, err)
	}

	return checkAffected(result, "UpdateSteps", id)
}

// Delete removes a workflow. Deleting a missing workflow is not an error.
func (r *WorkflowRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM workflows WHERE id = $1", id)
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

func marshalSteps(steps []*models.Step) ([]byte, error) {
	if steps == nil {
		steps = make([]*models.Step, 0)
	}

	data, err := json.Marshal(steps)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal steps: %w", err)
	}

	return data, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var (
		workflow  models.Workflow
		stepsJSON []byte
	)

	err := row.Scan(
		&workflow.ID,
		&workflow.Title,
		&workflow.Description,
		&workflow.IsPrivate,
		&stepsJSON,
		&workflow.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	err = json.Unmarshal(stepsJSON, &workflow.Steps)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal steps: %w", err)
	}

	return &workflow, nil
}
