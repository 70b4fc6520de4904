// Package sqlite provides embedded SQLite persistence for workflows and
// settings. It is the default backend for single-user installs, where the
// whole library lives in one local database file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/masarflow/masar/pkg/persistence"
	"github.com/masarflow/masar/pkg/persistence/sqlbase"
	_ "modernc.org/sqlite" // pure-Go sqlite driver
)

// Persistence implements the persistence layer for SQLite.
type Persistence struct {
	db           *sql.DB
	logger       *slog.Logger
	workflowRepo *WorkflowRepository
	settingsRepo *SettingsRepository
}

// NewPersistence opens (creating if needed) the database file and runs
// pending migrations. A "sqlite://" prefix is accepted and stripped.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	path := strings.Replace(databaseURL, "sqlite://", "", 1)

	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Concurrent writers on one connection; the driver serializes them.
	database.SetMaxOpenConns(1)

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, dialect(), migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:           database,
		logger:       logger,
		workflowRepo: NewWorkflowRepository(database, logger),
		settingsRepo: NewSettingsRepository(database),
	}, nil
}

// Close closes the database.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database is reachable.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.workflowRepo
}

func (p *Persistence) SettingsRepository() persistence.SettingsRepository {
	return p.settingsRepo
}

func dialect() sqlbase.Dialect {
	return sqlbase.Dialect{
		CreateMigrationsTable: `
			CREATE TABLE IF NOT EXISTS schema_migrations (
				version INTEGER PRIMARY KEY,
				applied_at TEXT DEFAULT CURRENT_TIMESTAMP
			);
		`,
		InsertMigration: "INSERT INTO schema_migrations (version) VALUES (?)",
	}
}

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE workflows (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				is_private INTEGER NOT NULL DEFAULT 1,
				steps TEXT NOT NULL DEFAULT '[]',
				created_at INTEGER NOT NULL,
				updated_at INTEGER NOT NULL
			);

			CREATE INDEX idx_workflows_is_private ON workflows(is_private);
			CREATE INDEX idx_workflows_created_at ON workflows(created_at);

			CREATE TABLE app_settings (
				id INTEGER PRIMARY KEY CHECK (id = 1),
				data TEXT NOT NULL,
				updated_at INTEGER NOT NULL
			);
		`,
	}
}
