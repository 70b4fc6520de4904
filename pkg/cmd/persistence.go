// Package cmd provides common initialization functions for command-line
// applications.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/masarflow/masar/pkg/persistence"
	"github.com/masarflow/masar/pkg/persistence/file"
	"github.com/masarflow/masar/pkg/persistence/postgresql"
	"github.com/masarflow/masar/pkg/persistence/sqlite"
)

// NewPersistence selects a backend from the database URL scheme:
// postgres:// for PostgreSQL, sqlite:// for SQLite, anything else is treated
// as a directory path for file persistence.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) persistence.Persistence {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to create PostgreSQL persistence: %w", err))
		}

		return p
	case strings.HasPrefix(databaseURL, "sqlite://"):
		p, err := sqlite.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to create SQLite persistence: %w", err))
		}

		return p
	default:
		return file.NewPersistence(strings.TrimPrefix(databaseURL, "file://"))
	}
}
