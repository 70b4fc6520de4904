package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/masarflow/masar/pkg/models"
	"github.com/masarflow/masar/pkg/persistence"
)

// SettingsRepository stores the singleton settings record as one JSON row.
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new settings repository.
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get reads the persisted settings record.
func (r *SettingsRepository) Get(ctx context.Context) (*models.AppSettings, error) {
	var data string

	err := r.db.QueryRowContext(ctx, "SELECT data FROM app_settings WHERE id = 1").Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrSettingsNotFound
		}

		return nil, fmt.Errorf("failed to query settings: %w", err)
	}

	var settings models.AppSettings

	err = json.Unmarshal([]byte(data), &settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", persistence.ErrSettingsCorrupt, err)
	}

	return &settings, nil
}

// Save replaces the settings record as a whole.
func (r *SettingsRepository) Save(ctx context.Context, settings *models.AppSettings) error {
	settings.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	query := `
		INSERT INTO app_settings (id, data, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`

	_, err = r.db.ExecContext(ctx, query, string(data), settings.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	return nil
}
