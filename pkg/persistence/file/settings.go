package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/masarflow/masar/pkg/models"
	"github.com/masarflow/masar/pkg/persistence"
)

// SettingsRepository stores the singleton settings record as settings.json.
type SettingsRepository struct {
	root string
}

// NewSettingsRepository creates a new settings repository.
func NewSettingsRepository(root string) *SettingsRepository {
	return &SettingsRepository{root: root}
}

func (sr *SettingsRepository) settingsPath() string {
	return filepath.Clean(path.Join(sr.root, "settings.json"))
}

// Get reads the persisted settings record.
func (sr *SettingsRepository) Get(_ context.Context) (*models.AppSettings, error) {
	body, err := os.ReadFile(sr.settingsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.ErrSettingsNotFound
		}

		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	var settings models.AppSettings

	err = json.Unmarshal(body, &settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", persistence.ErrSettingsCorrupt, err)
	}

	return &settings, nil
}

// Save replaces the settings record as a whole.
func (sr *SettingsRepository) Save(_ context.Context, settings *models.AppSettings) error {
	err := os.MkdirAll(sr.root, 0750)
	if err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	settings.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	return os.WriteFile(sr.settingsPath(), data, 0600)
}
