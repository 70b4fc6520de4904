package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/masarflow/masar/pkg/models"
	"github.com/masarflow/masar/pkg/persistence"
	"github.com/masarflow/masar/pkg/persistence/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var postgresContainer *postgres.PostgresContainer

// TestMain tears down the container shared across the integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	if postgresContainer != nil {
		if err := testcontainers.TerminateContainer(postgresContainer); err != nil {
			slog.Error("failed to terminate postgres container", "error", err)
		}
	}

	os.Exit(code)
}

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	for _, table := range []string{"workflows", "app_settings", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("masar_test"),
			postgres.WithUsername("masar"),
			postgres.WithPassword("masar"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)

		err = p.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return p, ctx
}

func TestIntegration_WorkflowLifecycle(t *testing.T) {
	p, ctx := setupTestDB(t)
	repo := p.WorkflowRepository()

	id, err := repo.Create(ctx, &models.Workflow{
		Title:     "Trip to Alexandria",
		IsPrivate: true,
		Steps: []*models.Step{
			{
				ID:    "s1",
				Title: "Pack",
				Type:  models.StepTypeChecklist,
				ChecklistItems: []*models.ChecklistItem{
					{ID: "chk-1", Label: "Passport"},
					{ID: "chk-2", Label: "Charger"},
				},
			},
			{ID: "s2", Title: "Drive", Type: models.StepTypeGPS, Content: "31.20,29.92"},
		},
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	loaded, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Len(t, loaded.Steps, 2)
	assert.Equal(t, "Pack", loaded.Steps[0].Title)

	// Toggle a checklist item through UpdateSteps and read it back.
	steps := loaded.CloneSteps()
	steps[0].ChecklistItems[0].Checked = true
	require.NoError(t, repo.UpdateSteps(ctx, id, steps))

	reloaded, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, reloaded.Steps[0].ChecklistItems[0].Checked)
	assert.False(t, reloaded.Steps[0].ChecklistItems[1].Checked)

	// List filtering.
	_, err = repo.Create(ctx, &models.Workflow{Title: "Public trip guide", IsPrivate: false})
	require.NoError(t, err)

	private := true

	workflows, err := repo.List(ctx, persistence.ListWorkflowsOptions{IsPrivate: &private, Search: "trip"})
	require.NoError(t, err)
	require.Len(t, workflows, 1)
	assert.Equal(t, id, workflows[0].ID)

	// Missing id behaviors.
	missing, err := repo.GetByID(ctx, id+1000)
	require.NoError(t, err)
	assert.Nil(t, missing)

	err = repo.UpdateSteps(ctx, id+1000, steps)
	assert.True(t, persistence.IsWorkflowNotFound(err))

	require.NoError(t, repo.Delete(ctx, id))

	gone, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestIntegration_SettingsRoundTrip(t *testing.T) {
	p, ctx := setupTestDB(t)
	repo := p.SettingsRepository()

	_, err := repo.Get(ctx)
	assert.True(t, persistence.IsSettingsNotFound(err))

	settings := models.DefaultSettings()
	settings.AIModels[0].APIKey = "test-key"
	require.NoError(t, repo.Save(ctx, settings))

	loaded, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "test-key", loaded.AIModels[0].APIKey)

	// Save is a whole-record replacement.
	loaded.Language = models.LanguageEnglish
	require.NoError(t, repo.Save(ctx, loaded))

	final, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.LanguageEnglish, final.Language)
}
