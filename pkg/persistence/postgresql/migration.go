package postgresql

import "github.com/masarflow/masar/pkg/persistence/sqlbase"

func dialect() sqlbase.Dialect {
	return sqlbase.Dialect{
		CreateMigrationsTable: `
			CREATE TABLE IF NOT EXISTS schema_migrations (
				version INTEGER PRIMARY KEY,
				applied_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
			);
		`,
		InsertMigration: "INSERT INTO schema_migrations (version) VALUES ($1)",
	}
}

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE workflows (
				id BIGSERIAL PRIMARY KEY,
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				is_private BOOLEAN NOT NULL DEFAULT TRUE,
				steps JSONB NOT NULL DEFAULT '[]',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflows_is_private ON workflows(is_private);
			CREATE INDEX idx_workflows_created_at ON workflows(created_at);

			CREATE TABLE app_settings (
				id SMALLINT PRIMARY KEY CHECK (id = 1),
				data JSONB NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);
		`,
	}
}
