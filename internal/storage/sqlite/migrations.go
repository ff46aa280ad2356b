package sqlite

import (
	"context"
	"database/sql"
)

// Migrate runs all database migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	migrations := []string{
		// Feature models
		`CREATE TABLE IF NOT EXISTS models (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			num_vars INTEGER NOT NULL,
			num_clauses INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		)`,

		// Algorithm configurations
		`CREATE TABLE IF NOT EXISTS algorithms (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			config_json TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,

		// Runs
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			sweep_id TEXT NOT NULL,
			model_id TEXT NOT NULL,
			algorithm_id TEXT NOT NULL,
			scenario INTEGER NOT NULL DEFAULT 0,
			iteration INTEGER NOT NULL DEFAULT 0,
			t INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			faulty_json TEXT,
			faulty_updated_json TEXT,
			found_json TEXT,
			merged TEXT,
			merged_updated TEXT,
			verify_count INTEGER NOT NULL DEFAULT 0,
			creation_count INTEGER NOT NULL DEFAULT 0,
			elapsed_ms INTEGER NOT NULL DEFAULT 0,
			timed_out BOOLEAN NOT NULL DEFAULT FALSE,
			errored BOOLEAN NOT NULL DEFAULT FALSE,
			error_message TEXT,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (model_id) REFERENCES models(id),
			FOREIGN KEY (algorithm_id) REFERENCES algorithms(id)
		)`,

		// Per-iteration statistics
		`CREATE TABLE IF NOT EXISTS statistics (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			t INTEGER NOT NULL,
			iteration INTEGER NOT NULL,
			candidates INTEGER NOT NULL,
			verify_count INTEGER NOT NULL,
			creation_count INTEGER NOT NULL,
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_runs_sweep ON runs(sweep_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_model_algorithm ON runs(model_id, algorithm_id)`,
		`CREATE INDEX IF NOT EXISTS idx_statistics_run ON statistics(run_id, id)`,
	}

	for _, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return err
		}
	}

	return nil
}
