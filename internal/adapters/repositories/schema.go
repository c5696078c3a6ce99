package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"visit-model-service/internal/platform/db"
)

// Initialize the model run and run-scoped geocode cache schema.
func InitSchema(conn *sql.DB, dialect db.Dialect) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createRunsQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS model_runs (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL,
		model_json %[1]s NOT NULL,
		solution_json %[1]s
	);
	`, dialect.JSONType())

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_model_runs_created_at
	ON model_runs(created_at);
	`

	// Rows live only as long as their run; see cache.SQLGeocodeCache.Close.
	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		run_id TEXT NOT NULL,
		address TEXT NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (run_id, address)
	);
	`

	statements := []string{
		createRunsQuery,
		createIndexQuery,
		createGeocodeCacheQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
