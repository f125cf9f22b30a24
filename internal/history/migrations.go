package history

import (
	"context"
	"database/sql"
)

// runMigrations creates the schema if needed
func runMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS completions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chore_id TEXT NOT NULL,
			title TEXT NOT NULL,
			done_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_completions_chore
		ON completions(chore_id, done_at)
	`)
	return err
}
