package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/thenoetrevino/chores/internal/models"
)

// timeLayout is how done_at is stored; fixed-width UTC text sorts chronologically
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Recorder is what the chore service needs from the history log
type Recorder interface {
	RecordCompletion(ctx context.Context, choreID, title string, doneAt time.Time) (*models.Completion, error)
	ListCompletions(ctx context.Context, choreID string, limit int) ([]*models.Completion, error)
	CountCompletions(ctx context.Context, choreID string) (int, error)
}

// Repository is the SQLite-backed completion log
type Repository struct {
	db *sql.DB
}

// NewRepository wraps an open database. Run InitDB first.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Close closes the underlying database
func (r *Repository) Close() error {
	return r.db.Close()
}

// RecordCompletion appends one completion
func (r *Repository) RecordCompletion(ctx context.Context, choreID, title string, doneAt time.Time) (*models.Completion, error) {
	if choreID == "" {
		return nil, ErrEmptyChoreID
	}

	doneAt = doneAt.UTC()
	var id int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO completions (chore_id, title, done_at) VALUES (?, ?, ?)`,
			choreID, title, doneAt.Format(timeLayout),
		)
		if err != nil {
			return err
		}
		id, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record completion of %s: %w", choreID, err)
	}

	return &models.Completion{
		ID:      id,
		ChoreID: choreID,
		Title:   title,
		DoneAt:  doneAt,
	}, nil
}

// ListCompletions returns completions newest first.
// An empty choreID lists every chore; limit <= 0 means no limit.
func (r *Repository) ListCompletions(ctx context.Context, choreID string, limit int) ([]*models.Completion, error) {
	query := `SELECT id, chore_id, title, done_at FROM completions`
	var args []any
	if choreID != "" {
		query += ` WHERE chore_id = ?`
		args = append(args, choreID)
	}
	query += ` ORDER BY done_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var completions []*models.Completion
	for rows.Next() {
		c := &models.Completion{}
		var doneAt string
		if err := rows.Scan(&c.ID, &c.ChoreID, &c.Title, &doneAt); err != nil {
			return nil, err
		}
		c.DoneAt, err = time.Parse(timeLayout, doneAt)
		if err != nil {
			return nil, fmt.Errorf("completion %d has bad timestamp %q: %w", c.ID, doneAt, err)
		}
		completions = append(completions, c)
	}

	return completions, rows.Err()
}

// CountCompletions returns how many times a chore has been done
func (r *Repository) CountCompletions(ctx context.Context, choreID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM completions WHERE chore_id = ?`, choreID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completions of %s: %w", choreID, err)
	}
	return count, nil
}
