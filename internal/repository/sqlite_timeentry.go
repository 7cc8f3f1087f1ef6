package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/planboard/internal/db"
	"github.com/alexanderramin/planboard/internal/domain"
)

// SQLiteTimeEntryRepo implements TimeEntryRepo using a SQLite database.
type SQLiteTimeEntryRepo struct {
	db db.DBTX
}

// NewSQLiteTimeEntryRepo creates a new SQLiteTimeEntryRepo.
func NewSQLiteTimeEntryRepo(conn db.DBTX) *SQLiteTimeEntryRepo {
	return &SQLiteTimeEntryRepo{db: conn}
}

const timeEntryColumns = `id, user_id, task_id, subtask_id, date, time_spent_seconds, updated_at`

func (r *SQLiteTimeEntryRepo) ListByUser(ctx context.Context, userID string) ([]*domain.TimeEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+timeEntryColumns+` FROM time_entries WHERE user_id = ? ORDER BY date, task_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing time entries: %w", err)
	}
	defer rows.Close()

	var out []*domain.TimeEntry
	for rows.Next() {
		e, err := scanTimeEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating time entries: %w", err)
	}
	return out, nil
}

// Find looks up the entry for the (task, subtask, date) key. A nil subtaskID
// matches the task's direct entry.
func (r *SQLiteTimeEntryRepo) Find(ctx context.Context, taskID string, subtaskID *string, date time.Time) (*domain.TimeEntry, error) {
	query := `SELECT ` + timeEntryColumns + ` FROM time_entries
		WHERE task_id = ? AND COALESCE(subtask_id, '') = ? AND date = ?`
	sub := ""
	if subtaskID != nil {
		sub = *subtaskID
	}
	e, err := scanTimeEntry(r.db.QueryRowContext(ctx, query, taskID, sub, formatDate(date)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("time entry for task %s on %s: %w", taskID, formatDate(date), ErrNotFound)
	}
	return e, err
}

func (r *SQLiteTimeEntryRepo) Create(ctx context.Context, e *domain.TimeEntry) error {
	query := `INSERT INTO time_entries (` + timeEntryColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.UserID, e.TaskID, nullableString(e.SubtaskID), formatDate(e.Date),
		e.TimeSpentSeconds, formatTimestamp(e.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting time entry: %w", err)
	}
	return nil
}

func (r *SQLiteTimeEntryRepo) UpdateSeconds(ctx context.Context, id string, seconds int, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE time_entries SET time_spent_seconds = ?, updated_at = ? WHERE id = ?`,
		seconds, formatTimestamp(at), id)
	if err != nil {
		return fmt.Errorf("updating time entry: %w", err)
	}
	return requireAffected(res, "time entry", id)
}

func scanTimeEntry(row rowScanner) (*domain.TimeEntry, error) {
	var e domain.TimeEntry
	var subtaskID sql.NullString
	var date, updatedAt string
	if err := row.Scan(&e.ID, &e.UserID, &e.TaskID, &subtaskID, &date, &e.TimeSpentSeconds, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning time entry: %w", err)
	}
	d, err := domain.ParseDate(date)
	if err != nil {
		return nil, err
	}
	e.Date = d
	e.SubtaskID = stringPtr(subtaskID)
	e.UpdatedAt = parseTimestamp(updatedAt)
	return &e, nil
}
