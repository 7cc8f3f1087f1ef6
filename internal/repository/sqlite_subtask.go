package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/planboard/internal/db"
	"github.com/alexanderramin/planboard/internal/domain"
)

// SQLiteSubtaskRepo implements SubtaskRepo using a SQLite database.
type SQLiteSubtaskRepo struct {
	db db.DBTX
}

// NewSQLiteSubtaskRepo creates a new SQLiteSubtaskRepo.
func NewSQLiteSubtaskRepo(conn db.DBTX) *SQLiteSubtaskRepo {
	return &SQLiteSubtaskRepo{db: conn}
}

const subtaskColumns = `id, user_id, task_id, title, is_completed, planned_time_seconds, position, created_at`

func (r *SQLiteSubtaskRepo) Create(ctx context.Context, s *domain.Subtask) error {
	query := `INSERT INTO subtasks (` + subtaskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.UserID, s.TaskID, s.Title, boolToInt(s.IsCompleted),
		s.PlannedTimeSeconds, s.Position, formatTimestamp(s.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting subtask: %w", err)
	}
	return nil
}

func (r *SQLiteSubtaskRepo) GetByID(ctx context.Context, id string) (*domain.Subtask, error) {
	query := `SELECT ` + subtaskColumns + ` FROM subtasks WHERE id = ?`
	s, err := scanSubtask(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("subtask %s: %w", id, ErrNotFound)
	}
	return s, err
}

func (r *SQLiteSubtaskRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Subtask, error) {
	return r.list(ctx, `SELECT `+subtaskColumns+` FROM subtasks WHERE user_id = ? ORDER BY task_id, position`, userID)
}

func (r *SQLiteSubtaskRepo) ListByTask(ctx context.Context, taskID string) ([]*domain.Subtask, error) {
	return r.list(ctx, `SELECT `+subtaskColumns+` FROM subtasks WHERE task_id = ? ORDER BY position`, taskID)
}

func (r *SQLiteSubtaskRepo) list(ctx context.Context, query string, arg any) ([]*domain.Subtask, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("listing subtasks: %w", err)
	}
	defer rows.Close()

	var out []*domain.Subtask
	for rows.Next() {
		s, err := scanSubtask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating subtasks: %w", err)
	}
	return out, nil
}

// NextPosition returns the position a newly appended subtask of taskID gets.
func (r *SQLiteSubtaskRepo) NextPosition(ctx context.Context, taskID string) (int, error) {
	var next int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM subtasks WHERE task_id = ?`, taskID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("computing next subtask position: %w", err)
	}
	return next, nil
}

func (r *SQLiteSubtaskRepo) Update(ctx context.Context, s *domain.Subtask) error {
	query := `UPDATE subtasks SET title = ?, is_completed = ?, planned_time_seconds = ?, position = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		s.Title, boolToInt(s.IsCompleted), s.PlannedTimeSeconds, s.Position, s.ID)
	if err != nil {
		return fmt.Errorf("updating subtask: %w", err)
	}
	return requireAffected(res, "subtask", s.ID)
}

func (r *SQLiteSubtaskRepo) UpdatePosition(ctx context.Context, id string, position int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE subtasks SET position = ? WHERE id = ?`, position, id)
	if err != nil {
		return fmt.Errorf("updating subtask position: %w", err)
	}
	return requireAffected(res, "subtask", id)
}

func (r *SQLiteSubtaskRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subtasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting subtask: %w", err)
	}
	return requireAffected(res, "subtask", id)
}

func scanSubtask(row rowScanner) (*domain.Subtask, error) {
	var s domain.Subtask
	var completed int
	var createdAt string
	err := row.Scan(&s.ID, &s.UserID, &s.TaskID, &s.Title, &completed, &s.PlannedTimeSeconds, &s.Position, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning subtask: %w", err)
	}
	s.IsCompleted = intToBool(completed)
	s.CreatedAt = parseTimestamp(createdAt)
	return &s, nil
}
