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

// SQLitePlanEntryRepo implements PlanEntryRepo using a SQLite database.
type SQLitePlanEntryRepo struct {
	db db.DBTX
}

// NewSQLitePlanEntryRepo creates a new SQLitePlanEntryRepo.
func NewSQLitePlanEntryRepo(conn db.DBTX) *SQLitePlanEntryRepo {
	return &SQLitePlanEntryRepo{db: conn}
}

const planEntryColumns = `id, user_id, task_id, plan_date, position`

func (r *SQLitePlanEntryRepo) Create(ctx context.Context, e *domain.PlanEntry) error {
	query := `INSERT INTO plan_entries (` + planEntryColumns + `) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, e.ID, e.UserID, e.TaskID, formatDate(e.PlanDate), e.Position)
	if err != nil {
		return fmt.Errorf("inserting plan entry: %w", err)
	}
	return nil
}

func (r *SQLitePlanEntryRepo) GetByID(ctx context.Context, id string) (*domain.PlanEntry, error) {
	query := `SELECT ` + planEntryColumns + ` FROM plan_entries WHERE id = ?`
	e, err := scanPlanEntry(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("plan entry %s: %w", id, ErrNotFound)
	}
	return e, err
}

func (r *SQLitePlanEntryRepo) ListRange(ctx context.Context, userID string, start, end time.Time) ([]domain.ScheduledTask, error) {
	query := `SELECT p.id, p.user_id, p.task_id, p.plan_date, p.position,
			t.id, t.user_id, t.project_id, t.title, t.description, t.is_completed, t.highlighted,
			t.planned_time_seconds, t.due_date, t.start_time, t.created_at, t.updated_at
		FROM plan_entries p
		JOIN tasks t ON t.id = p.task_id
		WHERE p.user_id = ? AND p.plan_date >= ? AND p.plan_date <= ?
		ORDER BY p.position ASC, p.plan_date ASC`
	rows, err := r.db.QueryContext(ctx, query, userID, formatDate(start), formatDate(end))
	if err != nil {
		return nil, fmt.Errorf("listing plan range: %w", err)
	}
	defer rows.Close()

	var out []domain.ScheduledTask
	for rows.Next() {
		st, err := scanScheduledTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating plan range: %w", err)
	}
	return out, nil
}

func (r *SQLitePlanEntryRepo) ListByDate(ctx context.Context, userID string, date time.Time) ([]*domain.PlanEntry, error) {
	return r.list(ctx,
		`SELECT `+planEntryColumns+` FROM plan_entries WHERE user_id = ? AND plan_date = ? ORDER BY position, id`,
		userID, formatDate(date))
}

func (r *SQLitePlanEntryRepo) ListByTask(ctx context.Context, taskID string) ([]*domain.PlanEntry, error) {
	return r.list(ctx,
		`SELECT `+planEntryColumns+` FROM plan_entries WHERE task_id = ? ORDER BY plan_date`, taskID)
}

func (r *SQLitePlanEntryRepo) list(ctx context.Context, query string, args ...any) ([]*domain.PlanEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing plan entries: %w", err)
	}
	defer rows.Close()

	var out []*domain.PlanEntry
	for rows.Next() {
		e, err := scanPlanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating plan entries: %w", err)
	}
	return out, nil
}

func (r *SQLitePlanEntryRepo) CountByDate(ctx context.Context, userID string, date time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM plan_entries WHERE user_id = ? AND plan_date = ?`,
		userID, formatDate(date)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting plan entries: %w", err)
	}
	return n, nil
}

func (r *SQLitePlanEntryRepo) Update(ctx context.Context, e *domain.PlanEntry) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE plan_entries SET plan_date = ?, position = ? WHERE id = ?`,
		formatDate(e.PlanDate), e.Position, e.ID)
	if err != nil {
		return fmt.Errorf("updating plan entry: %w", err)
	}
	return requireAffected(res, "plan entry", e.ID)
}

func (r *SQLitePlanEntryRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM plan_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting plan entry: %w", err)
	}
	return requireAffected(res, "plan entry", id)
}

func scanPlanEntry(row rowScanner) (*domain.PlanEntry, error) {
	var e domain.PlanEntry
	var date string
	if err := row.Scan(&e.ID, &e.UserID, &e.TaskID, &date, &e.Position); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning plan entry: %w", err)
	}
	d, err := domain.ParseDate(date)
	if err != nil {
		return nil, err
	}
	e.PlanDate = d
	return &e, nil
}

func scanScheduledTask(rows *sql.Rows) (domain.ScheduledTask, error) {
	var st domain.ScheduledTask
	var date string
	var projectID, dueDate, startTime sql.NullString
	var completed, highlighted int
	var createdAt, updatedAt string

	t := &st.Task
	err := rows.Scan(
		&st.Entry.ID, &st.Entry.UserID, &st.Entry.TaskID, &date, &st.Entry.Position,
		&t.ID, &t.UserID, &projectID, &t.Title, &t.Description, &completed, &highlighted,
		&t.PlannedTimeSeconds, &dueDate, &startTime, &createdAt, &updatedAt,
	)
	if err != nil {
		return st, fmt.Errorf("scanning scheduled task: %w", err)
	}
	d, err := domain.ParseDate(date)
	if err != nil {
		return st, err
	}
	st.Entry.PlanDate = d
	t.ProjectID = stringPtr(projectID)
	t.StartTime = stringPtr(startTime)
	t.DueDate = parseNullableTime(dueDate, domain.DateLayout)
	t.IsCompleted = intToBool(completed)
	t.Highlighted = intToBool(highlighted)
	t.CreatedAt = parseTimestamp(createdAt)
	t.UpdatedAt = parseTimestamp(updatedAt)
	return st, nil
}
