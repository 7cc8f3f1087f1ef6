package db

import (
	"database/sql"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		name       TEXT NOT NULL,
		color      TEXT NOT NULL DEFAULT '',
		position   INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_user ON projects(user_id, position)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id                   TEXT PRIMARY KEY,
		user_id              TEXT NOT NULL,
		project_id           TEXT REFERENCES projects(id) ON DELETE SET NULL,
		title                TEXT NOT NULL,
		description          TEXT NOT NULL DEFAULT '',
		is_completed         INTEGER NOT NULL DEFAULT 0,
		highlighted          INTEGER NOT NULL DEFAULT 0,
		planned_time_seconds INTEGER NOT NULL DEFAULT 0,
		due_date             TEXT,
		start_time           TEXT,
		created_at           TEXT NOT NULL,
		updated_at           TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id)`,

	`CREATE TABLE IF NOT EXISTS subtasks (
		id                   TEXT PRIMARY KEY,
		user_id              TEXT NOT NULL,
		task_id              TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		title                TEXT NOT NULL,
		is_completed         INTEGER NOT NULL DEFAULT 0,
		planned_time_seconds INTEGER NOT NULL DEFAULT 0,
		position             INTEGER NOT NULL DEFAULT 0,
		created_at           TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_subtasks_task ON subtasks(task_id, position)`,

	`CREATE TABLE IF NOT EXISTS time_entries (
		id                 TEXT PRIMARY KEY,
		user_id            TEXT NOT NULL,
		task_id            TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		subtask_id         TEXT REFERENCES subtasks(id) ON DELETE CASCADE,
		date               TEXT NOT NULL,
		time_spent_seconds INTEGER NOT NULL DEFAULT 0,
		updated_at         TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_time_entries_key
		ON time_entries(task_id, COALESCE(subtask_id, ''), date)`,

	`CREATE TABLE IF NOT EXISTS plan_entries (
		id        TEXT PRIMARY KEY,
		user_id   TEXT NOT NULL,
		task_id   TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		plan_date TEXT NOT NULL,
		position  INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_plan_entries_user_date ON plan_entries(user_id, plan_date, position)`,
	`CREATE INDEX IF NOT EXISTS idx_plan_entries_task ON plan_entries(task_id)`,
}

// Migrate runs all schema migrations. Every statement is idempotent.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
