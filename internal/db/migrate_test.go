package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"projects", "tasks", "subtasks", "time_entries", "plan_entries"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_TimeEntryKeyIsUnique(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO tasks (id, user_id, title, created_at, updated_at) VALUES ('t1', 'u', 'T', 'x', 'x')`)
	require.NoError(t, err)

	insert := `INSERT INTO time_entries (id, user_id, task_id, subtask_id, date, time_spent_seconds, updated_at)
		VALUES (?, 'u', 't1', NULL, '2026-10-15', 10, 'x')`
	_, err = db.Exec(insert, "e1")
	require.NoError(t, err)
	_, err = db.Exec(insert, "e2")
	assert.Error(t, err, "a second direct entry for the same task and day must be rejected")
}

func TestPlanEntries_CascadeOnTaskDelete(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO tasks (id, user_id, title, created_at, updated_at) VALUES ('t1', 'u', 'T', 'x', 'x')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO plan_entries (id, user_id, task_id, plan_date, position) VALUES ('p1', 'u', 't1', '2026-10-15', 0)`)
	require.NoError(t, err)

	_, err = db.Exec(`DELETE FROM tasks WHERE id = 't1'`)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM plan_entries`).Scan(&n))
	assert.Equal(t, 0, n)
}
