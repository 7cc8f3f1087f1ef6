package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreate_WritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultConfigFileName)

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "db_path")
	assert.Contains(t, string(data), "planboard.db")
	assert.Contains(t, string(data), "[keys]")
}

func TestLoadOrCreate_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)
	content := `
db_path = "/tmp/board.db"
user_id = "alex"
week_start = "monday"
column_width = 30
overscan = 1
eviction_delay_ms = 500
lookahead_weekday = 3
edge_threshold = 2
wheel_threshold = 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/board.db", cfg.DBPath)
	assert.Equal(t, "alex", cfg.UserID)

	board := cfg.Board(120)
	assert.Equal(t, time.Monday, board.FirstWeekday)
	assert.Equal(t, 30, board.ColumnWidth)
	assert.Equal(t, 120, board.ViewportWidth)
	assert.Equal(t, 500*time.Millisecond, board.EvictionDelay)
	assert.Equal(t, 3, board.LookAheadWeekday)
	assert.Equal(t, "space", cfg.Keys.Grab, "unset keys keep their defaults")
}

func TestLoadOrCreate_EnvOverrides(t *testing.T) {
	t.Setenv("PLANBOARD_DB", "/data/env.db")
	t.Setenv("PLANBOARD_USER", "env-user")
	t.Setenv("PLANBOARD_EVICTION_DELAY_MS", "not-a-number")

	cfg, err := LoadOrCreate(filepath.Join(t.TempDir(), DefaultConfigFileName))
	require.NoError(t, err)
	assert.Equal(t, "/data/env.db", cfg.DBPath)
	assert.Equal(t, "env-user", cfg.UserID)
	assert.Equal(t, 2000, cfg.EvictionDelayMs)
}

func TestLoadOrCreate_InvalidToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("column_width = [oops"), 0o644))

	_, err := LoadOrCreate(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty user", func(c *Config) { c.UserID = " " }},
		{"bad weekday", func(c *Config) { c.WeekStart = "someday" }},
		{"zero width", func(c *Config) { c.ColumnWidth = 0 }},
		{"negative overscan", func(c *Config) { c.Overscan = -1 }},
		{"zero delay", func(c *Config) { c.EvictionDelayMs = 0 }},
		{"lookahead out of range", func(c *Config) { c.LookAheadWeekday = 7 }},
		{"negative threshold", func(c *Config) { c.WheelThreshold = -1 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestDefaultPath_Env(t *testing.T) {
	t.Setenv("PLANBOARD_CONFIG", "/etc/planboard.toml")
	assert.Equal(t, "/etc/planboard.toml", DefaultPath())
}

func TestSplitKeys(t *testing.T) {
	assert.Equal(t, []string{"q", "ctrl+c"}, SplitKeys("q, ctrl+c,"))
	assert.Empty(t, SplitKeys(""))
}
