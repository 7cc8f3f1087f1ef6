package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/alexanderramin/planboard/internal/planner"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "planboard.db"
	DefaultUserID         = "local"
)

// Keymap binds board actions to keys. Multiple keys are comma separated.
type Keymap struct {
	Quit     string `toml:"quit"`
	Left     string `toml:"left"`
	Right    string `toml:"right"`
	Up       string `toml:"up"`
	Down     string `toml:"down"`
	Grab     string `toml:"grab"`
	Cancel   string `toml:"cancel"`
	Today    string `toml:"today"`
	PrevWeek string `toml:"prev_week"`
	NextWeek string `toml:"next_week"`
	Complete string `toml:"complete"`
	Delete   string `toml:"delete"`
	Undo     string `toml:"undo"`
	Help     string `toml:"help"`
}

type Config struct {
	DBPath           string `toml:"db_path"`
	UserID           string `toml:"user_id"`
	WeekStart        string `toml:"week_start"`
	ColumnWidth      int    `toml:"column_width"`
	Overscan         int    `toml:"overscan"`
	EvictionDelayMs  int    `toml:"eviction_delay_ms"`
	LookAheadWeekday int    `toml:"lookahead_weekday"`
	EdgeThreshold    int    `toml:"edge_threshold"`
	WheelThreshold   int    `toml:"wheel_threshold"`
	Keys             Keymap `toml:"keys"`
}

// DefaultPath is $PLANBOARD_CONFIG, or config.toml under the user config
// directory.
func DefaultPath() string {
	if v := os.Getenv("PLANBOARD_CONFIG"); v != "" {
		return v
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, "planboard", DefaultConfigFileName)
}

// LoadOrCreate reads path, writing the defaults there first when the file
// does not exist. Environment overrides are applied last.
func LoadOrCreate(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		applyEnv(&cfg)
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBName
	}
	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PLANBOARD_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("PLANBOARD_USER"); v != "" {
		cfg.UserID = v
	}
	if v := os.Getenv("PLANBOARD_WEEK_START"); v != "" {
		cfg.WeekStart = v
	}
	if v := os.Getenv("PLANBOARD_EVICTION_DELAY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.EvictionDelayMs = n
		}
	}
}

// Validate rejects settings the board cannot run with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.UserID) == "" {
		errs = append(errs, errors.New("user_id is empty"))
	}
	if _, err := domain.ParseWeekday(c.WeekStart); err != nil {
		errs = append(errs, fmt.Errorf("week_start: %w", err))
	}
	if c.ColumnWidth <= 0 {
		errs = append(errs, fmt.Errorf("column_width must be positive, got %d", c.ColumnWidth))
	}
	if c.Overscan < 0 {
		errs = append(errs, fmt.Errorf("overscan must not be negative, got %d", c.Overscan))
	}
	if c.EvictionDelayMs <= 0 {
		errs = append(errs, fmt.Errorf("eviction_delay_ms must be positive, got %d", c.EvictionDelayMs))
	}
	if c.LookAheadWeekday < 0 || c.LookAheadWeekday >= domain.DaysPerWeek {
		errs = append(errs, fmt.Errorf("lookahead_weekday must be in [0,6], got %d", c.LookAheadWeekday))
	}
	if c.EdgeThreshold < 0 || c.WheelThreshold < 0 {
		errs = append(errs, errors.New("thresholds must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Board builds the planner settings for a viewport of the given width.
func (c Config) Board(viewportWidth int) planner.Config {
	first, err := domain.ParseWeekday(c.WeekStart)
	if err != nil {
		first = time.Sunday
	}
	return planner.Config{
		UserID:           c.UserID,
		FirstWeekday:     first,
		ColumnWidth:      c.ColumnWidth,
		Overscan:         c.Overscan,
		ViewportWidth:    viewportWidth,
		EdgeThreshold:    c.EdgeThreshold,
		WheelThreshold:   c.WheelThreshold,
		LookAheadWeekday: c.LookAheadWeekday,
		EvictionDelay:    time.Duration(c.EvictionDelayMs) * time.Millisecond,
	}
}

// Default returns terminal-sized defaults. Widths are in cells.
func Default() Config {
	return Config{
		DBPath:           DefaultDBName,
		UserID:           DefaultUserID,
		WeekStart:        "sunday",
		ColumnWidth:      24,
		Overscan:         2,
		EvictionDelayMs:  2000,
		LookAheadWeekday: 4,
		EdgeThreshold:    1,
		WheelThreshold:   1,
		Keys: Keymap{
			Quit:     "q,ctrl+c",
			Left:     "h,left",
			Right:    "l,right",
			Up:       "k,up",
			Down:     "j,down",
			Grab:     "space",
			Cancel:   "esc",
			Today:    "t",
			PrevWeek: "[",
			NextWeek: "]",
			Complete: "x",
			Delete:   "d",
			Undo:     "u",
			Help:     "?",
		},
	}
}

// SplitKeys turns a comma separated binding into key names.
func SplitKeys(binding string) []string {
	var out []string
	for _, k := range strings.Split(binding, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
