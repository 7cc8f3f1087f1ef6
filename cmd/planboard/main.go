package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alexanderramin/planboard/internal/cli"
	"github.com/alexanderramin/planboard/internal/config"
	"github.com/alexanderramin/planboard/internal/db"
	"github.com/alexanderramin/planboard/internal/repository"
	"github.com/alexanderramin/planboard/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := config.DefaultPath()
	cfg, err := config.LoadOrCreate(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// A relative db path lives next to the config file.
	dbPath := cfg.DBPath
	if dbPath != db.MemoryPath && !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(filepath.Dir(cfgPath), dbPath)
	}

	// Logs go to $PLANBOARD_LOG; the board owns the terminal.
	var logOut io.Writer = io.Discard
	if path := os.Getenv("PLANBOARD_LOG"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: slog.LevelDebug}))
	observer := service.NewLogUseCaseObserver(logOut)

	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	projectRepo := repository.NewSQLiteProjectRepo(database)
	taskRepo := repository.NewSQLiteTaskRepo(database)
	subtaskRepo := repository.NewSQLiteSubtaskRepo(database)
	timeRepo := repository.NewSQLiteTimeEntryRepo(database)
	entryRepo := repository.NewSQLitePlanEntryRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	app := &cli.App{
		Plans:    service.NewPlanService(entryRepo, taskRepo, uow, observer),
		Tasks:    service.NewTaskService(taskRepo, entryRepo, uow, observer),
		Subtasks: service.NewSubtaskService(subtaskRepo, uow, observer),
		Times:    service.NewTimeService(timeRepo, uow, observer),
		Projects: service.NewProjectService(projectRepo, uow, observer),
		Config:   cfg,
		Logger:   logger,
	}

	// Detect interactive terminal for the board entrypoint.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Debug("starting", "config", cfgPath, "db", dbPath, "user", cfg.UserID)
	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
