package cli

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/alexanderramin/planboard/internal/config"
	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/alexanderramin/planboard/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Plans    service.PlanService
	Tasks    service.TaskService
	Subtasks service.SubtaskService
	Times    service.TimeService
	Projects service.ProjectService

	Config config.Config
	Logger *slog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
	// IsInteractive reports whether stdin is a terminal.
	IsInteractive func() bool
	// RunBoard starts the board TUI; nil uses runBoardProgram.
	RunBoard func(ctx context.Context, app *App) error
}

func (a *App) userID() string { return a.Config.UserID }

func (a *App) today() time.Time {
	if a.Now != nil {
		return domain.DateOf(a.Now())
	}
	return domain.DateOf(time.Now())
}

func (a *App) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "planboard" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "planboard",
		Short:         "Weekly planning board",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.interactive() {
				return startBoard(cmd.Context(), app)
			}
			return cmd.Help()
		},
	}

	root.AddCommand(
		newProjectCmd(app),
		newTaskCmd(app),
		newSubtaskCmd(app),
		newPlanCmd(app),
		newTimeCmd(app),
		newBoardCmd(app),
	)

	return root
}

func startBoard(ctx context.Context, app *App) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if app.RunBoard != nil {
		return app.RunBoard(ctx, app)
	}
	return runBoardProgram(ctx, app)
}

func newBoardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Open the scrolling week board",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startBoard(cmd.Context(), app)
		},
	}
}
