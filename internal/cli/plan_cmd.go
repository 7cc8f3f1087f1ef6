package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alexanderramin/planboard/internal/cli/formatter"
	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/alexanderramin/planboard/internal/planner"
	"github.com/alexanderramin/planboard/internal/service"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newPlanCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Schedule tasks onto days",
	}

	cmd.AddCommand(
		newPlanScheduleCmd(app),
		newPlanMoveCmd(app),
		newPlanUnscheduleCmd(app),
		newPlanWeekCmd(app),
		newPlanExportCmd(app),
	)

	return cmd
}

func newPlanScheduleCmd(app *App) *cobra.Command {
	var date string
	var pos int

	cmd := &cobra.Command{
		Use:   "schedule TASK",
		Short: "Plan a task on a day, at the end unless --pos is given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			taskID, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			day, err := parseDateFlag(app, date)
			if err != nil {
				return err
			}

			var entry *domain.PlanEntry
			if cmd.Flags().Changed("pos") {
				entry, err = app.Plans.CreatePlanEntry(ctx, taskID, day, pos)
			} else {
				entry, err = app.Plans.ScheduleTask(ctx, taskID, day)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Planned on %s at position %d\n", domain.DateKey(entry.PlanDate), entry.Position)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&pos, "pos", 0, "Position within the day")

	return cmd
}

func newPlanMoveCmd(app *App) *cobra.Command {
	var from, to string
	var pos int

	cmd := &cobra.Command{
		Use:   "move TASK",
		Short: "Move a planned task to another day or position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			taskID, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			src, err := parseDateFlag(app, from)
			if err != nil {
				return err
			}
			dst := src
			if to != "" {
				if dst, err = parseDateFlag(app, to); err != nil {
					return err
				}
			}
			entry, err := resolveEntry(ctx, app, taskID, src)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("pos") {
				pos = -1
			}
			if pos < 0 {
				items, err := app.Plans.FetchPlanRange(ctx, app.userID(), dst, dst)
				if err != nil {
					return err
				}
				pos = len(items)
			}
			if err := app.Plans.MoveEntry(ctx, entry.ID, dst, pos); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved to %s\n", domain.DateKey(dst))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Day the task is planned on (default today)")
	cmd.Flags().StringVar(&to, "to", "", "Target day (default: same day)")
	cmd.Flags().IntVar(&pos, "pos", 0, "Target position (default: end of day)")

	return cmd
}

func newPlanUnscheduleCmd(app *App) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "unschedule TASK",
		Short: "Remove a task from a day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			taskID, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			day, err := parseDateFlag(app, date)
			if err != nil {
				return err
			}
			entry, err := resolveEntry(ctx, app, taskID, day)
			if err != nil {
				return err
			}
			if err := app.Plans.Unschedule(ctx, entry.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unscheduled from %s\n", domain.DateKey(day))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day the task is planned on (default today)")

	return cmd
}

// weekPlan is one enriched week read straight from the services.
type weekPlan struct {
	Days  []domain.Day
	ByDay domain.TasksByDay
	Side  service.SideTables
}

func loadWeeks(ctx context.Context, app *App, start time.Time, weeks int) (weekPlan, error) {
	first := app.Config.Board(0).FirstWeekday
	start = domain.WeekStart(start, first)

	pages := make([]domain.PlanPage, 0, weeks)
	for i := 0; i < weeks; i++ {
		ws := domain.AddDays(start, i*domain.DaysPerWeek)
		items, err := app.Plans.FetchPlanRange(ctx, app.userID(), ws, domain.AddDays(ws, domain.DaysPerWeek-1))
		if err != nil {
			return weekPlan{}, err
		}
		pages = append(pages, domain.PlanPage{WeekStart: ws, Items: items})
	}
	side, err := service.LoadSideTables(ctx, app.userID(), app.Subtasks, app.Times, app.Projects)
	if err != nil {
		return weekPlan{}, err
	}
	plan := planner.Enrich(pages, side.Subtasks, side.Entries, app.today())
	return weekPlan{Days: planner.GenerateDays(pages), ByDay: plan.ByDay, Side: side}, nil
}

func newPlanWeekCmd(app *App) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Print the week containing a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDateFlag(app, date)
			if err != nil {
				return err
			}
			wp, err := loadWeeks(cmd.Context(), app, day, 1)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatWeek(wp.Days, wp.ByDay, app.today()))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Any day in the week (default today)")

	return cmd
}

type exportDoc struct {
	User  string       `yaml:"user"`
	Weeks []exportWeek `yaml:"weeks"`
}

type exportWeek struct {
	Start string      `yaml:"start"`
	Days  []exportDay `yaml:"days"`
}

type exportDay struct {
	Date  string       `yaml:"date"`
	Tasks []exportTask `yaml:"tasks,omitempty"`
}

type exportTask struct {
	ID        string          `yaml:"id"`
	Title     string          `yaml:"title"`
	Project   string          `yaml:"project,omitempty"`
	Done      bool            `yaml:"done"`
	Position  int             `yaml:"position"`
	Planned   string          `yaml:"planned,omitempty"`
	Spent     string          `yaml:"spent,omitempty"`
	StartTime string          `yaml:"start_time,omitempty"`
	Subtasks  []exportSubtask `yaml:"subtasks,omitempty"`
}

type exportSubtask struct {
	Title string `yaml:"title"`
	Done  bool   `yaml:"done"`
}

func buildExport(user string, wp weekPlan) exportDoc {
	projects := make(map[string]string, len(wp.Side.Projects))
	for _, p := range wp.Side.Projects {
		projects[p.ID] = p.Name
	}

	doc := exportDoc{User: user}
	for i, d := range wp.Days {
		if i%domain.DaysPerWeek == 0 {
			doc.Weeks = append(doc.Weeks, exportWeek{Start: d.ID})
		}
		day := exportDay{Date: d.ID}
		for _, t := range wp.ByDay[d.ID] {
			et := exportTask{
				ID:       t.ID,
				Title:    t.Title,
				Done:     t.IsCompleted,
				Position: t.Position,
			}
			if t.ProjectID != nil {
				et.Project = projects[*t.ProjectID]
			}
			if t.TimePlanned > 0 {
				et.Planned = domain.FormatClock(t.TimePlanned, false)
			}
			if t.TimeSpent > 0 {
				et.Spent = domain.FormatClock(t.TimeSpent, true)
			}
			if t.StartTime != nil {
				et.StartTime = *t.StartTime
			}
			for _, st := range t.Subtasks {
				et.Subtasks = append(et.Subtasks, exportSubtask{Title: st.Title, Done: st.IsCompleted})
			}
			day.Tasks = append(day.Tasks, et)
		}
		w := &doc.Weeks[len(doc.Weeks)-1]
		w.Days = append(w.Days, day)
	}
	return doc
}

func newPlanExportCmd(app *App) *cobra.Command {
	var from, output string
	var weeks int

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write planned weeks as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			if weeks < 1 {
				return fmt.Errorf("--weeks must be at least 1")
			}
			day, err := parseDateFlag(app, from)
			if err != nil {
				return err
			}
			wp, err := loadWeeks(cmd.Context(), app, day, weeks)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)
			if err := enc.Encode(buildExport(app.userID(), wp)); err != nil {
				return fmt.Errorf("encoding export: %w", err)
			}
			if err := enc.Close(); err != nil {
				return err
			}
			app.logger().InfoContext(cmd.Context(), "plan exported", "weeks", weeks, "from", domain.DateKey(day))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Any day in the first week (default today)")
	cmd.Flags().IntVar(&weeks, "weeks", 1, "Number of weeks")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")

	return cmd
}
