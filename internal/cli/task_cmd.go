package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/planboard/internal/cli/formatter"
	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/spf13/cobra"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	cmd.AddCommand(
		newTaskAddCmd(app),
		newTaskListCmd(app),
		newTaskShowCmd(app),
		newTaskEditCmd(app),
		newTaskDoneCmd(app),
		newTaskRemoveCmd(app),
	)

	return cmd
}

func newTaskAddCmd(app *App) *cobra.Command {
	var title, project, planned, date, start string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task, optionally planned on a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if title == "" {
				if !app.interactive() {
					return errors.New("--title is required")
				}
				projects, err := app.Projects.List(ctx, app.userID())
				if err != nil {
					return err
				}
				v := taskFormValues{Planned: planned, PlanDate: date}
				if err := taskForm(projects, &v).Run(); err != nil {
					return err
				}
				title, planned, date = v.Title, v.Planned, v.PlanDate
				if v.ProjectID != "" {
					project = v.ProjectID
				}
			}

			t := &domain.Task{
				UserID:             app.userID(),
				Title:              strings.TrimSpace(title),
				PlannedTimeSeconds: domain.ParseDuration(planned),
			}
			if project != "" {
				id, err := resolveProjectID(ctx, app, project)
				if err != nil {
					return err
				}
				t.ProjectID = &id
			}
			if start != "" {
				t.StartTime = &start
			}

			var planDate *time.Time
			if date != "" {
				d, err := parseDateFlag(app, date)
				if err != nil {
					return err
				}
				planDate = &d
			}

			entry, err := app.Tasks.CreateTask(ctx, t, planDate)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if entry != nil {
				fmt.Fprintf(out, "Created task %s [%s] on %s at position %d\n",
					t.Title, formatter.ShortID(t.ID), domain.DateKey(entry.PlanDate), entry.Position)
				return nil
			}
			fmt.Fprintf(out, "Created task %s [%s]\n", t.Title, formatter.ShortID(t.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Task title (prompted when omitted on a terminal)")
	cmd.Flags().StringVar(&project, "project", "", "Project name or ID")
	cmd.Flags().StringVar(&planned, "planned", "", "Planned time, e.g. 1h 30m")
	cmd.Flags().StringVar(&date, "date", "", "Plan the task on this day (YYYY-MM-DD, today, tomorrow)")
	cmd.Flags().StringVar(&start, "start", "", "Start time HH:MM")

	return cmd
}

func newTaskListCmd(app *App) *cobra.Command {
	var open bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tasks, err := app.Tasks.ListTasks(ctx, app.userID())
			if err != nil {
				return err
			}
			if open {
				kept := tasks[:0]
				for _, t := range tasks {
					if !t.IsCompleted {
						kept = append(kept, t)
					}
				}
				tasks = kept
			}
			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks found.")
				return nil
			}
			projects, err := app.Projects.List(ctx, app.userID())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTaskList(tasks, projects))
			return nil
		},
	}

	cmd.Flags().BoolVar(&open, "open", false, "Only tasks not yet completed")

	return cmd
}

func newTaskShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a task with its subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			t, err := app.Tasks.GetTask(ctx, id)
			if err != nil {
				return err
			}
			subtasks, err := app.Subtasks.ListByTask(ctx, id)
			if err != nil {
				return err
			}

			var b strings.Builder
			fmt.Fprintf(&b, "%s %s\n", formatter.Checkbox(t.IsCompleted), formatter.Bold(t.Title))
			if t.Description != "" {
				fmt.Fprintf(&b, "%s\n", t.Description)
			}
			fmt.Fprintf(&b, "%s %s\n", formatter.Dim("Planned:"), formatter.FormatDuration(t.PlannedTimeSeconds))
			if t.StartTime != nil {
				fmt.Fprintf(&b, "%s %s\n", formatter.Dim("Starts:"), *t.StartTime)
			}
			if t.DueDate != nil {
				fmt.Fprintf(&b, "%s %s\n", formatter.Dim("Due:"), domain.DateKey(*t.DueDate))
			}
			if len(subtasks) > 0 {
				b.WriteString("\n")
				b.WriteString(formatter.FormatSubtaskList(subtasks))
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderBox(formatter.ShortID(t.ID), strings.TrimRight(b.String(), "\n")))
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
}

func newTaskEditCmd(app *App) *cobra.Command {
	var title, description, planned, due, start, project string
	var highlight bool

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change task fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}

			var patch domain.TaskPatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("planned") {
				secs := domain.ParseDuration(planned)
				patch.PlannedTimeSeconds = &secs
			}
			if flags.Changed("highlight") {
				patch.Highlighted = &highlight
			}
			if flags.Changed("due") {
				var d *time.Time
				if due != "" {
					parsed, err := parseDateFlag(app, due)
					if err != nil {
						return err
					}
					d = &parsed
				}
				patch.DueDate = &d
			}
			if flags.Changed("start") {
				var s *string
				if start != "" {
					s = &start
				}
				patch.StartTime = &s
			}
			if flags.Changed("project") {
				var p *string
				if project != "" {
					pid, err := resolveProjectID(ctx, app, project)
					if err != nil {
						return err
					}
					p = &pid
				}
				patch.ProjectID = &p
			}

			t, err := app.Tasks.UpdateTask(ctx, id, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s\n", t.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&description, "description", "", "Task description")
	cmd.Flags().StringVar(&planned, "planned", "", "Planned time, e.g. 45m")
	cmd.Flags().StringVar(&due, "due", "", "Due date; empty clears it")
	cmd.Flags().StringVar(&start, "start", "", "Start time HH:MM; empty clears it")
	cmd.Flags().StringVar(&project, "project", "", "Project name or ID; empty clears it")
	cmd.Flags().BoolVar(&highlight, "highlight", false, "Highlight the task on the board")

	return cmd
}

func newTaskDoneCmd(app *App) *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "done ID",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			done := !undo
			t, err := app.Tasks.UpdateTask(ctx, id, domain.TaskPatch{IsCompleted: &done})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatter.Checkbox(t.IsCompleted), t.Title)
			return nil
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "Mark the task open again")

	return cmd
}

func newTaskRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Delete a task with its subtasks, time and plan entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			deleted, err := app.Tasks.DeleteTask(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s (%d plan entries)\n", deleted.Task.Title, len(deleted.Entries))
			return nil
		},
	}
}
