package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/planboard/internal/cli/formatter"
	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/spf13/cobra"
)

func newSubtaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subtask",
		Short: "Manage a task's subtasks",
	}

	cmd.AddCommand(
		newSubtaskAddCmd(app),
		newSubtaskListCmd(app),
		newSubtaskDoneCmd(app),
		newSubtaskRemoveCmd(app),
		newSubtaskReorderCmd(app),
	)

	return cmd
}

func newSubtaskAddCmd(app *App) *cobra.Command {
	var title, planned string

	cmd := &cobra.Command{
		Use:   "add TASK",
		Short: "Append a subtask",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			taskID, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			st := &domain.Subtask{
				UserID:             app.userID(),
				TaskID:             taskID,
				Title:              title,
				PlannedTimeSeconds: domain.ParseDuration(planned),
			}
			if err := app.Subtasks.Create(ctx, st); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added subtask %s [%s] at position %d\n", st.Title, formatter.ShortID(st.ID), st.Position)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Subtask title")
	cmd.Flags().StringVar(&planned, "planned", "", "Planned time, e.g. 20m")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newSubtaskListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list TASK",
		Short: "List a task's subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			taskID, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			subtasks, err := app.Subtasks.ListByTask(ctx, taskID)
			if err != nil {
				return err
			}
			if len(subtasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No subtasks.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSubtaskList(subtasks))
			return nil
		},
	}
}

func findSubtask(subtasks []*domain.Subtask, id string) (*domain.Subtask, error) {
	for _, s := range subtasks {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, errors.New("subtask not found")
}

func newSubtaskDoneCmd(app *App) *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "done ID",
		Short: "Mark a subtask completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveSubtaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			all, err := app.Subtasks.List(ctx, app.userID())
			if err != nil {
				return err
			}
			st, err := findSubtask(all, id)
			if err != nil {
				return err
			}
			st.IsCompleted = !undo
			if err := app.Subtasks.Update(ctx, st); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatter.Checkbox(st.IsCompleted), st.Title)
			return nil
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "Mark the subtask open again")

	return cmd
}

func newSubtaskRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Delete a subtask",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveSubtaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Subtasks.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted subtask %s\n", formatter.ShortID(id))
			return nil
		},
	}
}

func newSubtaskReorderCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder TASK ID...",
		Short: "Set subtask order; every subtask must be listed",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			taskID, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			ids := make([]string, 0, len(args)-1)
			for _, a := range args[1:] {
				id, err := resolveSubtaskID(ctx, app, a)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			if err := app.Subtasks.Reorder(ctx, taskID, ids); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Subtasks reordered.")
			return nil
		},
	}
}
