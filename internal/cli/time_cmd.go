package cli

import (
	"fmt"

	"github.com/alexanderramin/planboard/internal/cli/formatter"
	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/alexanderramin/planboard/internal/service"
	"github.com/spf13/cobra"
)

func newTimeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "time",
		Short: "Track time spent on tasks",
	}

	cmd.AddCommand(
		newTimeWriteCmd(app, "log", "Add time to a task or subtask", false),
		newTimeWriteCmd(app, "set", "Overwrite the time booked for a day", true),
	)

	return cmd
}

func newTimeWriteCmd(app *App, use, short string, overwrite bool) *cobra.Command {
	var spent, date, subtask string

	cmd := &cobra.Command{
		Use:   use + " TASK",
		Short: short,
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
			seconds := domain.ParseDuration(spent)
			if seconds <= 0 && !overwrite {
				return fmt.Errorf("invalid duration %q", spent)
			}

			in := service.TimeEntryInput{
				UserID:  app.userID(),
				TaskID:  taskID,
				Date:    day,
				Seconds: seconds,
			}
			if subtask != "" {
				id, err := resolveSubtaskID(ctx, app, subtask)
				if err != nil {
					return err
				}
				in.SubtaskID = &id
			}

			var entry *domain.TimeEntry
			if overwrite {
				entry, err = app.Times.Upsert(ctx, in)
			} else {
				entry, err = app.Times.AddSeconds(ctx, in)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s booked on %s\n",
				formatter.FormatDuration(entry.TimeSpentSeconds), domain.DateKey(entry.Date))
			return nil
		},
	}

	cmd.Flags().StringVar(&spent, "spent", "", "Duration, e.g. 25m or 1h 10m")
	cmd.Flags().StringVar(&date, "date", "", "Day (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&subtask, "subtask", "", "Book against this subtask")
	_ = cmd.MarkFlagRequired("spent")

	return cmd
}
