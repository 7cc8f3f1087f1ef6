package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/planboard/internal/cli/formatter"
	"github.com/alexanderramin/planboard/internal/domain"
)

// matchID resolves input against ids: exact match first, then a unique
// prefix.
func matchID(kind, input string, ids []string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("%s ID is required", kind)
	}
	for _, id := range ids {
		if id == input {
			return id, nil
		}
	}

	var matches []string
	for _, id := range ids {
		if strings.HasPrefix(id, input) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s not found: %q", kind, input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s ID prefix %q is ambiguous (%d matches)", kind, input, len(matches))
	}
}

func resolveProjectID(ctx context.Context, app *App, input string) (string, error) {
	projects, err := app.Projects.List(ctx, app.userID())
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		if strings.EqualFold(p.Name, input) {
			return p.ID, nil
		}
		ids = append(ids, p.ID)
	}
	return matchID("project", input, ids)
}

func resolveTaskID(ctx context.Context, app *App, input string) (string, error) {
	tasks, err := app.Tasks.ListTasks(ctx, app.userID())
	if err != nil {
		return "", err
	}
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return matchID("task", input, ids)
}

func resolveSubtaskID(ctx context.Context, app *App, input string) (string, error) {
	subtasks, err := app.Subtasks.List(ctx, app.userID())
	if err != nil {
		return "", err
	}
	ids := make([]string, len(subtasks))
	for i, s := range subtasks {
		ids[i] = s.ID
	}
	return matchID("subtask", input, ids)
}

// resolveEntry finds the plan entry scheduling taskID on date.
func resolveEntry(ctx context.Context, app *App, taskID string, date time.Time) (domain.PlanEntry, error) {
	items, err := app.Plans.FetchPlanRange(ctx, app.userID(), date, date)
	if err != nil {
		return domain.PlanEntry{}, err
	}
	for _, it := range items {
		if it.Task.ID == taskID {
			return it.Entry, nil
		}
	}
	return domain.PlanEntry{}, fmt.Errorf("task %s is not planned on %s", formatter.ShortID(taskID), domain.DateKey(date))
}

// parseDateFlag reads a YYYY-MM-DD flag value, with "today", "tomorrow" and
// "yesterday" relative to the app clock. Empty means today.
func parseDateFlag(app *App, value string) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "today":
		return app.today(), nil
	case "tomorrow":
		return domain.AddDays(app.today(), 1), nil
	case "yesterday":
		return domain.AddDays(app.today(), -1), nil
	}
	d, err := domain.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", value)
	}
	return d, nil
}
