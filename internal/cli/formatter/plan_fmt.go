package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/planboard/internal/domain"
)

// FormatProjectList renders projects in board order.
func FormatProjectList(projects []*domain.Project) string {
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			TruncID(p.ID),
			strconv.Itoa(p.Position),
			ProjectStyle(p.Color).Render("■ " + p.Name),
		})
	}
	return Table{Headers: []string{"ID", "#", "NAME"}, Rows: rows, Right: map[int]bool{1: true}}.Render()
}

// FormatTaskList renders tasks with their project names.
func FormatTaskList(tasks []*domain.Task, projects []*domain.Project) string {
	byID := make(map[string]*domain.Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		project := Dim("--")
		if t.ProjectID != nil {
			if p, ok := byID[*t.ProjectID]; ok {
				project = ProjectStyle(p.Color).Render(p.Name)
			}
		}
		due := Dim("--")
		if t.DueDate != nil {
			due = t.DueDate.Format(domain.DateLayout)
		}
		rows = append(rows, []string{
			TruncID(t.ID),
			Checkbox(t.IsCompleted),
			t.Title,
			project,
			FormatDuration(t.PlannedTimeSeconds),
			due,
		})
	}
	return Table{
		Headers: []string{"ID", "", "TITLE", "PROJECT", "PLANNED", "DUE"},
		Rows:    rows,
		Right:   map[int]bool{4: true},
	}.Render()
}

// FormatSubtaskList renders one task's subtasks in position order.
func FormatSubtaskList(subtasks []*domain.Subtask) string {
	rows := make([][]string, 0, len(subtasks))
	for _, s := range subtasks {
		rows = append(rows, []string{
			TruncID(s.ID),
			strconv.Itoa(s.Position),
			Checkbox(s.IsCompleted),
			s.Title,
			FormatDuration(s.PlannedTimeSeconds),
		})
	}
	return Table{
		Headers: []string{"ID", "#", "", "TITLE", "PLANNED"},
		Rows:    rows,
		Right:   map[int]bool{1: true, 4: true},
	}.Render()
}

// FormatWeek renders each day as a header followed by its tasks.
func FormatWeek(days []domain.Day, byDay domain.TasksByDay, today time.Time) string {
	var b strings.Builder
	for i, d := range days {
		if i > 0 {
			b.WriteString("\n")
		}
		title := fmt.Sprintf("%s %s", d.ShortDayName, d.ShortDate)
		if d.ID == domain.DateKey(today) {
			title += " · " + RelativeDay(d.FullDate, today)
		}
		b.WriteString(Header(title))
		b.WriteString("\n")

		tasks := byDay[d.ID]
		if len(tasks) == 0 {
			b.WriteString(Dim("  nothing planned"))
			b.WriteString("\n")
			continue
		}
		rows := make([][]string, 0, len(tasks))
		for _, t := range tasks {
			rows = append(rows, []string{
				strconv.Itoa(t.Position),
				Checkbox(t.IsCompleted),
				t.Title,
				TimeRatio(t.TimeSpent, t.TimePlanned),
				TruncID(t.ID),
			})
		}
		b.WriteString(Table{
			Headers: []string{"#", "", "TASK", "SPENT/PLAN", "ID"},
			Rows:    rows,
			Right:   map[int]bool{0: true, 3: true},
		}.Render())
	}
	return b.String()
}
