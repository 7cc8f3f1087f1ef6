package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/planboard/internal/cli/formatter"
	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

func planboardHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// taskFormValues collects the fields of the interactive task form.
type taskFormValues struct {
	Title     string
	ProjectID string
	Planned   string
	PlanDate  string
}

// taskForm asks for a new task. An empty project id means no project.
func taskForm(projects []*domain.Project, v *taskFormValues) *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Title").
			Value(&v.Title).
			Validate(validateRequired("title")),
	}
	if len(projects) > 0 {
		options := []huh.Option[string]{huh.NewOption("No project", "")}
		for _, p := range projects {
			options = append(options, huh.NewOption(p.Name, p.ID))
		}
		fields = append(fields, huh.NewSelect[string]().
			Title("Project").
			Options(options...).
			Value(&v.ProjectID))
	}
	fields = append(fields,
		huh.NewInput().
			Title("Planned time").
			Description("e.g. 1h 30m, 45m, 02:30").
			Placeholder("30m").
			Value(&v.Planned).
			Validate(validateOptionalDuration),
		huh.NewInput().
			Title("Plan on (YYYY-MM-DD, blank for unscheduled)").
			Placeholder("2026-10-15").
			Value(&v.PlanDate).
			Validate(validateOptionalDate),
	)
	return huh.NewForm(huh.NewGroup(fields...)).WithTheme(planboardHuhTheme()).WithShowHelp(false)
}

// confirmForm asks a yes/no question.
func confirmForm(title string, result *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(result),
		),
	).WithTheme(planboardHuhTheme()).WithShowHelp(false)
}

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// validateOptionalDate accepts empty or a YYYY-MM-DD date string.
func validateOptionalDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := domain.ParseDate(s); err != nil {
		return fmt.Errorf("use YYYY-MM-DD format")
	}
	return nil
}

// validateOptionalDuration accepts empty or anything ParseDuration reads as
// a positive duration.
func validateOptionalDuration(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if domain.ParseDuration(s) <= 0 {
		return fmt.Errorf("enter a duration such as 45m or 1h 30m")
	}
	return nil
}
